package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/habitflow/habitflow/models"
	"github.com/habitflow/habitflow/streak"
	"github.com/habitflow/habitflow/utils"
)

// ErrCheckinNotFound is returned when a check-in does not exist or belongs
// to a different user.
var ErrCheckinNotFound = errors.New("check-in not found")

// streakMilestones are the current-streak values that trigger a best-effort
// notification.
var streakMilestones = []int{7, 30, 100}

// CheckinService owns the check-in write path: every mutation recomputes the
// owning habit's streak from history and writes the cached counters back.
type CheckinService struct {
	db       *gorm.DB
	cache    *utils.Cache
	notifier Notifier
	log      *zap.SugaredLogger
	now      func() time.Time
}

// NewCheckinService creates a new service instance. cache and notifier may
// be nil.
func NewCheckinService(db *gorm.DB, cache *utils.Cache, notifier Notifier, log *zap.SugaredLogger) *CheckinService {
	return &CheckinService{db: db, cache: cache, notifier: notifier, log: log, now: time.Now}
}

// CheckinInput carries one check-in action. Date is normalized to its
// calendar day; time of day is irrelevant.
type CheckinInput struct {
	Date      time.Time
	Completed bool
	Notes     string
}

// CheckinResult pairs the stored row with the recomputed streak.
type CheckinResult struct {
	Checkin *models.Checkin `json:"checkin"`
	Streak  streak.Result   `json:"streak"`
}

// Upsert records a check-in for one calendar day. A second write for an
// already-recorded day updates that row instead of duplicating it, which
// together with the unique (habit_id, date) index keeps the one-per-day
// invariant. The habit's cached streak is recomputed inside the same
// transaction.
func (s *CheckinService) Upsert(habitID, userID string, in CheckinInput) (*CheckinResult, error) {
	day := streak.DayStart(in.Date)

	var (
		out   CheckinResult
		habit models.Habit
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHabitNotFound
			}
			return err
		}

		now := s.now()
		var checkin models.Checkin
		err := tx.Where("habit_id = ? AND date = ?", habitID, day).First(&checkin).Error
		switch {
		case err == nil:
			checkin.Completed = in.Completed
			checkin.Notes = in.Notes
			checkin.UpdatedAt = now
			if err := tx.Save(&checkin).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			checkin = models.Checkin{
				ID:        uuid.NewString(),
				HabitID:   habitID,
				UserID:    userID,
				Date:      day,
				Completed: in.Completed,
				Notes:     in.Notes,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&checkin).Error; err != nil {
				return err
			}
		default:
			return err
		}

		res, err := s.writeStreak(tx, &habit)
		if err != nil {
			return err
		}
		out = CheckinResult{Checkin: &checkin, Streak: res}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateByPrefix("analytics:" + userID + ":")
	if in.Completed {
		s.notifyMilestone(userID, &habit, out.Streak.Current)
	}
	return &out, nil
}

// Delete removes one check-in and recomputes the owning habit's streak.
func (s *CheckinService) Delete(checkinID, userID string) (streak.Result, error) {
	var res streak.Result
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var checkin models.Checkin
		if err := tx.Where("id = ? AND user_id = ?", checkinID, userID).First(&checkin).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCheckinNotFound
			}
			return err
		}
		if err := tx.Delete(&checkin).Error; err != nil {
			return err
		}

		var habit models.Habit
		if err := tx.Where("id = ?", checkin.HabitID).First(&habit).Error; err != nil {
			return err
		}
		var err error
		res, err = s.writeStreak(tx, &habit)
		return err
	})
	if err != nil {
		return streak.Result{}, err
	}

	s.cache.InvalidateByPrefix("analytics:" + userID + ":")
	return res, nil
}

// List returns a habit's check-ins, newest first, optionally bounded by an
// inclusive date range.
func (s *CheckinService) List(habitID, userID string, from, to *time.Time) ([]models.Checkin, error) {
	var habit models.Habit
	if err := s.db.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}

	q := s.db.Where("habit_id = ?", habitID)
	if from != nil {
		q = q.Where("date >= ?", streak.DayStart(*from))
	}
	if to != nil {
		q = q.Where("date <= ?", streak.DayStart(*to))
	}
	var checkins []models.Checkin
	if err := q.Order("date DESC").Find(&checkins).Error; err != nil {
		return nil, err
	}
	return checkins, nil
}

// RebuildAll recomputes every habit's cached streak from stored history.
// Cached counters are derived data, so drift (for example from interleaved
// writes) is always repairable. Returns how many habits were checked and how
// many needed fixing.
func (s *CheckinService) RebuildAll() (checked, fixed int, err error) {
	var habits []models.Habit
	result := s.db.FindInBatches(&habits, 200, func(tx *gorm.DB, _ int) error {
		for i := range habits {
			habit := &habits[i]
			checked++

			res, rerr := s.writeStreak(s.db, habit)
			if rerr != nil {
				s.log.Warnw("streak rebuild failed", "habit_id", habit.ID, "err", rerr)
				continue
			}
			if res.Current != habit.CurrentStreak || res.Longest != habit.LongestStreak {
				fixed++
				s.log.Infow("streak drift repaired",
					"habit_id", habit.ID,
					"cached_current", habit.CurrentStreak,
					"cached_longest", habit.LongestStreak,
					"current", res.Current,
					"longest", res.Longest,
				)
			}
		}
		return nil
	})
	return checked, fixed, result.Error
}

// writeStreak recomputes the habit's streak from its completed history and
// persists the counters, fulfilling the write-back contract of the engine.
func (s *CheckinService) writeStreak(tx *gorm.DB, habit *models.Habit) (streak.Result, error) {
	var dates []time.Time
	err := tx.Model(&models.Checkin{}).
		Where("habit_id = ? AND completed = ?", habit.ID, true).
		Order("date").
		Pluck("date", &dates).Error
	if err != nil {
		return streak.Result{}, err
	}

	res, err := streak.Compute(habit.Frequency(), dates, s.now())
	if err != nil {
		return streak.Result{}, err
	}

	err = tx.Model(&models.Habit{}).Where("id = ?", habit.ID).Updates(map[string]interface{}{
		"current_streak": res.Current,
		"longest_streak": res.Longest,
		"updated_at":     s.now(),
	}).Error
	if err != nil {
		return streak.Result{}, err
	}
	habit.CurrentStreak = res.Current
	habit.LongestStreak = res.Longest
	return res, nil
}

// notifyMilestone fires a best-effort milestone notification. A failed
// notification is logged and dropped; the check-in has already committed.
func (s *CheckinService) notifyMilestone(userID string, habit *models.Habit, current int) {
	if s.notifier == nil {
		return
	}
	for _, m := range streakMilestones {
		if current != m {
			continue
		}
		if res := s.notifier.StreakMilestone(userID, habit, m); res.Err != nil {
			s.log.Warnw("milestone notification failed", "habit_id", habit.ID, "days", m, "err", res.Err)
		}
		return
	}
}
