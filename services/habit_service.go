// Package services owns persistence for habits and check-ins and invokes the
// pure streak engine on every check-in mutation. Cross-cutting behavior the
// original kept in ORM hooks (updated_at bumps, cascading deletes) is written
// out as explicit statements here.
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/habitflow/habitflow/models"
	"github.com/habitflow/habitflow/streak"
)

// ErrHabitNotFound is returned when a habit does not exist or belongs to a
// different user.
var ErrHabitNotFound = errors.New("habit not found")

// HabitService implements habit CRUD and archival.
type HabitService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

// NewHabitService creates a new service instance.
func NewHabitService(db *gorm.DB, log *zap.SugaredLogger) *HabitService {
	return &HabitService{db: db, log: log, now: time.Now}
}

// HabitInput carries the caller-editable habit fields. Streak counters are
// not part of it; they are derived only.
type HabitInput struct {
	Title          string
	Description    string
	Category       string
	FrequencyType  streak.FrequencyType
	SpecificDays   []time.Weekday
	TimesPerPeriod int
	ReminderTime   string
	Color          string
	Icon           string
}

func (in HabitInput) frequency() streak.Frequency {
	f := streak.Frequency{
		Type:           in.FrequencyType,
		SpecificDays:   in.SpecificDays,
		TimesPerPeriod: in.TimesPerPeriod,
	}
	if f.Type == "" {
		f.Type = streak.Daily
	}
	if f.TimesPerPeriod < 1 {
		f.TimesPerPeriod = 1
	}
	return f
}

// Create stores a new habit with zeroed streak counters.
func (s *HabitService) Create(userID string, in HabitInput) (*models.Habit, error) {
	freq := in.frequency()
	if err := freq.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	habit := models.Habit{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		FrequencyType:  string(freq.Type),
		TimesPerPeriod: freq.TimesPerPeriod,
		ReminderTime:   in.ReminderTime,
		Color:          in.Color,
		Icon:           in.Icon,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	habit.SetSpecificDays(in.SpecificDays)
	if habit.Category == "" {
		habit.Category = "other"
	}
	if habit.Color == "" {
		habit.Color = "#4CAF50"
	}
	if habit.Icon == "" {
		habit.Icon = "check"
	}

	if err := s.db.Create(&habit).Error; err != nil {
		return nil, err
	}
	return &habit, nil
}

// Get loads one habit scoped to its owner.
func (s *HabitService) Get(habitID, userID string) (*models.Habit, error) {
	var habit models.Habit
	err := s.db.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}
	return &habit, nil
}

// List returns the user's habits, newest first. Archived habits are excluded
// unless includeArchived is set.
func (s *HabitService) List(userID string, includeArchived bool) ([]models.Habit, error) {
	q := s.db.Where("user_id = ?", userID)
	if !includeArchived {
		q = q.Where("archived_at IS NULL")
	}
	var habits []models.Habit
	if err := q.Order("created_at DESC").Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}

// Update applies the editable fields and bumps UpdatedAt explicitly.
func (s *HabitService) Update(habitID, userID string, in HabitInput) (*models.Habit, error) {
	habit, err := s.Get(habitID, userID)
	if err != nil {
		return nil, err
	}

	freq := in.frequency()
	if err := freq.Validate(); err != nil {
		return nil, err
	}

	habit.Title = in.Title
	habit.Description = in.Description
	if in.Category != "" {
		habit.Category = in.Category
	}
	habit.FrequencyType = string(freq.Type)
	habit.TimesPerPeriod = freq.TimesPerPeriod
	habit.SetSpecificDays(in.SpecificDays)
	if in.ReminderTime != "" {
		habit.ReminderTime = in.ReminderTime
	}
	if in.Color != "" {
		habit.Color = in.Color
	}
	if in.Icon != "" {
		habit.Icon = in.Icon
	}
	habit.UpdatedAt = s.now()

	if err := s.db.Save(habit).Error; err != nil {
		return nil, err
	}
	return habit, nil
}

// SetArchived toggles the archival timestamp. Archived habits keep their
// history but stop being due.
func (s *HabitService) SetArchived(habitID, userID string, archived bool) (*models.Habit, error) {
	habit, err := s.Get(habitID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if archived {
		habit.ArchivedAt = &now
	} else {
		habit.ArchivedAt = nil
	}
	habit.UpdatedAt = now

	if err := s.db.Save(habit).Error; err != nil {
		return nil, err
	}
	return habit, nil
}

// Delete removes the habit and every check-in it owns in one transaction.
// The cascade is an explicit statement, not a schema- or hook-level effect.
func (s *HabitService) Delete(habitID, userID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var habit models.Habit
		if err := tx.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHabitNotFound
			}
			return err
		}
		if err := tx.Where("habit_id = ?", habitID).Delete(&models.Checkin{}).Error; err != nil {
			return err
		}
		return tx.Delete(&habit).Error
	})
}
