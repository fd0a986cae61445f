package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/habitflow/habitflow/models"
	"github.com/habitflow/habitflow/streak"
	"github.com/habitflow/habitflow/utils"
)

// overviewWindowDays bounds the check-in history the overview looks at.
const overviewWindowDays = 30

// AnalyticsService serves derived read models over habits and check-ins.
// Results are cached in Redis under "analytics:<user>:" keys; the check-in
// write path invalidates that prefix.
type AnalyticsService struct {
	db    *gorm.DB
	cache *utils.Cache
	log   *zap.SugaredLogger
	now   func() time.Time
}

// NewAnalyticsService creates a new service instance. cache may be nil.
func NewAnalyticsService(db *gorm.DB, cache *utils.Cache, log *zap.SugaredLogger) *AnalyticsService {
	return &AnalyticsService{db: db, cache: cache, log: log, now: time.Now}
}

// HabitCounts splits a user's habits by archival state.
type HabitCounts struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Archived int `json:"archived"`
}

// StreakSummary aggregates cached streak counters across habits.
type StreakSummary struct {
	Average    float64 `json:"average"`
	MaxCurrent int     `json:"max_current"`
	MaxLongest int     `json:"max_longest"`
}

// PeriodCompletion is completions achieved against completions possible in a
// trailing window.
type PeriodCompletion struct {
	Completed int     `json:"completed"`
	Potential int     `json:"potential"`
	Rate      float64 `json:"rate"`
}

// CompletionSummary covers today plus the trailing week and month.
type CompletionSummary struct {
	Today     PeriodCompletion `json:"today"`
	ThisWeek  PeriodCompletion `json:"this_week"`
	ThisMonth PeriodCompletion `json:"this_month"`
}

// CategoryStats summarizes one habit category.
type CategoryStats struct {
	Count         int     `json:"count"`
	AverageStreak float64 `json:"average_streak"`
}

// Overview is the per-user dashboard payload. Consistency is present only
// when the premium sections were requested.
type Overview struct {
	HabitCounts HabitCounts              `json:"habit_counts"`
	Streaks     StreakSummary            `json:"streaks"`
	Completion  CompletionSummary        `json:"completion"`
	Categories  map[string]CategoryStats `json:"categories"`
	Consistency *streak.Score            `json:"consistency,omitempty"`
}

// Overview builds the dashboard for one user. Subscription gating is the
// caller's decision; includePremium selects whether the gated sections are
// computed.
func (s *AnalyticsService) Overview(userID string, includePremium bool) (*Overview, error) {
	key := fmt.Sprintf("analytics:%s:overview:%t", userID, includePremium)
	var cached Overview
	if s.cache.GetJSON(key, &cached) {
		return &cached, nil
	}

	var habits []models.Habit
	if err := s.db.Where("user_id = ?", userID).Find(&habits).Error; err != nil {
		return nil, err
	}

	today := streak.DayStart(s.now())
	windowStart := today.AddDate(0, 0, -overviewWindowDays)
	var checkins []models.Checkin
	if err := s.db.Where("user_id = ? AND date >= ?", userID, windowStart).Find(&checkins).Error; err != nil {
		return nil, err
	}

	out := &Overview{
		Categories: make(map[string]CategoryStats),
	}

	active := 0
	streakSum := 0
	type catAcc struct{ count, streakTotal int }
	cats := make(map[string]catAcc)
	for _, h := range habits {
		if !h.Archived() {
			active++
		}
		streakSum += h.CurrentStreak
		if h.CurrentStreak > out.Streaks.MaxCurrent {
			out.Streaks.MaxCurrent = h.CurrentStreak
		}
		if h.LongestStreak > out.Streaks.MaxLongest {
			out.Streaks.MaxLongest = h.LongestStreak
		}

		cat := h.Category
		if cat == "" {
			cat = "uncategorized"
		}
		acc := cats[cat]
		acc.count++
		acc.streakTotal += h.CurrentStreak
		cats[cat] = acc
	}
	out.HabitCounts = HabitCounts{Total: len(habits), Active: active, Archived: len(habits) - active}
	if len(habits) > 0 {
		out.Streaks.Average = float64(streakSum) / float64(len(habits))
	}
	for cat, acc := range cats {
		out.Categories[cat] = CategoryStats{
			Count:         acc.count,
			AverageStreak: float64(acc.streakTotal) / float64(acc.count),
		}
	}

	completedToday := 0
	for _, c := range checkins {
		if c.Completed && streak.SameDay(c.Date, today) {
			completedToday++
		}
	}
	out.Completion = CompletionSummary{
		Today:     periodCompletion(completedToday, active),
		ThisWeek:  completionForPeriod(checkins, active, today, 7),
		ThisMonth: completionForPeriod(checkins, active, today, 30),
	}

	if includePremium {
		score := streak.ConsistencyScore(records(checkins), habitStates(habits), today)
		out.Consistency = &score
	}

	s.cache.SetJSON(key, out)
	return out, nil
}

// HabitInfo is the identifying slice of the habit carried in its analytics.
type HabitInfo struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	CreatedAt     time.Time `json:"created_at"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
}

// HabitCompletion bundles the bucketed completion rates for one habit.
type HabitCompletion struct {
	Overall streak.Overall           `json:"overall"`
	ByDay   map[string]streak.Bucket `json:"by_day"`
	ByWeek  map[string]streak.Bucket `json:"by_week"`
	ByMonth map[string]streak.Bucket `json:"by_month"`
}

// DayRate names a weekday together with its completion rate.
type DayRate struct {
	Day  string  `json:"day"`
	Rate float64 `json:"rate"`
}

// Patterns are the premium pattern insights for one habit.
type Patterns struct {
	BestDay            *DayRate           `json:"best_day"`
	WorstDay           *DayRate           `json:"worst_day"`
	AveragePerformance streak.Performance `json:"average_performance"`
	Consistency        float64            `json:"consistency"`
}

// HabitAnalytics is the detailed payload for one habit.
type HabitAnalytics struct {
	Habit         HabitInfo       `json:"habit"`
	Completion    HabitCompletion `json:"completion"`
	StreakHistory []streak.Span   `json:"streak_history,omitempty"`
	Patterns      *Patterns       `json:"patterns,omitempty"`
}

// HabitAnalytics builds detailed analytics for one habit.
func (s *AnalyticsService) HabitAnalytics(habitID, userID string, includePremium bool) (*HabitAnalytics, error) {
	key := fmt.Sprintf("analytics:%s:habit:%s:%t", userID, habitID, includePremium)
	var cached HabitAnalytics
	if s.cache.GetJSON(key, &cached) {
		return &cached, nil
	}

	var habit models.Habit
	if err := s.db.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}

	var checkins []models.Checkin
	if err := s.db.Where("habit_id = ?", habitID).Find(&checkins).Error; err != nil {
		return nil, err
	}
	recs := records(checkins)
	today := streak.DayStart(s.now())

	out := &HabitAnalytics{
		Habit: HabitInfo{
			ID:            habit.ID,
			Title:         habit.Title,
			Description:   habit.Description,
			Category:      habit.Category,
			CreatedAt:     habit.CreatedAt,
			CurrentStreak: habit.CurrentStreak,
			LongestStreak: habit.LongestStreak,
		},
		Completion: HabitCompletion{
			Overall: streak.OverallCompletion(recs, habit.CreatedAt, today),
			ByDay:   dayNameBuckets(streak.CompletionByDay(recs)),
			ByWeek:  streak.CompletionByWeek(recs),
			ByMonth: streak.CompletionByMonth(recs),
		},
	}

	if includePremium {
		out.StreakHistory = streak.StreakHistory(recs)
		p := &Patterns{
			AveragePerformance: streak.AveragePerformance(recs),
			Consistency:        streak.Consistency(recs),
		}
		if wd, b, ok := streak.BestDay(recs); ok {
			p.BestDay = &DayRate{Day: wd.String(), Rate: b.Rate}
		}
		if wd, b, ok := streak.WorstDay(recs); ok {
			p.WorstDay = &DayRate{Day: wd.String(), Rate: b.Rate}
		}
		out.Patterns = p
	}

	s.cache.SetJSON(key, out)
	return out, nil
}

// Export is the full data dump for one user.
type Export struct {
	Habits     []models.Habit   `json:"habits"`
	Checkins   []models.Checkin `json:"checkins"`
	ExportedAt time.Time        `json:"exported_at"`
}

// Export collects every habit and check-in the user owns. Whether the user
// may export (a premium feature in the product) is the caller's decision.
func (s *AnalyticsService) Export(userID string) (*Export, error) {
	var habits []models.Habit
	if err := s.db.Where("user_id = ?", userID).Order("created_at").Find(&habits).Error; err != nil {
		return nil, err
	}
	var checkins []models.Checkin
	if err := s.db.Where("user_id = ?", userID).Order("date").Find(&checkins).Error; err != nil {
		return nil, err
	}
	return &Export{Habits: habits, Checkins: checkins, ExportedAt: s.now()}, nil
}

// completionForPeriod mirrors the dashboard's trailing-window rate: actual
// completions over active habits times window days.
func completionForPeriod(checkins []models.Checkin, activeHabits int, today time.Time, days int) PeriodCompletion {
	start := today.AddDate(0, 0, -(days - 1))
	completed := 0
	for _, c := range checkins {
		d := streak.DayStart(c.Date)
		if c.Completed && !d.Before(start) && !d.After(today) {
			completed++
		}
	}
	return PeriodCompletion{
		Completed: completed,
		Potential: activeHabits * days,
		Rate:      rate(completed, activeHabits*days),
	}
}

func periodCompletion(completed, potential int) PeriodCompletion {
	return PeriodCompletion{Completed: completed, Potential: potential, Rate: rate(completed, potential)}
}

func rate(completed, potential int) float64 {
	if potential <= 0 {
		return 0
	}
	return float64(completed) / float64(potential) * 100
}

// records converts stored rows into the engine's aggregation input.
func records(checkins []models.Checkin) []streak.Record {
	recs := make([]streak.Record, 0, len(checkins))
	for _, c := range checkins {
		recs = append(recs, streak.Record{Date: c.Date, Completed: c.Completed})
	}
	return recs
}

func habitStates(habits []models.Habit) []streak.HabitState {
	states := make([]streak.HabitState, 0, len(habits))
	for _, h := range habits {
		states = append(states, streak.HabitState{
			CreatedAt:     h.CreatedAt,
			ArchivedAt:    h.ArchivedAt,
			CurrentStreak: h.CurrentStreak,
		})
	}
	return states
}

// dayNameBuckets re-keys the weekday map by day name for API consumers.
func dayNameBuckets(byDay map[time.Weekday]streak.Bucket) map[string]streak.Bucket {
	out := make(map[string]streak.Bucket, len(byDay))
	for wd, b := range byDay {
		out[wd.String()] = b
	}
	return out
}
