package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/habitflow/habitflow/streak"
)

// Habit is a user-owned habit with its frequency configuration and cached
// streak counters. CurrentStreak and LongestStreak are derived data: the
// service layer recomputes them from check-in history after every check-in
// mutation and they must never be edited by hand.
type Habit struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	UserID         string     `gorm:"index;size:36;not null" json:"user_id"`
	Title          string     `gorm:"size:100;not null" json:"title"`
	Description    string     `gorm:"size:500" json:"description"`
	Category       string     `gorm:"size:32;default:'other'" json:"category"`
	FrequencyType  string     `gorm:"size:16;not null;default:'daily'" json:"frequency_type"`
	SpecificDays   string     `gorm:"size:32" json:"specific_days"` // comma separated weekday indices, 0=Sunday
	TimesPerPeriod int        `gorm:"default:1" json:"times_per_period"`
	ReminderTime   string     `gorm:"size:8" json:"reminder_time"`
	Color          string     `gorm:"size:16;default:'#4CAF50'" json:"color"`
	Icon           string     `gorm:"size:32;default:'check'" json:"icon"`
	CurrentStreak  int        `json:"current_streak"`
	LongestStreak  int        `json:"longest_streak"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// Frequency converts the stored columns into the engine's value type.
func (h *Habit) Frequency() streak.Frequency {
	return streak.Frequency{
		Type:           streak.FrequencyType(h.FrequencyType),
		SpecificDays:   h.SpecificWeekdays(),
		TimesPerPeriod: h.TimesPerPeriod,
	}
}

// SpecificWeekdays decodes the comma separated weekday column. Malformed or
// out-of-range entries are dropped.
func (h *Habit) SpecificWeekdays() []time.Weekday {
	if h.SpecificDays == "" {
		return nil
	}
	parts := strings.Split(h.SpecificDays, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}

// SetSpecificDays encodes weekdays into the stored column.
func (h *Habit) SetSpecificDays(days []time.Weekday) {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	h.SpecificDays = strings.Join(parts, ",")
}

// Archived reports whether the habit is inactive for due-date purposes.
func (h *Habit) Archived() bool {
	return h.ArchivedAt != nil
}
