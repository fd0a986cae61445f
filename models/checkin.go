package models

import "time"

// Checkin records whether a habit was performed on one calendar day. Date is
// normalized to midnight UTC; the unique (habit_id, date) index guarantees at
// most one row per habit per day, so a second write for the same day must go
// through the service layer's upsert and update this row.
type Checkin struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	HabitID   string    `gorm:"size:36;not null;index:idx_checkins_habit_date,unique" json:"habit_id"`
	UserID    string    `gorm:"index;size:36;not null" json:"user_id"`
	Date      time.Time `gorm:"not null;index:idx_checkins_habit_date,unique" json:"date"`
	Completed bool      `json:"completed"`
	Notes     string    `gorm:"size:1000" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
