package services

import (
	"go.uber.org/zap"

	"github.com/habitflow/habitflow/models"
)

// NotifyResult reports the outcome of a best-effort notification. The
// primary record has already committed by the time a notifier runs, so a
// failure here is recorded, never propagated.
type NotifyResult struct {
	Sent bool
	Err  error
}

// Notifier delivers user-facing notifications. Delivery transport (email,
// push) lives outside this module; implementations adapt to it.
type Notifier interface {
	StreakMilestone(userID string, habit *models.Habit, days int) NotifyResult
}

// LogNotifier records milestone events in the log. It is the default wiring
// when no delivery pipeline is attached.
type LogNotifier struct {
	log *zap.SugaredLogger
}

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier(log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

// StreakMilestone logs the milestone and reports success.
func (n *LogNotifier) StreakMilestone(userID string, habit *models.Habit, days int) NotifyResult {
	n.log.Infow("streak milestone reached",
		"user_id", userID,
		"habit_id", habit.ID,
		"habit", habit.Title,
		"days", days,
	)
	return NotifyResult{Sent: true}
}
