package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/habitflow/habitflow/models"
)

// newTestDB opens an isolated in-memory SQLite database and migrates the
// schema. Each test gets its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Habit{}, &models.Checkin{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fixedClock returns a clock function pinned to one instant.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// recordingNotifier captures milestone calls for assertions.
type recordingNotifier struct {
	milestones []int
}

func (n *recordingNotifier) StreakMilestone(_ string, _ *models.Habit, days int) NotifyResult {
	n.milestones = append(n.milestones, days)
	return NotifyResult{Sent: true}
}
