package main

import (
	"time"

	"github.com/habitflow/habitflow/config"
	"github.com/habitflow/habitflow/models"
	"github.com/habitflow/habitflow/services"
	"github.com/habitflow/habitflow/utils"
)

// The binary runs a maintenance pass: every habit's cached streak counters
// are recomputed from check-in history and repaired when they drifted. The
// counters are derived data, so this is always safe to run. The request
// layer serving the API lives outside this module and links the services
// directly.
func main() {
	cfg := config.Load()

	logger, err := utils.InitLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.InitDatabase(cfg, &models.Habit{}, &models.Checkin{})
	if err != nil {
		logger.Fatalf("database init failed: %v", err)
	}

	rc := utils.NewRedis(cfg)
	cache := utils.NewCache(rc, logger, time.Duration(cfg.Redis.CacheTTLSec)*time.Second)

	checkins := services.NewCheckinService(db, cache, services.NewLogNotifier(logger), logger)

	logger.Info("rebuilding cached streaks from check-in history")
	checked, fixed, err := checkins.RebuildAll()
	if err != nil {
		logger.Fatalf("streak rebuild aborted: %v", err)
	}

	// Rebuilt habits have fresh analytics; drop every cached read.
	cache.InvalidateByPrefix("analytics:")

	logger.Infow("streak rebuild finished", "habits_checked", checked, "habits_repaired", fixed)
}
