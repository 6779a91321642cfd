package main

import (
	"os"

	"shop-backend/internal/infrastructure/queue"
	"shop-backend/pkg/container"
	"shop-backend/pkg/logger"
)

type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(c *container.Container) *asynqScheduler {
	scheduler := queue.NewScheduler(redisOpt(c))

	if err := scheduler.RegisterMaintenanceJobs(); err != nil {
		logger.Error("failed to register scheduled jobs", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("scheduler starting", map[string]interface{}{})
		if err := scheduler.Start(); err != nil {
			logger.Error("scheduler failed", err)
			os.Exit(1)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	s.Scheduler.Shutdown()
}
