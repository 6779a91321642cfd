package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"shop-backend/internal/shared"
	"shop-backend/pkg/logger"
)

// Scheduler registers the periodic maintenance jobs on asynq's cron
// scheduler. The worker consumes them like any other task.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisOpt asynq.RedisClientOpt) *Scheduler {
	return &Scheduler{
		scheduler: asynq.NewScheduler(
			redisOpt,
			&asynq.SchedulerOpts{
				Location: time.UTC,
				LogLevel: asynq.InfoLevel,
			},
		),
	}
}

func (s *Scheduler) RegisterMaintenanceJobs() error {
	if err := s.registerDeactivateExpiredCoupons(); err != nil {
		return err
	}
	return s.registerCancelExpiredPayments()
}

// Coupons expire on a calendar boundary; an hourly sweep keeps the
// active list honest without racing checkout (validation re-checks
// expiry anyway).
func (s *Scheduler) registerDeactivateExpiredCoupons() error {
	task := asynq.NewTask(shared.TypeDeactivateExpiredCoupons, nil)

	_, err := s.scheduler.Register(
		"0 * * * *",
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("failed to register expired-coupon job", err)
		return err
	}

	logger.Info("registered expired-coupon deactivation: hourly", map[string]interface{}{})
	return nil
}

// Abandoned gateway attempts sit in pending until swept. Every five
// minutes keeps the retry budget from filling with dead attempts.
func (s *Scheduler) registerCancelExpiredPayments() error {
	task := asynq.NewTask(shared.TypeCancelExpiredPayments, nil)

	_, err := s.scheduler.Register(
		"*/5 * * * *",
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("failed to register expired-payment job", err)
		return err
	}

	logger.Info("registered expired-payment cancellation: every 5 minutes", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
