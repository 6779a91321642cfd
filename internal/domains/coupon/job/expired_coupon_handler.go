package job

import (
	"context"

	"github.com/hibiken/asynq"

	"shop-backend/internal/domains/coupon/service"
	"shop-backend/pkg/logger"
)

// ExpiredCouponHandler deactivates coupons past their expiry. Scheduled
// as a periodic task; each run sweeps at most one batch.
type ExpiredCouponHandler struct {
	service   service.ServiceInterface
	batchSize int
}

func NewExpiredCouponHandler(service service.ServiceInterface, batchSize int) *ExpiredCouponHandler {
	return &ExpiredCouponHandler{
		service:   service,
		batchSize: batchSize,
	}
}

func (h *ExpiredCouponHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	if _, err := h.service.DeactivateExpiredCoupons(ctx, h.batchSize); err != nil {
		logger.Error("deactivate expired coupons failed", err)
		return err
	}

	return nil
}
