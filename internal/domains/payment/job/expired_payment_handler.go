package job

import (
	"context"

	"github.com/hibiken/asynq"

	"shop-backend/internal/domains/payment/service"
	"shop-backend/pkg/logger"
)

// ExpiredPaymentHandler cancels payment attempts the customer walked
// away from. Scheduled as a periodic task.
type ExpiredPaymentHandler struct {
	service service.ServiceInterface
}

func NewExpiredPaymentHandler(service service.ServiceInterface) *ExpiredPaymentHandler {
	return &ExpiredPaymentHandler{service: service}
}

func (h *ExpiredPaymentHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	if err := h.service.CancelExpiredPayments(ctx); err != nil {
		logger.Error("cancel expired payments failed", err)
		return err
	}

	return nil
}
