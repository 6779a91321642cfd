package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"shop-backend/internal/domains/order/model"
	"shop-backend/pkg/logger"
)

// ConfirmationHandler notifies the customer after checkout. Delivery
// currently means a structured log entry; the notification channel
// plugs in here when one exists.
type ConfirmationHandler struct{}

func NewConfirmationHandler() *ConfirmationHandler {
	return &ConfirmationHandler{}
}

func (h *ConfirmationHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload model.OrderConfirmationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal OrderConfirmation payload: %w", err)
	}

	logger.Info("order confirmation sent", map[string]interface{}{
		"order_id":     payload.OrderID,
		"order_number": payload.OrderNumber,
		"user_id":      payload.UserID,
		"total":        payload.Total,
	})

	return nil
}
