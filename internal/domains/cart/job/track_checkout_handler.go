package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"shop-backend/internal/domains/cart/model"
	"shop-backend/pkg/logger"
)

// TrackCheckoutHandler records checkout events for analytics. Runs on the
// worker so the checkout response never waits on it.
type TrackCheckoutHandler struct{}

func NewTrackCheckoutHandler() *TrackCheckoutHandler {
	return &TrackCheckoutHandler{}
}

func (h *TrackCheckoutHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload model.TrackCheckoutPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal TrackCheckout payload: %w", err)
	}

	logger.Info("checkout tracked", map[string]interface{}{
		"user_id":      payload.UserID,
		"order_id":     payload.OrderID,
		"order_number": payload.OrderNumber,
		"items_count":  payload.ItemsCount,
		"total":        payload.Total,
	})

	return nil
}
