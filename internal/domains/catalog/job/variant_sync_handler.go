package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"shop-backend/internal/domains/catalog/service"
	"shop-backend/pkg/logger"
)

// VariantSyncPayload identifies the variants whose cached stock must be
// refreshed after an order mutated them.
type VariantSyncPayload struct {
	VariantIDs []string `json:"variant_ids"`
	OrderID    string   `json:"order_id"`
}

// VariantSyncHandler refreshes cached variant stock after checkout. The
// database is the source of truth; this just shortens the window where
// browsing shows stale numbers.
type VariantSyncHandler struct {
	service service.ServiceInterface
}

func NewVariantSyncHandler(service service.ServiceInterface) *VariantSyncHandler {
	return &VariantSyncHandler{service: service}
}

func (h *VariantSyncHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload VariantSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// Corrupt payload, retrying cannot fix it
		return fmt.Errorf("unmarshal VariantSync payload: %w", err)
	}

	for _, idStr := range payload.VariantIDs {
		variantID, err := uuid.Parse(idStr)
		if err != nil {
			logger.Error("VariantSync: bad variant id in payload", err)
			continue
		}

		if err := h.service.RefreshVariantCache(ctx, variantID); err != nil {
			// Cache refresh failure is not fatal, the TTL covers us
			logger.Error("VariantSync: failed to refresh variant cache", err)
		}
	}

	logger.Info("VariantSync: cache refreshed", map[string]interface{}{
		"order_id": payload.OrderID,
		"variants": len(payload.VariantIDs),
	})

	return nil
}
