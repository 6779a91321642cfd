package service

import (
	"context"

	"github.com/google/uuid"

	"shop-backend/internal/domains/cart/model"
)

type ServiceInterface interface {
	// GetCart returns the user's cart, creating an empty one when missing.
	GetCart(ctx context.Context, userID uuid.UUID) (*model.CartWithItems, error)

	AddItem(ctx context.Context, userID uuid.UUID, req model.AddItemRequest) (*model.CartWithItems, error)

	// UpdateItemQuantity sets a line's quantity; zero removes the line.
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*model.CartWithItems, error)

	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*model.CartWithItems, error)

	ClearCart(ctx context.Context, userID uuid.UUID) error
}
