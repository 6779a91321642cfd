package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is not active")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
)

func NewProductNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrProductNotFound, id)
}

func NewVariantNotFoundError(productID uuid.UUID, size, color string) error {
	return fmt.Errorf("%w: product_id=%s size=%s color=%s", ErrVariantNotFound, productID, size, color)
}

// NewInsufficientStockError carries what was asked and what is left, so the
// caller can tell the customer how many they can still buy.
func NewInsufficientStockError(variantID uuid.UUID, requested, available int) error {
	return fmt.Errorf("%w: variant_id=%s requested=%d available=%d",
		ErrInsufficientStock, variantID, requested, available)
}

func IsInsufficientStockError(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrVariantNotFound)
}
