package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrItemNotInCart    = errors.New("item does not belong to this cart")
	ErrInvalidQuantity  = errors.New("invalid quantity")
)

func NewCartItemNotFoundError(itemID uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrCartItemNotFound, itemID)
}
