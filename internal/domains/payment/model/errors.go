package model

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrBadSignature       = errors.New("callback signature verification failed")
	ErrOrderAlreadyPaid   = errors.New("order is already paid")
	ErrRetryLimitExceeded = errors.New("payment retry limit exceeded")
	ErrUnsupportedMethod  = errors.New("unsupported payment method")
	ErrMethodMismatch     = errors.New("payment method does not match the order")
	ErrAmountMismatch     = errors.New("amount does not match the order total")
	ErrNotRefundable      = errors.New("only completed payments can be refunded")
	ErrRefundUnsupported  = errors.New("payment method does not support refunds")
)

// GatewayError is a failure reported by (or while talking to) the
// provider. Code carries the provider's own code when one was given.
type GatewayError struct {
	Gateway string
	Code    string
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s gateway error [%s]: %s", e.Gateway, e.Code, e.Message)
	}
	return fmt.Sprintf("%s gateway error: %s", e.Gateway, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func NewGatewayError(gateway, code, message string, err error) *GatewayError {
	return &GatewayError{Gateway: gateway, Code: code, Message: message, Err: err}
}

func IsGatewayError(err error) bool {
	var e *GatewayError
	return errors.As(err, &e)
}
