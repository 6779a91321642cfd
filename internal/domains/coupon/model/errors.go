package model

import (
	"errors"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeCouponNotFound      ErrorCode = "COUPON_NOT_FOUND"
	ErrCodeCouponNotStarted    ErrorCode = "COUPON_NOT_STARTED"
	ErrCodeCouponExpired       ErrorCode = "COUPON_EXPIRED"
	ErrCodeCouponUsageLimit    ErrorCode = "COUPON_USAGE_LIMIT"
	ErrCodeCouponUserLimit     ErrorCode = "COUPON_USER_LIMIT"
	ErrCodeCouponMinOrder      ErrorCode = "COUPON_MIN_ORDER"
	ErrCodeCouponNotApplicable ErrorCode = "COUPON_NOT_APPLICABLE"

	ErrCodeCouponDuplicateCode ErrorCode = "COUPON_DUPLICATE_CODE"
	ErrCodeCouponCannotDelete  ErrorCode = "COUPON_CANNOT_DELETE"
)

// AppError carries a machine-readable code plus the HTTP status the
// handler should answer with. Handlers unwrap it with errors.As.
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrCouponNotFound = &AppError{
		Code:       ErrCodeCouponNotFound,
		Message:    "coupon code does not exist or is no longer active",
		HTTPStatus: http.StatusNotFound,
	}

	ErrCouponNotStarted = &AppError{
		Code:       ErrCodeCouponNotStarted,
		Message:    "coupon is not valid yet",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrCouponExpired = &AppError{
		Code:       ErrCodeCouponExpired,
		Message:    "coupon has expired",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrCouponUsageLimit = &AppError{
		Code:       ErrCodeCouponUsageLimit,
		Message:    "coupon usage limit has been reached",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrCouponUserLimit = &AppError{
		Code:       ErrCodeCouponUserLimit,
		Message:    "you have already used this coupon the maximum number of times",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrCouponNotApplicable = &AppError{
		Code:       ErrCodeCouponNotApplicable,
		Message:    "coupon does not apply to the items in this order",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrCouponDuplicateCode = &AppError{
		Code:       ErrCodeCouponDuplicateCode,
		Message:    "a coupon with this code already exists",
		HTTPStatus: http.StatusConflict,
	}

	ErrCouponCannotDelete = &AppError{
		Code:       ErrCodeCouponCannotDelete,
		Message:    "coupon has been used and can only be deactivated",
		HTTPStatus: http.StatusBadRequest,
	}
)

// NewMinOrderError reports the threshold so clients can show it.
func NewMinOrderError(minOrderValue string) *AppError {
	return &AppError{
		Code:       ErrCodeCouponMinOrder,
		Message:    "order total is below the coupon minimum",
		Details:    map[string]interface{}{"min_order_value": minOrderValue},
		HTTPStatus: http.StatusBadRequest,
	}
}

var ErrInvalidDiscountType = errors.New("invalid discount type")
