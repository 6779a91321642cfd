package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogModel "shop-backend/internal/domains/catalog/model"
	couponModel "shop-backend/internal/domains/coupon/model"
	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/order/service"
	"shop-backend/internal/shared/middleware"
	"shop-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// CreateOrder handles POST /orders
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid order request", err.Error())
		return
	}

	result, err := h.service.CreateOrder(c.Request.Context(), userID, req)
	if err != nil {
		WriteOrderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// GetOrder handles GET /orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		WriteOrderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}

// ListOrders handles GET /orders
func (h *Handler) ListOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	page, limit := paginationParams(c)

	orders, total, err := h.service.ListOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.InternalServerError(c, "failed to list orders")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, orders, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// CancelOrder handles POST /orders/:id/cancel
func (h *Handler) CancelOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	var req model.CancelOrderRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	order, err := h.service.CancelOrder(c.Request.Context(), userID, orderID, req.Reason)
	if err != nil {
		WriteOrderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}

// =====================================================
// ADMIN
// =====================================================

// ListAllOrders handles GET /admin/orders
func (h *Handler) ListAllOrders(c *gin.Context) {
	page, limit := paginationParams(c)

	var status *model.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s := model.OrderStatus(raw)
		if !s.IsValid() {
			response.BadRequest(c, "invalid status filter")
			return
		}
		status = &s
	}

	orders, total, err := h.service.ListAllOrders(c.Request.Context(), status, page, limit)
	if err != nil {
		response.InternalServerError(c, "failed to list orders")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, orders, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// GetOrderAdmin handles GET /admin/orders/:id
func (h *Handler) GetOrderAdmin(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	order, err := h.service.GetOrderAdmin(c.Request.Context(), orderID)
	if err != nil {
		WriteOrderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}

// GetStatusHistory handles GET /admin/orders/:id/history
func (h *Handler) GetStatusHistory(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	history, err := h.service.GetStatusHistory(c.Request.Context(), orderID)
	if err != nil {
		WriteOrderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, history)
}

// UpdateStatus handles PATCH /admin/orders/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	var changedBy *uuid.UUID
	if adminID, ok := middleware.GetUserID(c); ok {
		changedBy = &adminID
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), orderID, changedBy, req)
	if err != nil {
		WriteOrderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}

// UpdatePaymentStatus handles PATCH /admin/orders/:id/payment
func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	var req model.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.UpdatePaymentStatus(c.Request.Context(), orderID, req.PaymentStatus); err != nil {
		WriteOrderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

func paginationParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// WriteOrderError maps checkout and order lifecycle errors onto the
// response envelope. The cart checkout endpoint reuses it since both
// paths surface the same failures.
func WriteOrderError(c *gin.Context, err error) {
	var transitionErr *model.InvalidTransitionError
	var couponErr *couponModel.AppError

	switch {
	case errors.Is(err, model.ErrOrderNotFound):
		response.NotFound(c, "order not found")
	case errors.Is(err, model.ErrEmptyCart):
		response.UnprocessableEntity(c, "EMPTY_CART", "cannot create an order without items")
	case errors.Is(err, model.ErrInvalidPaymentMethod):
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_PAYMENT_METHOD", "unsupported payment method")
	case errors.Is(err, model.ErrInvalidPaymentStatus), errors.Is(err, model.ErrInvalidOrderStatus):
		response.BadRequest(c, err.Error())
	case errors.Is(err, model.ErrOrderCannotCancel):
		response.ErrorResponse(c, http.StatusConflict, "ORDER_CANNOT_CANCEL", err.Error())
	case errors.Is(err, model.ErrVersionMismatch):
		response.Conflict(c, "order was modified concurrently, please retry")
	case errors.As(err, &transitionErr):
		response.ErrorResponse(c, http.StatusConflict, "INVALID_STATUS_TRANSITION", transitionErr.Error())
	case errors.As(err, &couponErr):
		if couponErr.Details != nil {
			response.ErrorWithDetails(c, couponErr.HTTPStatus, string(couponErr.Code), couponErr.Message, couponErr.Details)
		} else {
			response.ErrorResponse(c, couponErr.HTTPStatus, string(couponErr.Code), couponErr.Message)
		}
	case catalogModel.IsInsufficientStockError(err):
		response.ErrorWithDetails(c, http.StatusConflict, "INSUFFICIENT_STOCK", "not enough stock", err.Error())
	case catalogModel.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case errors.Is(err, catalogModel.ErrProductInactive):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, "PRODUCT_INACTIVE", "product is not available")
	default:
		response.InternalServerError(c, "order operation failed")
	}
}
