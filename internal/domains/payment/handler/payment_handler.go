package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	orderModel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/model"
	"shop-backend/internal/domains/payment/service"
	"shop-backend/internal/shared/middleware"
	"shop-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// =====================================================
// CREATE ATTEMPTS
// =====================================================

// CreateVNPayPayment handles POST /payments/vnpay/:order_id
func (h *Handler) CreateVNPayPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	var req model.CreateVNPayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.service.CreateVNPayPayment(c.Request.Context(), userID, orderID, req, c.ClientIP())
	if err != nil {
		writePaymentError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"payment_url": result.PayURL})
}

// CreateMomoPayment handles POST /payments/momo/:order_id
func (h *Handler) CreateMomoPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	var req model.CreateMomoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.service.CreateMomoPayment(c.Request.Context(), userID, orderID, req)
	if err != nil {
		writePaymentError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// ListOrderPayments handles GET /orders/:id/payments
func (h *Handler) ListOrderPayments(c *gin.Context) {
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

	payments, err := h.service.ListOrderPayments(c.Request.Context(), userID, orderID)
	if err != nil {
		writePaymentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, payments)
}

// =====================================================
// VNPAY CALLBACKS
// =====================================================

// VNPayReturn handles GET /payments/vnpay/return, the browser redirect
// after the customer leaves the gateway's pages.
func (h *Handler) VNPayReturn(c *gin.Context) {
	outcome, err := h.service.HandleCallback(c.Request.Context(), model.MethodVNPay, queryParams(c), "return")
	if err != nil {
		writePaymentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, outcome)
}

// VNPayIPN handles GET /webhooks/vnpay, the server-to-server
// notification. The gateway retries until it gets a definitive
// RspCode, so every branch answers 200 with one.
func (h *Handler) VNPayIPN(c *gin.Context) {
	outcome, err := h.service.HandleCallback(c.Request.Context(), model.MethodVNPay, queryParams(c), "ipn")
	if err != nil {
		switch {
		case errors.Is(err, model.ErrBadSignature):
			c.JSON(http.StatusOK, gin.H{"RspCode": "97", "Message": "Invalid Signature"})
		case errors.Is(err, model.ErrPaymentNotFound):
			c.JSON(http.StatusOK, gin.H{"RspCode": "01", "Message": "Order Not Found"})
		case errors.Is(err, model.ErrAmountMismatch):
			c.JSON(http.StatusOK, gin.H{"RspCode": "04", "Message": "Invalid Amount"})
		default:
			c.JSON(http.StatusOK, gin.H{"RspCode": "99", "Message": "Unknown Error"})
		}
		return
	}

	if outcome.AlreadyDone {
		c.JSON(http.StatusOK, gin.H{"RspCode": "02", "Message": "Order Already Confirmed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"RspCode": "00", "Message": "Confirm Success"})
}

// =====================================================
// MOMO CALLBACKS
// =====================================================

// MomoReturn handles GET /payments/momo/return
func (h *Handler) MomoReturn(c *gin.Context) {
	outcome, err := h.service.HandleCallback(c.Request.Context(), model.MethodMomo, queryParams(c), "return")
	if err != nil {
		writePaymentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, outcome)
}

// MomoIPN handles POST /webhooks/momo. The wallet expects 204 once the
// notification is accepted; anything else makes it retry.
func (h *Handler) MomoIPN(c *gin.Context) {
	params, err := jsonBodyParams(c)
	if err != nil {
		response.BadRequest(c, "invalid notification body")
		return
	}

	if _, err := h.service.HandleCallback(c.Request.Context(), model.MethodMomo, params, "ipn"); err != nil {
		if errors.Is(err, model.ErrBadSignature) {
			response.BadRequest(c, "invalid signature")
			return
		}
		// Accept anyway: the notification is logged and a retry of a
		// transient failure would arrive identically.
		c.Status(http.StatusNoContent)
		return
	}

	c.Status(http.StatusNoContent)
}

// =====================================================
// ADMIN
// =====================================================

// RefundPayment handles POST /admin/payments/:id/refund
func (h *Handler) RefundPayment(c *gin.Context) {
	adminID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment id")
		return
	}

	var req model.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	payment, err := h.service.ProcessRefund(c.Request.Context(), paymentID, adminID, req)
	if err != nil {
		writePaymentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, payment)
}

// GetPayment handles GET /admin/payments/:id
func (h *Handler) GetPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid payment id")
		return
	}

	payment, err := h.service.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		writePaymentError(c, err)
		return
	}

	response.Success(c, http.StatusOK, payment)
}

// =====================================================
// HELPERS
// =====================================================

// queryParams flattens the query string for signature verification.
// Gateways never send repeated keys; first value wins if one appears.
func queryParams(c *gin.Context) map[string]string {
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

// jsonBodyParams flattens a JSON notification body into strings.
// UseNumber keeps numeric fields exactly as sent, which matters for
// signature verification.
func jsonBodyParams(c *gin.Context) (map[string]string, error) {
	var body map[string]interface{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&body); err != nil {
		return nil, err
	}

	params := make(map[string]string, len(body))
	for key, value := range body {
		switch v := value.(type) {
		case string:
			params[key] = v
		case json.Number:
			params[key] = v.String()
		case bool:
			if v {
				params[key] = "true"
			} else {
				params[key] = "false"
			}
		case nil:
			params[key] = ""
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			params[key] = string(raw)
		}
	}
	return params, nil
}

func writePaymentError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	var gatewayErr *model.GatewayError

	switch {
	case errors.As(err, &validationErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid payment request", validationErrs)
	case errors.Is(err, model.ErrPaymentNotFound):
		response.NotFound(c, "payment not found")
	case errors.Is(err, orderModel.ErrOrderNotFound):
		response.NotFound(c, "order not found")
	case errors.Is(err, model.ErrOrderAlreadyPaid):
		response.ErrorResponse(c, http.StatusConflict, "ORDER_ALREADY_PAID", "order is already paid")
	case errors.Is(err, model.ErrMethodMismatch):
		response.UnprocessableEntity(c, "PAYMENT_METHOD_MISMATCH", "payment method does not match the order")
	case errors.Is(err, model.ErrAmountMismatch):
		response.UnprocessableEntity(c, "AMOUNT_MISMATCH", "amount does not match the order total")
	case errors.Is(err, model.ErrRetryLimitExceeded):
		response.UnprocessableEntity(c, "PAYMENT_RETRY_LIMIT", "payment retry limit reached for this order")
	case errors.Is(err, model.ErrUnsupportedMethod):
		response.ErrorResponse(c, http.StatusBadRequest, "UNSUPPORTED_METHOD", "unsupported payment method")
	case errors.Is(err, model.ErrBadSignature):
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_SIGNATURE", "callback signature verification failed")
	case errors.Is(err, model.ErrNotRefundable):
		response.ErrorResponse(c, http.StatusConflict, "NOT_REFUNDABLE", "only completed payments can be refunded")
	case errors.Is(err, model.ErrRefundUnsupported):
		response.UnprocessableEntity(c, "REFUND_UNSUPPORTED", "payment method does not support refunds")
	case errors.As(err, &gatewayErr):
		response.ErrorResponse(c, http.StatusBadGateway, "GATEWAY_ERROR", gatewayErr.Error())
	default:
		response.InternalServerError(c, "payment operation failed")
	}
}
