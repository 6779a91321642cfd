package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shop-backend/internal/domains/cart/model"
	"shop-backend/internal/domains/cart/service"
	catalogModel "shop-backend/internal/domains/catalog/model"
	orderHandler "shop-backend/internal/domains/order/handler"
	orderService "shop-backend/internal/domains/order/service"
	"shop-backend/internal/shared/middleware"
	"shop-backend/internal/shared/response"
)

type Handler struct {
	service  service.ServiceInterface
	checkout orderService.ServiceInterface
}

func NewHandler(service service.ServiceInterface, checkout orderService.ServiceInterface) *Handler {
	return &Handler{
		service:  service,
		checkout: checkout,
	}
}

// GetCart handles GET /cart
func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	cart, err := h.service.GetCart(c.Request.Context(), userID)
	if err != nil {
		response.InternalServerError(c, "failed to get cart")
		return
	}

	response.Success(c, http.StatusOK, cart)
}

// AddItem handles POST /cart/items
func (h *Handler) AddItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid add item request", err.Error())
		return
	}

	cart, err := h.service.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		h.writeCartError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cart)
}

// UpdateItemQuantity handles PUT /cart/items/:item_id
func (h *Handler) UpdateItemQuantity(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}

	var req model.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid quantity", err.Error())
		return
	}

	cart, err := h.service.UpdateItemQuantity(c.Request.Context(), userID, itemID, req.Quantity)
	if err != nil {
		h.writeCartError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cart)
}

// RemoveItem handles DELETE /cart/items/:item_id
func (h *Handler) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		response.BadRequest(c, "invalid item id")
		return
	}

	cart, err := h.service.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		h.writeCartError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cart)
}

// ClearCart handles DELETE /cart
func (h *Handler) ClearCart(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	if err := h.service.ClearCart(c.Request.Context(), userID); err != nil {
		response.InternalServerError(c, "failed to clear cart")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}

// Checkout handles POST /cart/checkout. The heavy lifting happens in the
// order service; this endpoint just binds the request and hands it over.
func (h *Handler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid checkout request", err.Error())
		return
	}

	result, err := h.checkout.CheckoutFromCart(c.Request.Context(), userID, req)
	if err != nil {
		orderHandler.WriteOrderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

func (h *Handler) writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidQuantity):
		response.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_FAILED", "quantity must not be negative")
	case errors.Is(err, model.ErrCartNotFound):
		response.NotFound(c, "cart not found")
	case errors.Is(err, model.ErrCartItemNotFound), errors.Is(err, model.ErrItemNotInCart):
		response.NotFound(c, "cart item not found")
	case catalogModel.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case errors.Is(err, catalogModel.ErrProductInactive):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, "PRODUCT_INACTIVE", "product is not available")
	case catalogModel.IsInsufficientStockError(err):
		response.ErrorWithDetails(c, http.StatusConflict, "INSUFFICIENT_STOCK", "not enough stock", err.Error())
	default:
		response.InternalServerError(c, "cart operation failed")
	}
}
