package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/domains/coupon/model"
	"shop-backend/internal/domains/coupon/service"
	"shop-backend/internal/shared/middleware"
	"shop-backend/internal/shared/response"
)

// PublicHandler serves the customer-facing coupon endpoints.
type PublicHandler struct {
	service service.ServiceInterface
}

func NewPublicHandler(service service.ServiceInterface) *PublicHandler {
	return &PublicHandler{service: service}
}

// ValidateCoupon handles POST /coupons/validate. It answers with the
// discount the code would yield, without consuming a redemption.
func (h *PublicHandler) ValidateCoupon(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid validate request", err.Error())
		return
	}

	result, err := h.service.Validate(c.Request.Context(), req.Code, userID, req.OrderTotal, req.ProductIDs)
	if err != nil {
		writeCouponError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ListActiveCoupons handles GET /coupons.
func (h *PublicHandler) ListActiveCoupons(c *gin.Context) {
	page, limit := paginationParams(c)

	coupons, total, err := h.service.ListActive(c.Request.Context(), page, limit)
	if err != nil {
		response.InternalServerError(c, "failed to list coupons")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, coupons, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
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

func writeCouponError(c *gin.Context, err error) {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		if appErr.Details != nil {
			response.ErrorWithDetails(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message, appErr.Details)
		} else {
			response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
		}
		return
	}

	response.InternalServerError(c, "coupon operation failed")
}
