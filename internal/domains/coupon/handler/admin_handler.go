package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shop-backend/internal/domains/coupon/model"
	"shop-backend/internal/domains/coupon/service"
	"shop-backend/internal/shared/response"
)

// AdminHandler serves the coupon management endpoints. Routes are
// mounted behind the admin middleware.
type AdminHandler struct {
	service service.ServiceInterface
}

func NewAdminHandler(service service.ServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// CreateCoupon handles POST /admin/coupons
func (h *AdminHandler) CreateCoupon(c *gin.Context) {
	var req model.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid coupon", err.Error())
		return
	}

	coupon, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeCouponError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, coupon)
}

// GetCoupon handles GET /admin/coupons/:id
func (h *AdminHandler) GetCoupon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	coupon, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeCouponError(c, err)
		return
	}

	response.Success(c, http.StatusOK, coupon)
}

// ListCoupons handles GET /admin/coupons
func (h *AdminHandler) ListCoupons(c *gin.Context) {
	page, limit := paginationParams(c)

	coupons, total, err := h.service.List(c.Request.Context(), page, limit)
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

// UpdateCoupon handles PUT /admin/coupons/:id
func (h *AdminHandler) UpdateCoupon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	var req model.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	coupon, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeCouponError(c, err)
		return
	}

	response.Success(c, http.StatusOK, coupon)
}

// DeactivateCoupon handles POST /admin/coupons/:id/deactivate
func (h *AdminHandler) DeactivateCoupon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		writeCouponError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deactivated": true})
}

// DeleteCoupon handles DELETE /admin/coupons/:id
func (h *AdminHandler) DeleteCoupon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeCouponError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListCouponUsage handles GET /admin/coupons/:id/usage
func (h *AdminHandler) ListCouponUsage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	page, limit := paginationParams(c)

	usages, total, err := h.service.ListUsage(c.Request.Context(), id, page, limit)
	if err != nil {
		writeCouponError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, usages, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}
