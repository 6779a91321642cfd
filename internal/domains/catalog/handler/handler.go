package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shop-backend/internal/domains/catalog/model"
	"shop-backend/internal/domains/catalog/service"
	"shop-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListProducts handles GET /products
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	products, total, err := h.service.ListProducts(c.Request.Context(), page, limit)
	if err != nil {
		response.InternalServerError(c, "failed to list products")
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, products, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// GetProduct handles GET /products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), productID)
	if err != nil {
		if model.IsNotFoundError(err) {
			response.NotFound(c, "product not found")
			return
		}
		response.InternalServerError(c, "failed to get product")
		return
	}

	response.Success(c, http.StatusOK, product)
}

// GetVariantStock handles GET /products/:id/stock?size=&color=
func (h *Handler) GetVariantStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	size := c.Query("size")
	color := c.Query("color")
	if size == "" || color == "" {
		response.BadRequest(c, "size and color are required")
		return
	}

	variant, err := h.service.GetVariant(c.Request.Context(), productID, size, color)
	if err != nil {
		if model.IsNotFoundError(err) {
			response.NotFound(c, "variant not found")
			return
		}
		response.InternalServerError(c, "failed to get variant")
		return
	}

	stock, err := h.service.GetVariantStock(c.Request.Context(), variant.ID)
	if err != nil {
		response.InternalServerError(c, "failed to get stock")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"variant_id": variant.ID,
		"stock":      stock,
	})
}
