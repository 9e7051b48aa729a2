package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/internal/services"
	"github.com/storely/shoprec/pkg/models"
)

type ProductHandler struct {
	catalog *services.CatalogService
	logger  *logrus.Logger
}

func NewProductHandler(catalog *services.CatalogService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req models.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	product, err := h.catalog.Create(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create product")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "PRODUCT_CREATE_FAILED",
				"message": "Failed to create product",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) List(c *gin.Context) {
	category := c.Query("category")
	limit := parseIntQuery(c, "limit", 100)
	offset := parseIntQuery(c, "skip", 0)

	products, err := h.catalog.List(c.Request.Context(), category, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "PRODUCT_LIST_FAILED",
				"message": "Failed to list products",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Products: products,
		Total:    len(products),
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_PRODUCT_ID",
				"message": "Invalid product ID format",
			},
		})
		return
	}

	product, err := h.catalog.Get(c.Request.Context(), productID)
	if errors.Is(err, services.ErrProductNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get product")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "PRODUCT_GET_FAILED",
				"message": "Failed to get product",
			},
		})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "CATEGORY_LIST_FAILED",
				"message": "Failed to list categories",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{Categories: categories})
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
