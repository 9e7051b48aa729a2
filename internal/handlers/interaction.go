package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/internal/messaging"
	"github.com/storely/shoprec/internal/services"
	"github.com/storely/shoprec/pkg/models"
)

type InteractionHandler struct {
	interactions *services.InteractionService
	users        *services.UserService
	catalog      *services.CatalogService
	publisher    *messaging.EventPublisher
	logger       *logrus.Logger
}

func NewInteractionHandler(
	interactions *services.InteractionService,
	users *services.UserService,
	catalog *services.CatalogService,
	publisher *messaging.EventPublisher,
	logger *logrus.Logger,
) *InteractionHandler {
	return &InteractionHandler{
		interactions: interactions,
		users:        users,
		catalog:      catalog,
		publisher:    publisher,
		logger:       logger,
	}
}

// Record verifies both referenced entities exist before persisting the
// event, then publishes it to the event stream without blocking the
// response on broker availability.
func (h *InteractionHandler) Record(c *gin.Context) {
	var req models.InteractionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	if _, err := h.users.Get(c.Request.Context(), req.UserID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User not found",
				},
			})
			return
		}
		h.logger.WithError(err).Error("Failed to verify user")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERACTION_RECORD_FAILED",
				"message": "Failed to record interaction",
			},
		})
		return
	}

	if _, err := h.catalog.Get(c.Request.Context(), req.ProductID); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "PRODUCT_NOT_FOUND",
					"message": "Product not found",
				},
			})
			return
		}
		h.logger.WithError(err).Error("Failed to verify product")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERACTION_RECORD_FAILED",
				"message": "Failed to record interaction",
			},
		})
		return
	}

	interaction, err := h.interactions.Record(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to record interaction")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERACTION_RECORD_FAILED",
				"message": "Failed to record interaction",
			},
		})
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishInteraction(c.Request.Context(), interaction); err != nil {
			h.logger.WithError(err).Warn("Failed to publish interaction event")
		}
	}

	c.JSON(http.StatusCreated, interaction)
}

func (h *InteractionHandler) ListByProduct(c *gin.Context) {
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

	limit := parseIntQuery(c, "limit", 100)

	interactions, err := h.interactions.ListByProduct(c.Request.Context(), productID, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list interactions")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERACTION_LIST_FAILED",
				"message": "Failed to list interactions",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.InteractionListResponse{
		Interactions: interactions,
		Total:        len(interactions),
	})
}

func (h *InteractionHandler) ListByUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user ID format",
			},
		})
		return
	}

	limit := parseIntQuery(c, "limit", 100)

	interactions, err := h.interactions.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list interactions")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERACTION_LIST_FAILED",
				"message": "Failed to list interactions",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.InteractionListResponse{
		Interactions: interactions,
		Total:        len(interactions),
	})
}
