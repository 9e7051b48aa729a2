package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/internal/services"
	"github.com/storely/shoprec/pkg/models"
)

type RecommendationHandler struct {
	services *services.Services
	logger   *logrus.Logger
}

func NewRecommendationHandler(svc *services.Services, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{services: svc, logger: logger}
}

// Generate runs the scoring pipeline for a user, optionally attaches
// explanation text, persists the batch, and returns it.
func (h *RecommendationHandler) Generate(c *gin.Context) {
	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	ctx := c.Request.Context()

	if _, err := h.services.Users.Get(ctx, req.UserID); err != nil {
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
		h.internalError(c)
		return
	}

	recommendations, err := h.services.Engine.Recommend(ctx, req.UserID, req.Limit, true)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate recommendations")
		h.internalError(c)
		return
	}

	if req.IncludeExplanation && len(recommendations) > 0 {
		insights, err := h.services.Engine.UserInsights(ctx, req.UserID)
		if err != nil {
			h.logger.WithError(err).Warn("Failed to build insights for explanations")
		} else {
			for i := range recommendations {
				text := h.services.Explanations.Explain(ctx, recommendations[i].Product, insights)
				if text != "" {
					recommendations[i].Explanation = &text
				}
			}
		}
	}

	if err := h.services.Recommendations.SaveBatch(ctx, recommendations); err != nil {
		h.logger.WithError(err).Error("Failed to persist recommendations")
		h.internalError(c)
		return
	}

	c.JSON(http.StatusOK, models.RecommendationListResponse{
		UserID:          req.UserID,
		Recommendations: recommendations,
		TotalCount:      len(recommendations),
		GeneratedAt:     time.Now().UTC(),
	})
}

// Get returns the most recently generated batch for a user.
func (h *RecommendationHandler) Get(c *gin.Context) {
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

	recommendations, err := h.services.Recommendations.LatestForUser(c.Request.Context(), userID)
	if errors.Is(err, services.ErrNoRecommendations) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "NO_RECOMMENDATIONS",
				"message": "No recommendations found for user. Generate recommendations first.",
			},
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load recommendations")
		h.internalError(c)
		return
	}

	c.JSON(http.StatusOK, models.RecommendationListResponse{
		UserID:          userID,
		Recommendations: recommendations,
		TotalCount:      len(recommendations),
		GeneratedAt:     recommendations[0].CreatedAt,
	})
}

// Insights exposes the derived behavior profile.
func (h *RecommendationHandler) Insights(c *gin.Context) {
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

	ctx := c.Request.Context()

	if _, err := h.services.Users.Get(ctx, userID); err != nil {
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
		h.internalError(c)
		return
	}

	insights, err := h.services.Engine.UserInsights(ctx, userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build user insights")
		h.internalError(c)
		return
	}

	c.JSON(http.StatusOK, insights)
}

func (h *RecommendationHandler) internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL_SERVER_ERROR",
			"message": "Internal server error",
		},
	})
}
