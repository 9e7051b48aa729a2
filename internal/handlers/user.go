package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/internal/services"
	"github.com/storely/shoprec/pkg/models"
)

type UserHandler struct {
	users  *services.UserService
	logger *logrus.Logger
}

func NewUserHandler(users *services.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req models.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	user, err := h.users.Create(c.Request.Context(), &req)
	if errors.Is(err, services.ErrDuplicateEmail) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "EMAIL_ALREADY_REGISTERED",
				"message": "Email already registered",
			},
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "USER_CREATE_FAILED",
				"message": "Failed to create user",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) List(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 100)
	offset := parseIntQuery(c, "skip", 0)

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "USER_LIST_FAILED",
				"message": "Failed to list users",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.UserListResponse{Users: users, Total: len(users)})
}

func (h *UserHandler) Get(c *gin.Context) {
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

	user, err := h.users.Get(c.Request.Context(), userID)
	if errors.Is(err, services.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get user")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "USER_GET_FAILED",
				"message": "Failed to get user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
