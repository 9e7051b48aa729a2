package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID              `json:"id" db:"id"`
	Name        string                 `json:"name" db:"name"`
	Email       string                 `json:"email" db:"email"`
	Preferences map[string]interface{} `json:"preferences,omitempty" db:"preferences"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
}

type UserCreateRequest struct {
	Name        string                 `json:"name" binding:"required,min=1,max=255"`
	Email       string                 `json:"email" binding:"required,email"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`
}

type UserListResponse struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}
