package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID              `json:"id" db:"id"`
	Name        string                 `json:"name" db:"name"`
	Description string                 `json:"description" db:"description"`
	Category    string                 `json:"category" db:"category"`
	Price       float64                `json:"price" db:"price"`
	Brand       *string                `json:"brand,omitempty" db:"brand"`
	Attributes  map[string]interface{} `json:"attributes,omitempty" db:"attributes"`
	ImageURL    *string                `json:"image_url,omitempty" db:"image_url"`
	Stock       int                    `json:"stock" db:"stock"`
	Rating      float64                `json:"rating" db:"rating"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
}

type ProductCreateRequest struct {
	Name        string                 `json:"name" binding:"required,min=1,max=255"`
	Description string                 `json:"description" binding:"required,min=1"`
	Category    string                 `json:"category" binding:"required,min=1,max=100"`
	Price       float64                `json:"price" binding:"required,gt=0"`
	Brand       *string                `json:"brand,omitempty" binding:"omitempty,max=100"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	ImageURL    *string                `json:"image_url,omitempty" binding:"omitempty,max=500"`
	Stock       int                    `json:"stock" binding:"omitempty,min=0"`
	Rating      float64                `json:"rating" binding:"omitempty,min=0,max=5"`
}

type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

type CategoryListResponse struct {
	Categories []string `json:"categories"`
}
