package models

import (
	"time"

	"github.com/google/uuid"
)

// Interaction kinds recognized by the scoring engine. Anything else is
// rejected at the API boundary.
const (
	InteractionView     = "view"
	InteractionClick    = "click"
	InteractionCart     = "cart"
	InteractionPurchase = "purchase"
	InteractionRating   = "rating"
)

type Interaction struct {
	ID         uuid.UUID              `json:"id" db:"id"`
	UserID     uuid.UUID              `json:"user_id" db:"user_id"`
	ProductID  uuid.UUID              `json:"product_id" db:"product_id"`
	Kind       string                 `json:"kind" db:"kind"`
	Duration   *int                   `json:"duration,omitempty" db:"duration"`
	Rating     *float64               `json:"rating,omitempty" db:"rating"`
	Context    map[string]interface{} `json:"context,omitempty" db:"context"`
	OccurredAt time.Time              `json:"occurred_at" db:"occurred_at"`
}

type InteractionCreateRequest struct {
	UserID    uuid.UUID              `json:"user_id" binding:"required"`
	ProductID uuid.UUID              `json:"product_id" binding:"required"`
	Kind      string                 `json:"kind" binding:"required,interaction_kind"`
	Duration  *int                   `json:"duration,omitempty" binding:"omitempty,min=0"`
	Rating    *float64               `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

type InteractionListResponse struct {
	Interactions []Interaction `json:"interactions"`
	Total        int           `json:"total"`
}

// ProductPopularity is the cold-start aggregate: interaction volume for a
// product within the recency window, with the catalog rating carried along
// for tie-breaking.
type ProductPopularity struct {
	ProductID        uuid.UUID `json:"product_id"`
	InteractionCount int       `json:"interaction_count"`
	Rating           float64   `json:"rating"`
}
