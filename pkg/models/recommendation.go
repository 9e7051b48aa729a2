package models

import (
	"time"

	"github.com/google/uuid"
)

// Algorithm tags attached to every recommendation result.
const (
	AlgorithmHybrid     = "hybrid"
	AlgorithmPopularity = "popularity"
)

type Recommendation struct {
	ID                 uuid.UUID `json:"id,omitempty"`
	UserID             uuid.UUID `json:"user_id"`
	ProductID          uuid.UUID `json:"product_id"`
	Product            *Product  `json:"product,omitempty"`
	Score              float64   `json:"score"`
	CollaborativeScore float64   `json:"collaborative_score"`
	ContentScore       float64   `json:"content_score"`
	Algorithm          string    `json:"algorithm"`
	Explanation        *string   `json:"explanation,omitempty"`
	Rank               int       `json:"rank"`
	CreatedAt          time.Time `json:"created_at,omitempty"`
}

type RecommendationRequest struct {
	UserID             uuid.UUID `json:"user_id" binding:"required"`
	Limit              int       `json:"limit" binding:"omitempty,min=1,max=50"`
	IncludeExplanation bool      `json:"include_explanation"`
}

type RecommendationListResponse struct {
	UserID          uuid.UUID        `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations"`
	TotalCount      int              `json:"total_count"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// UserInsights summarizes a user's behavior profile for the explanation
// collaborator and the insights endpoint. Read-only derivation.
type UserInsights struct {
	UserID             uuid.UUID        `json:"user_id"`
	TotalInteractions  int              `json:"total_interactions"`
	FavoriteCategories []WeightedLabel  `json:"favorite_categories"`
	FavoriteBrands     []WeightedLabel  `json:"favorite_brands"`
	AvgPrice           float64          `json:"avg_price"`
	RecentPurchases    []RecentPurchase `json:"recent_purchases"`
}

type WeightedLabel struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

type RecentPurchase struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}
