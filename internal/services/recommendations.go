package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/pkg/models"
)

// RecommendationStore persists generated recommendation batches and serves
// the most recent one back.
type RecommendationStore struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewRecommendationStore(db DatabaseQuerier, logger *logrus.Logger) *RecommendationStore {
	return &RecommendationStore{db: db, logger: logger}
}

// SaveBatch stores a generated list under a single timestamp so LatestForUser
// can retrieve the whole batch atomically. Mutates the passed slice with the
// assigned ids and timestamps.
func (s *RecommendationStore) SaveBatch(ctx context.Context, recommendations []models.Recommendation) error {
	if len(recommendations) == 0 {
		return nil
	}

	generatedAt := time.Now().UTC()
	query := `
		INSERT INTO recommendations
			(id, user_id, product_id, score, collaborative_score, content_score, algorithm, explanation, rank, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for i := range recommendations {
		rec := &recommendations[i]
		rec.ID = uuid.New()
		rec.CreatedAt = generatedAt

		_, err := s.db.Exec(ctx, query,
			rec.ID, rec.UserID, rec.ProductID, rec.Score, rec.CollaborativeScore,
			rec.ContentScore, rec.Algorithm, rec.Explanation, rec.Rank, rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert recommendation: %w", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": recommendations[0].UserID,
		"count":   len(recommendations),
	}).Info("Recommendation batch saved")

	return nil
}

// LatestForUser returns the most recently generated batch with products
// attached, ordered by rank. ErrNoRecommendations when nothing was ever
// generated for the user.
func (s *RecommendationStore) LatestForUser(ctx context.Context, userID uuid.UUID) ([]models.Recommendation, error) {
	query := `
		SELECT r.id, r.user_id, r.product_id, r.score, r.collaborative_score, r.content_score,
		       r.algorithm, r.explanation, r.rank, r.created_at,
		       p.id, p.name, p.description, p.category, p.price, p.brand, p.attributes,
		       p.image_url, p.stock, p.rating, p.created_at
		FROM recommendations r
		JOIN products p ON p.id = r.product_id
		WHERE r.user_id = $1
		  AND r.created_at = (SELECT MAX(created_at) FROM recommendations WHERE user_id = $1)
		ORDER BY r.rank
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}
	defer rows.Close()

	recommendations := []models.Recommendation{}
	for rows.Next() {
		var rec models.Recommendation
		var p models.Product
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.ProductID, &rec.Score, &rec.CollaborativeScore,
			&rec.ContentScore, &rec.Algorithm, &rec.Explanation, &rec.Rank, &rec.CreatedAt,
			&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Brand, &p.Attributes,
			&p.ImageURL, &p.Stock, &p.Rating, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		rec.Product = &p
		recommendations = append(recommendations, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(recommendations) == 0 {
		return nil, ErrNoRecommendations
	}

	return recommendations, nil
}
