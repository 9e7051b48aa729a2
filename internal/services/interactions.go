package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/pkg/models"
)

// InteractionService records interaction events and serves the time-bounded
// reads the scoring engine depends on.
type InteractionService struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewInteractionService(db DatabaseQuerier, logger *logrus.Logger) *InteractionService {
	return &InteractionService{db: db, logger: logger}
}

const interactionColumns = `id, user_id, product_id, kind, duration, rating, context, occurred_at`

// Record persists one immutable interaction event.
func (s *InteractionService) Record(ctx context.Context, req *models.InteractionCreateRequest) (*models.Interaction, error) {
	interaction := &models.Interaction{
		ID:         uuid.New(),
		UserID:     req.UserID,
		ProductID:  req.ProductID,
		Kind:       req.Kind,
		Duration:   req.Duration,
		Rating:     req.Rating,
		Context:    req.Context,
		OccurredAt: time.Now().UTC(),
	}
	if interaction.Context == nil {
		interaction.Context = map[string]interface{}{}
	}

	query := `
		INSERT INTO interactions (id, user_id, product_id, kind, duration, rating, context, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(ctx, query,
		interaction.ID, interaction.UserID, interaction.ProductID, interaction.Kind,
		interaction.Duration, interaction.Rating, interaction.Context, interaction.OccurredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert interaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    interaction.UserID,
		"product_id": interaction.ProductID,
		"kind":       interaction.Kind,
	}).Debug("Interaction recorded")

	return interaction, nil
}

// ListForUserSince returns the user's interactions inside the lookback
// window, newest first.
func (s *InteractionService) ListForUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.Interaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM interactions
		WHERE user_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at DESC
	`, interactionColumns)

	rows, err := s.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list user interactions: %w", err)
	}
	defer rows.Close()

	return scanInteractions(rows)
}

// ListSince returns every interaction in the window across all users, for
// building the user-product matrix.
func (s *InteractionService) ListSince(ctx context.Context, since time.Time) ([]models.Interaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM interactions
		WHERE occurred_at >= $1
	`, interactionColumns)

	rows, err := s.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	return scanInteractions(rows)
}

// ListByUser serves the API listing, newest first with a hard limit.
func (s *InteractionService) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT %s FROM interactions
		WHERE user_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`, interactionColumns)

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list user interactions: %w", err)
	}
	defer rows.Close()

	return scanInteractions(rows)
}

// ListByProduct serves the product-scoped API listing, newest first with a
// hard limit.
func (s *InteractionService) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT %s FROM interactions
		WHERE product_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`, interactionColumns)

	rows, err := s.db.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list product interactions: %w", err)
	}
	defer rows.Close()

	return scanInteractions(rows)
}

// PopularitySince aggregates per-product interaction counts inside the
// window together with catalog ratings for tie-breaking.
func (s *InteractionService) PopularitySince(ctx context.Context, since time.Time) ([]models.ProductPopularity, error) {
	query := `
		SELECT i.product_id, COUNT(i.id) AS interaction_count, p.rating
		FROM interactions i
		JOIN products p ON p.id = i.product_id
		WHERE i.occurred_at >= $1
		GROUP BY i.product_id, p.rating
		ORDER BY interaction_count DESC, p.rating DESC
	`

	rows, err := s.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate popularity: %w", err)
	}
	defer rows.Close()

	popular := []models.ProductPopularity{}
	for rows.Next() {
		var p models.ProductPopularity
		if err := rows.Scan(&p.ProductID, &p.InteractionCount, &p.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan popularity row: %w", err)
		}
		popular = append(popular, p)
	}

	return popular, rows.Err()
}

func scanInteractions(rows pgx.Rows) ([]models.Interaction, error) {
	interactions := []models.Interaction{}
	for rows.Next() {
		var in models.Interaction
		if err := rows.Scan(
			&in.ID, &in.UserID, &in.ProductID, &in.Kind,
			&in.Duration, &in.Rating, &in.Context, &in.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, in)
	}

	return interactions, rows.Err()
}
