package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/storely/shoprec/internal/config"
	"github.com/storely/shoprec/pkg/models"
)

// InteractionReader is the read-only view of the interaction store that the
// scoring engine depends on. Results older than `since` must be excluded by
// the implementation, not merely down-weighted here.
type InteractionReader interface {
	ListForUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.Interaction, error)
	ListSince(ctx context.Context, since time.Time) ([]models.Interaction, error)
	PopularitySince(ctx context.Context, since time.Time) ([]models.ProductPopularity, error)
}

// ProductReader supplies the candidate catalog in a single batch fetch.
type ProductReader interface {
	GetAll(ctx context.Context) ([]models.Product, error)
}

// RecommendationEngine blends collaborative filtering over user interaction
// vectors with content-based matching against a derived user profile. Every
// invocation recomputes from the raw interaction window; no derived state
// survives a request.
type RecommendationEngine struct {
	interactions InteractionReader
	catalog      ProductReader
	diversity    *DiversityFilter
	config       *config.EngineConfig
	logger       *logrus.Logger
}

func NewRecommendationEngine(
	interactions InteractionReader,
	catalog ProductReader,
	diversity *DiversityFilter,
	cfg *config.EngineConfig,
	logger *logrus.Logger,
) *RecommendationEngine {
	return &RecommendationEngine{
		interactions: interactions,
		catalog:      catalog,
		diversity:    diversity,
		config:       cfg,
		logger:       logger,
	}
}

// weightedInteraction is the per-request decayed form of a stored
// interaction. Discarded after scoring.
type weightedInteraction struct {
	ProductID  uuid.UUID
	Kind       string
	Weight     float64
	OccurredAt time.Time
	Rating     *float64
}

// userVector maps product id to accumulated interaction weight; absent
// products are implicitly zero.
type userVector map[uuid.UUID]float64

// userProductMatrix holds one userVector per user, built fresh per request.
type userProductMatrix map[uuid.UUID]userVector

// userProfile aggregates a user's weighted history over product attributes.
type userProfile struct {
	Categories  map[string]float64
	Brands      map[string]float64
	Attributes  map[string]float64 // "key:value" -> weight
	AvgPrice    float64
	PriceStdDev float64
}

// Recommend generates a ranked recommendation list for the user. Users with
// no in-window history fall through to the popularity ranking; everyone else
// gets the hybrid pipeline.
func (e *RecommendationEngine) Recommend(
	ctx context.Context,
	userID uuid.UUID,
	topK int,
	excludeInteracted bool,
) ([]models.Recommendation, error) {
	if topK <= 0 {
		topK = e.config.DefaultTopK
	}

	since := e.windowStart()

	history, err := e.loadWeightedInteractions(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load interaction history: %w", err)
	}

	if len(history) == 0 {
		e.logger.WithField("user_id", userID).Debug("No in-window history, using popularity fallback")
		return e.popularityRecommendations(ctx, userID, topK, since)
	}

	products, err := e.catalog.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product catalog: %w", err)
	}
	if len(products) == 0 {
		return []models.Recommendation{}, nil
	}

	index := indexProducts(products)

	matrix, err := e.buildMatrix(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to build interaction matrix: %w", err)
	}

	collabScores := e.collaborativeScores(userID, matrix, products)

	profile := e.buildProfile(history, index)
	contentScores := e.contentScores(profile, products)

	combined := e.combineScores(collabScores, contentScores)

	if excludeInteracted {
		for _, wi := range history {
			delete(combined, wi.ProductID)
		}
	}

	ranked := sortScores(combined)
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	ranked = e.diversity.Apply(ranked, index)

	recommendations := make([]models.Recommendation, 0, len(ranked))
	for i, sc := range ranked {
		product := index[sc.ProductID]
		recommendations = append(recommendations, models.Recommendation{
			UserID:             userID,
			ProductID:          sc.ProductID,
			Product:            &product,
			Score:              sc.Score,
			CollaborativeScore: collabScores[sc.ProductID],
			ContentScore:       contentScores[sc.ProductID],
			Algorithm:          models.AlgorithmHybrid,
			Rank:               i + 1,
		})
	}

	e.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"count":     len(recommendations),
		"algorithm": models.AlgorithmHybrid,
	}).Debug("Recommendations generated")

	return recommendations, nil
}

// UserInsights exposes the derived behavior profile for the explanation
// collaborator. Zero history is a valid, empty summary.
func (e *RecommendationEngine) UserInsights(ctx context.Context, userID uuid.UUID) (*models.UserInsights, error) {
	history, err := e.loadWeightedInteractions(ctx, userID, e.windowStart())
	if err != nil {
		return nil, fmt.Errorf("failed to load interaction history: %w", err)
	}

	insights := &models.UserInsights{
		UserID:             userID,
		TotalInteractions:  len(history),
		FavoriteCategories: []models.WeightedLabel{},
		FavoriteBrands:     []models.WeightedLabel{},
		RecentPurchases:    []models.RecentPurchase{},
	}

	if len(history) == 0 {
		return insights, nil
	}

	products, err := e.catalog.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product catalog: %w", err)
	}
	index := indexProducts(products)

	profile := e.buildProfile(history, index)
	insights.FavoriteCategories = topWeightedLabels(profile.Categories, 3)
	insights.FavoriteBrands = topWeightedLabels(profile.Brands, 3)
	insights.AvgPrice = profile.AvgPrice

	// History is ordered newest first, so the first five purchases are the
	// most recent ones.
	for _, wi := range history {
		if wi.Kind != models.InteractionPurchase {
			continue
		}
		product, ok := index[wi.ProductID]
		if !ok {
			continue
		}
		insights.RecentPurchases = append(insights.RecentPurchases, models.RecentPurchase{
			Name:     product.Name,
			Category: product.Category,
			Price:    product.Price,
		})
		if len(insights.RecentPurchases) == 5 {
			break
		}
	}

	return insights, nil
}

func (e *RecommendationEngine) windowStart() time.Time {
	return time.Now().UTC().AddDate(0, 0, -e.config.RecencyWindowDays)
}

// loadWeightedInteractions converts the user's in-window history into
// decayed weights, preserving the store's newest-first ordering.
func (e *RecommendationEngine) loadWeightedInteractions(
	ctx context.Context,
	userID uuid.UUID,
	since time.Time,
) ([]weightedInteraction, error) {
	interactions, err := e.interactions.ListForUserSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	weighted := make([]weightedInteraction, 0, len(interactions))
	for _, in := range interactions {
		weighted = append(weighted, weightedInteraction{
			ProductID:  in.ProductID,
			Kind:       in.Kind,
			Weight:     e.decayedWeight(in.Kind, in.OccurredAt),
			OccurredAt: in.OccurredAt,
			Rating:     in.Rating,
		})
	}

	return weighted, nil
}

// decayedWeight applies hyperbolic recency decay to the kind's base weight.
// Age is truncated to whole days, so weights never reach zero inside the
// window.
func (e *RecommendationEngine) decayedWeight(kind string, occurredAt time.Time) float64 {
	days := int(time.Since(occurredAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return e.config.BaseWeights[kind] * (1.0 / (1.0 + float64(days)*0.1))
}

// buildMatrix aggregates every in-window interaction across all users into
// sparse per-user vectors. O(interactions in window), rebuilt per request.
func (e *RecommendationEngine) buildMatrix(ctx context.Context, since time.Time) (userProductMatrix, error) {
	interactions, err := e.interactions.ListSince(ctx, since)
	if err != nil {
		return nil, err
	}

	matrix := make(userProductMatrix)
	for _, in := range interactions {
		vector, ok := matrix[in.UserID]
		if !ok {
			vector = make(userVector)
			matrix[in.UserID] = vector
		}
		vector[in.ProductID] += e.decayedWeight(in.Kind, in.OccurredAt)
	}

	return matrix, nil
}

type neighbor struct {
	UserID     uuid.UUID
	Similarity float64
}

// collaborativeScores projects the top-K most similar users' preferences
// onto products the target has not touched, max-normalized per batch. A
// target with no row in the matrix scores everything zero; the cold-start
// decision belongs to the caller, not here.
func (e *RecommendationEngine) collaborativeScores(
	userID uuid.UUID,
	matrix userProductMatrix,
	products []models.Product,
) map[uuid.UUID]float64 {
	scores := make(map[uuid.UUID]float64, len(products))
	for _, p := range products {
		scores[p.ID] = 0
	}

	target, ok := matrix[userID]
	if !ok {
		return scores
	}

	neighbors := e.findSimilarUsers(userID, target, matrix)

	accumulated := make(map[uuid.UUID]float64)
	for _, n := range neighbors {
		for productID, weight := range matrix[n.UserID] {
			if _, touched := target[productID]; touched {
				continue
			}
			accumulated[productID] += weight * n.Similarity
		}
	}

	maxNormalize(accumulated)

	for productID, score := range accumulated {
		if _, known := scores[productID]; known {
			scores[productID] = score
		}
	}

	return scores
}

// findSimilarUsers returns up to NeighborCount users with positive cosine
// similarity to the target, most similar first.
func (e *RecommendationEngine) findSimilarUsers(
	userID uuid.UUID,
	target userVector,
	matrix userProductMatrix,
) []neighbor {
	var neighbors []neighbor
	for otherID, other := range matrix {
		if otherID == userID {
			continue
		}
		if sim := cosineSimilarity(target, other); sim > 0 {
			neighbors = append(neighbors, neighbor{UserID: otherID, Similarity: sim})
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].UserID.String() < neighbors[j].UserID.String()
	})

	if len(neighbors) > e.config.NeighborCount {
		neighbors = neighbors[:e.config.NeighborCount]
	}

	return neighbors
}

// cosineSimilarity computes cosine similarity between two sparse vectors.
// The dot product runs over the intersection of nonzero dimensions;
// magnitudes cover each full vector. Empty intersections and zero
// magnitudes yield 0, never NaN.
func cosineSimilarity(a, b userVector) float64 {
	dot := 0.0
	shared := false
	for productID, weightA := range a {
		if weightB, ok := b[productID]; ok {
			dot += weightA * weightB
			shared = true
		}
	}
	if !shared {
		return 0
	}

	magA := vectorMagnitude(a)
	magB := vectorMagnitude(b)
	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (magA * magB)
}

func vectorMagnitude(v userVector) float64 {
	sum := 0.0
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// buildProfile folds weighted interactions into attribute preferences and
// price statistics. Unknown products are skipped; an empty history yields a
// zero-valued profile.
func (e *RecommendationEngine) buildProfile(
	history []weightedInteraction,
	index map[uuid.UUID]models.Product,
) *userProfile {
	profile := &userProfile{
		Categories: make(map[string]float64),
		Brands:     make(map[string]float64),
		Attributes: make(map[string]float64),
	}

	var prices []float64
	for _, wi := range history {
		product, ok := index[wi.ProductID]
		if !ok {
			continue
		}

		profile.Categories[product.Category] += wi.Weight
		if product.Brand != nil && *product.Brand != "" {
			profile.Brands[*product.Brand] += wi.Weight
		}
		prices = append(prices, product.Price)

		for key, value := range product.Attributes {
			profile.Attributes[attributeKey(key, value)] += wi.Weight
		}
	}

	if len(prices) > 0 {
		profile.AvgPrice = stat.Mean(prices, nil)
		profile.PriceStdDev = stat.PopStdDev(prices, nil)
	}

	return profile
}

// contentScores rates every candidate against the profile and
// max-normalizes the batch, mirroring the collaborative scorer.
func (e *RecommendationEngine) contentScores(
	profile *userProfile,
	products []models.Product,
) map[uuid.UUID]float64 {
	scores := make(map[uuid.UUID]float64, len(products))
	for _, p := range products {
		scores[p.ID] = productAffinity(p, profile)
	}
	maxNormalize(scores)
	return scores
}

// productAffinity is the fixed weighted sum of the four content sub-signals.
// Each term is capped below its stated weight; every division is guarded.
func productAffinity(product models.Product, profile *userProfile) float64 {
	score := 0.0

	// Category match: 40%
	if weight, ok := profile.Categories[product.Category]; ok {
		total := sumWeights(profile.Categories)
		if total > 0 {
			score += 0.4 * (weight / total)
		}
	}

	// Brand match: 20%
	if product.Brand != nil {
		if weight, ok := profile.Brands[*product.Brand]; ok {
			total := sumWeights(profile.Brands)
			if total > 0 {
				score += 0.2 * (weight / total)
			}
		}
	}

	// Price proximity: 20%
	if profile.AvgPrice > 0 {
		diff := product.Price - profile.AvgPrice
		if diff < 0 {
			diff = -diff
		}
		score += 0.2 * (1.0 / (1.0 + diff/profile.AvgPrice))
	}

	// Attribute overlap: 20%
	if len(product.Attributes) > 0 && len(profile.Attributes) > 0 {
		matching := 0
		for key, value := range product.Attributes {
			if _, ok := profile.Attributes[attributeKey(key, value)]; ok {
				matching++
			}
		}
		score += 0.2 * (float64(matching) / float64(len(profile.Attributes)))
	}

	return score
}

// combineScores merges the two signals with the configured convex weights
// over the union of product ids; a missing side contributes zero.
func (e *RecommendationEngine) combineScores(collab, content map[uuid.UUID]float64) map[uuid.UUID]float64 {
	combined := make(map[uuid.UUID]float64, len(collab))
	for productID, score := range collab {
		combined[productID] = e.config.CollaborativeWeight * score
	}
	for productID, score := range content {
		combined[productID] += e.config.ContentWeight * score
	}
	return combined
}

// popularityRecommendations is the cold-start path: rank by in-window
// interaction volume, ties by catalog rating then product id. The synthetic
// score 1 - rank*0.05 is deliberately left unclamped below zero.
func (e *RecommendationEngine) popularityRecommendations(
	ctx context.Context,
	userID uuid.UUID,
	topK int,
	since time.Time,
) ([]models.Recommendation, error) {
	popular, err := e.interactions.PopularitySince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load popularity ranking: %w", err)
	}

	sort.Slice(popular, func(i, j int) bool {
		if popular[i].InteractionCount != popular[j].InteractionCount {
			return popular[i].InteractionCount > popular[j].InteractionCount
		}
		if popular[i].Rating != popular[j].Rating {
			return popular[i].Rating > popular[j].Rating
		}
		return popular[i].ProductID.String() < popular[j].ProductID.String()
	})

	if len(popular) > topK {
		popular = popular[:topK]
	}

	products, err := e.catalog.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product catalog: %w", err)
	}
	index := indexProducts(products)

	recommendations := make([]models.Recommendation, 0, len(popular))
	for i, entry := range popular {
		rank := i + 1
		rec := models.Recommendation{
			UserID:    userID,
			ProductID: entry.ProductID,
			Score:     1.0 - float64(rank)*0.05,
			Algorithm: models.AlgorithmPopularity,
			Rank:      rank,
		}
		if product, ok := index[entry.ProductID]; ok {
			rec.Product = &product
		}
		recommendations = append(recommendations, rec)
	}

	return recommendations, nil
}

// ScoredProduct pairs a product id with its combined score for ranking and
// diversity filtering.
type ScoredProduct struct {
	ProductID uuid.UUID
	Score     float64
}

// sortScores orders candidates by score descending with an ascending
// product-id tie-break so equal scores rank deterministically.
func sortScores(scores map[uuid.UUID]float64) []ScoredProduct {
	ranked := make([]ScoredProduct, 0, len(scores))
	for productID, score := range scores {
		ranked = append(ranked, ScoredProduct{ProductID: productID, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ProductID.String() < ranked[j].ProductID.String()
	})

	return ranked
}

// maxNormalize scales scores into [0,1] by the batch maximum. A zero or
// empty batch is left untouched so all-zero raw scores stay zero.
func maxNormalize(scores map[uuid.UUID]float64) {
	maxScore := 0.0
	for _, score := range scores {
		if score > maxScore {
			maxScore = score
		}
	}
	if maxScore == 0 {
		return
	}
	for productID, score := range scores {
		scores[productID] = score / maxScore
	}
}

func indexProducts(products []models.Product) map[uuid.UUID]models.Product {
	index := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index
}

func attributeKey(key string, value interface{}) string {
	return fmt.Sprintf("%s:%v", key, value)
}

func sumWeights(weights map[string]float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return total
}

func topWeightedLabels(weights map[string]float64, n int) []models.WeightedLabel {
	labels := make([]models.WeightedLabel, 0, len(weights))
	for label, weight := range weights {
		labels = append(labels, models.WeightedLabel{Label: label, Weight: weight})
	}

	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Weight != labels[j].Weight {
			return labels[i].Weight > labels[j].Weight
		}
		return labels[i].Label < labels[j].Label
	})

	if len(labels) > n {
		labels = labels[:n]
	}
	return labels
}
