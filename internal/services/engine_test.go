package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storely/shoprec/internal/config"
	"github.com/storely/shoprec/pkg/models"
)

type fakeInteractionStore struct {
	byUser  map[uuid.UUID][]models.Interaction
	all     []models.Interaction
	popular []models.ProductPopularity
}

func (f *fakeInteractionStore) ListForUserSince(_ context.Context, userID uuid.UUID, since time.Time) ([]models.Interaction, error) {
	var out []models.Interaction
	for _, in := range f.byUser[userID] {
		if !in.OccurredAt.Before(since) {
			out = append(out, in)
		}
	}
	return out, nil
}

func (f *fakeInteractionStore) ListSince(_ context.Context, since time.Time) ([]models.Interaction, error) {
	var out []models.Interaction
	for _, in := range f.all {
		if !in.OccurredAt.Before(since) {
			out = append(out, in)
		}
	}
	return out, nil
}

func (f *fakeInteractionStore) PopularitySince(_ context.Context, _ time.Time) ([]models.ProductPopularity, error) {
	return f.popular, nil
}

type fakeCatalog struct {
	products []models.Product
}

func (f *fakeCatalog) GetAll(_ context.Context) ([]models.Product, error) {
	return f.products, nil
}

func testEngineConfig() *config.EngineConfig {
	return &config.EngineConfig{
		CollaborativeWeight: 0.6,
		ContentWeight:       0.4,
		RecencyWindowDays:   30,
		NeighborCount:       5,
		DiversityCap:        3,
		DefaultTopK:         10,
		BaseWeights: map[string]float64{
			"view":     1.0,
			"click":    2.0,
			"cart":     3.0,
			"purchase": 5.0,
			"rating":   4.0,
		},
	}
}

func newTestEngine(interactions *fakeInteractionStore, catalog *fakeCatalog) *RecommendationEngine {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	cfg := testEngineConfig()
	return NewRecommendationEngine(interactions, catalog, NewDiversityFilter(cfg.DiversityCap, logger), cfg, logger)
}

func daysAgo(n int) time.Time {
	return time.Now().UTC().Add(-time.Duration(n) * 24 * time.Hour)
}

func TestDecayedWeight(t *testing.T) {
	engine := newTestEngine(&fakeInteractionStore{}, &fakeCatalog{})

	t.Run("monotonic decrease with age", func(t *testing.T) {
		fresh := engine.decayedWeight("purchase", daysAgo(0))
		midway := engine.decayedWeight("purchase", daysAgo(10))
		old := engine.decayedWeight("purchase", daysAgo(29))

		assert.Greater(t, fresh, midway)
		assert.Greater(t, midway, old)
	})

	t.Run("base weight at zero age", func(t *testing.T) {
		assert.InDelta(t, 5.0, engine.decayedWeight("purchase", daysAgo(0)), 1e-9)
		assert.InDelta(t, 1.0, engine.decayedWeight("view", daysAgo(0)), 1e-9)
		assert.InDelta(t, 4.0, engine.decayedWeight("rating", daysAgo(0)), 1e-9)
	})

	t.Run("hyperbolic decay at whole-day granularity", func(t *testing.T) {
		// 10 days: 5.0 / (1 + 10*0.1) = 2.5
		assert.InDelta(t, 2.5, engine.decayedWeight("purchase", daysAgo(10)), 1e-9)
	})

	t.Run("unknown kind has zero weight", func(t *testing.T) {
		assert.Zero(t, engine.decayedWeight("wishlist", daysAgo(0)))
	})
}

func TestCosineSimilarity(t *testing.T) {
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()

	t.Run("symmetric", func(t *testing.T) {
		u := userVector{p1: 2.0, p2: 1.0}
		v := userVector{p1: 1.0, p3: 4.0}
		assert.InDelta(t, cosineSimilarity(u, v), cosineSimilarity(v, u), 1e-12)
	})

	t.Run("identity is one", func(t *testing.T) {
		u := userVector{p1: 3.0, p2: 0.5}
		assert.InDelta(t, 1.0, cosineSimilarity(u, u), 1e-12)
	})

	t.Run("disjoint vectors are zero", func(t *testing.T) {
		u := userVector{p1: 2.0}
		v := userVector{p2: 5.0, p3: 1.0}
		assert.Zero(t, cosineSimilarity(u, v))
	})

	t.Run("empty vector is zero, not NaN", func(t *testing.T) {
		u := userVector{}
		v := userVector{p1: 1.0}
		assert.Zero(t, cosineSimilarity(u, v))
	})
}

func TestMaxNormalize(t *testing.T) {
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()

	t.Run("scales batch into unit range with max exactly one", func(t *testing.T) {
		scores := map[uuid.UUID]float64{p1: 2.0, p2: 4.0, p3: 1.0}
		maxNormalize(scores)

		assert.InDelta(t, 1.0, scores[p2], 1e-12)
		for _, score := range scores {
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	})

	t.Run("all-zero batch stays zero", func(t *testing.T) {
		scores := map[uuid.UUID]float64{p1: 0, p2: 0}
		maxNormalize(scores)
		assert.Zero(t, scores[p1])
		assert.Zero(t, scores[p2])
	})
}

func TestCombineScores(t *testing.T) {
	engine := newTestEngine(&fakeInteractionStore{}, &fakeCatalog{})
	p1 := uuid.New()

	combined := engine.combineScores(
		map[uuid.UUID]float64{p1: 0.8},
		map[uuid.UUID]float64{p1: 0.5},
	)

	assert.InDelta(t, 0.68, combined[p1], 1e-6)
}

func TestCombineScores_UnionOfProducts(t *testing.T) {
	engine := newTestEngine(&fakeInteractionStore{}, &fakeCatalog{})
	collabOnly, contentOnly := uuid.New(), uuid.New()

	combined := engine.combineScores(
		map[uuid.UUID]float64{collabOnly: 1.0},
		map[uuid.UUID]float64{contentOnly: 1.0},
	)

	assert.InDelta(t, 0.6, combined[collabOnly], 1e-9)
	assert.InDelta(t, 0.4, combined[contentOnly], 1e-9)
}

func TestSortScores_TieBreakByProductID(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	ranked := sortScores(map[uuid.UUID]float64{b: 0.5, a: 0.5})

	require.Len(t, ranked, 2)
	assert.Equal(t, a, ranked[0].ProductID)
	assert.Equal(t, b, ranked[1].ProductID)
}

func TestRecommend_ColdStartUsesPopularity(t *testing.T) {
	userID := uuid.New()
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()

	interactions := &fakeInteractionStore{
		byUser: map[uuid.UUID][]models.Interaction{},
		popular: []models.ProductPopularity{
			{ProductID: p1, InteractionCount: 10, Rating: 4.0},
			{ProductID: p2, InteractionCount: 5, Rating: 4.8},
			{ProductID: p3, InteractionCount: 5, Rating: 3.0},
		},
	}
	catalog := &fakeCatalog{products: []models.Product{
		{ID: p1, Name: "A", Category: "Books"},
		{ID: p2, Name: "B", Category: "Toys"},
		{ID: p3, Name: "C", Category: "Home"},
	}}

	engine := newTestEngine(interactions, catalog)
	recs, err := engine.Recommend(context.Background(), userID, 10, true)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	for i, rec := range recs {
		assert.Equal(t, models.AlgorithmPopularity, rec.Algorithm)
		assert.Equal(t, i+1, rec.Rank)
		assert.InDelta(t, 1.0-float64(i+1)*0.05, rec.Score, 1e-9)
	}

	// Count ties resolve by rating descending.
	assert.Equal(t, p1, recs[0].ProductID)
	assert.Equal(t, p2, recs[1].ProductID)
	assert.Equal(t, p3, recs[2].ProductID)
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	userID := uuid.New()
	p1 := uuid.New()

	interactions := &fakeInteractionStore{
		byUser: map[uuid.UUID][]models.Interaction{
			userID: {{UserID: userID, ProductID: p1, Kind: "view", OccurredAt: daysAgo(1)}},
		},
		all: []models.Interaction{
			{UserID: userID, ProductID: p1, Kind: "view", OccurredAt: daysAgo(1)},
		},
	}

	engine := newTestEngine(interactions, &fakeCatalog{})
	recs, err := engine.Recommend(context.Background(), userID, 10, true)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommend_HybridPipeline(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()
	userC := uuid.New()

	p1 := uuid.New() // Books, purchased by A and B
	p2 := uuid.New() // Books, viewed by A
	p3 := uuid.New() // Electronics, purchased by B
	p4 := uuid.New() // Toys, untouched
	p5 := uuid.New() // Home, viewed by C only

	catalog := &fakeCatalog{products: []models.Product{
		{ID: p1, Name: "Novel", Category: "Books", Price: 20, Rating: 4.2},
		{ID: p2, Name: "Cookbook", Category: "Books", Price: 25, Rating: 4.0},
		{ID: p3, Name: "Headphones", Category: "Electronics", Price: 80, Rating: 4.6},
		{ID: p4, Name: "Puzzle", Category: "Toys", Price: 15, Rating: 4.1},
		{ID: p5, Name: "Lamp", Category: "Home", Price: 30, Rating: 3.9},
	}}

	history := map[uuid.UUID][]models.Interaction{
		userA: {
			{UserID: userA, ProductID: p1, Kind: "purchase", OccurredAt: daysAgo(1)},
			{UserID: userA, ProductID: p2, Kind: "view", OccurredAt: daysAgo(2)},
		},
		userB: {
			{UserID: userB, ProductID: p1, Kind: "purchase", OccurredAt: daysAgo(1)},
			{UserID: userB, ProductID: p3, Kind: "purchase", OccurredAt: daysAgo(1)},
		},
		userC: {
			{UserID: userC, ProductID: p5, Kind: "view", OccurredAt: daysAgo(3)},
		},
	}

	var all []models.Interaction
	for _, list := range history {
		all = append(all, list...)
	}

	interactions := &fakeInteractionStore{byUser: history, all: all}
	engine := newTestEngine(interactions, catalog)

	t.Run("neighbor purchase projects onto untouched product", func(t *testing.T) {
		recs, err := engine.Recommend(context.Background(), userA, 2, true)
		require.NoError(t, err)
		require.NotEmpty(t, recs)

		// B's purchase of shared product p1 makes B the nearest neighbor,
		// projecting weight onto p3. Everything A and B never touched must
		// rank below it.
		assert.Equal(t, p3, recs[0].ProductID)
		assert.Equal(t, models.AlgorithmHybrid, recs[0].Algorithm)
		assert.Greater(t, recs[0].CollaborativeScore, 0.0)
	})

	t.Run("exclude interacted removes own products", func(t *testing.T) {
		recs, err := engine.Recommend(context.Background(), userA, 10, true)
		require.NoError(t, err)

		for _, rec := range recs {
			assert.NotEqual(t, p1, rec.ProductID)
			assert.NotEqual(t, p2, rec.ProductID)
		}
	})

	t.Run("ranks are dense and one-based", func(t *testing.T) {
		recs, err := engine.Recommend(context.Background(), userA, 10, true)
		require.NoError(t, err)

		for i, rec := range recs {
			assert.Equal(t, i+1, rec.Rank)
		}
	})

	t.Run("combined scores stay in unit range", func(t *testing.T) {
		recs, err := engine.Recommend(context.Background(), userA, 10, false)
		require.NoError(t, err)
		require.NotEmpty(t, recs)

		for _, rec := range recs {
			assert.GreaterOrEqual(t, rec.Score, 0.0)
			assert.LessOrEqual(t, rec.Score, 1.0)
		}
	})
}

func TestUserInsights(t *testing.T) {
	userID := uuid.New()
	brand := "Acme"

	p1 := uuid.New()
	p2 := uuid.New()
	p3 := uuid.New()

	catalog := &fakeCatalog{products: []models.Product{
		{ID: p1, Name: "Novel", Category: "Books", Brand: &brand, Price: 20},
		{ID: p2, Name: "Cookbook", Category: "Books", Price: 30},
		{ID: p3, Name: "Headphones", Category: "Electronics", Price: 100},
	}}

	interactions := &fakeInteractionStore{byUser: map[uuid.UUID][]models.Interaction{
		userID: {
			{UserID: userID, ProductID: p1, Kind: "purchase", OccurredAt: daysAgo(1)},
			{UserID: userID, ProductID: p2, Kind: "purchase", OccurredAt: daysAgo(2)},
			{UserID: userID, ProductID: p3, Kind: "view", OccurredAt: daysAgo(3)},
		},
	}}

	engine := newTestEngine(interactions, catalog)

	t.Run("summarizes profile", func(t *testing.T) {
		insights, err := engine.UserInsights(context.Background(), userID)
		require.NoError(t, err)

		assert.Equal(t, 3, insights.TotalInteractions)
		require.NotEmpty(t, insights.FavoriteCategories)
		assert.Equal(t, "Books", insights.FavoriteCategories[0].Label)
		require.Len(t, insights.FavoriteBrands, 1)
		assert.Equal(t, brand, insights.FavoriteBrands[0].Label)
		assert.InDelta(t, 50.0, insights.AvgPrice, 1e-9)

		require.Len(t, insights.RecentPurchases, 2)
		assert.Equal(t, "Novel", insights.RecentPurchases[0].Name)
		assert.Equal(t, "Cookbook", insights.RecentPurchases[1].Name)
	})

	t.Run("empty history yields empty summary", func(t *testing.T) {
		insights, err := engine.UserInsights(context.Background(), uuid.New())
		require.NoError(t, err)

		assert.Zero(t, insights.TotalInteractions)
		assert.Empty(t, insights.FavoriteCategories)
		assert.Empty(t, insights.FavoriteBrands)
		assert.Empty(t, insights.RecentPurchases)
		assert.Zero(t, insights.AvgPrice)
	})
}

func TestProductAffinity(t *testing.T) {
	brand := "Acme"
	profile := &userProfile{
		Categories: map[string]float64{"Books": 3.0, "Toys": 1.0},
		Brands:     map[string]float64{brand: 2.0},
		Attributes: map[string]float64{"color:red": 1.0, "format:hardcover": 2.0},
		AvgPrice:   20.0,
	}

	t.Run("full match approaches the cap of each term", func(t *testing.T) {
		product := models.Product{
			Category:   "Books",
			Brand:      &brand,
			Price:      20.0,
			Attributes: map[string]interface{}{"color": "red", "format": "hardcover"},
		}

		score := productAffinity(product, profile)
		// 0.4*(3/4) + 0.2*(2/2) + 0.2*1 + 0.2*(2/2)
		assert.InDelta(t, 0.9, score, 1e-9)
	})

	t.Run("no match scores only price proximity", func(t *testing.T) {
		product := models.Product{Category: "Garden", Price: 60.0}
		score := productAffinity(product, profile)
		// price term: 0.2 * 1/(1+40/20)
		assert.InDelta(t, 0.2/3.0, score, 1e-9)
	})
}
