package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storely/shoprec/pkg/models"
)

func TestDiversityFilter_Apply(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	newCandidates := func(categories []string) ([]ScoredProduct, map[uuid.UUID]models.Product) {
		ranked := make([]ScoredProduct, len(categories))
		index := make(map[uuid.UUID]models.Product, len(categories))
		for i, category := range categories {
			id := uuid.New()
			ranked[i] = ScoredProduct{ProductID: id, Score: 1.0 - float64(i)*0.1}
			index[id] = models.Product{ID: id, Category: category}
		}
		return ranked, index
	}

	t.Run("caps same-category items", func(t *testing.T) {
		filter := NewDiversityFilter(2, logger)
		ranked, index := newCandidates([]string{"Books", "Books", "Books", "Toys", "Books"})

		filtered := filter.Apply(ranked, index)

		counts := map[string]int{}
		for _, sc := range filtered {
			counts[index[sc.ProductID].Category]++
		}
		assert.Equal(t, 2, counts["Books"])
		assert.Equal(t, 1, counts["Toys"])
	})

	t.Run("preserves relative order of accepted items", func(t *testing.T) {
		filter := NewDiversityFilter(3, logger)
		ranked, index := newCandidates([]string{"Books", "Toys", "Books", "Home", "Toys"})

		filtered := filter.Apply(ranked, index)

		require.Len(t, filtered, len(ranked))
		for i, sc := range filtered {
			assert.Equal(t, ranked[i].ProductID, sc.ProductID)
		}
	})

	t.Run("never grows the candidate set", func(t *testing.T) {
		filter := NewDiversityFilter(1, logger)
		ranked, index := newCandidates([]string{"Books", "Books", "Books"})

		filtered := filter.Apply(ranked, index)
		assert.Len(t, filtered, 1)
	})

	t.Run("rejected candidates are dropped, not deferred", func(t *testing.T) {
		filter := NewDiversityFilter(1, logger)
		ranked, index := newCandidates([]string{"Books", "Books", "Toys"})

		filtered := filter.Apply(ranked, index)

		require.Len(t, filtered, 2)
		assert.Equal(t, ranked[0].ProductID, filtered[0].ProductID)
		assert.Equal(t, ranked[2].ProductID, filtered[1].ProductID)
	})

	t.Run("unknown products are dropped", func(t *testing.T) {
		filter := NewDiversityFilter(2, logger)
		ranked, index := newCandidates([]string{"Books", "Toys"})
		unknown := ScoredProduct{ProductID: uuid.New(), Score: 0.95}
		ranked = append([]ScoredProduct{unknown}, ranked...)

		filtered := filter.Apply(ranked, index)
		require.Len(t, filtered, 2)
		assert.NotEqual(t, unknown.ProductID, filtered[0].ProductID)
		assert.Equal(t, ranked[1].ProductID, filtered[0].ProductID)
	})

	t.Run("empty input", func(t *testing.T) {
		filter := NewDiversityFilter(3, logger)
		assert.Empty(t, filter.Apply(nil, nil))
	})
}
