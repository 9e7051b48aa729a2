package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/pkg/models"
)

// DiversityFilter caps how many products of the same category survive in a
// ranked result set. It walks the input once in order and drops anything
// past the cap, so relative order among accepted items is preserved and the
// output never grows.
type DiversityFilter struct {
	maxPerCategory int
	logger         *logrus.Logger
}

func NewDiversityFilter(maxPerCategory int, logger *logrus.Logger) *DiversityFilter {
	if maxPerCategory <= 0 {
		maxPerCategory = 3
	}
	return &DiversityFilter{
		maxPerCategory: maxPerCategory,
		logger:         logger,
	}
}

// Apply filters a score-descending candidate list. Products missing from the
// index have no category to count against, so they are dropped outright.
func (f *DiversityFilter) Apply(ranked []ScoredProduct, index map[uuid.UUID]models.Product) []ScoredProduct {
	if len(ranked) == 0 {
		return ranked
	}

	counts := make(map[string]int)
	filtered := make([]ScoredProduct, 0, len(ranked))

	for _, candidate := range ranked {
		product, ok := index[candidate.ProductID]
		if !ok {
			continue
		}
		if counts[product.Category] >= f.maxPerCategory {
			continue
		}
		counts[product.Category]++
		filtered = append(filtered, candidate)
	}

	if dropped := len(ranked) - len(filtered); dropped > 0 {
		f.logger.WithFields(logrus.Fields{
			"dropped":          dropped,
			"max_per_category": f.maxPerCategory,
		}).Debug("Diversity filter dropped over-represented candidates")
	}

	return filtered
}
