package services

import (
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/internal/config"
	"github.com/storely/shoprec/internal/database"
)

// Services wires every service against the shared database handle and
// config. Construction order follows dependency order; the engine is built
// last because it consumes the stores.
type Services struct {
	Catalog         *CatalogService
	Users           *UserService
	Interactions    *InteractionService
	Recommendations *RecommendationStore
	Engine          *RecommendationEngine
	Explanations    *ExplanationService
	Health          *HealthService
	Auth            *AuthService
	RateLimit       *RateLimitService

	logger *logrus.Logger
}

func New(db *database.Database, cfg *config.Config, logger *logrus.Logger) *Services {
	catalog := NewCatalogService(db.PG, logger)
	users := NewUserService(db.PG, logger)
	interactions := NewInteractionService(db.PG, logger)
	recommendations := NewRecommendationStore(db.PG, logger)

	diversity := NewDiversityFilter(cfg.Engine.DiversityCap, logger)
	engine := NewRecommendationEngine(interactions, catalog, diversity, &cfg.Engine, logger)

	explanations := NewExplanationService(&cfg.LLM, db.Redis.Warm, logger)
	health := NewHealthService(db, logger)
	auth := NewAuthService(&cfg.Auth, logger)
	rateLimit := NewRateLimitService(db.Redis.Hot, &cfg.Auth.RateLimit, logger)

	return &Services{
		Catalog:         catalog,
		Users:           users,
		Interactions:    interactions,
		Recommendations: recommendations,
		Engine:          engine,
		Explanations:    explanations,
		Health:          health,
		Auth:            auth,
		RateLimit:       rateLimit,
		logger:          logger,
	}
}
