package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/internal/messaging"
	"github.com/storely/shoprec/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Product        *ProductHandler
	User           *UserHandler
	Interaction    *InteractionHandler
	Recommendation *RecommendationHandler
}

func New(logger *logrus.Logger, svc *services.Services, publisher *messaging.EventPublisher) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(svc.Health, logger),
		Product:        NewProductHandler(svc.Catalog, logger),
		User:           NewUserHandler(svc.Users, logger),
		Interaction:    NewInteractionHandler(svc.Interactions, svc.Users, svc.Catalog, publisher, logger),
		Recommendation: NewRecommendationHandler(svc, logger),
	}
}
