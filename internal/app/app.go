package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/internal/config"
	"github.com/storely/shoprec/internal/database"
	"github.com/storely/shoprec/internal/handlers"
	"github.com/storely/shoprec/internal/messaging"
	"github.com/storely/shoprec/internal/middleware"
	"github.com/storely/shoprec/internal/services"
	"github.com/storely/shoprec/internal/validation"
	"github.com/storely/shoprec/pkg/models"
)

type App struct {
	config    *config.Config
	logger    *logrus.Logger
	db        *database.Database
	services  *services.Services
	handlers  *handlers.Handlers
	publisher *messaging.EventPublisher
	router    *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	app.services = services.New(db, cfg, app.logger)
	app.publisher = messaging.NewEventPublisher(&cfg.Kafka, app.logger)
	app.handlers = handlers.New(app.logger, app.services, app.publisher)

	registerCustomValidators()

	if err := app.setupRouter(); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.publisher.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing event publisher")
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// registerCustomValidators adds binding rules shared by request models.
func registerCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("interaction_kind", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case models.InteractionView, models.InteractionClick, models.InteractionCart,
			models.InteractionPurchase, models.InteractionRating:
			return true
		}
		return false
	})
}

func (a *App) setupRouter() error {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	schemaValidator, err := validation.NewSchemaValidator()
	if err != nil {
		return fmt.Errorf("failed to build schema validator: %w", err)
	}
	validate := middleware.NewValidationMiddleware(schemaValidator)

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	router.GET("/health", a.handlers.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.Use(middleware.Auth(a.services.Auth, a.logger))
		api.Use(middleware.RateLimit(a.services.RateLimit, a.logger))

		products := api.Group("/products")
		{
			products.POST("", validate.ValidateProduct(), a.handlers.Product.Create)
			products.GET("", a.handlers.Product.List)
			products.GET("/categories/list", a.handlers.Product.Categories)
			products.GET("/:productId", a.handlers.Product.Get)
			products.GET("/:productId/interactions", a.handlers.Interaction.ListByProduct)
		}

		users := api.Group("/users")
		{
			users.POST("", validate.ValidateUser(), a.handlers.User.Create)
			users.GET("", a.handlers.User.List)
			users.GET("/:userId", a.handlers.User.Get)
			users.GET("/:userId/interactions", a.handlers.Interaction.ListByUser)
		}

		interactions := api.Group("/interactions")
		{
			interactions.POST("", validate.ValidateInteraction(), a.handlers.Interaction.Record)
		}

		recommendations := api.Group("/recommendations")
		{
			recommendations.POST("/generate", a.handlers.Recommendation.Generate)
			recommendations.GET("/insights/:userId", a.handlers.Recommendation.Insights)
			recommendations.GET("/:userId", a.handlers.Recommendation.Get)
		}
	}

	a.router = router
	return nil
}
