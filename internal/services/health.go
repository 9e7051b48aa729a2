package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/internal/database"
)

// ComponentStatus is one dependency's health at check time.
type ComponentStatus struct {
	Status    string  `json:"status"`
	LatencyMs float64 `json:"latency_ms"`
	Error     string  `json:"error,omitempty"`
}

// HealthReport is the aggregate served on /health.
type HealthReport struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
	CheckedAt  time.Time                  `json:"checked_at"`
}

// HealthService pings the backing stores and mirrors the results into
// Prometheus gauges.
type HealthService struct {
	db     *database.Database
	logger *logrus.Logger

	componentUp *prometheus.GaugeVec
}

func NewHealthService(db *database.Database, logger *logrus.Logger) *HealthService {
	return &HealthService{
		db:     db,
		logger: logger,
		componentUp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "shoprec_component_up",
			Help: "Whether a backing component responded to its health probe (1 up, 0 down).",
		}, []string{"component"}),
	}
}

// Check probes PostgreSQL and both Redis tiers. The overall status is
// "healthy" only when every component responds.
func (s *HealthService) Check(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Status:     "healthy",
		Components: make(map[string]ComponentStatus),
		CheckedAt:  time.Now().UTC(),
	}

	probes := map[string]func(context.Context) error{
		"postgres": func(ctx context.Context) error {
			return s.db.PG.Ping(ctx)
		},
		"redis_hot": func(ctx context.Context) error {
			return s.db.Redis.Hot.Ping(ctx).Err()
		},
		"redis_warm": func(ctx context.Context) error {
			return s.db.Redis.Warm.Ping(ctx).Err()
		},
	}

	for name, probe := range probes {
		report.Components[name] = s.probe(ctx, name, probe)
		if report.Components[name].Status != "up" {
			report.Status = "degraded"
		}
	}

	return report
}

func (s *HealthService) probe(ctx context.Context, name string, fn func(context.Context) error) ComponentStatus {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := fn(probeCtx)
	elapsed := time.Since(start)

	status := ComponentStatus{
		Status:    "up",
		LatencyMs: float64(elapsed.Microseconds()) / 1000.0,
	}
	if err != nil {
		status.Status = "down"
		status.Error = err.Error()
		s.componentUp.WithLabelValues(name).Set(0)
		s.logger.WithError(err).WithField("component", name).Warn("Health probe failed")
		return status
	}

	s.componentUp.WithLabelValues(name).Set(1)
	return status
}
