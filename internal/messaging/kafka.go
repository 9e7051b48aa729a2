package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/internal/config"
	"github.com/storely/shoprec/pkg/models"
)

// EventPublisher streams recorded interactions to Kafka for downstream
// consumers (analytics, offline model evaluation). Publishing is
// best-effort; an empty broker list disables it entirely.
type EventPublisher struct {
	writer *kafka.Writer
	logger *logrus.Logger
}

func NewEventPublisher(cfg *config.KafkaConfig, logger *logrus.Logger) *EventPublisher {
	if len(cfg.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, event publishing disabled")
		return &EventPublisher{logger: logger}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topics.InteractionEvents,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &EventPublisher{writer: writer, logger: logger}
}

// PublishInteraction emits one interaction event keyed by user id so a
// user's events stay ordered within a partition.
func (p *EventPublisher) PublishInteraction(ctx context.Context, interaction *models.Interaction) error {
	if p.writer == nil {
		return nil
	}

	payload, err := json.Marshal(interaction)
	if err != nil {
		return fmt.Errorf("failed to encode interaction event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(interaction.UserID.String()),
		Value: payload,
		Time:  interaction.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to publish interaction event: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"user_id":    interaction.UserID,
		"product_id": interaction.ProductID,
		"kind":       interaction.Kind,
	}).Debug("Interaction event published")

	return nil
}

func (p *EventPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
