package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"attendance_ms/util"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventCredentialEnrolled     = "credential.enrolled"
	EventCredentialCloneSuspect = "credential.clone_suspected"
	EventAttendanceCheckedIn    = "attendance.checked_in"
	EventAttendanceCheckedOut   = "attendance.checked_out"
)

type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	UserID     uuid.UUID      `json:"user_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

type IEventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// KafkaEventPublisher keys messages by user so one user's events stay ordered
// within a partition.
type KafkaEventPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func NewKafkaEventPublisher(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic, logger: logger}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = util.NewRequestID()
	}
	if p.producer == nil {
		p.logger.Info("event", zap.String("type", event.Type), zap.String("user_id", event.UserID.String()))
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.UserID.String()),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
			{Key: []byte("event-id"), Value: []byte(event.ID)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send event: %w", err)
	}
	p.logger.Debug("event published",
		zap.String("type", event.Type),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// publishAfterCommit never fails the caller; the state change is already durable.
func publishAfterCommit(ctx context.Context, pub IEventPublisher, logger *zap.Logger, event Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish event", zap.String("type", event.Type), zap.Error(err))
	}
}
