package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKafkaEventPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewKafkaEventPublisher(producer, "attendance.events", zap.NewNop())
	userID := uuid.New()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != userID.String() {
			return errors.New("message not keyed by user")
		}
		if msg.Topic != "attendance.events" {
			return errors.New("wrong topic")
		}
		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[string(h.Key)] = string(h.Value)
		}
		if headers["event-type"] != EventAttendanceCheckedIn {
			return errors.New("missing event-type header")
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var e Event
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		if e.ID == "" || e.UserID != userID {
			return errors.New("unexpected payload")
		}
		if headers["event-id"] != e.ID {
			return errors.New("event-id header does not match payload id")
		}
		return nil
	})

	err := pub.Publish(context.Background(), Event{
		Type:       EventAttendanceCheckedIn,
		UserID:     userID,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestKafkaEventPublisher_SendFails(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewKafkaEventPublisher(producer, "attendance.events", zap.NewNop())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := pub.Publish(context.Background(), Event{Type: EventCredentialEnrolled, UserID: uuid.New()})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestKafkaEventPublisher_WithoutBrokersOnlyLogs(t *testing.T) {
	pub := NewKafkaEventPublisher(nil, "attendance.events", zap.NewNop())

	assert.NoError(t, pub.Publish(context.Background(), Event{Type: EventCredentialEnrolled, UserID: uuid.New()}))
	assert.NoError(t, pub.Close())
}
