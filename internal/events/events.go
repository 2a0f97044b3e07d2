// Package events publishes user lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/user-management-api/internal/model"
)

// EventType names a user lifecycle change.
type EventType string

const (
	UserCreated EventType = "user.created"
	UserUpdated EventType = "user.updated"
	UserDeleted EventType = "user.deleted"
)

// UserEvent never carries the password digest.
type UserEvent struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	UserID     int64       `json:"userId"`
	User       *model.User `json:"user,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// NewUserEvent creates a new event with a fresh id.
func NewUserEvent(typ EventType, userID int64, user *model.User, at time.Time) UserEvent {
	return UserEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     userID,
		User:       user,
		OccurredAt: at,
	}
}

// Publisher delivers user events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev UserEvent) error
	Close() error
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, UserEvent) error { return nil }
func (NopPublisher) Close() error                             { return nil }

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes user events to a Kafka topic.
type KafkaPublisher struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewKafkaWriter returns an async writer; delivery failures are logged from
// the completion callback instead of failing the request that emitted them.
func NewKafkaWriter(brokers []string, topic string, logger *slog.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("failed to deliver user events",
					slog.String("topic", topic),
					slog.Int("count", len(messages)),
					slog.Any("error", err),
				)
			}
		},
	}
}

// NewKafkaPublisher creates a new Kafka publisher
func NewKafkaPublisher(writer MessageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish keys messages by user id so events for one user stay ordered
// within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, ev UserEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	key := strconv.FormatInt(ev.UserID, 10)
	p.logger.DebugContext(ctx, "write user event to kafka",
		slog.String("type", string(ev.Type)),
		slog.String("key", key),
		slog.String("event_id", ev.ID),
	)

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var (
	_ Publisher = NopPublisher{}
	_ Publisher = (*KafkaPublisher)(nil)
)
