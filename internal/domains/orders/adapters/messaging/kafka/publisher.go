// Package kafka publishes order events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
)

const (
	producerName = "cement-dealer-portal"
	eventVersion = 1
)

var _ ports.EventPublisher = (*Publisher)(nil)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope wraps every event on the wire.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// Publisher writes order events keyed by order id so per-order ordering is kept.
type Publisher struct {
	writer  MessageWriter
	newID   func() string
	timeout time.Duration
}

// NewPublisher builds a synchronous writer for topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	})
}

func NewPublisherWithWriter(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer, newID: uuid.NewString, timeout: 5 * time.Second}
}

func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.EventName(), err)
	}
	envelope, err := json.Marshal(Envelope{
		EventID:      p.newID(),
		EventType:    event.EventName(),
		EventVersion: eventVersion,
		OccurredAt:   event.OccurredAt().UTC(),
		Producer:     producerName,
		Payload:      payload,
	})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", event.EventName(), err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AggregateID()),
		Value: envelope,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventName())},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.EventName(), err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
