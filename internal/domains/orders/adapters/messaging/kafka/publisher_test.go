package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func placedOrder(t *testing.T) *domain.Order {
	t.Helper()
	now := time.Date(2024, 5, 17, 9, 30, 15, 0, time.UTC)
	line := domain.NewLineItem("opc43", "OPC 43", 100, decimal.RequireFromString("350"))
	order, err := domain.NewOrder("o-1", "ORD-20240517093015-AB01FF", "d-1", []domain.LineItem{line}, domain.PaymentAccount, "Pune", "", now)
	require.NoError(t, err)
	return order
}

func TestPublish_WrapsEventInEnvelope(t *testing.T) {
	writer := &fakeWriter{}
	publisher := NewPublisherWithWriter(writer)
	publisher.newID = func() string { return "evt-1" }

	require.NoError(t, publisher.Publish(context.Background(), domain.NewOrderPlaced(placedOrder(t))))
	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "o-1", string(msg.Key))

	var envelope Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	assert.Equal(t, "evt-1", envelope.EventID)
	assert.Equal(t, "orders.order.placed", envelope.EventType)
	assert.Equal(t, 1, envelope.EventVersion)
	assert.Equal(t, producerName, envelope.Producer)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "ORD-20240517093015-AB01FF", payload["order_number"])
	assert.Equal(t, "account", payload["payment_method"])
}

func TestPublish_PropagatesWriterErrors(t *testing.T) {
	writer := &fakeWriter{err: errors.New("leader not available")}
	publisher := NewPublisherWithWriter(writer)

	order := placedOrder(t)
	err := publisher.Publish(context.Background(), domain.NewOrderStatusChanged(order, domain.StatusPending))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orders.order.status_changed")

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}
