package ports

import (
	"context"

	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
)

// EventPublisher ships order events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }
