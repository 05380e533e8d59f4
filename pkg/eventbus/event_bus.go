// Package eventbus provides the notification channel used to broadcast lead
// and workflow lifecycle events to observers.
package eventbus

import (
	"context"

	"github.com/piazza-crm/leadflow/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

// EventPublisher is the fire-and-forget side of the bus: no acknowledgement
// and no delivery guarantee are offered to publishers.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
