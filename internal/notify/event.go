// Package notify publishes order status events to message brokers.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/antonminaichev/mediexpress/internal/types/order"
)

const publishTimeout = 5 * time.Second

// StatusEvent is the wire shape of a status change. OldStatus is empty for a
// freshly placed order.
type StatusEvent struct {
	EventID   string      `json:"eventId"`
	OrderID   string      `json:"orderId"`
	OldStatus order.Stage `json:"oldStatus,omitempty"`
	NewStatus order.Stage `json:"newStatus"`
	Timestamp time.Time   `json:"timestamp"`
}

func placedEvent(o *order.Order) StatusEvent {
	return StatusEvent{
		EventID:   uuid.NewString(),
		OrderID:   o.OrderID,
		NewStatus: order.StagePlaced,
		Timestamp: o.CreatedAt,
	}
}

func transitionEvent(o *order.Order, t order.Transition) StatusEvent {
	return StatusEvent{
		EventID:   uuid.NewString(),
		OrderID:   o.OrderID,
		OldStatus: t.From,
		NewStatus: t.To,
		Timestamp: t.At,
	}
}

func encode(ev StatusEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// detached keeps publishing alive after the triggering request has returned.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
}
