package order

import (
	"time"

	"github.com/antonminaichev/mediexpress/internal/types/order"
)

// DefaultCadence is how long an order spends in each stage.
const DefaultCadence = 10 * time.Second

// Advance moves o forward to the stage implied by the time elapsed since it was
// created. Every skipped stage gets its own history entry, all stamped with now
// rather than the cadence boundary they crossed. The input is never modified.
func Advance(o order.Order, now time.Time, cadence time.Duration) (order.Order, []order.Transition) {
	if o.CreatedAt.IsZero() || cadence <= 0 {
		return o, nil
	}

	elapsed := now.Sub(o.CreatedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	last := len(order.Stages) - 1
	expected := int(elapsed / cadence)
	if expected > last {
		expected = last
	}

	current := o.Status.Index()
	if expected <= current {
		return o, nil
	}

	history := make([]order.HistoryEntry, len(o.History), len(o.History)+expected-current)
	copy(history, o.History)

	transitions := make([]order.Transition, 0, expected-current)
	for i := current; i < expected; i++ {
		next := order.Stages[i+1]
		history = append(history, order.HistoryEntry{Status: next, At: now})
		transitions = append(transitions, order.Transition{From: order.Stages[i], To: next, At: now})
	}

	o.Status = order.Stages[expected]
	o.History = history
	return o, transitions
}
