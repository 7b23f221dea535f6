package tracking_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storeorder "github.com/antonminaichev/mediexpress/internal/order"
	"github.com/antonminaichev/mediexpress/internal/storage/memory"
	"github.com/antonminaichev/mediexpress/internal/tracking"
	"github.com/antonminaichev/mediexpress/internal/types/order"
)

func TestTrackFreshOrderThenStop(t *testing.T) {
	store := storeorder.NewStore(memory.New(), storeorder.WithCadence(time.Millisecond))
	created := store.CreateOrder(context.Background(), nil, order.Totals{Currency: "INR"})

	var stopped atomic.Bool
	var late, ticks atomic.Int32
	p := tracking.NewPoller(store, func(s tracking.Snapshot) {
		ticks.Add(1)
		if stopped.Load() {
			late.Add(1)
		}
	})

	p.Start(created.OrderID, time.Millisecond)
	assert.Eventually(t, func() bool { return ticks.Load() >= 1 }, time.Second, time.Millisecond)
	p.Stop()
	stopped.Store(true)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, late.Load())
}

func TestTrackUntilDelivered(t *testing.T) {
	store := storeorder.NewStore(memory.New(), storeorder.WithCadence(2*time.Millisecond))
	created := store.CreateOrder(context.Background(), nil, order.Totals{Currency: "INR"})

	var mu sync.Mutex
	var seen []order.Stage
	p := tracking.NewPoller(store, func(s tracking.Snapshot) {
		mu.Lock()
		seen = append(seen, s.Order.Status)
		mu.Unlock()
	})
	defer p.Stop()

	p.Start(created.OrderID, time.Millisecond)
	assert.Eventually(t, func() bool {
		s, ok := p.Latest()
		return ok && s.Found && s.Order.Status == order.StageDelivered
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, order.StageDelivered, seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i].Index(), seen[i-1].Index())
	}
}
