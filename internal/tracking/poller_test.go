package tracking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/antonminaichev/mediexpress/internal/types/order"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errNotFound = errors.New("order not found")

// stubSource answers from a fixed map and counts calls per id.
type stubSource struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	calls  map[string]int
	block  map[string]bool
}

func newStubSource() *stubSource {
	return &stubSource{
		orders: map[string]*order.Order{},
		calls:  map[string]int{},
		block:  map[string]bool{},
	}
}

func (s *stubSource) set(id string, st order.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[id] = &order.Order{OrderID: id, Status: st}
}

func (s *stubSource) GetOrderStatus(ctx context.Context, id string) (*order.Order, error) {
	s.mu.Lock()
	s.calls[id]++
	blocked := s.block[id]
	o, ok := s.orders[id]
	s.mu.Unlock()

	if blocked {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if !ok {
		return nil, errNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubSource) count(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) record(s Snapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
}

func (r *recorder) all() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snaps...)
}

func TestStartPollsImmediately(t *testing.T) {
	src := newStubSource()
	src.set("MX-1", order.StagePlaced)
	rec := &recorder{}
	p := NewPoller(src, rec.record)
	defer p.Stop()

	p.Start("MX-1", time.Hour)

	assert.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, time.Millisecond)
	snap, ok := p.Latest()
	require.True(t, ok)
	assert.True(t, snap.Found)
	assert.Equal(t, order.StagePlaced, snap.Order.Status)
	assert.Equal(t, "MX-1", p.Active())
}

func TestTerminalSnapshotEndsPolling(t *testing.T) {
	src := newStubSource()
	src.set("MX-1", order.StageDelivered)
	rec := &recorder{}
	p := NewPoller(src, rec.record)
	defer p.Stop()

	p.Start("MX-1", 2*time.Millisecond)

	assert.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, src.count("MX-1"))
	assert.Len(t, rec.all(), 1)
}

func TestNotFoundKeepsPolling(t *testing.T) {
	src := newStubSource()
	rec := &recorder{}
	p := NewPoller(src, rec.record)
	defer p.Stop()

	p.Start("MX-404", 2*time.Millisecond)

	assert.Eventually(t, func() bool { return src.count("MX-404") >= 3 }, time.Second, time.Millisecond)
	snap, ok := p.Latest()
	require.True(t, ok)
	assert.False(t, snap.Found)
	assert.Nil(t, snap.Order)

	// the order shows up later and polling picks it up
	src.set("MX-404", order.StageDelivered)
	assert.Eventually(t, func() bool {
		s, _ := p.Latest()
		return s.Found
	}, time.Second, time.Millisecond)
}

func TestEmptyIDDoesNothing(t *testing.T) {
	src := newStubSource()
	rec := &recorder{}
	p := NewPoller(src, rec.record)

	p.Start("", time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	_, ok := p.Latest()
	assert.False(t, ok)
	assert.Empty(t, rec.all())
	assert.Empty(t, p.Active())
	p.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	p := NewPoller(newStubSource(), nil)
	p.Stop()
	p.Stop()

	src := newStubSource()
	src.set("MX-1", order.StagePlaced)
	rec := &recorder{}
	p = NewPoller(src, rec.record)
	p.Start("MX-1", time.Millisecond)
	assert.Eventually(t, func() bool { return len(rec.all()) >= 1 }, time.Second, time.Millisecond)

	p.Stop()
	p.Stop()
	n := len(rec.all())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, rec.all(), n)
	_, ok := p.Latest()
	assert.False(t, ok)
}

func TestNoCallbackAfterStop(t *testing.T) {
	src := newStubSource()
	src.set("MX-1", order.StagePlaced)

	var stopped atomic.Bool
	var late atomic.Int32
	p := NewPoller(src, func(Snapshot) {
		if stopped.Load() {
			late.Add(1)
		}
	})

	p.Start("MX-1", time.Millisecond)
	assert.Eventually(t, func() bool { return src.count("MX-1") >= 1 }, time.Second, time.Millisecond)
	p.Stop()
	stopped.Store(true)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, late.Load())
}

func TestRedirectDropsStaleTick(t *testing.T) {
	src := newStubSource()
	src.block["MX-OLD"] = true
	src.set("MX-OLD", order.StagePlaced)
	src.set("MX-NEW", order.StagePreparing)

	var redirected atomic.Bool
	var stale atomic.Int32
	rec := &recorder{}
	p := NewPoller(src, func(s Snapshot) {
		if redirected.Load() && s.OrderID == "MX-OLD" {
			stale.Add(1)
		}
		rec.record(s)
	})
	defer p.Stop()

	p.Start("MX-OLD", time.Millisecond)
	assert.Eventually(t, func() bool { return src.count("MX-OLD") == 1 }, time.Second, time.Millisecond)

	p.Start("MX-NEW", time.Hour)
	redirected.Store(true)

	assert.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, time.Millisecond)
	assert.Zero(t, stale.Load())
	assert.Equal(t, "MX-NEW", rec.all()[0].OrderID)
	assert.Equal(t, "MX-NEW", p.Active())
}

func TestDefaultInterval(t *testing.T) {
	src := newStubSource()
	src.set("MX-1", order.StagePlaced)
	p := NewPoller(src, nil)
	defer p.Stop()

	p.Start("MX-1", 0)
	assert.Eventually(t, func() bool { return src.count("MX-1") == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, src.count("MX-1"))
}
