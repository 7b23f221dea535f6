// Package tracking polls an order source until the order is delivered.
package tracking

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/antonminaichev/mediexpress/internal/types/order"
)

// DefaultInterval is used when Start is given a non-positive interval.
const DefaultInterval = 5 * time.Second

type Source interface {
	GetOrderStatus(ctx context.Context, orderID string) (*order.Order, error)
}

// Snapshot is one poll result. Found is false when the source had no such order.
type Snapshot struct {
	OrderID string       `json:"orderId"`
	Found   bool         `json:"found"`
	Order   *order.Order `json:"order,omitempty"`
	At      time.Time    `json:"at"`
}

// Poller follows one order at a time. The callback is invoked with the poller
// lock held and must not call Start or Stop on the same poller.
type Poller struct {
	src        Source
	onSnapshot func(Snapshot)
	now        func() time.Time
	log        *zap.Logger

	mu        sync.Mutex
	gen       uint64
	active    string
	latest    Snapshot
	hasLatest bool
	cancel    context.CancelFunc
	done      chan struct{}
}

type Option func(*Poller)

func WithClock(now func() time.Time) Option { return func(p *Poller) { p.now = now } }

func WithLogger(l *zap.Logger) Option { return func(p *Poller) { p.log = l } }

func NewPoller(src Source, onSnapshot func(Snapshot), opts ...Option) *Poller {
	p := &Poller{
		src:        src,
		onSnapshot: onSnapshot,
		now:        time.Now,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start cancels whatever was being tracked and begins polling orderID: once
// right away, then every interval. An empty orderID only stops.
func (p *Poller) Start(orderID string, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	p.mu.Lock()
	prevCancel, prevDone := p.reset()
	var (
		gen  uint64
		ctx  context.Context
		done chan struct{}
	)
	if orderID != "" {
		gen = p.gen
		ctx, p.cancel = context.WithCancel(context.Background())
		done = make(chan struct{})
		p.done = done
		p.active = orderID
	}
	p.mu.Unlock()

	wait(prevCancel, prevDone)
	if orderID == "" {
		return
	}

	p.log.Debug("tracking started", zap.String("order_id", orderID), zap.Duration("interval", interval))
	go p.run(ctx, gen, orderID, interval, done)
}

// Stop cancels polling and waits for the polling goroutine to exit. It is safe
// to call repeatedly or on a poller that was never started.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.reset()
	p.mu.Unlock()
	wait(cancel, done)
}

// Latest returns the most recent snapshot for the active order.
func (p *Poller) Latest() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.hasLatest
}

// Active returns the order being tracked, or "" when idle.
func (p *Poller) Active() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// reset bumps the generation so in-flight ticks are discarded. Caller holds mu.
func (p *Poller) reset() (context.CancelFunc, chan struct{}) {
	p.gen++
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.active = ""
	p.latest, p.hasLatest = Snapshot{}, false
	return cancel, done
}

func wait(cancel context.CancelFunc, done chan struct{}) {
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) run(ctx context.Context, gen uint64, orderID string, interval time.Duration, done chan struct{}) {
	defer close(done)

	if p.tick(ctx, gen, orderID) {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.tick(ctx, gen, orderID) {
				return
			}
		}
	}
}

// tick polls once and reports whether polling should end.
func (p *Poller) tick(ctx context.Context, gen uint64, orderID string) bool {
	o, err := p.src.GetOrderStatus(ctx, orderID)
	if ctx.Err() != nil {
		return true
	}
	snap := Snapshot{OrderID: orderID, At: p.now()}
	if err != nil {
		p.log.Debug("order not visible yet", zap.String("order_id", orderID), zap.Error(err))
	} else if o != nil {
		snap.Found, snap.Order = true, o
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return true
	}
	p.latest, p.hasLatest = snap, true
	if p.onSnapshot != nil {
		p.onSnapshot(snap)
	}
	if snap.Found && snap.Order.Status.IsTerminal() {
		p.log.Debug("order delivered, tracking finished", zap.String("order_id", orderID))
		return true
	}
	return false
}
