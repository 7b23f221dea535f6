package order

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/antonminaichev/mediexpress/internal/storage"
	"github.com/antonminaichev/mediexpress/internal/types/order"
)

// DefaultKey is the blob that holds every order, keyed by order ID.
const DefaultKey = "mx_orders_v1"

// ErrOrderNotFound means the order is not in the store. Because storage failures
// are absorbed, it also covers the case where the backend could not be read.
var ErrOrderNotFound = errors.New("order not found")

// Observer is told about new orders and stage changes after they are persisted.
type Observer interface {
	OrderPlaced(ctx context.Context, o *order.Order)
	StageAdvanced(ctx context.Context, o *order.Order, t order.Transition)
}

// Observers fans a notification out to each observer in turn.
type Observers []Observer

func (obs Observers) OrderPlaced(ctx context.Context, o *order.Order) {
	for _, ob := range obs {
		ob.OrderPlaced(ctx, o)
	}
}

func (obs Observers) StageAdvanced(ctx context.Context, o *order.Order, t order.Transition) {
	for _, ob := range obs {
		ob.StageAdvanced(ctx, o, t)
	}
}

// Store owns the order map persisted in a single blob. Each write is a full
// read-modify-write of that blob; within a process the mutex serializes them,
// across processes sharing one backend the last writer wins.
type Store struct {
	blobs    storage.BlobStore
	key      string
	cadence  time.Duration
	now      func() time.Time
	rnd      *rand.Rand
	observer Observer
	log      *zap.Logger

	mu sync.Mutex
}

type Option func(*Store)

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func WithCadence(d time.Duration) Option { return func(s *Store) { s.cadence = d } }

func WithKey(key string) Option { return func(s *Store) { s.key = key } }

func WithRand(r *rand.Rand) Option { return func(s *Store) { s.rnd = r } }

func WithObserver(o Observer) Option { return func(s *Store) { s.observer = o } }

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

func NewStore(blobs storage.BlobStore, opts ...Option) *Store {
	s := &Store{
		blobs:    blobs,
		key:      DefaultKey,
		cadence:  DefaultCadence,
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		observer: Observers(nil),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.observer == nil {
		s.observer = Observers(nil)
	}
	return s
}

// CreateOrder places a new order in PLACED. It does not fail: if the backend
// rejects the write the order is still returned but will not be found later.
func (s *Store) CreateOrder(ctx context.Context, items []order.Item, totals order.Totals) *order.Order {
	s.mu.Lock()
	all := s.load(ctx)

	now := s.now()
	id := NewOrderID(now, s.rnd)
	for attempt := 0; attempt < 5; attempt++ {
		if _, taken := all[id]; !taken {
			break
		}
		id = NewOrderID(now, s.rnd)
	}

	createdAt := now.UTC()
	o := order.Order{
		OrderID:   id,
		CreatedAt: createdAt,
		Status:    order.StagePlaced,
		History:   []order.HistoryEntry{{Status: order.StagePlaced, At: createdAt}},
		Items:     make([]order.Item, len(items)),
		Totals:    totals,
	}
	copy(o.Items, items)

	all[id] = o
	s.save(ctx, all)
	s.mu.Unlock()

	s.log.Info("order placed", zap.String("order_id", id), zap.Int("items", len(items)))
	s.observer.OrderPlaced(ctx, &o)
	return &o
}

// GetOrder looks an order up without advancing it.
func (s *Store) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	if orderID == "" {
		return nil, ErrOrderNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.load(ctx)[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

// GetOrderStatus looks an order up, advances it to the stage the clock implies
// and persists the change before returning it.
func (s *Store) GetOrderStatus(ctx context.Context, orderID string) (*order.Order, error) {
	if orderID == "" {
		return nil, ErrOrderNotFound
	}
	s.mu.Lock()
	all := s.load(ctx)
	existing, ok := all[orderID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrOrderNotFound
	}

	advanced, transitions := Advance(existing, s.now(), s.cadence)
	if len(transitions) > 0 {
		all[orderID] = advanced
		s.save(ctx, all)
	}
	s.mu.Unlock()

	for _, t := range transitions {
		s.log.Debug("order advanced",
			zap.String("order_id", orderID),
			zap.String("from", string(t.From)),
			zap.String("to", string(t.To)),
		)
		s.observer.StageAdvanced(ctx, &advanced, t)
	}
	return &advanced, nil
}

func (s *Store) load(ctx context.Context) map[string]order.Order {
	raw, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("order storage unavailable, treating as empty", zap.Error(err))
		}
		return make(map[string]order.Order)
	}

	var all map[string]order.Order
	if err := json.Unmarshal(raw, &all); err != nil {
		s.log.Warn("malformed order data, treating as empty", zap.Error(err))
		return make(map[string]order.Order)
	}
	if all == nil {
		all = make(map[string]order.Order)
	}
	return all
}

func (s *Store) save(ctx context.Context, all map[string]order.Order) {
	raw, err := json.Marshal(all)
	if err != nil {
		s.log.Warn("encode orders", zap.Error(err))
		return
	}
	if err := s.blobs.Put(ctx, s.key, raw); err != nil {
		s.log.Warn("order write dropped", zap.Error(err))
	}
}
