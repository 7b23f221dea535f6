package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/antonminaichev/mediexpress/internal/pricing"
	"github.com/antonminaichev/mediexpress/internal/types/cart"
	"github.com/antonminaichev/mediexpress/internal/types/order"
	"github.com/antonminaichev/mediexpress/internal/types/product"
)

// MaxQty caps a single cart line.
const MaxQty = 99

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrOutOfStock = errors.New("product is out of stock")
)

type ProductResolver interface {
	Get(ctx context.Context, id string) (*product.Product, error)
}

type OrderPlacer interface {
	CreateOrder(ctx context.Context, items []order.Item, totals order.Totals) *order.Order
}

type Line struct {
	order.Item
	pricing.LinePrices
}

type View struct {
	Items     []Line       `json:"items"`
	ItemCount int          `json:"itemCount"`
	Totals    order.Totals `json:"totals"`
}

type Service struct {
	repo     *Repository
	products ProductResolver
	orders   OrderPlacer
	rate     decimal.Decimal
	log      *zap.Logger

	mu sync.Mutex
}

func NewService(repo *Repository, products ProductResolver, orders OrderPlacer, rate decimal.Decimal, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, products: products, orders: orders, rate: rate, log: log}
}

func clampQty(q int) int {
	if q < 1 {
		return 1
	}
	if q > MaxQty {
		return MaxQty
	}
	return q
}

func (s *Service) view(c cart.Cart) *View {
	v := &View{Items: make([]Line, 0, len(c.Items)), ItemCount: c.ItemCount()}
	for _, it := range c.Items {
		v.Items = append(v.Items, Line{Item: it, LinePrices: pricing.Line(it.Product, it.Qty, s.rate)})
	}
	v.Totals = pricing.Totals(c.Items, s.rate)
	return v
}

func (s *Service) Get(ctx context.Context, userID int64) *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(s.repo.Load(ctx, userID))
}

// Add puts qty units of a product in the cart, merging with an existing line.
func (s *Service) Add(ctx context.Context, userID int64, productID string, qty int) (*View, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Availability == product.OutOfStock {
		return nil, ErrOutOfStock
	}
	qty = clampQty(qty)

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.repo.Load(ctx, userID)
	merged := false
	for i := range c.Items {
		if c.Items[i].Product.ID == p.ID {
			c.Items[i].Qty = clampQty(c.Items[i].Qty + qty)
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, order.Item{Product: *p, Qty: qty})
	}
	if err := s.repo.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

// SetQuantity sets a line's quantity; zero or less removes the line. Unknown
// products are left alone.
func (s *Service) SetQuantity(ctx context.Context, userID int64, productID string, qty int) (*View, error) {
	if qty <= 0 {
		return s.Remove(ctx, userID, productID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.repo.Load(ctx, userID)
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items[i].Qty = clampQty(qty)
		}
	}
	if err := s.repo.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *Service) Remove(ctx context.Context, userID int64, productID string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.repo.Load(ctx, userID)
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.Product.ID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	if err := s.repo.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return s.view(c), nil
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Save(ctx, userID, cart.Cart{})
}

// Checkout turns the cart into an order and empties it.
func (s *Service) Checkout(ctx context.Context, userID int64) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.repo.Load(ctx, userID)
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}
	o := s.orders.CreateOrder(ctx, c.Items, pricing.Totals(c.Items, s.rate))
	if err := s.repo.Save(ctx, userID, cart.Cart{}); err != nil {
		s.log.Warn("cart not cleared after checkout", zap.Int64("user_id", userID), zap.String("order_id", o.OrderID), zap.Error(err))
	}
	s.log.Info("checkout", zap.Int64("user_id", userID), zap.String("order_id", o.OrderID))
	return o, nil
}
