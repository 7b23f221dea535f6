package catalog

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/antonminaichev/mediexpress/internal/types/product"
)

const DefaultLimit = 12

var ErrProductNotFound = errors.New("product not found")

const warnNotConfigured = "API base URL not configured."

type Query struct {
	Q        string
	Category string
	Page     int
	Limit    int
}

type Page struct {
	Items        []product.Product `json:"items"`
	Page         int               `json:"page"`
	TotalPages   int               `json:"totalPages"`
	Total        int               `json:"total"`
	FromFallback bool              `json:"fromFallback"`
	Warning      string            `json:"warning,omitempty"`
}

type Service struct {
	remote   Remote
	fallback []product.Product
	log      *zap.Logger
}

// NewService serves from remote when it is non-nil and answers, otherwise from
// the fallback list.
func NewService(remote Remote, fallback []product.Product, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{remote: remote, fallback: fallback, log: log}
}

func (s *Service) List(ctx context.Context, q Query) (*Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}

	warning := warnNotConfigured
	if s.remote != nil {
		p, err := s.remote.ListProducts(ctx, q)
		if err == nil {
			return p, nil
		}
		s.log.Warn("remote catalog failed, serving fallback", zap.Error(err))
		warning = err.Error()
	}

	filtered := s.filter(q)
	total := len(filtered)
	totalPages := (total + q.Limit - 1) / q.Limit
	if totalPages < 1 {
		totalPages = 1
	}
	page := q.Page
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * q.Limit
	end := start + q.Limit
	if end > total {
		end = total
	}

	return &Page{
		Items:        append([]product.Product{}, filtered[start:end]...),
		Page:         page,
		TotalPages:   totalPages,
		Total:        total,
		FromFallback: true,
		Warning:      warning,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*product.Product, error) {
	if s.remote != nil {
		p, err := s.remote.GetProduct(ctx, id)
		if err == nil && p != nil {
			return p, nil
		}
		if err != nil {
			s.log.Warn("remote product lookup failed, using fallback", zap.String("product_id", id), zap.Error(err))
		}
	}
	for _, p := range s.fallback {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (s *Service) filter(q Query) []product.Product {
	qq := strings.ToLower(strings.TrimSpace(q.Q))
	cat := strings.ToLower(strings.TrimSpace(q.Category))

	out := make([]product.Product, 0, len(s.fallback))
	for _, p := range s.fallback {
		matchesQ := qq == "" ||
			strings.Contains(strings.ToLower(p.Name), qq) ||
			strings.Contains(strings.ToLower(p.GenericName), qq) ||
			strings.Contains(strings.ToLower(p.Manufacturer), qq)
		matchesCat := cat == "" || strings.ToLower(p.Category) == cat
		if matchesQ && matchesCat {
			out = append(out, p)
		}
	}
	return out
}
