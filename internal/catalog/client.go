package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/antonminaichev/mediexpress/internal/types/product"
)

// Remote is an optional upstream catalog.
type Remote interface {
	ListProducts(ctx context.Context, q Query) (*Page, error)
	// GetProduct returns nil, nil when the upstream has no such product.
	GetProduct(ctx context.Context, id string) (*product.Product, error)
}

type HTTPClient struct {
	Client  *http.Client
	BaseURL string
}

func NewHTTPClient(client *http.Client, baseURL string) *HTTPClient {
	return &HTTPClient{Client: client, BaseURL: strings.TrimRight(baseURL, "/")}
}

type pageResponse struct {
	Items      []product.Product `json:"items"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
	Total      int               `json:"total"`
}

func (c *HTTPClient) ListProducts(ctx context.Context, q Query) (*Page, error) {
	params := url.Values{}
	if q.Q != "" {
		params.Set("q", q.Q)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))

	body, err := c.get(ctx, "/products?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("catalog endpoint not found")
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		var items []product.Product
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		return &Page{Items: items, Page: 1, TotalPages: 1, Total: len(items)}, nil
	}

	var pr pageResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	p := &Page{Items: pr.Items, Page: pr.Page, TotalPages: pr.TotalPages, Total: pr.Total}
	if p.Items == nil {
		p.Items = []product.Product{}
	}
	if p.Page == 0 {
		p.Page = 1
	}
	if p.TotalPages == 0 {
		p.TotalPages = 1
	}
	if p.Total == 0 {
		p.Total = len(p.Items)
	}
	return p, nil
}

func (c *HTTPClient) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	body, err := c.get(ctx, "/products/"+url.PathEscape(id))
	if err != nil || body == nil {
		return nil, err
	}
	var p product.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return &p, nil
}

// get returns nil, nil on 404.
func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
