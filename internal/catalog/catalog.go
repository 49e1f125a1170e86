package catalog

import (
	"context"
	"sync"

	apperrors "github.com/utafrali/MiniShopGo/pkg/errors"
)

// Product is the catalog record the cart consumes: existence, display name,
// and the live price used at view and checkout time.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Catalog resolves products for the cart and checkout flows.
type Catalog interface {
	// Get returns the product with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Product, error)

	// List returns all products.
	List(ctx context.Context) ([]Product, error)
}

// Memory is a seeded, process-local catalog. Thread-safe via sync.RWMutex.
type Memory struct {
	mu       sync.RWMutex
	products map[string]Product
	order    []string
}

// NewMemory creates an in-memory catalog seeded with the given products.
func NewMemory(seed []Product) *Memory {
	m := &Memory{
		products: make(map[string]Product, len(seed)),
		order:    make([]string, 0, len(seed)),
	}
	for _, p := range seed {
		if _, ok := m.products[p.ID]; !ok {
			m.order = append(m.order, p.ID)
		}
		m.products[p.ID] = p
	}
	return m
}

// Get returns the product with the given id, or ErrNotFound.
func (m *Memory) Get(_ context.Context, id string) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

// List returns all products in seed order.
func (m *Memory) List(_ context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Product, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.products[id])
	}
	return out, nil
}

// Delete removes a product from the catalog. Cart lines referencing a deleted
// product keep appearing in the cart view with name "Unknown" and price 0.
func (m *Memory) Delete(_ context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.products, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// DefaultProducts is the demo catalog seeded at startup.
func DefaultProducts() []Product {
	return []Product{
		{ID: "p1", Name: "Classic Tee", Price: 19.99},
		{ID: "p2", Name: "Running Sneakers", Price: 69.5},
		{ID: "p3", Name: "Denim Jacket", Price: 89.0},
		{ID: "p4", Name: "Sneaky Socks (3 pack)", Price: 12.0},
		{ID: "p5", Name: "Leather Wallet", Price: 39.9},
		{ID: "p6", Name: "Wireless Earbuds", Price: 129.99},
	}
}
