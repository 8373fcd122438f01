// AngelaMos | 2026
// catalog.go

package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/bookheaven/internal/catalog"
	"github.com/carterperez-dev/bookheaven/internal/core"
)

// CatalogStore is an in-memory catalog.Repository.
type CatalogStore struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]catalog.Product
}

var _ catalog.Repository = (*CatalogStore)(nil)

func NewCatalogStore(products ...catalog.Product) *CatalogStore {
	s := &CatalogStore{products: make(map[primitive.ObjectID]catalog.Product)}
	for _, p := range products {
		s.Put(p)
	}
	return s
}

// Put stores p, assigning an id when it has none, and returns the stored copy.
func (s *CatalogStore) Put(p catalog.Product) catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.products[p.ID] = p
	return p
}

func (s *CatalogStore) Delete(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

func (s *CatalogStore) List(_ context.Context, category string) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []catalog.Product{}
	for _, p := range s.products {
		if category == "" || strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (s *CatalogStore) GetByID(_ context.Context, id primitive.ObjectID) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
	}
	return &p, nil
}

func (s *CatalogStore) GetMany(
	_ context.Context,
	ids []primitive.ObjectID,
) (map[primitive.ObjectID]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := make(map[primitive.ObjectID]catalog.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

func (s *CatalogStore) UpsertByName(_ context.Context, p *catalog.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.products {
		if existing.Name == p.Name {
			p.ID, p.CreatedAt = id, existing.CreatedAt
			s.products[id] = *p
			return false, nil
		}
	}

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.products[p.ID] = *p
	return true, nil
}
