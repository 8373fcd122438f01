// AngelaMos | 2026
// service.go

package wishlist

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/bookheaven/internal/catalog"
	"github.com/carterperez-dev/bookheaven/internal/core"
)

type ProductResolver interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]catalog.Product, error)
}

type Service struct {
	repo     Repository
	products ProductResolver
}

func NewService(repo Repository, products ProductResolver) *Service {
	return &Service{repo: repo, products: products}
}

// List resolves the stored ids in insertion order, skipping products that
// have since been removed from the catalog.
func (s *Service) List(ctx context.Context, userID string) ([]catalog.Product, error) {
	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}

	w, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	found, err := s.products.GetMany(ctx, w.Products)
	if err != nil {
		return nil, fmt.Errorf("resolve wishlist products: %w", err)
	}

	out := make([]catalog.Product, 0, len(w.Products))
	for _, id := range w.Products {
		if p, ok := found[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Add(ctx context.Context, userID, productID string) ([]catalog.Product, error) {
	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("add to wishlist: %w", err)
	}

	if err := s.repo.Add(ctx, uid, p.ID); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) ([]catalog.Product, error) {
	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}
	pid, err := core.ParseObjectID(productID)
	if err != nil {
		return nil, fmt.Errorf("remove from wishlist: %w", err)
	}

	if err := s.repo.Remove(ctx, uid, pid); err != nil {
		return nil, err
	}
	return s.List(ctx, userID)
}
