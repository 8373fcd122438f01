// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, category string) ([]Product, error) {
	return s.repo.List(ctx, strings.TrimSpace(category))
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	oid, err := core.ParseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return s.repo.GetByID(ctx, oid)
}

// GetMany resolves references in one round trip. Unknown ids are absent
// from the result.
func (s *Service) GetMany(
	ctx context.Context,
	ids []primitive.ObjectID,
) (map[primitive.ObjectID]Product, error) {
	return s.repo.GetMany(ctx, uniqueIDs(ids))
}

type SeedResult struct {
	Inserted int
	Updated  int
}

func (s *Service) Seed(ctx context.Context, products []Product) (SeedResult, error) {
	var res SeedResult
	for i := range products {
		p := &products[i]
		if strings.TrimSpace(p.Name) == "" {
			return res, fmt.Errorf("seed product %d: missing name: %w", i, core.ErrInvalidInput)
		}
		if p.Price < 0 || p.Stock < 0 {
			return res, fmt.Errorf("seed %q: negative price or stock: %w", p.Name, core.ErrInvalidInput)
		}

		inserted, err := s.repo.UpsertByName(ctx, p)
		if err != nil {
			return res, fmt.Errorf("seed %q: %w", p.Name, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	return res, nil
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
