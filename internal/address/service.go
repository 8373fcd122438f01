// AngelaMos | 2026
// service.go

package address

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

const maxSaveAttempts = 3

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List creates the empty book on first access.
func (s *Service) List(ctx context.Context, userID string) ([]Address, error) {
	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}

	b, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	return b.Addresses, nil
}

func (s *Service) Add(ctx context.Context, userID string, in Input) ([]Address, error) {
	return s.mutate(ctx, userID, func(b *Book, now time.Time) error {
		b.Add(in, now)
		return nil
	})
}

func (s *Service) Update(ctx context.Context, userID, addressID string, p Patch) ([]Address, error) {
	id, err := core.ParseObjectID(addressID)
	if err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}
	return s.mutate(ctx, userID, func(b *Book, now time.Time) error {
		return b.Update(id, p, now)
	})
}

func (s *Service) SetDefault(ctx context.Context, userID, addressID string) ([]Address, error) {
	id, err := core.ParseObjectID(addressID)
	if err != nil {
		return nil, fmt.Errorf("set default address: %w", err)
	}
	return s.mutate(ctx, userID, func(b *Book, now time.Time) error {
		return b.SetDefault(id, now)
	})
}

func (s *Service) Remove(ctx context.Context, userID, addressID string) ([]Address, error) {
	id, err := core.ParseObjectID(addressID)
	if err != nil {
		return nil, fmt.Errorf("remove address: %w", err)
	}
	return s.mutate(ctx, userID, func(b *Book, now time.Time) error {
		return b.Remove(id, now)
	})
}

// Resolve picks addressID, or the default when addressID is empty.
func (s *Service) Resolve(ctx context.Context, userID, addressID string) (*Address, error) {
	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}

	b, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("resolve address: %w", err)
	}

	if addressID == "" {
		if a, ok := b.Default(); ok {
			return a, nil
		}
		if len(b.Addresses) > 0 {
			return &b.Addresses[0], nil
		}
		return nil, fmt.Errorf("resolve address: %w", core.ErrNotFound)
	}

	id, err := core.ParseObjectID(addressID)
	if err != nil {
		return nil, fmt.Errorf("resolve address: %w", err)
	}
	a, ok := b.Find(id)
	if !ok {
		return nil, fmt.Errorf("resolve address: %w", core.ErrNotFound)
	}
	return a, nil
}

func (s *Service) mutate(
	ctx context.Context,
	userID string,
	apply func(*Book, time.Time) error,
) ([]Address, error) {
	uid, err := core.ParseObjectID(userID)
	if err != nil {
		return nil, err
	}

	for range maxSaveAttempts {
		b, err := s.load(ctx, uid)
		if err != nil {
			return nil, err
		}

		now := s.now()
		if err := apply(b, now); err != nil {
			return nil, err
		}
		b.UpdatedAt = now

		err = s.repo.Save(ctx, b)
		if err == nil {
			return b.Addresses, nil
		}
		if !errors.Is(err, core.ErrConflict) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("update address book: %w", core.ErrConflict)
}

func (s *Service) load(ctx context.Context, uid primitive.ObjectID) (*Book, error) {
	b, err := s.repo.Get(ctx, uid)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	b = &Book{UserID: uid, Addresses: []Address{}, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return s.repo.Get(ctx, uid)
		}
		return nil, err
	}
	return b, nil
}
