// AngelaMos | 2026
// accounts.go

package customer

import (
	"context"
	"time"

	"github.com/carterperez-dev/bookheaven/internal/auth"
)

// AccountStore exposes customers to the session component.
type AccountStore struct {
	repo Repository
}

var _ auth.AccountStore = (*AccountStore)(nil)

func NewAccountStore(repo Repository) *AccountStore {
	return &AccountStore{repo: repo}
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	c, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return c.Account(), nil
}

func (s *AccountStore) GetByID(ctx context.Context, id string) (*auth.Account, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.Account(), nil
}

func (s *AccountStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *AccountStore) SetRefreshToken(
	ctx context.Context,
	id, tokenHash string,
	expiresAt time.Time,
) error {
	return s.repo.SetRefreshToken(ctx, id, tokenHash, expiresAt)
}

func (s *AccountStore) RotateRefreshToken(
	ctx context.Context,
	oldHash string,
	now time.Time,
	newHash string,
	expiresAt time.Time,
) (*auth.Account, error) {
	c, err := s.repo.RotateRefreshToken(ctx, oldHash, now, newHash, expiresAt)
	if err != nil {
		return nil, err
	}
	return c.Account(), nil
}

func (s *AccountStore) ClearRefreshToken(ctx context.Context, id string) error {
	return s.repo.ClearRefreshToken(ctx, id)
}
