// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"time"
)

// Account is the slice of a customer record the session component needs.
type Account struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          string
	EmailVerified bool
	CreatedAt     time.Time
}

// AccountStore persists the single refresh slot on the customer record.
// Lookups return an error wrapping core.ErrNotFound when nothing matches.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetRefreshToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	// RotateRefreshToken swaps oldHash for newHash only while oldHash is
	// still stored and unexpired at now.
	RotateRefreshToken(
		ctx context.Context,
		oldHash string,
		now time.Time,
		newHash string,
		expiresAt time.Time,
	) (*Account, error)
	ClearRefreshToken(ctx context.Context, id string) error
}
