// AngelaMos | 2026
// service.go

package subscription

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CustomerLookup answers whether a verified account owns the address.
type CustomerLookup interface {
	IsVerifiedEmail(ctx context.Context, email string) (bool, error)
}

type Service struct {
	repo      Repository
	customers CustomerLookup
	now       func() time.Time
}

func NewService(repo Repository, customers CustomerLookup) *Service {
	return &Service{repo: repo, customers: customers, now: time.Now}
}

func (s *Service) Subscribe(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	isUser, err := s.customers.IsVerifiedEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("subscribe: %w", err)
	}

	return s.repo.Upsert(ctx, email, isUser, s.now().UTC())
}
