// AngelaMos | 2026
// customers.go

package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/customer"
)

// CustomerStore is an in-memory customer.Repository.
type CustomerStore struct {
	mu        sync.Mutex
	customers map[primitive.ObjectID]*customer.Customer
	feedback  []customer.Feedback
}

var _ customer.Repository = (*CustomerStore)(nil)

func NewCustomerStore() *CustomerStore {
	return &CustomerStore{customers: make(map[primitive.ObjectID]*customer.Customer)}
}

func (s *CustomerStore) Create(_ context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byEmail(c.Email) != nil {
		return fmt.Errorf("create customer: %w", core.ErrDuplicateKey)
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	stored := *c
	s.customers[c.ID] = &stored
	return nil
}

func (s *CustomerStore) GetByID(_ context.Context, id string) (*customer.Customer, error) {
	oid, err := core.ParseObjectID(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[oid]
	if !ok {
		return nil, fmt.Errorf("get customer: %w", core.ErrNotFound)
	}
	return clone(c), nil
}

func (s *CustomerStore) GetByEmail(_ context.Context, email string) (*customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byEmail(email)
	if c == nil {
		return nil, fmt.Errorf("get customer by email: %w", core.ErrNotFound)
	}
	return clone(c), nil
}

func (s *CustomerStore) UpdateProfile(
	_ context.Context,
	id, name, email string,
	resetVerification bool,
) (*customer.Customer, error) {
	return s.mutate(id, func(c *customer.Customer) error {
		if other := s.byEmail(email); other != nil && other.ID != c.ID {
			return fmt.Errorf("update profile: %w", core.ErrDuplicateKey)
		}
		c.Name, c.Email = name, email
		if resetVerification {
			c.EmailVerified = false
			c.RefreshTokenHash, c.RefreshTokenExpire = "", nil
		}
		return nil
	})
}

func (s *CustomerStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	_, err := s.mutate(id, func(c *customer.Customer) error {
		c.PasswordHash = passwordHash
		return nil
	})
	return err
}

func (s *CustomerStore) SetToken(
	_ context.Context,
	id string,
	kind customer.TokenKind,
	hash string,
	expiresAt time.Time,
) error {
	_, err := s.mutate(id, func(c *customer.Customer) error {
		h, exp := slot(c, kind)
		*h, *exp = hash, &expiresAt
		return nil
	})
	return err
}

func (s *CustomerStore) ClearToken(_ context.Context, id string, kind customer.TokenKind, hash string) error {
	_, err := s.mutate(id, func(c *customer.Customer) error {
		h, exp := slot(c, kind)
		if *h == hash {
			*h, *exp = "", nil
		}
		return nil
	})
	return err
}

func (s *CustomerStore) ConsumeToken(
	_ context.Context,
	kind customer.TokenKind,
	hash string,
	now time.Time,
	effect customer.TokenEffect,
) (*customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.customers {
		h, exp := slot(c, kind)
		if hash == "" || *h != hash || *exp == nil || !(*exp).After(now) {
			continue
		}

		*h, *exp = "", nil
		if effect.Verify {
			c.EmailVerified = true
		}
		if effect.PasswordHash != "" {
			c.PasswordHash = effect.PasswordHash
			c.RefreshTokenHash, c.RefreshTokenExpire = "", nil
		}
		c.UpdatedAt = now
		return clone(c), nil
	}
	return nil, fmt.Errorf("consume token: %w", core.ErrNotFound)
}

func (s *CustomerStore) MarkVerified(_ context.Context, email string) (*customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byEmail(email)
	if c == nil {
		return nil, fmt.Errorf("mark verified: %w", core.ErrNotFound)
	}
	c.EmailVerified = true
	c.EmailVerificationToken, c.EmailVerificationExpire = "", nil
	return clone(c), nil
}

func (s *CustomerStore) SetRefreshToken(_ context.Context, id, hash string, expiresAt time.Time) error {
	_, err := s.mutate(id, func(c *customer.Customer) error {
		c.RefreshTokenHash, c.RefreshTokenExpire = hash, &expiresAt
		return nil
	})
	return err
}

func (s *CustomerStore) RotateRefreshToken(
	_ context.Context,
	oldHash string,
	now time.Time,
	newHash string,
	expiresAt time.Time,
) (*customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.customers {
		if oldHash == "" || c.RefreshTokenHash != oldHash || !c.EmailVerified {
			continue
		}
		if c.RefreshTokenExpire == nil || !c.RefreshTokenExpire.After(now) {
			continue
		}
		c.RefreshTokenHash, c.RefreshTokenExpire = newHash, &expiresAt
		return clone(c), nil
	}
	return nil, fmt.Errorf("rotate refresh token: %w", core.ErrNotFound)
}

func (s *CustomerStore) ClearRefreshToken(_ context.Context, id string) error {
	_, err := s.mutate(id, func(c *customer.Customer) error {
		c.RefreshTokenHash, c.RefreshTokenExpire = "", nil
		return nil
	})
	return err
}

func (s *CustomerStore) SetRole(_ context.Context, email, role string) (*customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byEmail(email)
	if c == nil {
		return nil, fmt.Errorf("set role: %w", core.ErrNotFound)
	}
	c.Role = role
	return clone(c), nil
}

func (s *CustomerStore) AddFeedback(_ context.Context, f *customer.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	s.feedback = append(s.feedback, *f)
	return nil
}

func (s *CustomerStore) ListFeedback(_ context.Context, status string) ([]customer.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []customer.Feedback{}
	for i := len(s.feedback) - 1; i >= 0; i-- {
		if status == "" || s.feedback[i].Status == status {
			out = append(out, s.feedback[i])
		}
	}
	return out, nil
}

func (s *CustomerStore) GetFeedback(_ context.Context, id primitive.ObjectID) (*customer.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.feedback {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("get feedback: %w", core.ErrNotFound)
}

func (s *CustomerStore) SetFeedbackStatus(
	_ context.Context,
	id primitive.ObjectID,
	status string,
	now time.Time,
) (*customer.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.feedback {
		if s.feedback[i].ID == id {
			s.feedback[i].Status, s.feedback[i].UpdatedAt = status, now
			f := s.feedback[i]
			return &f, nil
		}
	}
	return nil, fmt.Errorf("set feedback status: %w", core.ErrNotFound)
}

func (s *CustomerStore) Feedback() []customer.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]customer.Feedback(nil), s.feedback...)
}

// Peek returns the stored document for assertions on token slots.
func (s *CustomerStore) Peek(email string) *customer.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byEmail(email)
	if c == nil {
		return nil
	}
	return clone(c)
}

func (s *CustomerStore) mutate(id string, fn func(*customer.Customer) error) (*customer.Customer, error) {
	oid, err := core.ParseObjectID(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[oid]
	if !ok {
		return nil, fmt.Errorf("update customer: %w", core.ErrNotFound)
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now()
	return clone(c), nil
}

func (s *CustomerStore) byEmail(email string) *customer.Customer {
	for _, c := range s.customers {
		if c.Email == email {
			return c
		}
	}
	return nil
}

func slot(c *customer.Customer, kind customer.TokenKind) (*string, **time.Time) {
	if kind == customer.TokenReset {
		return &c.ResetPasswordToken, &c.ResetPasswordExpire
	}
	return &c.EmailVerificationToken, &c.EmailVerificationExpire
}

func clone(c *customer.Customer) *customer.Customer {
	out := *c
	return &out
}
