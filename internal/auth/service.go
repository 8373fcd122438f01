// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/metrics"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
)

const refreshTokenBytes = 32

type Service struct {
	accounts AccountStore
	jwt      *JWTManager
	metrics  metrics.Recorder
	now      func() time.Time
}

type Option func(*Service)

func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(accounts AccountStore, jwt *JWTManager, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		jwt:      jwt,
		metrics:  metrics.Nop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session is a freshly issued credential pair.
type Session struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	Account          *Account
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks the password before the verification flag so an unverified
// account is only disclosed to someone who knows its password.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // equalizes timing for unknown emails
			_, _, _ = core.VerifyPasswordTimingSafe(password, nil)
			s.metrics.RecordAuthEvent(metrics.AuthLoginFailed)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(password, &account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		s.metrics.RecordAuthEvent(metrics.AuthLoginFailed)
		return nil, ErrInvalidCredentials
	}

	if !account.EmailVerified {
		s.metrics.RecordAuthEvent(metrics.AuthLoginUnverified)
		return nil, ErrEmailNotVerified
	}

	if newHash != "" {
		if err := s.accounts.UpdatePassword(ctx, account.ID, newHash); err != nil {
			slog.WarnContext(ctx, "password rehash failed",
				"customer_id", account.ID,
				"error", err,
			)
		}
	}

	session, err := s.IssueSession(ctx, account)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAuthEvent(metrics.AuthLoginSuccess)
	return session, nil
}

// IssueSession signs an access token and replaces the stored refresh slot,
// which ends the refresh ability of any other session of the customer.
func (s *Service) IssueSession(ctx context.Context, account *Account) (*Session, error) {
	refresh, refreshHash, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	refreshExpires := s.now().Add(s.jwt.RefreshTTL())
	if err := s.accounts.SetRefreshToken(ctx, account.ID, refreshHash, refreshExpires); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return s.buildSession(ctx, account, refresh, refreshExpires)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}

	next, nextHash, err := newRefreshToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	expires := now.Add(s.jwt.RefreshTTL())

	account, err := s.accounts.RotateRefreshToken(
		ctx,
		core.HashToken(refreshToken),
		now,
		nextHash,
		expires,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !account.EmailVerified {
		if err := s.accounts.ClearRefreshToken(ctx, account.ID); err != nil {
			return nil, fmt.Errorf("clear refresh token: %w", err)
		}
		return nil, ErrEmailNotVerified
	}

	s.metrics.RecordAuthEvent(metrics.AuthRefresh)
	return s.buildSession(ctx, account, next, expires)
}

// Logout clears the refresh slot. Access tokens already handed out stay
// valid until they expire.
func (s *Service) Logout(ctx context.Context, customerID string) error {
	if err := s.accounts.ClearRefreshToken(ctx, customerID); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*middleware.Principal, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, claims.CustomerID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("authenticate: customer gone: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return &middleware.Principal{
		UserID: account.ID,
		Email:  account.Email,
		Role:   account.Role,
	}, nil
}

func (s *Service) buildSession(
	ctx context.Context,
	account *Account,
	refresh string,
	refreshExpires time.Time,
) (*Session, error) {
	access, accessExpires, err := s.jwt.CreateAccessToken(account.ID, account.Role)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	core.AddSpanEvent(ctx, "session.issued", attribute.String("customer.id", account.ID))

	return &Session{
		AccessToken:      access,
		AccessExpiresAt:  accessExpires,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpires,
		Account:          account,
	}, nil
}

func newRefreshToken() (string, string, error) {
	raw, err := core.GenerateSecureToken(refreshTokenBytes)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}
	return raw, core.HashToken(raw), nil
}
