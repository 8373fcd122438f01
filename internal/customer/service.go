// AngelaMos | 2026
// service.go

package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/bookheaven/internal/auth"
	"github.com/carterperez-dev/bookheaven/internal/config"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/metrics"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
)

var (
	ErrEmailTaken       = errors.New("email already registered")
	ErrDisposableEmail  = errors.New("disposable email address")
	ErrAlreadyVerified  = errors.New("email already verified")
	ErrMailFailed       = errors.New("mail delivery failed")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

const emailTokenBytes = 32

type SessionIssuer interface {
	IssueSession(ctx context.Context, account *auth.Account) (*auth.Session, error)
}

// Notifier delivers the emailed-token links.
type Notifier interface {
	SendVerification(ctx context.Context, to, name, token string) error
	SendPasswordReset(ctx context.Context, to, name, token string) error
}

type Service struct {
	repo            Repository
	sessions        SessionIssuer
	notifier        Notifier
	metrics         metrics.Recorder
	policy          *bluemonday.Policy
	verificationTTL time.Duration
	resetTTL        time.Duration
	now             func() time.Time
}

type Option func(*Service)

func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	repo Repository,
	sessions SessionIssuer,
	notifier Notifier,
	cfg config.AuthConfig,
	opts ...Option,
) *Service {
	s := &Service{
		repo:            repo,
		sessions:        sessions,
		notifier:        notifier,
		metrics:         metrics.Nop{},
		policy:          bluemonday.StrictPolicy(),
		verificationTTL: cfg.VerificationTTL,
		resetTTL:        cfg.ResetTTL,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RegisterResult struct {
	Customer              *Customer
	VerificationEmailSent bool
}

// Register creates an unverified customer. A failed verification mail is
// reported in the result but does not undo the registration.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	email := auth.NormalizeEmail(req.Email)
	if IsDisposableEmail(email) {
		return nil, ErrDisposableEmail
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	raw, hash, err := newEmailToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	expires := now.Add(s.verificationTTL)
	c := &Customer{
		ID:                      primitive.NewObjectID(),
		Name:                    strings.TrimSpace(req.Name),
		Email:                   email,
		PasswordHash:            passwordHash,
		Role:                    middleware.RoleCustomer,
		EmailVerificationToken:  hash,
		EmailVerificationExpire: &expires,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf("register: %w", ErrEmailTaken)
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}

	s.metrics.RecordAuthEvent(metrics.AuthRegister)
	core.AddSpanEvent(ctx, "token.issued", attribute.String("token.kind", TokenVerification.String()))

	sent := true
	if err := s.notifier.SendVerification(ctx, c.Email, c.Name, raw); err != nil {
		sent = false
		s.metrics.RecordMailFailure("verification")
		slog.ErrorContext(ctx, "verification mail failed",
			"customer_id", c.ID.Hex(),
			"error", err,
		)
	}

	return &RegisterResult{Customer: c, VerificationEmailSent: sent}, nil
}

// IssueToken stores the hash of a new token for kind, replacing any
// outstanding one, and returns the raw value for the emailed link.
func (s *Service) IssueToken(ctx context.Context, c *Customer, kind TokenKind) (string, error) {
	raw, hash, err := newEmailToken()
	if err != nil {
		return "", err
	}

	if err := s.repo.SetToken(ctx, c.ID.Hex(), kind, hash, s.now().Add(s.ttl(kind))); err != nil {
		return "", fmt.Errorf("issue %s token: %w", kind, err)
	}

	core.AddSpanEvent(ctx, "token.issued", attribute.String("token.kind", kind.String()))
	return raw, nil
}

// ConsumeToken redeems a raw token once. Unknown, expired and already used
// tokens all report core.ErrTokenInvalid.
func (s *Service) ConsumeToken(
	ctx context.Context,
	raw string,
	kind TokenKind,
	effect TokenEffect,
) (*Customer, error) {
	if raw == "" {
		return nil, fmt.Errorf("consume %s token: %w", kind, core.ErrTokenInvalid)
	}

	c, err := s.repo.ConsumeToken(ctx, kind, core.HashToken(raw), s.now(), effect)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("consume %s token: %w", kind, core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("consume %s token: %w", kind, err)
	}

	core.AddSpanEvent(ctx, "token.consumed", attribute.String("token.kind", kind.String()))
	return c, nil
}

func (s *Service) VerifyEmail(ctx context.Context, raw string) (*auth.Session, error) {
	c, err := s.ConsumeToken(ctx, raw, TokenVerification, TokenEffect{Verify: true})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAuthEvent(metrics.AuthVerify)
	return s.sessions.IssueSession(ctx, c.Account())
}

// DebugVerify skips the emailed token. Only routed when debug endpoints
// are enabled outside production.
func (s *Service) DebugVerify(ctx context.Context, email string) (*auth.Session, error) {
	c, err := s.repo.MarkVerified(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("debug verify: %w", err)
	}
	return s.sessions.IssueSession(ctx, c.Account())
}

func (s *Service) MarkVerified(ctx context.Context, email string) (*Customer, error) {
	return s.repo.MarkVerified(ctx, auth.NormalizeEmail(email))
}

func (s *Service) ResendVerification(ctx context.Context, email string) error {
	c, err := s.repo.GetByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("resend verification: %w", err)
	}

	if c.EmailVerified {
		return ErrAlreadyVerified
	}

	raw, err := s.IssueToken(ctx, c, TokenVerification)
	if err != nil {
		return err
	}

	if err := s.notifier.SendVerification(ctx, c.Email, c.Name, raw); err != nil {
		s.metrics.RecordMailFailure("verification")
		return fmt.Errorf("%w: %v", ErrMailFailed, err)
	}
	return nil
}

// RequestPasswordReset returns nil for unknown emails. When the mail cannot
// be sent the just-issued token is withdrawn again.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	c, err := s.repo.GetByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("request reset: %w", err)
	}

	raw, err := s.IssueToken(ctx, c, TokenReset)
	if err != nil {
		return err
	}
	s.metrics.RecordAuthEvent(metrics.AuthResetRequested)

	if err := s.notifier.SendPasswordReset(ctx, c.Email, c.Name, raw); err != nil {
		s.metrics.RecordMailFailure("reset")
		if clearErr := s.repo.ClearToken(ctx, c.ID.Hex(), TokenReset, core.HashToken(raw)); clearErr != nil {
			slog.ErrorContext(ctx, "withdraw reset token failed",
				"customer_id", c.ID.Hex(),
				"error", clearErr,
			)
		}
		return fmt.Errorf("%w: %v", ErrMailFailed, err)
	}
	return nil
}

// ConfirmPasswordReset replaces the password and drops the refresh slot in
// the write that consumes the token.
func (s *Service) ConfirmPasswordReset(ctx context.Context, raw, newPassword string) error {
	passwordHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.ConsumeToken(ctx, raw, TokenReset, TokenEffect{PasswordHash: passwordHash}); err != nil {
		return err
	}

	s.metrics.RecordAuthEvent(metrics.AuthResetCompleted)
	return nil
}

func (s *Service) Me(ctx context.Context, id string) (*Customer, error) {
	return s.repo.GetByID(ctx, id)
}

type ProfileResult struct {
	Customer *Customer
	// EmailChanged is set when a new verification mail was attempted.
	EmailChanged          bool
	VerificationEmailSent bool
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	id string,
	req UpdateProfileRequest,
) (*ProfileResult, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = current.Name
	}

	email := auth.NormalizeEmail(req.Email)
	if email == "" {
		email = current.Email
	}
	changed := email != current.Email

	if changed && IsDisposableEmail(email) {
		return nil, ErrDisposableEmail
	}

	updated, err := s.repo.UpdateProfile(ctx, id, name, email, changed)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf("update profile: %w", ErrEmailTaken)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	result := &ProfileResult{Customer: updated, EmailChanged: changed}
	if !changed {
		return result, nil
	}

	raw, err := s.IssueToken(ctx, updated, TokenVerification)
	if err != nil {
		return nil, err
	}

	result.VerificationEmailSent = true
	if err := s.notifier.SendVerification(ctx, updated.Email, updated.Name, raw); err != nil {
		result.VerificationEmailSent = false
		s.metrics.RecordMailFailure("verification")
		slog.ErrorContext(ctx, "verification mail failed",
			"customer_id", id,
			"error", err,
		)
	}
	return result, nil
}

// ChangePassword checks the old password before comparing the new pair and
// answers with a new session, which also rotates the refresh slot.
func (s *Service) ChangePassword(
	ctx context.Context,
	id string,
	req ChangePasswordRequest,
) (*auth.Session, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}
	if !c.EmailVerified {
		return nil, auth.ErrEmailNotVerified
	}

	valid, err := core.VerifyPassword(req.OldPassword, c.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, auth.ErrInvalidCredentials
	}

	if req.NewPassword != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	passwordHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, id, passwordHash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	c.PasswordHash = passwordHash
	return s.sessions.IssueSession(ctx, c.Account())
}

func (s *Service) AddFeedback(ctx context.Context, id string, req FeedbackRequest) (*Feedback, error) {
	oid, err := core.ParseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("add feedback: %w", err)
	}

	f := &Feedback{
		ID:         primitive.NewObjectID(),
		CustomerID: oid,
		Topic:      strings.TrimSpace(s.policy.Sanitize(req.Topic)),
		Feedback:   strings.TrimSpace(s.policy.Sanitize(req.Feedback)),
		Status:     FeedbackOpen,
		CreatedAt:  s.now(),
	}
	f.UpdatedAt = f.CreatedAt
	if f.Topic == "" || f.Feedback == "" {
		return nil, fmt.Errorf("add feedback: empty after sanitizing: %w", core.ErrInvalidInput)
	}

	if err := s.repo.AddFeedback(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) ListFeedback(ctx context.Context, status string) ([]Feedback, error) {
	if status != "" && !ValidFeedbackStatus(status) {
		return nil, fmt.Errorf("list feedback: status %q: %w", status, core.ErrInvalidInput)
	}
	return s.repo.ListFeedback(ctx, status)
}

func (s *Service) GetFeedback(ctx context.Context, id string) (*Feedback, error) {
	oid, err := core.ParseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("get feedback: %w", err)
	}
	return s.repo.GetFeedback(ctx, oid)
}

func (s *Service) UpdateFeedbackStatus(ctx context.Context, id, status string) (*Feedback, error) {
	if !ValidFeedbackStatus(status) {
		return nil, fmt.Errorf("update feedback: status %q: %w", status, core.ErrInvalidInput)
	}
	oid, err := core.ParseObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("update feedback: %w", err)
	}
	return s.repo.SetFeedbackStatus(ctx, oid, status, s.now())
}

func (s *Service) IsVerifiedEmail(ctx context.Context, email string) (bool, error) {
	c, err := s.repo.GetByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return c.EmailVerified, nil
}

func (s *Service) SetRole(ctx context.Context, email, role string) (*Customer, error) {
	switch role {
	case middleware.RoleCustomer, middleware.RoleAdmin:
	default:
		return nil, fmt.Errorf("set role %q: %w", role, core.ErrInvalidInput)
	}
	return s.repo.SetRole(ctx, auth.NormalizeEmail(email), role)
}

func (s *Service) ttl(kind TokenKind) time.Duration {
	if kind == TokenReset {
		return s.resetTTL
	}
	return s.verificationTTL
}

func newEmailToken() (raw, hash string, err error) {
	raw, err = core.GenerateHexToken(emailTokenBytes)
	if err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	return raw, core.HashToken(raw), nil
}
