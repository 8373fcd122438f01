// AngelaMos | 2026
// service_test.go

package customer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bookheaven/internal/auth"
	"github.com/carterperez-dev/bookheaven/internal/config"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/customer"
	"github.com/carterperez-dev/bookheaven/internal/metrics"
	"github.com/carterperez-dev/bookheaven/internal/testutil"
)

type fixture struct {
	store    *testutil.CustomerStore
	notifier *testutil.Notifier
	metrics  *testutil.Metrics
	auth     *auth.Service
	svc      *customer.Service
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	testutil.CheapPasswords(t)

	f := &fixture{
		store:    testutil.NewCustomerStore(),
		notifier: &testutil.Notifier{},
		metrics:  &testutil.Metrics{},
		now:      time.Now().UTC(),
	}
	clock := func() time.Time { return f.now }

	f.auth = auth.NewService(
		customer.NewAccountStore(f.store),
		testutil.NewJWTManager(t),
		auth.WithClock(clock),
		auth.WithMetrics(f.metrics),
	)
	f.svc = customer.NewService(
		f.store,
		f.auth,
		f.notifier,
		config.AuthConfig{VerificationTTL: 24 * time.Hour, ResetTTL: time.Hour},
		customer.WithClock(clock),
		customer.WithMetrics(f.metrics),
	)
	return f
}

func (f *fixture) register(t *testing.T, email string) *customer.Customer {
	t.Helper()

	res, err := f.svc.Register(context.Background(), customer.RegisterRequest{
		Name:     "Ada",
		Email:    email,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return res.Customer
}

func (f *fixture) registerVerified(t *testing.T, email string) *auth.Session {
	t.Helper()

	f.register(t, email)
	s, err := f.svc.VerifyEmail(context.Background(), f.notifier.LastVerification(email))
	require.NoError(t, err)
	return s
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Register(context.Background(), customer.RegisterRequest{
		Name:     " Ada ",
		Email:    "  Ada@Example.COM ",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.True(t, res.VerificationEmailSent)
	assert.Equal(t, "ada@example.com", res.Customer.Email)
	assert.Equal(t, "Ada", res.Customer.Name)
	assert.False(t, res.Customer.EmailVerified)

	stored := f.store.Peek("ada@example.com")
	require.NotNil(t, stored)
	raw := f.notifier.LastVerification("ada@example.com")
	require.Len(t, raw, 64)
	assert.Equal(t, core.HashToken(raw), stored.EmailVerificationToken)
	assert.NotEqual(t, raw, stored.EmailVerificationToken)
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
	assert.Contains(t, f.metrics.AuthEvents, metrics.AuthRegister)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")

	_, err := f.svc.Register(context.Background(), customer.RegisterRequest{
		Name: "Other", Email: "ADA@example.com", Password: "correct-horse",
	})
	assert.ErrorIs(t, err, customer.ErrEmailTaken)
}

func TestRegisterDisposableEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), customer.RegisterRequest{
		Name: "Ada", Email: "ada@mailinator.com", Password: "correct-horse",
	})
	assert.ErrorIs(t, err, customer.ErrDisposableEmail)
	assert.Nil(t, f.store.Peek("ada@mailinator.com"))
}

func TestRegisterMailFailureKeepsAccount(t *testing.T) {
	f := newFixture(t)
	f.notifier.Fail = true

	res, err := f.svc.Register(context.Background(), customer.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.False(t, res.VerificationEmailSent)
	assert.NotNil(t, f.store.Peek("ada@example.com"))
	assert.Equal(t, []string{"verification"}, f.metrics.MailFailures)
}

func TestLoginOrdering(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")
	ctx := context.Background()

	_, err := f.auth.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, "ada@example.com", "correct-horse")
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)

	_, err = f.svc.VerifyEmail(ctx, f.notifier.LastVerification("ada@example.com"))
	require.NoError(t, err)

	s, err := f.auth.Login(ctx, " ADA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, s.AccessToken)
	assert.NotEmpty(t, s.RefreshToken)
}

func TestVerifyEmailIsSingleUse(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")
	ctx := context.Background()
	raw := f.notifier.LastVerification("ada@example.com")

	s, err := f.svc.VerifyEmail(ctx, raw)
	require.NoError(t, err)
	assert.True(t, s.Account.EmailVerified)

	stored := f.store.Peek("ada@example.com")
	assert.True(t, stored.EmailVerified)
	assert.Empty(t, stored.EmailVerificationToken)
	assert.Nil(t, stored.EmailVerificationExpire)

	_, err = f.svc.VerifyEmail(ctx, raw)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyEmailRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")
	ctx := context.Background()

	for _, raw := range []string{"", "deadbeef", core.HashToken("x")} {
		_, err := f.svc.VerifyEmail(ctx, raw)
		assert.ErrorIs(t, err, core.ErrTokenInvalid, raw)
	}
}

func TestVerifyEmailExpired(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")

	f.now = f.now.Add(24*time.Hour + time.Second)

	_, err := f.svc.VerifyEmail(context.Background(), f.notifier.LastVerification("ada@example.com"))
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
	assert.False(t, f.store.Peek("ada@example.com").EmailVerified)
}

func TestResendVerificationReplacesToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")
	ctx := context.Background()
	first := f.notifier.LastVerification("ada@example.com")

	require.NoError(t, f.svc.ResendVerification(ctx, "ada@example.com"))
	second := f.notifier.LastVerification("ada@example.com")
	require.NotEqual(t, first, second)

	_, err := f.svc.VerifyEmail(ctx, first)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = f.svc.VerifyEmail(ctx, second)
	assert.NoError(t, err)

	err = f.svc.ResendVerification(ctx, "ada@example.com")
	assert.ErrorIs(t, err, customer.ErrAlreadyVerified)

	err = f.svc.ResendVerification(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResendVerificationMailFailure(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")
	f.notifier.Fail = true

	err := f.svc.ResendVerification(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, customer.ErrMailFailed)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	before := f.registerVerified(t, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ada@example.com"))
	raw := f.notifier.LastReset("ada@example.com")
	require.NotEmpty(t, raw)

	require.NoError(t, f.svc.ConfirmPasswordReset(ctx, raw, "brand-new-pass"))

	_, err := f.auth.Login(ctx, "ada@example.com", "correct-horse")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, "ada@example.com", "brand-new-pass")
	assert.NoError(t, err)

	_, err = f.auth.Refresh(ctx, before.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	err = f.svc.ConfirmPasswordReset(ctx, raw, "another-pass")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	assert.Contains(t, f.metrics.AuthEvents, metrics.AuthResetCompleted)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "nobody@example.com"))
	assert.Empty(t, f.notifier.Resets)
}

func TestPasswordResetExpired(t *testing.T) {
	f := newFixture(t)
	f.registerVerified(t, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ada@example.com"))
	f.now = f.now.Add(time.Hour + time.Second)

	err := f.svc.ConfirmPasswordReset(ctx, f.notifier.LastReset("ada@example.com"), "brand-new-pass")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestPasswordResetMailFailureWithdrawsToken(t *testing.T) {
	f := newFixture(t)
	f.registerVerified(t, "ada@example.com")
	f.notifier.Fail = true

	err := f.svc.RequestPasswordReset(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, customer.ErrMailFailed)

	stored := f.store.Peek("ada@example.com")
	assert.Empty(t, stored.ResetPasswordToken)
	assert.Nil(t, stored.ResetPasswordExpire)
	assert.Contains(t, f.metrics.MailFailures, "reset")
}

func TestTokenKindsAreIndependent(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ada@example.com"))
	reset := f.notifier.LastReset("ada@example.com")

	_, err := f.svc.VerifyEmail(ctx, reset)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	err = f.svc.ConfirmPasswordReset(ctx, f.notifier.LastVerification("ada@example.com"), "brand-new-pass")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	s := f.registerVerified(t, "ada@example.com")
	ctx := context.Background()
	id := s.Account.ID

	_, err := f.svc.ChangePassword(ctx, id, customer.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "brand-new-pass", ConfirmPassword: "brand-new-pass",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.ChangePassword(ctx, id, customer.ChangePasswordRequest{
		OldPassword: "correct-horse", NewPassword: "brand-new-pass", ConfirmPassword: "brand-new-typo",
	})
	assert.ErrorIs(t, err, customer.ErrPasswordMismatch)

	next, err := f.svc.ChangePassword(ctx, id, customer.ChangePasswordRequest{
		OldPassword: "correct-horse", NewPassword: "brand-new-pass", ConfirmPassword: "brand-new-pass",
	})
	require.NoError(t, err)
	assert.NotEqual(t, s.RefreshToken, next.RefreshToken)

	_, err = f.auth.Refresh(ctx, s.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = f.auth.Login(ctx, "ada@example.com", "brand-new-pass")
	assert.NoError(t, err)
}

func TestUpdateProfileEmailChange(t *testing.T) {
	f := newFixture(t)
	s := f.registerVerified(t, "ada@example.com")
	f.register(t, "bob@example.com")
	ctx := context.Background()

	_, err := f.svc.UpdateProfile(ctx, s.Account.ID, customer.UpdateProfileRequest{Email: "BOB@example.com"})
	assert.ErrorIs(t, err, customer.ErrEmailTaken)

	res, err := f.svc.UpdateProfile(ctx, s.Account.ID, customer.UpdateProfileRequest{
		Name:  "Ada L",
		Email: "ada.l@example.com",
	})
	require.NoError(t, err)
	assert.True(t, res.EmailChanged)
	assert.True(t, res.VerificationEmailSent)
	assert.Equal(t, "Ada L", res.Customer.Name)
	assert.False(t, res.Customer.EmailVerified)
	assert.NotEmpty(t, f.notifier.LastVerification("ada.l@example.com"))

	res, err = f.svc.UpdateProfile(ctx, s.Account.ID, customer.UpdateProfileRequest{Name: "Ada"})
	require.NoError(t, err)
	assert.False(t, res.EmailChanged)
	assert.Equal(t, "ada.l@example.com", res.Customer.Email)
}

func TestAddFeedbackSanitizes(t *testing.T) {
	f := newFixture(t)
	s := f.registerVerified(t, "ada@example.com")

	fb, err := f.svc.AddFeedback(context.Background(), s.Account.ID, customer.FeedbackRequest{
		Topic:    "<b>Shipping</b>",
		Feedback: "Fast <script>alert(1)</script>delivery",
	})
	require.NoError(t, err)
	assert.Equal(t, "Shipping", fb.Topic)
	assert.Equal(t, "Fast delivery", fb.Feedback)
	assert.Len(t, f.store.Feedback(), 1)

	_, err = f.svc.AddFeedback(context.Background(), s.Account.ID, customer.FeedbackRequest{
		Topic: "x", Feedback: "<img src=x>",
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestIsVerifiedEmailAndSetRole(t *testing.T) {
	f := newFixture(t)
	f.register(t, "bob@example.com")
	f.registerVerified(t, "ada@example.com")
	ctx := context.Background()

	ok, err := f.svc.IsVerifiedEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.IsVerifiedEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.IsVerifiedEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	c, err := f.svc.SetRole(ctx, "ada@example.com", "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", c.Role)

	_, err = f.svc.SetRole(ctx, "ada@example.com", "root")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestEmailChangeEndsRefreshUntilReverified(t *testing.T) {
	f := newFixture(t)
	s := f.registerVerified(t, "ada@example.com")
	ctx := context.Background()

	_, err := f.svc.UpdateProfile(ctx, s.Account.ID, customer.UpdateProfileRequest{Email: "new@example.com"})
	require.NoError(t, err)
	assert.Empty(t, f.store.Peek("new@example.com").RefreshTokenHash)

	_, err = f.auth.Refresh(ctx, s.RefreshToken)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = f.auth.Login(ctx, "new@example.com", "correct-horse")
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)

	_, err = f.svc.ChangePassword(ctx, s.Account.ID, customer.ChangePasswordRequest{
		OldPassword: "correct-horse", NewPassword: "brand-new-pass", ConfirmPassword: "brand-new-pass",
	})
	assert.ErrorIs(t, err, auth.ErrEmailNotVerified)

	next, err := f.svc.VerifyEmail(ctx, f.notifier.LastVerification("new@example.com"))
	require.NoError(t, err)
	_, err = f.auth.Refresh(ctx, next.RefreshToken)
	assert.NoError(t, err)
}

func TestFeedbackStatus(t *testing.T) {
	f := newFixture(t)
	s := f.registerVerified(t, "ada@example.com")
	ctx := context.Background()

	fb, err := f.svc.AddFeedback(ctx, s.Account.ID, customer.FeedbackRequest{Topic: "Site", Feedback: "Lovely"})
	require.NoError(t, err)
	assert.Equal(t, customer.FeedbackOpen, fb.Status)

	f.now = f.now.Add(time.Hour)
	updated, err := f.svc.UpdateFeedbackStatus(ctx, fb.ID.Hex(), customer.FeedbackInReview)
	require.NoError(t, err)
	assert.Equal(t, customer.FeedbackInReview, updated.Status)
	assert.True(t, updated.UpdatedAt.After(fb.CreatedAt))

	_, err = f.svc.UpdateFeedbackStatus(ctx, fb.ID.Hex(), "deleted")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = f.svc.ListFeedback(ctx, "deleted")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	open, err := f.svc.ListFeedback(ctx, customer.FeedbackOpen)
	require.NoError(t, err)
	assert.Empty(t, open)

	got, err := f.svc.GetFeedback(ctx, fb.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, customer.FeedbackInReview, got.Status)
}
