// AngelaMos | 2026
// auth.go

package testutil

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bookheaven/internal/auth"
	"github.com/carterperez-dev/bookheaven/internal/config"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
)

// CheapPasswords lowers the argon2id cost for the rest of the test.
func CheapPasswords(t *testing.T) {
	t.Helper()
	t.Cleanup(core.SetPasswordParams(core.PasswordParams{
		Memory:  1024,
		Time:    1,
		Threads: 1,
		KeyLen:  32,
		SaltLen: 16,
	}))
}

// NewJWTManager writes a throwaway ES256 key pair under t.TempDir.
func NewJWTManager(t *testing.T) *auth.JWTManager {
	t.Helper()

	dir := t.TempDir()
	cfg := config.JWTConfig{
		PrivateKeyPath:     filepath.Join(dir, "private.pem"),
		PublicKeyPath:      filepath.Join(dir, "public.pem"),
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 7 * 24 * time.Hour,
		Issuer:             "bookheaven-test",
		Audience:           "bookheaven-test",
	}
	require.NoError(t, auth.GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath))

	m, err := auth.NewJWTManager(cfg)
	require.NoError(t, err)
	return m
}

// SignedIn stands in for the session authenticator, attaching p to every
// request.
func SignedIn(p *middleware.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithPrincipal(r.Context(), p)))
		})
	}
}
