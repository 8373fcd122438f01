// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

type stubAuthenticator struct {
	principal *Principal
	err       error
	gotToken  string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*Principal, error) {
	s.gotToken = token
	return s.principal, s.err
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) core.ErrorBody {
	t.Helper()
	var resp core.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestAuthenticator_UsesCustomHeader(t *testing.T) {
	stub := &stubAuthenticator{principal: &Principal{UserID: "u1", Role: RoleCustomer}}
	var seen *Principal
	h := Authenticator(stub, "auth-token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetPrincipal(r.Context())
		assert.Equal(t, "u1", GetUserID(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/customer/me", nil)
	req.Header.Set("auth-token", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", stub.gotToken)
	require.NotNil(t, seen)
	assert.Equal(t, RoleCustomer, seen.Role)
}

func TestAuthenticator_IgnoresAuthorizationHeader(t *testing.T) {
	stub := &stubAuthenticator{principal: &Principal{UserID: "u1"}}
	h := Authenticator(stub, "auth-token")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/customer/me", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, core.CodeUnauthorized, decodeError(t, rec).Code)
}

func TestAuthenticator_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"expired", fmt.Errorf("verify: %w", core.ErrTokenExpired), http.StatusUnauthorized, core.CodeTokenExpired},
		{"invalid", core.ErrTokenInvalid, http.StatusUnauthorized, core.CodeTokenInvalid},
		{"deleted customer", fmt.Errorf("load: %w", core.ErrNotFound), http.StatusUnauthorized, core.CodeTokenInvalid},
		{"store down", fmt.Errorf("boom"), http.StatusInternalServerError, core.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAuthenticator{err: tt.err}
			h := Authenticator(stub, "auth-token")(http.NotFoundHandler())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("auth-token", "tok")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(req, "auth-token"))

	req.Header.Set("auth-token", "  raw  ")
	assert.Equal(t, "raw", ExtractToken(req, "auth-token"))

	req.Header.Set("auth-token", "Bearer wrapped")
	assert.Equal(t, "wrapped", ExtractToken(req, "auth-token"))
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireAdmin(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &Principal{UserID: "u", Role: RoleCustomer}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &Principal{UserID: "u", Role: RoleAdmin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
