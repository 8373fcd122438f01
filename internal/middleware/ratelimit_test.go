// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/bookheaven/internal/config"
)

func TestRateLimiter_LocalFallbackLimits(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit: AuthLimit(config.RateLimitConfig{
			AuthRequests: 1,
			AuthBurst:    2,
			Window:       time.Minute,
		}),
		KeyFunc: KeyByIPAndEndpoint,
	})

	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("/customer/login").Code)
	assert.Equal(t, http.StatusOK, send("/customer/login").Code)

	limited := send("/customer/login")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Equal(t, CodeRateLimited, decodeError(t, limited).Code)

	assert.Equal(t, http.StatusOK, send("/customer/resetpassword").Code)
}

func TestRateLimiter_Bypass(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit:      PerMinuteLimit(1, 1),
		BypassFunc: func(r *http.Request) bool { return r.URL.Path == "/healthz" },
	})
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestKeyByIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:1234"
	assert.Equal(t, "ratelimit:ip:192.168.1.9", KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")
	assert.Equal(t, "ratelimit:ip:2.2.2.2", KeyByIP(req))
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "/api/address/{id}/set-default",
		normalizeEndpoint("/api/address/65f1c2d3e4b5a69788990011/set-default"))
	assert.Equal(t, "/order/{id}", normalizeEndpoint("/order/42"))
	assert.Equal(t, "/customer/login", normalizeEndpoint("/customer/login/"))
}
