// AngelaMos | 2026
// handler_test.go

package subscription_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bookheaven/internal/subscription"
	"github.com/carterperez-dev/bookheaven/internal/testutil"
)

type verifiedSet map[string]bool

func (v verifiedSet) IsVerifiedEmail(_ context.Context, email string) (bool, error) {
	return v[email], nil
}

func subscribe(t *testing.T, h http.Handler, email string) (int, string) {
	t.Helper()

	body := `{"email":"` + email + `"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(body)))

	var resp struct {
		Data subscription.SubscribeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp.Data.Message
}

func TestSubscribe(t *testing.T) {
	store := testutil.NewSubscriptionStore()
	verified := verifiedSet{}

	r := chi.NewRouter()
	subscription.NewHandler(subscription.NewService(store, verified)).RegisterRoutes(r)

	status, msg := subscribe(t, r, "  Reader@Example.com ")
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Subscribed successfully!", msg)

	sub, ok := store.Lookup("reader@example.com")
	require.True(t, ok)
	assert.False(t, sub.IsUser)

	verified["reader@example.com"] = true
	status, msg = subscribe(t, r, "reader@example.com")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "You are already subscribed.", msg)

	sub, _ = store.Lookup("reader@example.com")
	assert.True(t, sub.IsUser)
}

func TestSubscribeRejectsBadEmail(t *testing.T) {
	r := chi.NewRouter()
	subscription.NewHandler(
		subscription.NewService(testutil.NewSubscriptionStore(), verifiedSet{}),
	).RegisterRoutes(r)

	for _, body := range []string{`{"email":"nope"}`, `{}`, `not json`} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}
