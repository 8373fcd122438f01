// AngelaMos | 2026
// main_test.go

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bookheaven/internal/address"
	"github.com/carterperez-dev/bookheaven/internal/admin"
	"github.com/carterperez-dev/bookheaven/internal/auth"
	"github.com/carterperez-dev/bookheaven/internal/cart"
	"github.com/carterperez-dev/bookheaven/internal/catalog"
	"github.com/carterperez-dev/bookheaven/internal/config"
	"github.com/carterperez-dev/bookheaven/internal/contact"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/customer"
	"github.com/carterperez-dev/bookheaven/internal/events"
	"github.com/carterperez-dev/bookheaven/internal/health"
	"github.com/carterperez-dev/bookheaven/internal/order"
	"github.com/carterperez-dev/bookheaven/internal/server"
	"github.com/carterperez-dev/bookheaven/internal/subscription"
	"github.com/carterperez-dev/bookheaven/internal/testutil"
	"github.com/carterperez-dev/bookheaven/internal/wishlist"
)

type up struct{}

func (up) Ping(context.Context) error { return nil }
func (up) Stats(context.Context) (*core.DBStats, error) {
	return &core.DBStats{}, nil
}
func (up) ServerStatus(context.Context) (*core.ServerStatus, error) {
	return &core.ServerStatus{}, nil
}
func (up) PoolStats() *core.RedisPoolStats { return &core.RedisPoolStats{} }

type testApp struct {
	handler   http.Handler
	notifier  *testutil.Notifier
	publisher *testutil.Publisher
	catalog   *testutil.CatalogStore
	customers *customer.Service
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	testutil.CheapPasswords(t)

	cfg := &config.Config{
		App:  config.AppConfig{Environment: "development"},
		Auth: config.AuthConfig{TokenHeader: "auth-token", VerificationTTL: 24 * time.Hour, ResetTTL: time.Hour},
		RateLimit: config.RateLimitConfig{
			Requests: 1000, Burst: 1000, Window: time.Minute,
			AuthRequests: 1000, AuthBurst: 1000,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}

	a := &testApp{
		notifier:  &testutil.Notifier{},
		publisher: &testutil.Publisher{},
		catalog:   testutil.NewCatalogStore(),
	}

	jwt := testutil.NewJWTManager(t)
	store := testutil.NewCustomerStore()
	authSvc := auth.NewService(customer.NewAccountStore(store), jwt)
	a.customers = customer.NewService(store, authSvc, a.notifier, cfg.Auth)

	catalogSvc := catalog.NewService(a.catalog)
	cartSvc := cart.NewService(testutil.NewCartStore(), catalogSvc, nil)
	addressSvc := address.NewService(testutil.NewAddressStore())
	sessions := auth.SessionWriter{}

	srv := server.New(server.Config{})
	mountRoutes(srv.Router(), routes{
		config:        cfg,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		jwt:           jwt,
		authenticator: authSvc,
		health:        health.NewHandler(health.Dependency{Name: "mongodb", Checker: up{}}),
		admin:         admin.NewHandler(up{}, up{}, a.customers),
		auth:          auth.NewHandler(authSvc, sessions),
		customer:      customer.NewHandler(a.customers, sessions, false),
		catalog:       catalog.NewHandler(catalogSvc),
		cart:          cart.NewHandler(cartSvc),
		address:       address.NewHandler(addressSvc),
		wishlist:      wishlist.NewHandler(wishlist.NewService(testutil.NewWishlistStore(), catalogSvc)),
		subscription: subscription.NewHandler(
			subscription.NewService(testutil.NewSubscriptionStore(), a.customers),
		),
		contact: contact.NewHandler(contact.NewService(a.notifier, nil)),
		order: order.NewHandler(order.NewService(
			testutil.NewOrderStore(), cartSvc, addressSvc, a.publisher, nil,
		)),
	})
	a.handler = srv.Router()
	return a
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("auth-token", token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env struct {
		Data  map[string]any `json:"data"`
		Error map[string]any `json:"error"`
	}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	if env.Error != nil {
		return rec.Code, env.Error
	}
	return rec.Code, env.Data
}

func TestCheckoutJourney(t *testing.T) {
	a := newTestApp(t)
	dune := a.catalog.Put(catalog.Product{Name: "Dune", Author: "Frank Herbert", Price: 10, Stock: 4})

	status, _ := a.do(t, http.MethodPost, "/customer/register", "", map[string]string{
		"name": "Ada", "email": "Ada@Example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := a.do(t, http.MethodPost, "/customer/login", "", map[string]string{
		"email": "ada@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, auth.CodeEmailNotVerified, body["code"])

	token := a.notifier.LastVerification("ada@example.com")
	require.NotEmpty(t, token)
	status, body = a.do(t, http.MethodGet, "/customer/verify-email?token="+token, "", nil)
	require.Equal(t, http.StatusOK, status)
	session, _ := body["token"].(string)
	require.NotEmpty(t, session)

	status, _ = a.do(t, http.MethodGet, "/customer/verify-email?token="+token, "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.do(t, http.MethodGet, "/api/cart/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	for range 3 {
		status, body = a.do(t, http.MethodPost, "/api/cart/", session, map[string]any{
			"cartItems": []map[string]any{{"product": dune.ID.Hex(), "price": 0.01}},
		})
		require.Equal(t, http.StatusOK, status)
	}
	assert.EqualValues(t, 3, body["length"])

	status, body = a.do(t, http.MethodPost, "/api/cart/remove-product", session, map[string]string{
		"productId": dune.ID.Hex(),
	})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["length"])

	status, body = a.do(t, http.MethodPost, "/order/new", session, map[string]string{})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, order.CodeNoAddress, body["code"])

	status, _ = a.do(t, http.MethodPost, "/api/address/", session, map[string]any{
		"fullName": "Ada Lovelace", "phone": "555-0100", "address": "12 Crescent Rd",
		"city": "London", "state": "LDN", "zipCode": "N1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = a.do(t, http.MethodPost, "/order/new", session, map[string]string{})
	require.Equal(t, http.StatusCreated, status)
	placed, ok := body["order"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 20.0, placed["totalPrice"], 0.001)
	assert.Equal(t, order.StatusProcessing, placed["orderStatus"])

	status, body = a.do(t, http.MethodGet, "/api/cart/", session, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["length"])

	require.Len(t, a.publisher.Events, 1)
	assert.Equal(t, events.TypeOrderPlaced, a.publisher.Events[0].Type)

	status, body = a.do(t, http.MethodPost, "/api/subscribe", "", map[string]string{"email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Subscribed successfully!", body["message"])
}

func TestPublicRoutes(t *testing.T) {
	a := newTestApp(t)
	a.catalog.Put(catalog.Product{Name: "Emma", Category: "Classics", ShareableLink: "https://books.example.com/emma"})

	status, body := a.do(t, http.MethodGet, "/api/products?category=classics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	status, _ = a.do(t, http.MethodGet, "/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAccountFlowIsTraced(t *testing.T) {
	recorder := testutil.RecordSpans(t)
	a := newTestApp(t)

	status, _ := a.do(t, http.MethodPost, "/customer/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = a.do(t, http.MethodGet,
		"/customer/verify-email?token="+a.notifier.LastVerification("ada@example.com"), "", nil)
	require.Equal(t, http.StatusOK, status)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "POST /customer/register", spans[0].Name())
	assert.Equal(t, "GET /customer/verify-email", spans[1].Name())

	assert.Equal(t,
		[]string{"token.issued", "token.consumed", "session.issued"},
		testutil.SpanEvents(recorder),
	)
}
