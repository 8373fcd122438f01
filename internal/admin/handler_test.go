// AngelaMos | 2026
// handler_test.go

package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/bookheaven/internal/admin"
	"github.com/carterperez-dev/bookheaven/internal/config"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/customer"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
	"github.com/carterperez-dev/bookheaven/internal/testutil"
)

type fakeDB struct{ down bool }

func (f fakeDB) Ping(context.Context) error {
	if f.down {
		return errors.New("no reachable servers")
	}
	return nil
}

func (fakeDB) Stats(context.Context) (*core.DBStats, error) {
	return &core.DBStats{Collections: 7, Objects: 120, DataSize: 4096}, nil
}

func (fakeDB) ServerStatus(context.Context) (*core.ServerStatus, error) {
	return &core.ServerStatus{
		Version:     "7.0.12",
		Uptime:      360.5,
		Connections: core.ConnectionStats{Current: 4, Available: 800, TotalCreated: 12},
	}, nil
}

type fakeRedis struct{}

func (fakeRedis) Ping(context.Context) error { return nil }
func (fakeRedis) PoolStats() *core.RedisPoolStats {
	return &core.RedisPoolStats{TotalConns: 3, IdleConns: 2}
}

func router(db admin.Database, role string) http.Handler {
	return routerWith(db, role, newFeedback())
}

func newFeedback() *customer.Service {
	return customer.NewService(testutil.NewCustomerStore(), nil, nil, config.AuthConfig{})
}

func routerWith(db admin.Database, role string, feedback admin.Feedback) http.Handler {
	r := chi.NewRouter()
	admin.NewHandler(db, fakeRedis{}, feedback).RegisterRoutes(
		r,
		testutil.SignedIn(&middleware.Principal{UserID: primitive.NewObjectID().Hex(), Role: role}),
		middleware.RequireAdmin,
	)
	return r
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return rec.Code
}

func TestSystemStats(t *testing.T) {
	var stats admin.SystemStatsResponse
	require.Equal(t, http.StatusOK, get(t, router(fakeDB{}, middleware.RoleAdmin), "/admin/stats", &stats))

	assert.True(t, stats.Database.Healthy)
	require.NotNil(t, stats.Database.Storage)
	assert.EqualValues(t, 7, stats.Database.Storage.Collections)
	require.NotNil(t, stats.Database.Server)
	assert.Equal(t, "7.0.12", stats.Database.Server.Version)
	assert.EqualValues(t, 4, stats.Database.Server.ConnCurrent)
	assert.True(t, stats.Redis.Healthy)
	assert.EqualValues(t, 3, stats.Redis.Stats.TotalConns)
	assert.NotEmpty(t, stats.Runtime.GoVersion)
}

func TestDatabaseDown(t *testing.T) {
	var status admin.DatabaseStatus
	require.Equal(t, http.StatusOK, get(t, router(fakeDB{down: true}, middleware.RoleAdmin), "/admin/stats/db", &status))

	assert.False(t, status.Healthy)
	assert.Nil(t, status.Storage)
}

func TestStatsRequireAdmin(t *testing.T) {
	h := router(fakeDB{}, middleware.RoleCustomer)

	for _, path := range []string{
		"/admin/stats", "/admin/stats/db", "/admin/stats/redis", "/admin/stats/runtime",
		"/admin/feedback", "/admin/feedback/" + primitive.NewObjectID().Hex(),
	} {
		assert.Equal(t, http.StatusForbidden, get(t, h, path, nil), path)
	}
}

func TestFeedbackReview(t *testing.T) {
	svc := newFeedback()
	ctx := context.Background()
	author := primitive.NewObjectID().Hex()

	first, err := svc.AddFeedback(ctx, author, customer.FeedbackRequest{Topic: "Shipping", Feedback: "Slow"})
	require.NoError(t, err)
	second, err := svc.AddFeedback(ctx, author, customer.FeedbackRequest{Topic: "Catalog", Feedback: "More poetry"})
	require.NoError(t, err)

	h := routerWith(fakeDB{}, middleware.RoleAdmin, svc)

	var list admin.FeedbackListResponse
	require.Equal(t, http.StatusOK, get(t, h, "/admin/feedback", &list))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, second.ID, list.Feedback[0].ID)
	assert.Equal(t, customer.FeedbackOpen, list.Feedback[1].Status)

	var one admin.FeedbackResponse
	require.Equal(t, http.StatusOK, get(t, h, "/admin/feedback/"+first.ID.Hex(), &one))
	assert.Equal(t, "Shipping", one.Feedback.Topic)

	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"resolve", first.ID.Hex(), `{"status":"resolved"}`, http.StatusOK},
		{"unknown status", first.ID.Hex(), `{"status":"archived"}`, http.StatusBadRequest},
		{"missing status", first.ID.Hex(), `{}`, http.StatusBadRequest},
		{"garbled body", first.ID.Hex(), `{`, http.StatusBadRequest},
		{"unknown id", primitive.NewObjectID().Hex(), `{"status":"resolved"}`, http.StatusNotFound},
		{"bad id", "nope", `{"status":"resolved"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/feedback/update/"+tt.id, bytes.NewBufferString(tt.body))
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	require.Equal(t, http.StatusOK, get(t, h, "/admin/feedback?status=resolved", &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, first.ID, list.Feedback[0].ID)

	require.Equal(t, http.StatusOK, get(t, h, "/admin/feedback?status=open", &list))
	assert.Equal(t, 1, list.Count)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/admin/feedback?status=archived", nil))
	assert.Equal(t, http.StatusNotFound, get(t, h, "/admin/feedback/"+primitive.NewObjectID().Hex(), nil))
}
