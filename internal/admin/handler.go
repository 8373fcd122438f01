// AngelaMos | 2026
// handler.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/customer"
)

// Database is the slice of core.Database the stats endpoints read.
type Database interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (*core.DBStats, error)
	ServerStatus(ctx context.Context) (*core.ServerStatus, error)
}

type Redis interface {
	Ping(ctx context.Context) error
	PoolStats() *core.RedisPoolStats
}

// Feedback is the review side of customer feedback.
type Feedback interface {
	ListFeedback(ctx context.Context, status string) ([]customer.Feedback, error)
	GetFeedback(ctx context.Context, id string) (*customer.Feedback, error)
	UpdateFeedbackStatus(ctx context.Context, id, status string) (*customer.Feedback, error)
}

type Handler struct {
	db        Database
	redis     Redis
	feedback  Feedback
	validator *validator.Validate
}

func NewHandler(db Database, redis Redis, feedback Feedback) *Handler {
	return &Handler{
		db:        db,
		redis:     redis,
		feedback:  feedback,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/stats", h.GetSystemStats)
		r.Get("/stats/db", h.GetDatabaseStats)
		r.Get("/stats/redis", h.GetRedisStats)
		r.Get("/stats/runtime", h.GetRuntimeStats)

		r.Get("/feedback", h.ListFeedback)
		r.Get("/feedback/{id}", h.GetFeedback)
		r.Post("/feedback/update/{id}", h.UpdateFeedback)
	})
}

type FeedbackListResponse struct {
	Feedback []customer.Feedback `json:"feedback"`
	Count    int                 `json:"count"`
}

type FeedbackResponse struct {
	Feedback *customer.Feedback `json:"feedback"`
}

type UpdateFeedbackRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_review resolved"`
}

func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	items, err := h.feedback.ListFeedback(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "status must be one of open, in_review, resolved")
			return
		}
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, FeedbackListResponse{Feedback: items, Count: len(items)})
}

func (h *Handler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	f, err := h.feedback.GetFeedback(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "feedback")
			return
		}
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, FeedbackResponse{Feedback: f})
}

func (h *Handler) UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	var req UpdateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	f, err := h.feedback.UpdateFeedbackStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "feedback")
			return
		}
		core.JSONError(w, err)
		return
	}
	core.OK(w, FeedbackResponse{Feedback: f})
}

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		wg    sync.WaitGroup
		db    DatabaseStatus
		cache RedisStatus
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		db = h.databaseStatus(ctx)
	}()
	go func() {
		defer wg.Done()
		cache = h.redisStatus(ctx)
	}()
	wg.Wait()

	core.OK(w, SystemStatsResponse{
		Database: db,
		Redis:    cache,
		Runtime:  readRuntime(),
	})
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.databaseStatus(r.Context()))
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.redisStatus(r.Context()))
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntime())
}

func (h *Handler) databaseStatus(ctx context.Context) DatabaseStatus {
	status := DatabaseStatus{Healthy: h.db.Ping(ctx) == nil}
	if !status.Healthy {
		return status
	}

	if stats, err := h.db.Stats(ctx); err == nil {
		status.Storage = &StorageStats{
			Collections: stats.Collections,
			Objects:     stats.Objects,
			DataSize:    int64(stats.DataSize),
			StorageSize: int64(stats.StorageSize),
			Indexes:     stats.Indexes,
			IndexSize:   int64(stats.IndexSize),
		}
	}

	if server, err := h.db.ServerStatus(ctx); err == nil {
		status.Server = &ServerStats{
			Version:          server.Version,
			UptimeSeconds:    int64(server.Uptime),
			ConnCurrent:      server.Connections.Current,
			ConnAvailable:    server.Connections.Available,
			ConnActive:       server.Connections.Active,
			ConnTotalCreated: server.Connections.TotalCreated,
		}
	}

	return status
}

func (h *Handler) redisStatus(ctx context.Context) RedisStatus {
	return RedisStatus{
		Healthy: h.redis.Ping(ctx) == nil,
		Stats:   h.redis.PoolStats(),
	}
}

func readRuntime() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     mem.Alloc,
		MemSys:       mem.Sys,
		NumGC:        mem.NumGC,
	}
}

type SystemStatsResponse struct {
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool          `json:"healthy"`
	Storage *StorageStats `json:"storage,omitempty"`
	Server  *ServerStats  `json:"server,omitempty"`
}

type StorageStats struct {
	Collections int64 `json:"collections"`
	Objects     int64 `json:"objects"`
	DataSize    int64 `json:"data_size_bytes"`
	StorageSize int64 `json:"storage_size_bytes"`
	Indexes     int64 `json:"indexes"`
	IndexSize   int64 `json:"index_size_bytes"`
}

type ServerStats struct {
	Version          string `json:"version"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	ConnCurrent      int32  `json:"connections_current"`
	ConnAvailable    int32  `json:"connections_available"`
	ConnActive       int32  `json:"connections_active"`
	ConnTotalCreated int64  `json:"connections_total_created"`
}

type RedisStatus struct {
	Healthy bool                 `json:"healthy"`
	Stats   *core.RedisPoolStats `json:"stats,omitempty"`
}

type RuntimeStats struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc_bytes"`
	MemSys       uint64 `json:"mem_sys_bytes"`
	NumGC        uint32 `json:"num_gc"`
}
