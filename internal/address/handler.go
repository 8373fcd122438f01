// AngelaMos | 2026
// handler.go

package address

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validator: core.NewValidator()}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Route("/address", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Put("/{addressId}", h.Update)
		r.Delete("/{addressId}", h.Remove)
		r.Put("/{addressId}/set-default", h.SetDefault)
	})
}

type ListResponse struct {
	Addresses []Address `json:"addresses"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	h.respond(w, http.StatusOK, addrs, err)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var in Input
	if !h.decode(w, r, &in) {
		return
	}

	addrs, err := h.service.Add(r.Context(), middleware.GetUserID(r.Context()), in)
	h.respond(w, http.StatusCreated, addrs, err)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var p Patch
	if !h.decode(w, r, &p) {
		return
	}

	addrs, err := h.service.Update(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "addressId"),
		p,
	)
	h.respond(w, http.StatusOK, addrs, err)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.service.Remove(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "addressId"),
	)
	h.respond(w, http.StatusOK, addrs, err)
}

func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	addrs, err := h.service.SetDefault(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "addressId"),
	)
	h.respond(w, http.StatusOK, addrs, err)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, status int, addrs []Address, err error) {
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "address")
			return
		}
		core.JSONError(w, err)
		return
	}
	core.JSON(w, status, core.Response{Success: true, Data: ListResponse{Addresses: addrs}})
}
