// AngelaMos | 2026
// handler.go

package order

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
)

const (
	CodeEmptyCart = "EMPTY_CART"
	CodeNoAddress = "NO_ADDRESS"
)

type PlaceRequest struct {
	AddressID string `json:"addressId" validate:"omitempty,mongodb"`
}

type OrderResponse struct {
	Order *Order `json:"order"`
}

type ListResponse struct {
	Orders []Order `json:"orders"`
	Count  int     `json:"count"`
}

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validator: core.NewValidator()}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Post("/new", h.Place)
		r.Get("/orders/me", h.ListMine)
		r.Get("/{id}", h.Get)
	})
}

func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	o, err := h.service.Place(r.Context(), middleware.GetPrincipal(r.Context()), req.AddressID)
	switch {
	case err == nil:
		core.Created(w, OrderResponse{Order: o})
	case errors.Is(err, ErrEmptyCart):
		core.JSONError(w, core.NewAppError(err, "your cart is empty", http.StatusBadRequest, CodeEmptyCart))
	case errors.Is(err, ErrNoAddress):
		core.JSONError(w, core.NewAppError(err, "add a shipping address first", http.StatusBadRequest, CodeNoAddress))
	default:
		core.JSONError(w, err)
	}
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, ListResponse{Orders: orders, Count: len(orders)})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "order")
			return
		}
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, OrderResponse{Order: o})
}
