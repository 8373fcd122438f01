// AngelaMos | 2026
// handler.go

package cart

import (
	"bytes"
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
	r.Route("/cart", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Post("/remove-product", h.RemoveProduct)
		r.Put("/items/{productId}", h.SetQuantity)
	})
}

// addRequest accepts {"cartItems": [...]}, {"cartItems": {...}} or a bare
// item. The price field older clients send is ignored.
type addRequest struct {
	CartItems json.RawMessage `json:"cartItems"`
	AddItem
}

type removeRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0,lte=99"`
}

type LengthResponse struct {
	Length int `json:"length"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.ListItems(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}
	core.OK(w, view)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	items, err := req.items()
	if err != nil {
		core.BadRequest(w, "cartItems must be an item or a list of items")
		return
	}
	for _, it := range items {
		if err := h.validator.Struct(it); err != nil {
			core.BadRequest(w, core.FormatValidationError(err))
			return
		}
	}

	length, err := h.service.AddItems(r.Context(), middleware.GetUserID(r.Context()), items)
	if err != nil {
		h.writeError(w, err)
		return
	}
	core.OK(w, LengthResponse{Length: length})
}

func (h *Handler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	length, err := h.service.RemoveOneUnit(r.Context(), middleware.GetUserID(r.Context()), req.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	core.OK(w, LengthResponse{Length: length})
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	view, err := h.service.SetQuantity(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "productId"),
		*req.Quantity,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}
	core.OK(w, view)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "product")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid cart item")
	default:
		core.JSONError(w, err)
	}
}

func (req addRequest) items() ([]AddItem, error) {
	raw := bytes.TrimSpace(req.CartItems)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		if req.Product == "" {
			return nil, errors.New("no items")
		}
		return []AddItem{req.AddItem}, nil
	case raw[0] == '[':
		var items []AddItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, errors.New("no items")
		}
		return items, nil
	default:
		var item AddItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, err
		}
		return []AddItem{item}, nil
	}
}
