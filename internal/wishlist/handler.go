// AngelaMos | 2026
// handler.go

package wishlist

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/bookheaven/internal/catalog"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Route("/wishlist", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.List)
		r.Post("/{productId}", h.Add)
		r.Delete("/{productId}", h.Remove)
	})
}

type ListResponse struct {
	Products []catalog.Product `json:"products"`
	Count    int               `json:"count"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	respond(w, products, err, "wishlist")
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Add(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "productId"),
	)
	respond(w, products, err, "product")
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Remove(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "productId"),
	)
	respond(w, products, err, "wishlist item")
}

func respond(w http.ResponseWriter, products []catalog.Product, err error, resource string) {
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, resource)
			return
		}
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, ListResponse{Products: products, Count: len(products)})
}
