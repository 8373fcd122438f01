// AngelaMos | 2026
// handler.go

package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Get("/product/{id}", h.Get)
	r.Get("/producturl/{id}", h.ShareableLink)
}

type ListResponse struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ListResponse{Products: products, Count: len(products)})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "product")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{"product": p})
}

func (h *Handler) ShareableLink(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "product")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]string{"shareableLink": p.ShareableLink})
}
