// AngelaMos | 2026
// handler.go

package subscription

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validator: core.NewValidator()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/subscribe", h.Subscribe)
}

type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type SubscribeResponse struct {
	Message string `json:"message"`
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, "please provide a valid email address")
		return
	}

	created, err := h.service.Subscribe(r.Context(), req.Email)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if !created {
		core.OK(w, SubscribeResponse{Message: "You are already subscribed."})
		return
	}
	core.Created(w, SubscribeResponse{Message: "Subscribed successfully!"})
}
