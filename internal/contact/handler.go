// AngelaMos | 2026
// handler.go

package contact

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

const CodeMailFailed = "MAIL_FAILED"

type Request struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Email   string `json:"email"   validate:"required,email,max=255"`
	Message string `json:"message" validate:"required,max=5000"`
}

type Response struct {
	Message string `json:"message"`
}

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validator: core.NewValidator()}
}

func (h *Handler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.With(limiter).Post("/contact", h.Send)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	err := h.service.Send(r.Context(), req)
	switch {
	case err == nil:
		core.OK(w, Response{Message: "Message sent successfully!"})
	case errors.Is(err, ErrEmptyMessage):
		core.BadRequest(w, "name and message must contain text")
	case errors.Is(err, ErrMailFailed):
		core.JSONError(w, core.NewAppError(err, "email sending failed", http.StatusInternalServerError, CodeMailFailed))
	default:
		core.InternalServerError(w, err)
	}
}
