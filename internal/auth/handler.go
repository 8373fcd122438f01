// AngelaMos | 2026
// handler.go

package auth

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
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
)

type Handler struct {
	service   *Service
	sessions  SessionWriter
	validator *validator.Validate
}

func NewHandler(service *Service, sessions SessionWriter) *Handler {
	return &Handler{
		service:   service,
		sessions:  sessions,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts into the /customer group it shares with the account
// handler.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	sensitive func(http.Handler) http.Handler,
) {
	r.With(sensitive).Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.With(authenticator).Post("/logout", h.Logout)
}

func InvalidCredentialsError() *core.AppError {
	return core.NewAppError(
		ErrInvalidCredentials,
		"please enter a valid email and password",
		http.StatusNotFound,
		CodeInvalidCredentials,
	)
}

func EmailNotVerifiedError() *core.AppError {
	return core.NewAppError(
		ErrEmailNotVerified,
		"please verify your email before logging in",
		http.StatusForbidden,
		CodeEmailNotVerified,
	)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			core.JSONError(w, InvalidCredentialsError())
		case errors.Is(err, ErrEmailNotVerified):
			core.JSONError(w, EmailNotVerifiedError())
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	h.sessions.Write(w, session, "")
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		core.BadRequest(w, "invalid request body")
		return
	}

	token := req.RefreshToken
	if token == "" {
		token = refreshTokenFromCookie(r)
	}

	session, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, core.ErrTokenInvalid) {
			h.sessions.Clear(w)
			core.JSONError(w, core.TokenInvalidError())
			return
		}
		if errors.Is(err, ErrEmailNotVerified) {
			h.sessions.Clear(w)
			core.JSONError(w, EmailNotVerifiedError())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.sessions.Write(w, session, "")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	if err := h.service.Logout(r.Context(), userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "customer")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.sessions.Clear(w)
	core.OK(w, map[string]string{"message": "logged out"})
}
