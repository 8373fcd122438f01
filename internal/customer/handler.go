// AngelaMos | 2026
// handler.go

package customer

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/bookheaven/internal/auth"
	"github.com/carterperez-dev/bookheaven/internal/core"
	"github.com/carterperez-dev/bookheaven/internal/middleware"
)

const (
	CodeAlreadyVerified  = "ALREADY_VERIFIED"
	CodeMailFailed       = "MAIL_FAILED"
	CodePasswordMismatch = "PASSWORD_MISMATCH"
)

const resetRequestedMessage = "If an account exists with this email, you will receive password reset instructions."

type Handler struct {
	service        *Service
	sessions       auth.SessionWriter
	validator      *validator.Validate
	debugEndpoints bool
}

func NewHandler(service *Service, sessions auth.SessionWriter, debugEndpoints bool) *Handler {
	return &Handler{
		service:        service,
		sessions:       sessions,
		validator:      core.NewValidator(),
		debugEndpoints: debugEndpoints,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	sensitive func(http.Handler) http.Handler,
) {
	r.With(sensitive).Post("/register", h.Register)
	r.Get("/verify-email", h.VerifyEmail)
	r.With(sensitive).Post("/resend-verification", h.ResendVerification)
	r.With(sensitive).Post("/resetpassword", h.RequestPasswordReset)
	r.With(sensitive).Post("/reset-password-confirm", h.ConfirmPasswordReset)

	if h.debugEndpoints {
		r.Post("/debug/verify-email", h.DebugVerify)
	}

	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/me", h.Me)
		r.Put("/me/update", h.UpdateProfile)
		r.Put("/password/update", h.ChangePassword)
		r.Post("/add-feedback", h.AddFeedback)
	})
}

func emailTokenInvalidError() *core.AppError {
	return core.NewAppError(
		core.ErrTokenInvalid,
		"token is invalid or has expired",
		http.StatusBadRequest,
		core.CodeTokenInvalid,
	)
}

func mailFailedError(what string) *core.AppError {
	return core.NewAppError(
		ErrMailFailed,
		"could not send "+what+" email, please try again later",
		http.StatusInternalServerError,
		CodeMailFailed,
	)
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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDisposableEmail):
			core.BadRequest(w, "disposable email addresses are not allowed")
		case errors.Is(err, ErrEmailTaken):
			core.JSONError(w, core.DuplicateError("email"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	message := "Registration successful! Please check your email to verify your account."
	if !result.VerificationEmailSent {
		message = "Registration successful, but the verification email could not be sent. Please request a new one."
	}

	core.Created(w, RegisterResponse{
		Message:               message,
		Customer:              summary(result.Customer),
		VerificationEmailSent: result.VerificationEmailSent,
	})
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		core.BadRequest(w, "verification token is missing")
		return
	}

	session, err := h.service.VerifyEmail(r.Context(), token)
	if err != nil {
		if errors.Is(err, core.ErrTokenInvalid) {
			core.JSONError(w, emailTokenInvalidError())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.sessions.Write(w, session, "Email verified successfully! You are now logged in.")
}

func (h *Handler) DebugVerify(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.service.DebugVerify(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "customer")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.sessions.Write(w, session, "Email verified (debug mode).")
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.ResendVerification(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "customer")
		case errors.Is(err, ErrAlreadyVerified):
			core.JSONError(w, core.NewAppError(
				err,
				"this email is already verified",
				http.StatusBadRequest,
				CodeAlreadyVerified,
			))
		case errors.Is(err, ErrMailFailed):
			core.JSONError(w, mailFailedError("verification"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, MessageResponse{Message: "Verification email resent. Please check your inbox."})
}

func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, ErrMailFailed) {
			core.JSONError(w, mailFailedError("reset"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MessageResponse{Message: resetRequestedMessage})
}

func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req ResetConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, core.ErrTokenInvalid) {
			core.JSONError(w, emailTokenInvalidError())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MessageResponse{Message: "Password reset successfully! Please login with your new password."})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Me(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "customer")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ProfileResponse{Customer: summary(c)})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDisposableEmail):
			core.BadRequest(w, "disposable email addresses are not allowed")
		case errors.Is(err, ErrEmailTaken):
			core.JSONError(w, core.DuplicateError("email"))
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "customer")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	resp := ProfileResponse{
		Message:  "Profile updated successfully!",
		Customer: summary(result.Customer),
	}
	if result.EmailChanged {
		sent := result.VerificationEmailSent
		resp.VerificationEmailSent = &sent
		resp.Message = "Profile updated. Please verify your new email address."
	}
	core.OK(w, resp)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.service.ChangePassword(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			core.JSONError(w, core.NewAppError(
				err,
				"current password is incorrect",
				http.StatusUnauthorized,
				auth.CodeInvalidCredentials,
			))
		case errors.Is(err, auth.ErrEmailNotVerified):
			core.JSONError(w, auth.EmailNotVerifiedError())
		case errors.Is(err, ErrPasswordMismatch):
			core.JSONError(w, core.NewAppError(
				err,
				"passwords do not match",
				http.StatusBadRequest,
				CodePasswordMismatch,
			))
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "customer")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	h.sessions.Write(w, session, "Password updated successfully!")
}

func (h *Handler) AddFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if !h.decode(w, r, &req) {
		return
	}

	f, err := h.service.AddFeedback(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "feedback must contain text")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.Created(w, FeedbackResponse{
		ID:        f.ID.Hex(),
		Topic:     f.Topic,
		Feedback:  f.Feedback,
		CreatedAt: f.CreatedAt,
	})
}
