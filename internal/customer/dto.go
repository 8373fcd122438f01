// AngelaMos | 2026
// dto.go

package customer

import (
	"time"

	"github.com/carterperez-dev/bookheaven/internal/auth"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ResetConfirmRequest struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"  validate:"omitempty,min=1,max=100"`
	Email string `json:"email" validate:"omitempty,email,max=255"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword"     validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type FeedbackRequest struct {
	Topic    string `json:"topic"    validate:"required,max=120"`
	Feedback string `json:"feedback" validate:"required,max=5000"`
}

type RegisterResponse struct {
	Message               string               `json:"message"`
	Customer              auth.CustomerSummary `json:"customer"`
	VerificationEmailSent bool                 `json:"verificationEmailSent"`
}

type ProfileResponse struct {
	Message               string               `json:"message,omitempty"`
	Customer              auth.CustomerSummary `json:"customer"`
	VerificationEmailSent *bool                `json:"verificationEmailSent,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type FeedbackResponse struct {
	ID        string    `json:"_id"`
	Topic     string    `json:"topic"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"createdAt"`
}

func summary(c *Customer) auth.CustomerSummary {
	return auth.ToCustomerSummary(c.Account())
}
