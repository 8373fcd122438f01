// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type CustomerSummary struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

type SessionResponse struct {
	Message      string          `json:"message,omitempty"`
	Token        string          `json:"token"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	RefreshToken string          `json:"refreshToken"`
	Customer     CustomerSummary `json:"customer"`
}

func ToCustomerSummary(a *Account) CustomerSummary {
	return CustomerSummary{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Role:          a.Role,
		EmailVerified: a.EmailVerified,
		CreatedAt:     a.CreatedAt,
	}
}

func ToSessionResponse(s *Session, message string) SessionResponse {
	return SessionResponse{
		Message:      message,
		Token:        s.AccessToken,
		ExpiresAt:    s.AccessExpiresAt,
		RefreshToken: s.RefreshToken,
		Customer:     ToCustomerSummary(s.Account),
	}
}
