// AngelaMos | 2026
// entity.go

package customer

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/bookheaven/internal/auth"
)

type Customer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Email         string             `bson:"email"`
	PasswordHash  string             `bson:"passwordHash"`
	Role          string             `bson:"role"`
	EmailVerified bool               `bson:"emailVerified"`

	EmailVerificationToken  string     `bson:"emailVerificationToken,omitempty"`
	EmailVerificationExpire *time.Time `bson:"emailVerificationExpire,omitempty"`
	ResetPasswordToken      string     `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpire     *time.Time `bson:"resetPasswordExpire,omitempty"`
	RefreshTokenHash        string     `bson:"refreshTokenHash,omitempty"`
	RefreshTokenExpire      *time.Time `bson:"refreshTokenExpire,omitempty"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (c *Customer) Account() *auth.Account {
	return &auth.Account{
		ID:            c.ID.Hex(),
		Name:          c.Name,
		Email:         c.Email,
		PasswordHash:  c.PasswordHash,
		Role:          c.Role,
		EmailVerified: c.EmailVerified,
		CreatedAt:     c.CreatedAt,
	}
}

// TokenKind selects which emailed-token slot an operation works on. Each
// kind holds at most one outstanding token.
type TokenKind int

const (
	TokenVerification TokenKind = iota
	TokenReset
)

func (k TokenKind) String() string {
	if k == TokenReset {
		return "reset"
	}
	return "verification"
}

// Fields returns the stored hash and expiry field names for the kind.
func (k TokenKind) Fields() (hashField, expireField string) {
	if k == TokenReset {
		return "resetPasswordToken", "resetPasswordExpire"
	}
	return "emailVerificationToken", "emailVerificationExpire"
}

// TokenEffect is applied in the same write that consumes a token.
type TokenEffect struct {
	Verify       bool
	PasswordHash string
}

const (
	FeedbackOpen     = "open"
	FeedbackInReview = "in_review"
	FeedbackResolved = "resolved"
)

func ValidFeedbackStatus(status string) bool {
	switch status {
	case FeedbackOpen, FeedbackInReview, FeedbackResolved:
		return true
	}
	return false
}

type Feedback struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"   json:"_id"`
	CustomerID primitive.ObjectID `bson:"user"            json:"user"`
	Topic      string             `bson:"topic"           json:"topic"`
	Feedback   string             `bson:"feedback"        json:"feedback"`
	Status     string             `bson:"status"          json:"status"`
	CreatedAt  time.Time          `bson:"createdAt"       json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"       json:"updatedAt"`
}
