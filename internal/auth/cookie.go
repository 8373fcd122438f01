// AngelaMos | 2026
// cookie.go

package auth

import (
	"net/http"

	"github.com/carterperez-dev/bookheaven/internal/core"
)

const RefreshCookieName = "refreshToken"

// SessionWriter answers with a session body and mirrors the refresh token
// into an httpOnly cookie for browser clients.
type SessionWriter struct {
	Secure bool
}

func (sw SessionWriter) Write(w http.ResponseWriter, s *Session, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    s.RefreshToken,
		Path:     "/customer",
		Expires:  s.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   sw.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	core.OK(w, ToSessionResponse(s, message))
}

func (sw SessionWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/customer",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sw.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func refreshTokenFromCookie(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
