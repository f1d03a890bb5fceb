package httpx

import (
	"net/http"
	"time"
)

// RefreshCookie describes the cookie carrying the refresh token. It is
// HttpOnly and SameSite=Lax, and scoped to Path.
type RefreshCookie struct {
	Name   string
	Path   string
	Secure bool
}

// Set writes value with Max-Age derived from expiresAt.
func (c RefreshCookie) Set(w http.ResponseWriter, value string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     c.Path,
		MaxAge:   maxAge,
		Expires:  expiresAt.UTC(),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the cookie on the client.
func (c RefreshCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     c.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the cookie value, or "" when absent.
func (c RefreshCookie) Read(r *http.Request) string {
	ck, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return ck.Value
}
