// Package identity ties each browser to its own interview session through
// an anonymous cookie.
package identity

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the browser's session ID.
const CookieName = "interview_session"

type contextKey int

const sessionIDKey contextKey = iota

// SessionIDFromContext returns the session ID stored by Middleware.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// WithSessionID returns a context carrying id, as Middleware does.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

func isValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

// sessionID returns the ID from the request cookie, issuing a new cookie
// when there is none or it is malformed. The cookie has no Max-Age so it
// ends with the browser session.
func sessionID(w http.ResponseWriter, r *http.Request, secure bool) string {
	if c, err := r.Cookie(CookieName); err == nil && isValidSessionID(c.Value) {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
	return id
}

// Middleware injects the browser's session ID into the request context.
func Middleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessionID(w, r, secure)
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}
