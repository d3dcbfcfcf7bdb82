package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/mafiagame-go/internal/api/apierr"
	"github.com/mcoot/mafiagame-go/internal/model"
	"github.com/mcoot/mafiagame-go/internal/services/auth"
)

type contextKey string

const (
	handleContextKey  contextKey = "handle"
	sessionContextKey contextKey = "session"
)

// Auth creates authentication middleware
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.ValidateSession(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			// Add session and handle to context
			ctx := r.Context()
			ctx = context.WithValue(ctx, sessionContextKey, session)
			ctx = context.WithValue(ctx, handleContextKey, session.Handle)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route on the authenticated identity's admin flag.
// Must run after Auth.
func RequireAdmin(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handle := GetHandle(r.Context())
			if handle == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			identity, err := authService.GetIdentity(r.Context(), handle)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}
			if !identity.Admin {
				apierr.WriteError(w, model.ErrNotAdmin)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to cookie
	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetHandle returns the authenticated handle from the request context
func GetHandle(ctx context.Context) model.Handle {
	handle, _ := ctx.Value(handleContextKey).(model.Handle)
	return handle
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}

// MustGetHandle returns the authenticated handle or panics
func MustGetHandle(ctx context.Context) model.Handle {
	handle := GetHandle(ctx)
	if handle == "" {
		panic("no handle in context - auth middleware not applied?")
	}
	return handle
}
