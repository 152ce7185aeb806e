package handlers

import (
	"context"
	"net/http"
	"strings"

	"bus-tracker/internal/auth"
	"bus-tracker/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// RequireAuth wraps a handler so it only runs with a valid Bearer
// token; the resolved user is placed on the request context.
func RequireAuth(authService *auth.Service, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing authorization", http.StatusUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			http.Error(w, "invalid authorization header", http.StatusUnauthorized)
			return
		}

		user, err := authService.GetUserFromToken(r.Context(), parts[1])
		if err != nil {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// UserFrom returns the authenticated user set by RequireAuth, or nil.
func UserFrom(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}
