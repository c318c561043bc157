package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/eldtechnologies/huddle/internal/models"
	"github.com/eldtechnologies/huddle/internal/store"
)

type contextKey string

const UserContextKey contextKey = "user"

// AuthMiddleware resolves bearer session tokens for authenticated endpoints.
type AuthMiddleware struct {
	store store.DataStore
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(s store.DataStore) *AuthMiddleware {
	return &AuthMiddleware{store: s}
}

// RequireAuth verifies the Authorization header and puts the session's user
// on the request context. Expired and unknown tokens get 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			jsonError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			jsonError(w, http.StatusUnauthorized, "authorization header must be a bearer token")
			return
		}

		user, err := m.store.GetSession(r.Context(), token)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to verify session")
			return
		}
		if user == nil {
			jsonError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetUserFromContext retrieves the authenticated user from the request context.
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
