package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/prestasys/loan-origination/pkg/response"
)

type contextKey string

const (
	contextKeyUsername contextKey = "auth.username"
	contextKeyRole     contextKey = "auth.role"
)

// Middleware validates the bearer token and stashes the session identity in
// the request context.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := s.ParseToken(tokenString)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUsername, claims.Username)
		ctx = context.WithValue(ctx, contextKeyRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission gates a handler on one resource/action pair of the role
// matrix. All permission checks flow through HasPermission; handlers never
// inspect roles directly.
func RequirePermission(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			perms := PermissionsFromContext(r.Context())
			if !HasPermission(perms, resource, action) {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UsernameFromContext returns the authenticated username, or "" if absent.
func UsernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(contextKeyUsername).(string)
	return username
}

// RoleFromContext returns the authenticated role, or "" if absent.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(contextKeyRole).(string)
	return role
}

// PermissionsFromContext resolves the permission matrix for the session role.
// Returns nil for unauthenticated requests, which denies everything.
func PermissionsFromContext(ctx context.Context) *RolePermissions {
	role := RoleFromContext(ctx)
	if role == "" {
		return nil
	}
	return PermissionsForRole(role)
}
