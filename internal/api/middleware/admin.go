package middleware

import (
	"net/http"
	"strings"

	"github.com/mcoot/committy/internal/api/apierr"
	"github.com/mcoot/committy/internal/services/auth"
)

// AdminKeyHeader carries the admin key on moderation requests
const AdminKeyHeader = "X-Admin-Key"

// Admin creates middleware that only lets requests with a valid admin key through
func Admin(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractKey(r)
			if key == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			if err := authService.VerifyAdminKey(key); err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractKey extracts the admin key from the request
func extractKey(r *http.Request) string {
	if key := r.Header.Get(AdminKeyHeader); key != "" {
		return key
	}

	// Fall back to a bearer token
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
