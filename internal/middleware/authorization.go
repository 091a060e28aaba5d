package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"shoply/internal/domain"
)

// RequireAdmin gates mutating catalog endpoints to admin callers. It must run
// after AuthMiddleware.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				respondWithError(w, http.StatusForbidden, "access denied, admins only")
				return
			}

			if role != domain.RoleAdmin {
				logger.Warn("Non-admin user attempted an admin endpoint",
					zap.String("role", role),
					zap.String("path", r.URL.Path),
				)
				respondWithError(w, http.StatusForbidden, "access denied, admins only")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
