package httpapi

import (
	"context"
	"net/http"
	"strings"

	"todoapi/internal/server/token"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// authMiddleware admits requests carrying a valid access token. Refresh
// tokens are rejected here even though their signature is valid.
func (r *Router) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		authz := req.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			writeErrorStatus(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := r.services.Auth.Authenticate(req.Context(), strings.TrimPrefix(authz, "Bearer "))
		if err != nil {
			r.writeError(w, req, err)
			return
		}
		ctx := context.WithValue(req.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func getUserID(ctx context.Context) string {
	if c, ok := ctx.Value(claimsContextKey).(token.Claims); ok {
		return c.Subject
	}
	return ""
}
