package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/opulent-living/property-service/internal/platform/logger"
)

type userIDKeyType string

// UserIDKey is the request context key holding the authenticated user id.
const UserIDKey userIDKeyType = "authenticatedUserID"

const (
	SessionIDHeader     = "sessionId"
	AuthorizationHeader = "Authorization"
)

// Authorizer resolves request credentials to a user id.
type Authorizer interface {
	Authorize(ctx context.Context, sessionID, authorization string) (string, error)
}

// SessionAuth rejects requests without a verified session before the body
// is read.
func SessionAuth(auth Authorizer, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := auth.Authorize(r.Context(), r.Header.Get(SessionIDHeader), r.Header.Get(AuthorizationHeader))
			if err != nil {
				log.Warn("SessionAuth: request rejected", "method", r.Method, "path", r.URL.Path, "error", err.Error())
				writeUnauthorized(w)
				return
			}
			log.Debug("SessionAuth: user authenticated", "method", r.Method, "path", r.URL.Path, "user_id", userID)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserIDKey, userID)))
		})
	}
}

// writeUnauthorized uses the same {"error": ...} body as the handlers.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}

// UserIDFromContext returns the id stored by SessionAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
