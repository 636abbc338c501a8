package usecase

import (
	"context"
	"strings"

	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/opulent-living/property-service/internal/platform/logger"
)

// SessionVerifier turns a session id and bearer token into a user id.
// Missing credentials, unknown or inactive sessions and provider faults
// all collapse into domain.ErrUnauthorized.
type SessionVerifier struct {
	provider domain.IdentityProvider
	logger   *logger.Logger
}

func NewSessionVerifier(provider domain.IdentityProvider, log *logger.Logger) *SessionVerifier {
	return &SessionVerifier{provider: provider, logger: log}
}

func (v *SessionVerifier) Authorize(ctx context.Context, sessionID, authorization string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	token := BearerToken(authorization)
	if sessionID == "" || token == "" {
		v.logger.Debug("SessionVerifier.Authorize: missing credentials",
			"has_session_id", sessionID != "", "has_token", token != "")
		return "", domain.ErrUnauthorized
	}

	session, err := v.provider.VerifySession(ctx, sessionID, token)
	if err != nil {
		v.logger.Error("SessionVerifier.Authorize: identity provider call failed", "session_id", sessionID, "error", err.Error())
		return "", domain.ErrUnauthorized
	}
	if !session.Active() {
		status := ""
		if session != nil {
			status = session.Status
		}
		v.logger.Warn("SessionVerifier.Authorize: session not active", "session_id", sessionID, "status", status)
		return "", domain.ErrUnauthorized
	}

	v.logger.Debug("SessionVerifier.Authorize: session verified", "session_id", sessionID, "user_id", session.UserID)
	return session.UserID, nil
}

// BearerToken strips an optional "Bearer " scheme from an authorization
// header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	parts := strings.Fields(header)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	if len(parts) == 1 && !strings.EqualFold(parts[0], "bearer") {
		return parts[0]
	}
	return ""
}
