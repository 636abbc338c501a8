// Package clerk verifies sessions against the hosted identity provider's
// backend API.
package clerk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	clerksdk "github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/session"
	"github.com/opulent-living/property-service/internal/listing/domain"
)

type Client struct {
	sessions *session.Client
}

// NewClient builds a session client bound to secretKey. An empty baseURL
// keeps the SDK's default API host.
func NewClient(baseURL, secretKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	backend := clerksdk.BackendConfig{
		HTTPClient: httpClient,
		Key:        clerksdk.String(secretKey),
	}
	if baseURL = strings.TrimRight(baseURL, "/"); baseURL != "" {
		backend.URL = clerksdk.String(baseURL)
	}
	return &Client{sessions: session.NewClient(&clerksdk.ClientConfig{BackendConfig: backend})}
}

// VerifySession returns nil, nil when the provider does not know the
// session.
func (c *Client) VerifySession(ctx context.Context, sessionID, token string) (*domain.Session, error) {
	s, err := c.sessions.Verify(ctx, &session.VerifyParams{
		ID:    sessionID,
		Token: clerksdk.String(token),
	})
	if err != nil {
		var apiErr *clerksdk.APIErrorResponse
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("session verify failed: %w", err)
	}
	return &domain.Session{ID: s.ID, UserID: s.UserID, Status: s.Status}, nil
}
