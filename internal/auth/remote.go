package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/yourname/timesheet/internal"
)

// RemoteProvider resolves tokens against an external identity service. The
// service is expected to answer POST {"token": "..."} with the user's
// profile, including locale and UTC offset.
type RemoteProvider struct {
	AuthServiceURL string
	HTTPClient     *http.Client
	logger         internal.Logger
}

func NewRemoteProvider(url string, logger internal.Logger) *RemoteProvider {
	return &RemoteProvider{
		AuthServiceURL: url,
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
		logger:         logger,
	}
}

func (a *RemoteProvider) Identify(ctx context.Context, token string) (*internal.User, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.AuthServiceURL, bytes.NewReader(body))
	if err != nil {
		a.logger.Errorf("auth: failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		a.logger.Errorf("auth: failed to call identity service: %v", err)
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		a.logger.Warnf("auth: identity service returned %d", resp.StatusCode)
		return nil, ErrInvalidToken
	}
	var user internal.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		a.logger.Errorf("auth: failed to decode identity response: %v", err)
		return nil, err
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}
	return &user, nil
}

var _ Provider = (*RemoteProvider)(nil)
