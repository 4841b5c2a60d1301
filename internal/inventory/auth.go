package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/talentotech/storefront/pkg/errors"
)

// TokenPair is the auth service's token response.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Login exchanges credentials for a token pair. A 401 here means bad
// credentials, not an expired session, so the session-expired hook does
// not fire (the request goes out without a bearer token).
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	body, status, err := c.doAnonymous(ctx, http.MethodPost, "/token/", loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		return nil, &errors.ErrUnauthorized{Message: "invalid username or password"}
	}
	if status != http.StatusOK {
		return nil, rejectionFromBody(body, fmt.Sprintf("login failed: status %d", status))
	}

	var tokens TokenPair
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token response: %w", err)
	}
	if tokens.Access == "" {
		return nil, fmt.Errorf("token response missing access token")
	}

	c.logger.Info("Login succeeded", zap.String("username", username))
	return &tokens, nil
}

// Register creates an account on the auth service.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body, status, err := c.doAnonymous(ctx, http.MethodPost, "/register/", registerRequest{
		Username: username,
		Password: password,
		Email:    email,
	})
	if err != nil {
		return err
	}

	if status != http.StatusOK && status != http.StatusCreated {
		return rejectionFromBody(body, "account creation failed")
	}
	return nil
}
