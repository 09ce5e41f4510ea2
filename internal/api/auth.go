package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string    `json:"token"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Login exchanges operator credentials for a bearer token at path.
// The backend answers {data:{token, expiresAt}}; accessToken is accepted as
// an alias for token.
func (c *Client) Login(ctx context.Context, path, email, password string) (*oauth2.Token, error) {
	payload, err := c.do(ctx, http.MethodPost, path, nil, loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	access := resp.Token
	if access == "" {
		access = resp.AccessToken
	}
	if access == "" {
		return nil, fmt.Errorf("decode login response: %w", errEmptyPayload)
	}

	return &oauth2.Token{
		AccessToken: access,
		TokenType:   "Bearer",
		Expiry:      resp.ExpiresAt,
	}, nil
}
