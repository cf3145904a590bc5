package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"todoapi/internal/shared/models"
)

var errNotLoggedIn = errors.New("not logged in, run `todoctl auth login`")

// apiError is a non-2xx response from the server.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{baseURL: baseURL, http: &http.Client{Timeout: 30 * time.Second}}
}

func (c *apiClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &apiError{Status: resp.StatusCode, Message: e.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// authed sends a request with the stored access token. On a 401 it rotates
// the token pair once using the stored refresh token and retries.
func (c *apiClient) authed(ctx context.Context, method, path string, in, out any) error {
	tok, err := loadToken()
	if err != nil || tok == "" {
		if tok, err = c.refresh(ctx); err != nil {
			return err
		}
	}
	err = c.do(ctx, method, path, tok, in, out)
	var ae *apiError
	if !errors.As(err, &ae) || ae.Status != http.StatusUnauthorized {
		return err
	}
	if tok, err = c.refresh(ctx); err != nil {
		return err
	}
	return c.do(ctx, method, path, tok, in, out)
}

func (c *apiClient) refresh(ctx context.Context) (string, error) {
	r, err := loadRefresh()
	if err != nil || r == "" {
		return "", errNotLoggedIn
	}
	var pair models.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": r}, &pair); err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Status == http.StatusUnauthorized {
			return "", errNotLoggedIn
		}
		return "", fmt.Errorf("refresh failed: %w", err)
	}
	if err := saveTokens(pair); err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}
