package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GoTrueConfig locates the auth API of a Supabase project.
type GoTrueConfig struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

// GoTrue is an Authenticator backed by the Supabase auth REST API.
type GoTrue struct {
	baseURL string
	anonKey string
	client  *http.Client
}

// NewGoTrue creates a client for cfg.
func NewGoTrue(cfg GoTrueConfig) *GoTrue {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GoTrue{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient replaces the client used for requests.
func (g *GoTrue) SetHTTPClient(c *http.Client) {
	g.client = c
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

// authError covers both the legacy and current GoTrue error bodies.
type authError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e authError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (g *GoTrue) SignIn(ctx context.Context, email, password string) (Session, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})

	var tok tokenResponse
	status, err := g.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &tok)
	if err != nil {
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return Session{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return Session{}, err
	}

	s := Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		User:         tok.User,
	}
	switch {
	case tok.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tok.ExpiresAt, 0)
	case tok.ExpiresIn > 0:
		s.ExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return s, nil
}

func (g *GoTrue) SignOut(ctx context.Context, token string) error {
	status, err := g.do(ctx, http.MethodPost, "/auth/v1/logout", token, nil, nil)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		// already gone on the server side
		return nil
	}
	return err
}

func (g *GoTrue) User(ctx context.Context, token string) (User, error) {
	var u User
	status, err := g.do(ctx, http.MethodGet, "/auth/v1/user", token, nil, &u)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return User{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if err != nil {
		return User{}, err
	}
	if u.ID == "" {
		return User{}, ErrNoSession
	}
	return u, nil
}

func (g *GoTrue) do(ctx context.Context, method, path, token string, body []byte, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", g.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var ae authError
		_ = json.Unmarshal(data, &ae)
		if msg := ae.text(); msg != "" {
			return resp.StatusCode, fmt.Errorf("auth: HTTP %d: %s", resp.StatusCode, msg)
		}
		return resp.StatusCode, fmt.Errorf("auth: HTTP %d", resp.StatusCode)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode auth response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
