package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// AuthClient is the surface of the hosted auth provider the resolver needs.
// CurrentSession returns (nil, nil) when nobody is signed in.
type AuthClient interface {
	CurrentSession(ctx context.Context) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password, name string, role Role) (*Session, error)
	SignOut(ctx context.Context) error
}

// ProviderClient talks to the hosted auth provider's REST endpoints.
type ProviderClient struct {
	baseURL string
	anonKey string
	client  *http.Client

	mu      sync.Mutex
	token   string
	session *Session
}

// NewProviderClient builds a client for the auth provider at baseURL.
func NewProviderClient(baseURL, anonKey string) *ProviderClient {
	return &ProviderClient{
		baseURL: baseURL,
		anonKey: anonKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// CurrentSession returns the cached session, refreshed against the provider
// when a token is held but no session has been resolved yet.
func (p *ProviderClient) CurrentSession(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	token := p.token
	cached := p.session
	p.mu.Unlock()

	if token == "" {
		return nil, nil
	}
	if cached != nil {
		return cached, nil
	}

	sess, err := SessionFromToken(token)
	if err != nil {
		// Unreadable or expired token: treat as signed out rather than
		// failing startup.
		p.mu.Lock()
		p.token = ""
		p.session = nil
		p.mu.Unlock()
		return nil, nil
	}

	p.mu.Lock()
	p.session = sess
	p.mu.Unlock()
	return sess, nil
}

// SignIn exchanges credentials for an access token.
func (p *ProviderClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := p.post(ctx, "/auth/v1/token?grant_type=password", body, &resp); err != nil {
		return nil, fmt.Errorf("sign in failed: %w", err)
	}
	return p.adoptToken(resp.AccessToken)
}

// SignUp registers an account and signs it in.
func (p *ProviderClient) SignUp(ctx context.Context, email, password, name string, role Role) (*Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"name": name, "role": string(role)},
	}
	var resp tokenResponse
	if err := p.post(ctx, "/auth/v1/signup", body, &resp); err != nil {
		return nil, fmt.Errorf("sign up failed: %w", err)
	}
	return p.adoptToken(resp.AccessToken)
}

// SignOut revokes the token at the provider and drops the local session.
// The local session is cleared even if the revoke call fails.
func (p *ProviderClient) SignOut(ctx context.Context) error {
	p.mu.Lock()
	token := p.token
	p.token = ""
	p.session = nil
	p.mu.Unlock()

	if token == "" {
		return nil
	}
	if err := p.post(ctx, "/auth/v1/logout", nil, nil); err != nil {
		return fmt.Errorf("sign out revoke failed: %w", err)
	}
	return nil
}

// AdoptToken installs an externally obtained access token (e.g. restored
// from a previous run).
func (p *ProviderClient) AdoptToken(token string) (*Session, error) {
	return p.adoptToken(token)
}

func (p *ProviderClient) adoptToken(token string) (*Session, error) {
	sess, err := SessionFromToken(token)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.token = token
	p.session = sess
	p.mu.Unlock()
	return sess, nil
}

func (p *ProviderClient) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.anonKey != "" {
		req.Header.Set("apikey", p.anonKey)
	}
	p.mu.Lock()
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	p.mu.Unlock()

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("auth provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	return nil
}
