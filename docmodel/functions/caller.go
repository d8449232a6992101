// Package functions invokes named remote endpoints on behalf of an
// authenticated user. The caller exchanges the active user identity for a
// bearer token at an external auth service and caches it until it expires or
// the identity changes.
//
// Remote-call failures are never returned to the invoking code path; they are
// collected into an in-memory error log the caller drains with Errors.
package functions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/oauth2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultTokenTTL = 55 * time.Minute

var (
	// ErrEmptyBaseURL is returned when a Caller is constructed without a
	// function endpoint base URL.
	ErrEmptyBaseURL = errors.New("empty function base url supplied")

	// ErrEmptyAuthURL is returned when a Caller is constructed without an
	// auth service URL.
	ErrEmptyAuthURL = errors.New("empty auth service url supplied")
)

// Caller invokes named remote functions with a bearer token for the active
// user. It is safe for concurrent use.
type Caller struct {
	baseURL    string
	authURL    string
	httpClient *http.Client
	tokenTTL   time.Duration

	mu     sync.Mutex
	uid    string
	tokens oauth2.TokenSource
	errs   []string
}

// Option defines a functional option for configuring the Caller.
type Option func(*Caller) error

// WithHTTPClient sets the HTTP client used for auth and function calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Caller) error {
		c.httpClient = client
		return nil
	}
}

// WithTokenTTL sets the fallback token lifetime used when the auth service
// does not report one.
func WithTokenTTL(ttl time.Duration) Option {
	return func(c *Caller) error {
		c.tokenTTL = ttl
		return nil
	}
}

// NewCaller creates a Caller for the function endpoints under baseURL,
// exchanging identities for tokens at authURL, with optional configuration.
func NewCaller(baseURL, authURL string, options ...Option) (*Caller, error) {
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	if authURL == "" {
		return nil, ErrEmptyAuthURL
	}

	c := &Caller{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authURL:    authURL,
		httpClient: http.DefaultClient,
		tokenTTL:   defaultTokenTTL,
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// SetUser switches the active user identity. Changing the identity discards
// the cached bearer token; the next call exchanges the new identity.
func (c *Caller) SetUser(uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if uid == c.uid && c.tokens != nil {
		return
	}

	c.uid = uid
	c.tokens = oauth2.ReuseTokenSource(nil, &identityTokenSource{
		ctx:        context.Background(),
		authURL:    c.authURL,
		uid:        uid,
		httpClient: c.httpClient,
		ttl:        c.tokenTTL,
	})
}

// Call invokes the named function with the JSON-encoded payload and returns
// the decoded response object. Any failure is recorded in the error log and
// yields nil; an empty response body also yields nil.
func (c *Caller) Call(ctx context.Context, name string, payload any) map[string]any {
	tokens := c.tokenSource()
	if tokens == nil {
		c.recordError(fmt.Sprintf("call %s: no active user", name))
		return nil
	}

	token, tokenErr := tokens.Token()
	if tokenErr != nil {
		c.recordError(fmt.Sprintf("call %s: token exchange failed: %v", name, tokenErr))
		return nil
	}

	encoded, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		c.recordError(fmt.Sprintf("call %s: encoding payload failed: %v", name, marshalErr))
		return nil
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, bytes.NewReader(encoded))
	if reqErr != nil {
		c.recordError(fmt.Sprintf("call %s: building request failed: %v", name, reqErr))
		return nil
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		c.recordError(fmt.Sprintf("call %s: request failed: %v", name, doErr))
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		c.recordError(fmt.Sprintf("call %s: reading response failed: %v", name, readErr))
		return nil
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.recordError(fmt.Sprintf("call %s: status %s: %s", name, resp.Status, strings.TrimSpace(string(body))))
		return nil
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	result := make(map[string]any)
	if decodeErr := json.Unmarshal(body, &result); decodeErr != nil {
		c.recordError(fmt.Sprintf("call %s: decoding response failed: %v", name, decodeErr))
		return nil
	}

	return result
}

// Errors drains the error log: it returns everything recorded since the last
// call and clears the log.
func (c *Caller) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	drained := c.errs
	c.errs = nil

	return drained
}

func (c *Caller) tokenSource() oauth2.TokenSource {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.tokens
}

func (c *Caller) recordError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errs = append(c.errs, msg)
}

// identityTokenSource exchanges a user identity for a bearer token at the
// auth service. Wrapped in oauth2.ReuseTokenSource it is only consulted when
// the cached token is missing or expired.
type identityTokenSource struct {
	ctx        context.Context
	authURL    string
	uid        string
	httpClient *http.Client
	ttl        time.Duration
}

type tokenRequest struct {
	UID string `json:"uid"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// Token implements oauth2.TokenSource.
func (s *identityTokenSource) Token() (*oauth2.Token, error) {
	encoded, marshalErr := json.Marshal(tokenRequest{UID: s.uid})
	if marshalErr != nil {
		return nil, marshalErr
	}

	req, reqErr := http.NewRequestWithContext(s.ctx, http.MethodPost, s.authURL, bytes.NewReader(encoded))
	if reqErr != nil {
		return nil, reqErr
	}

	req.Header.Set("Content-Type", "application/json")

	resp, doErr := s.httpClient.Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var decoded tokenResponse
	if decodeErr := json.Unmarshal(body, &decoded); decodeErr != nil {
		return nil, decodeErr
	}

	if decoded.Token == "" {
		return nil, errors.New("auth service returned an empty token")
	}

	ttl := s.ttl
	if decoded.ExpiresIn > 0 {
		ttl = time.Duration(decoded.ExpiresIn) * time.Second
	}

	return &oauth2.Token{
		AccessToken: decoded.Token,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(ttl),
	}, nil
}
