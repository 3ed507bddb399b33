// Package session is the client side of authentication: it keeps the current
// user and request flags, and its HTTP transport refreshes an expired access
// token once before replaying the failed request.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-catalog-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

const (
	SignupPath       = "/auth/signup"
	LoginPath        = "/auth/login"
	LogoutPath       = "/auth/logout"
	ProfilePath      = "/auth/profile"
	RefreshTokenPath = "/auth/refresh-token"

	defaultTimeout = 30 * time.Second
)

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Client struct {
	baseURL  *url.URL
	http     *http.Client
	store    *Store
	notifier Notifier
	gate     refreshGate
}

type Option func(*Client)

func WithNotifier(notifier Notifier) Option {
	return func(c *Client) {
		c.notifier = notifier
	}
}

// WithBaseTransport sets the round tripper that the refresh interceptor wraps
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport.(*Transport).Base = rt
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// NewClient creates a client for the API rooted at baseURL. Cookies set by the
// auth service are kept in a jar and sent on every later request.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "create cookie jar")
	}

	c := &Client{
		baseURL:  base,
		store:    NewStore(),
		notifier: LogNotifier{},
	}
	c.http = &http.Client{
		Jar:       jar,
		Timeout:   defaultTimeout,
		Transport: &Transport{Base: http.DefaultTransport, client: c},
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Store() *Store {
	return c.store
}

// HTTPClient returns the intercepted client, for calls to other API endpoints
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

func (c *Client) URL(path string) string {
	return c.baseURL.String() + path
}

// Signup registers a new account and stores the returned user
func (c *Client) Signup(ctx context.Context, request SignupRequest) error {
	c.store.update(func(s *State) { s.Loading = true })

	if request.Password != request.ConfirmPassword {
		c.store.update(func(s *State) { s.Loading = false })
		c.notifier.Error(passwordMismatchMessage)
		return ErrPasswordMismatch
	}

	return c.authenticate(ctx, SignupPath, request)
}

// Login authenticates with email and password and stores the returned user
func (c *Client) Login(ctx context.Context, email, password string) error {
	c.store.update(func(s *State) { s.Loading = true })
	return c.authenticate(ctx, LoginPath, loginRequest{Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) error {
	var user users.User
	if err := c.doJSON(ctx, http.MethodPost, path, body, &user); err != nil {
		c.store.update(func(s *State) { s.Loading = false })
		c.notifier.Error(userMessage(err))
		return err
	}

	c.store.update(func(s *State) {
		s.User = &user
		s.Loading = false
	})
	return nil
}

// CheckAuth loads the current profile. Any failure means logged out and
// returns a nil user.
func (c *Client) CheckAuth(ctx context.Context) *users.User {
	c.store.update(func(s *State) { s.CheckingAuth = true })

	var user users.User
	if err := c.doJSON(ctx, http.MethodGet, ProfilePath, nil, &user); err != nil {
		log.Debug().Err(err).Msg("profile check failed, treating session as logged out")
		c.store.update(func(s *State) {
			s.User = nil
			s.CheckingAuth = false
		})
		return nil
	}

	c.store.update(func(s *State) {
		s.User = &user
		s.CheckingAuth = false
	})
	return &user
}

// Logout tells the auth service to end the session and clears the user
// whether or not that call succeeds.
func (c *Client) Logout(ctx context.Context) {
	if err := c.doJSON(ctx, http.MethodPost, LogoutPath, nil, nil); err != nil {
		log.Err(err).Msg("error logging out")
	}
	c.store.setUser(nil)
}

// RefreshToken asks the auth service for a new access token and returns its
// response body. A call made while a refresh is in flight returns
// ErrRefreshInProgress without contacting the server.
func (c *Client) RefreshToken(ctx context.Context) (json.RawMessage, error) {
	if c.store.Snapshot().Refreshing {
		return nil, ErrRefreshInProgress
	}
	return c.gate.do(func() (json.RawMessage, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
}

// refreshForReplay starts or joins the pending refresh. A failed refresh
// forces a logout and its error is returned to every waiter.
func (c *Client) refreshForReplay(ctx context.Context) error {
	_, err := c.gate.do(func() (json.RawMessage, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		c.Logout(withRetried(context.WithoutCancel(ctx)))
		return err
	}
	return nil
}

func (c *Client) refresh(ctx context.Context) (json.RawMessage, error) {
	c.store.update(func(s *State) { s.Refreshing = true })

	var body json.RawMessage
	err := c.doJSON(ctx, http.MethodPost, RefreshTokenPath, nil, &body)
	if err != nil {
		c.store.update(func(s *State) {
			s.User = nil
			s.Refreshing = false
		})
		return nil, err
	}

	c.store.update(func(s *State) { s.Refreshing = false })
	if body == nil {
		body = json.RawMessage{}
	}
	return body, nil
}

func (c *Client) isRefreshRequest(req *http.Request) bool {
	return req.Method == http.MethodPost && req.URL.Path == c.baseURL.Path+RefreshTokenPath
}

// doJSON sends body as JSON and decodes a 2xx response into out
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s response", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	return errors.Wrapf(json.Unmarshal(data, out), "decode %s response", path)
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)
	return &APIError{StatusCode: status, Message: payload.Message}
}
