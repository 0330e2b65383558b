// Package authapi is the JSON client for the HR backend's session-auth endpoints.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
	"github.com/visorhr/visorhr-ui/internal/ports"
)

const (
	OpCheckAccounts = "check_accounts"
	OpLogin         = "login"
	OpRegister      = "register"
	OpLogout        = "logout"
	OpValidateAdmin = "validate_admin"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Observer records the outcome and latency of every backend call.
type Observer interface {
	ObserveAuthOp(op string, err error, elapsed time.Duration)
}

// Config describes how to reach the backend.
type Config struct {
	// AuthBaseURL is the auth root, e.g. http://localhost:8000/api/auth.
	AuthBaseURL string
	Timeout     time.Duration
	// Transport is shared by every view; nil uses http.DefaultTransport.
	Transport http.RoundTripper
	Observer  Observer
}

// Client talks to the backend on behalf of one view. It owns a cookie jar so the
// backend session cookie stays with the view that obtained it.
type Client struct {
	base     string
	http     *http.Client
	observer Observer
}

var _ ports.AuthBackend = (*Client)(nil)

// New builds a client with a fresh cookie jar.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.AuthBaseURL), "/")
	if raw == "" {
		return nil, errors.New("auth base url is required")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("parse auth base url: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		base:     raw,
		http:     &http.Client{Timeout: timeout, Jar: jar, Transport: cfg.Transport},
		observer: cfg.Observer,
	}, nil
}

// Factory creates per-view clients that share one transport.
type Factory struct {
	cfg Config
}

// NewFactory validates cfg once so per-view construction cannot fail on configuration.
func NewFactory(cfg Config) (*Factory, error) {
	if _, err := New(cfg); err != nil {
		return nil, err
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	return &Factory{cfg: cfg}, nil
}

// NewBackend returns a client with its own cookie jar.
func (f *Factory) NewBackend() (ports.AuthBackend, error) {
	return New(f.cfg)
}

type userPayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

type responseBody struct {
	Success    *bool        `json:"success"`
	Message    string       `json:"message"`
	User       *userPayload `json:"user"`
	UsersExist bool         `json:"users_exist"`
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// CheckAccountsExist asks whether any account exists. A 2xx reply that says
// success:false is a failed check.
func (c *Client) CheckAccountsExist(ctx context.Context) (bool, error) {
	body, err := c.do(ctx, OpCheckAccounts, http.MethodGet, "check-user-exists/", nil)
	if err != nil {
		return false, err
	}
	if body.Success != nil && !*body.Success {
		return false, &domainauth.BackendError{Op: OpCheckAccounts, Status: http.StatusOK, Message: strings.TrimSpace(body.Message)}
	}
	return body.UsersExist, nil
}

func (c *Client) Login(ctx context.Context, in ports.LoginInput) (ports.AuthResult, error) {
	body, err := c.do(ctx, OpLogin, http.MethodPost, "login/", credentials{Username: in.Username, Password: in.Password})
	if err != nil {
		return ports.AuthResult{}, err
	}
	return toResult(body), nil
}

func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (ports.AuthResult, error) {
	payload := credentials{Username: in.Username, Email: in.Email, Password: in.Password}
	body, err := c.do(ctx, OpRegister, http.MethodPost, "register/", payload)
	if err != nil {
		return ports.AuthResult{}, err
	}
	return toResult(body), nil
}

func (c *Client) Logout(ctx context.Context) (string, error) {
	body, err := c.do(ctx, OpLogout, http.MethodPost, "logout/", nil)
	if err != nil {
		return "", err
	}
	return body.Message, nil
}

func (c *Client) ValidateAdmin(ctx context.Context, username, password string) (string, error) {
	body, err := c.do(ctx, OpValidateAdmin, http.MethodPost, "validate-admin/", credentials{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	return body.Message, nil
}

func toResult(body responseBody) ports.AuthResult {
	res := ports.AuthResult{Message: body.Message}
	if body.User != nil && strings.TrimSpace(body.User.Username) != "" {
		res.User = &domainauth.Session{
			Username:  strings.TrimSpace(body.User.Username),
			Email:     body.User.Email,
			AvatarURL: body.User.AvatarURL,
		}
	}
	return res
}

// do issues one call. A 2xx response whose body is not JSON counts as success with an empty body.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) (body responseBody, err error) {
	start := time.Now()
	defer func() { c.observe(op, err, time.Since(start)) }()

	var reader io.Reader
	if payload != nil {
		data, merr := json.Marshal(payload)
		if merr != nil {
			return body, fmt.Errorf("encode %s request: %w", op, merr)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+path, reader)
	if err != nil {
		return body, fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return body, &domainauth.BackendError{Op: op, Transport: true, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return body, &domainauth.BackendError{Op: op, Status: resp.StatusCode, Transport: true, Err: err}
	}
	decodeErr := json.Unmarshal(raw, &body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if decodeErr == nil {
			msg = strings.TrimSpace(body.Message)
		}
		return responseBody{}, &domainauth.BackendError{Op: op, Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return responseBody{}, nil
	}
	return body, nil
}

func (c *Client) observe(op string, err error, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveAuthOp(op, err, elapsed)
	}
}
