package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	auth "github.com/BrayanMorningstar237/waiter-backend-sub001"
)

// Credentials is what a successful login returns.
type Credentials struct {
	Token string
	User  *auth.PublicUser
}

// API is the backend surface the session manager talks to.
type API interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	VerifyToken(ctx context.Context, token string) (*auth.PublicUser, error)
}

// ErrInvalidCredentials is returned when the backend rejects a login.
var ErrInvalidCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeBadRequest)

// ErrSessionRejected is returned when the backend rejects the session
// token. The backend does not say why.
var ErrSessionRejected = goerrors.New("session token was rejected", goerrors.CategoryAuth).
	WithTextCode("SESSION_REJECTED").
	WithCode(goerrors.CodeUnauthorized)

// HTTPAPIOption customizes the HTTP API client.
type HTTPAPIOption func(*HTTPAPI)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(c *http.Client) HTTPAPIOption {
	return func(a *HTTPAPI) {
		if c != nil {
			a.client = c
		}
	}
}

// HTTPAPI implements API against the auth endpoints.
type HTTPAPI struct {
	baseURL string
	client  *http.Client
}

var _ API = (*HTTPAPI)(nil)

func NewHTTPAPI(baseURL string, opts ...HTTPAPIOption) *HTTPAPI {
	a := &HTTPAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    *auth.PublicUser `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login posts credentials to /auth/login. Any 4xx comes back as
// ErrInvalidCredentials; the backend does not distinguish further.
func (a *HTTPAPI) Login(ctx context.Context, email, password string) (*Credentials, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode login request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "login request failed")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, loginFailure(res)
	}

	var payload loginResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to decode login response")
	}

	if payload.Token == "" {
		return nil, goerrors.New("login response carried no token", goerrors.CategoryOperation)
	}

	return &Credentials{Token: payload.Token, User: payload.User}, nil
}

// VerifyToken asks the backend whether the token still names a live,
// active account.
func (a *HTTPAPI) VerifyToken(ctx context.Context, token string) (*auth.PublicUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/auth/verify", nil)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build verify request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := a.client.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "verify request failed")
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrSessionRejected.Clone().WithMetadata(map[string]any{
			"status": res.StatusCode,
			"body":   readErrorBody(res),
		})
	default:
		return nil, unexpectedStatus(res)
	}

	var user auth.PublicUser
	if err := json.NewDecoder(res.Body).Decode(&user); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to decode verify response")
	}

	return &user, nil
}

func loginFailure(res *http.Response) error {
	msg := readErrorBody(res)

	if res.StatusCode >= 400 && res.StatusCode < 500 {
		return ErrInvalidCredentials.Clone().WithMetadata(map[string]any{
			"status": res.StatusCode,
			"body":   msg,
		})
	}

	return unexpectedStatus(res)
}

func unexpectedStatus(res *http.Response) error {
	return goerrors.New(
		fmt.Sprintf("unexpected response status %d", res.StatusCode),
		goerrors.CategoryOperation,
	).WithMetadata(map[string]any{"status": res.StatusCode})
}

// readErrorBody pulls the error envelope out of a failed response, or
// the raw body when it is not JSON.
func readErrorBody(res *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err != nil {
		return ""
	}

	var envelope errorResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}

	return strings.TrimSpace(string(raw))
}
