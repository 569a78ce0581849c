// Package auth talks to the remote login/registration endpoint.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/saravenpi/chorus/internal/models"
)

// DefaultEndpoint is the hosted auth function the client was built against.
const DefaultEndpoint = "https://functions.poehali.dev/2ce585f6-ecfd-4273-a08d-8c63e688e6c2"

const (
	msgLoginFailed    = "Ошибка входа"
	msgRegisterFailed = "Ошибка регистрации"
	msgConnection     = "Ошибка подключения к серверу"
)

// ErrMissingFields is returned before any request is made when a required
// field is empty.
var ErrMissingFields = errors.New("Заполните все поля")

// ServerError is an error reported by the endpoint itself.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// ConnectionError wraps any transport or decoding failure.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return msgConnection
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

type LoginRequest struct {
	Email    string
	Password string
}

type RegisterRequest struct {
	Username string
	Email    string
	Password string
	Avatar   string
}

// Result is a successful authentication.
type Result struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type Client struct {
	endpoint string
	http     *http.Client
	log      zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for endpoint. A zero timeout means requests
// only end when the server answers or ctx is done.
func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginBody struct {
	Action   string `json:"action"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerBody struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*Result, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	c.log.Info().Str("action", "login").Str("email", req.Email).Msg("auth_request")
	return c.post(ctx, loginBody{
		Action:   "login",
		Email:    req.Email,
		Password: req.Password,
	}, msgLoginFailed)
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	c.log.Info().Str("action", "register").Str("email", req.Email).Str("username", req.Username).Msg("auth_request")
	return c.post(ctx, registerBody{
		Action:   "register",
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	}, msgRegisterFailed)
}

type responseBody struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
	Error string       `json:"error"`
}

func (c *Client) post(ctx context.Context, body any, fallback string) (*Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn().Err(err).Msg("auth_connection_failed")
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	var data responseBody
	if err := json.Unmarshal(raw, &data); err != nil {
		c.log.Warn().Err(err).Int("status", resp.StatusCode).Msg("auth_bad_response")
		return nil, &ConnectionError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := data.Error
		if msg == "" {
			msg = fallback
		}
		c.log.Info().Int("status", resp.StatusCode).Str("error", msg).Msg("auth_rejected")
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: msg}
	}

	if data.User == nil {
		return nil, &ConnectionError{Err: errors.New("response has no user")}
	}

	c.log.Info().Int64("user_id", data.User.ID).Msg("auth_succeeded")
	return &Result{User: *data.User, Token: data.Token}, nil
}

// Describe turns an auth error into the text shown to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var serverErr *ServerError
	var connErr *ConnectionError
	switch {
	case errors.Is(err, ErrMissingFields):
		return ErrMissingFields.Error()
	case errors.As(err, &serverErr):
		return serverErr.Message
	case errors.As(err, &connErr):
		return msgConnection
	}
	return msgConnection
}
