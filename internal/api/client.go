package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"horse.fit/lingo/internal/payloadschema"
)

const (
	// DefaultBaseURL points to a locally running translation backend.
	DefaultBaseURL = "http://127.0.0.1:8000"
	// DefaultTimeout bounds one backend request.
	DefaultTimeout = 30 * time.Second

	defaultBodyByteLimit = 4 * 1024 * 1024
)

// TokenResponse is the credential issued by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse is the identity returned by a successful registration.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// TranslateResponse contains the translated text for one request.
type TranslateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// Options controls HTTP behavior for the backend client.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client speaks the translation backend's HTTP contract.
type Client struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewClient builds a backend client for the given base URL.
func NewClient(baseURL string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: normalizeBaseURL(baseURL),
		client:  client,
		logger:  opts.Logger,
	}
}

// Login exchanges a username and password for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return TokenResponse{}, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token TokenResponse
	if err := c.do(req, &token); err != nil {
		return TokenResponse{}, err
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return TokenResponse{}, fmt.Errorf("login response missing access token")
	}
	return token, nil
}

// Register creates a new account. It does not authenticate the session.
func (c *Client) Register(ctx context.Context, username, password, email string) (UserResponse, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
		"email":    email,
	})
	if err != nil {
		return UserResponse{}, fmt.Errorf("marshal register request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/register", bytes.NewReader(body))
	if err != nil {
		return UserResponse{}, fmt.Errorf("build register request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var user UserResponse
	if err := c.do(req, &user); err != nil {
		// The backend reports a duplicate identity as a plain 400 with a
		// detail message, which callers need to see as a conflict.
		var statusErr *StatusError
		if errors.As(err, &statusErr) && (statusErr.Status == http.StatusBadRequest || statusErr.Status == http.StatusConflict) {
			return UserResponse{}, fmt.Errorf("%w: %s", ErrConflict, statusErr.Detail)
		}
		return UserResponse{}, err
	}
	return user, nil
}

// Translate submits one translation request under the given bearer token.
func (c *Client) Translate(ctx context.Context, token, text, targetLang string) (TranslateResponse, error) {
	body, err := json.Marshal(map[string]string{
		"text":        text,
		"target_lang": targetLang,
	})
	if err != nil {
		return TranslateResponse{}, fmt.Errorf("marshal translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return TranslateResponse{}, fmt.Errorf("build translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setBearer(req, token)

	var resp TranslateResponse
	if err := c.do(req, &resp); err != nil {
		return TranslateResponse{}, err
	}
	return resp, nil
}

// ListHistory retrieves the server-held translation history, newest first.
// The payload is schema-validated before any record is accepted.
func (c *Client) ListHistory(ctx context.Context, token string) ([]payloadschema.HistoryRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/translations/history", nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}
	setBearer(req, token)

	var raw json.RawMessage
	if err := c.do(req, &raw); err != nil {
		return nil, err
	}

	records, err := payloadschema.ValidateHistoryPayload(raw)
	if err != nil {
		return nil, fmt.Errorf("history payload rejected: %w", err)
	}
	return records, nil
}

// DeleteHistoryEntry removes one history record by server-assigned id.
func (c *Client) DeleteHistoryEntry(ctx context.Context, token string, id int64) error {
	endpoint := c.baseURL + "/translations/history/" + strconv.FormatInt(id, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	setBearer(req, token)
	return c.do(req, nil)
}

// ClearHistory removes every history record for the current user.
func (c *Client) ClearHistory(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/translations/history", nil)
	if err != nil {
		return fmt.Errorf("build clear request: %w", err)
	}
	setBearer(req, token)
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, defaultBodyByteLimit))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyFailure(resp.StatusCode, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func classifyFailure(status int, body []byte) error {
	detail := failureDetail(body)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if detail == "" {
			return ErrAuthRequired
		}
		return fmt.Errorf("%w: %s", ErrAuthRequired, detail)
	case http.StatusNotFound:
		if detail == "" {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	case http.StatusConflict:
		if detail == "" {
			return ErrConflict
		}
		return fmt.Errorf("%w: %s", ErrConflict, detail)
	default:
		return &StatusError{Status: status, Detail: detail}
	}
}

func failureDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if detail := strings.TrimSpace(payload.Detail); detail != "" {
			return detail
		}
	}
	return strings.TrimSpace(string(body))
}

func setBearer(req *http.Request, token string) {
	if strings.TrimSpace(token) == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func normalizeBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return DefaultBaseURL
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}

	parsed, err := url.Parse(base)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultBaseURL
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed.String()
}
