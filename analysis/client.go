// Package analysis asks a language model to turn a music-theory query
// ("D minor 7", "tritone from C") into a named set of notes.
//
// The model runs behind an Ollama-compatible /api/chat endpoint. Requests
// are non-streaming and constrained by a JSON schema, so the reply body is
// a Result document.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"theory-keys/debug"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the analysis client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinels by type so wrapped copies still compare equal.
func (e *ClientError) Is(target error) bool {
	var t *ClientError
	if !errors.As(target, &t) {
		return false
	}
	return t.Type == e.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeEmptyQuery
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning    = &ClientError{Type: ErrTypeNotRunning, Message: "model server is not running"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
	ErrEmptyQuery    = &ClientError{Type: ErrTypeEmptyQuery, Message: "empty query"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the client.
type ClientConfig struct {
	// BaseURL of the Ollama API (default: http://127.0.0.1:11434)
	BaseURL string

	// Model used for analysis (default: "qwen2.5:7b")
	Model string

	// Timeout for a single analysis request (default: 60s)
	Timeout time.Duration

	// RequestsPerMinute caps outgoing requests; 0 means the default (30)
	RequestsPerMinute int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:11434",
		Model:             "qwen2.5:7b",
		Timeout:           60 * time.Second,
		RequestsPerMinute: 30,
	}
}

// Analyzer resolves a free-text query to a Result.
type Analyzer interface {
	Analyze(ctx context.Context, query string) (*Result, error)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the model server. It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client, filling zero values with defaults.
func NewClientWithConfig(config *ClientConfig) *Client {
	def := DefaultConfig()
	if config == nil {
		config = def
	}
	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}

	return &Client{
		config: &cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
	}
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() ClientConfig {
	return *c.config
}

// CheckRunning verifies that the server is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from model server: " + resp.Status,
		}
	}
	return nil
}

// Analyze sends query to the model and decodes the structured reply.
func (c *Client) Analyze(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &ClientError{Type: ErrTypeTimeout, Message: "rate limit wait", Cause: err}
	}

	reqBody := ChatRequest{
		Model:    c.config.Model,
		Messages: []Message{{Role: "user", Content: prompt(query)}},
		Stream:   false,
		Format:   resultSchema,
		Options:  &Options{Temperature: 0},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, ErrTimeout
		}
		if ctx.Err() != nil {
			return nil, &ClientError{Type: ErrTypeConnection, Message: "request cancelled", Cause: ctx.Err()}
		}
		return nil, ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrModelNotFound
	}

	if resp.StatusCode != http.StatusOK {
		var ollamaErr OllamaError
		if err := json.NewDecoder(resp.Body).Decode(&ollamaErr); err == nil && ollamaErr.Error != "" {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "model server error: " + ollamaErr.Error}
		}
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "unexpected status: " + resp.Status}
	}

	var chat ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	content := strings.TrimSpace(chat.Message.Content)
	if content == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "no data returned"}
	}

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "reply is not a result document", Cause: err}
	}
	if err := result.Validate(); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid result", Cause: err}
	}

	debug.Log("analysis", "%q -> %s (%s) %v in %s", query, result.Name, result.Type, result.Notes, time.Since(start).Round(time.Millisecond))
	return &result, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
