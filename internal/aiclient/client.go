// Package aiclient talks to an Azure-OpenAI-style chat completions endpoint.
// Callers treat the service as a black-box text transform: a system
// instruction and a user message go in, free text comes out.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jgrigorjeva/skoda-hackathon-2025/internal/apperr"
)

// DefaultTimeout bounds a single completion request.
const DefaultTimeout = 30 * time.Second

// Config addresses one deployment.
type Config struct {
	URL        string
	Key        string
	APIVersion string
	Deployment string
	Timeout    time.Duration
	MaxTokens  int
}

// Configured reports whether every connection field is set.
func (c Config) Configured() bool {
	return c.URL != "" && c.Key != "" && c.APIVersion != "" && c.Deployment != ""
}

// Request is one chat completion call.
type Request struct {
	System      string
	User        string
	Temperature float64
	// MaxTokens overrides Config.MaxTokens when positive.
	MaxTokens int
	Stop      []string
}

// Completer is the interface consumers depend on.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Client is a Completer backed by net/http.
type Client struct {
	cfg  Config
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client for cfg. An unconfigured client is valid; every call
// then fails with apperr.ErrNotConfigured.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	c := &Client{cfg: cfg, http: &http.Client{}}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Configured reports whether calls can reach a deployment.
func (c *Client) Configured() bool { return c.cfg.Configured() }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content string `json:"content"`
		} `json:"message"`
		Text *string `json:"text"`
	} `json:"choices"`
}

// Complete sends req and returns the reply text. Transport failures, non-2xx
// statuses, timeouts and unrecognised bodies wrap apperr.ErrUpstream.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("aiclient: %w", apperr.ErrNotConfigured)
	}

	body := chatRequest{Temperature: req.Temperature, Stop: req.Stop, MaxTokens: c.cfg.MaxTokens}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}
	if req.System != "" {
		body.Messages = append(body.Messages, message{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, message{Role: "user", Content: req.User})

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("aiclient: encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := c.cfg.URL + "/openai/deployments/" + url.PathEscape(c.cfg.Deployment) +
		"/chat/completions?" + url.Values{"api-version": {c.cfg.APIVersion}}.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("aiclient: build request: %w", err)
	}
	httpReq.Header.Set("api-key", c.cfg.Key)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("aiclient: %w: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("aiclient: %w: read body: %v", apperr.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("aiclient: %w: status %d: %s", apperr.ErrUpstream, resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("aiclient: %w: decode response: %v", apperr.ErrUpstream, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("aiclient: %w: no choices in response", apperr.ErrUpstream)
	}
	choice := parsed.Choices[0]
	switch {
	case choice.Message != nil:
		return choice.Message.Content, nil
	case choice.Text != nil:
		return *choice.Text, nil
	}
	return "", fmt.Errorf("aiclient: %w: unexpected response shape", apperr.ErrUpstream)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
