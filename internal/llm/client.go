// Package llm provides a provider-agnostic text generation client that walks
// an ordered list of model identifiers until one gives a usable reply.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bcmimarlik/site/internal/config"
	"github.com/bcmimarlik/site/internal/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// maxResponseSize limits the response body read from a provider.
const maxResponseSize = 2 * 1024 * 1024

// Client calls one provider with a fallback chain of models.
type Client struct {
	provider       string
	baseURL        string
	apiKey         string
	models         []string
	attemptTimeout time.Duration
	minLength      int
	httpClient     *http.Client
}

// Response contains the generation result.
type Response struct {
	// RequestID identifies the Generate call in logs.
	RequestID string
	Content   string
	// Model is the model that produced Content.
	Model string
	// Attempts is the number of models tried, including the successful one.
	Attempts int
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

func NewClient(cfg config.LLMConfig, opts ...ClientOption) *Client {
	c := &Client{
		provider:       cfg.Provider,
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		models:         cfg.Models,
		attemptTimeout: cfg.AttemptTimeout,
		minLength:      cfg.MinLength,
		httpClient:     &http.Client{},
	}
	if c.attemptTimeout <= 0 {
		c.attemptTimeout = 10 * time.Second
	}
	// an empty reply is never acceptable
	if c.minLength < 1 {
		c.minLength = 1
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Configured reports whether the client has credentials or an endpoint to call.
func (c *Client) Configured() bool {
	return c.apiKey != "" || c.baseURL != ""
}

// Generate sends prompt to each model in order, each attempt bounded by the
// attempt timeout, and returns the first reply of at least minLength runes.
func (c *Client) Generate(ctx context.Context, prompt string) (*Response, error) {
	if len(c.models) == 0 {
		return nil, ErrNoModels
	}

	provider := GetProvider(c.provider)
	if provider == nil {
		return nil, NewFatalError(fmt.Errorf("unknown provider: %s", c.provider))
	}

	requestID := uuid.New().String()
	log := logrus.WithFields(logrus.Fields{"request_id": requestID, "provider": c.provider})

	var lastErr error
	for i, model := range c.models {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		start := time.Now()
		content, err := c.attempt(ctx, provider, model, prompt)
		metrics.GenerationAttempts.WithLabelValues(model, outcome(err)).Inc()

		if err == nil {
			log.Infof("generated %d chars with %s in %v", len(content), model, time.Since(start))
			return &Response{
				RequestID: requestID,
				Content:   content,
				Model:     model,
				Attempts:  i + 1,
			}, nil
		}

		lastErr = err
		log.Warnf("model %s failed after %v: %v", model, time.Since(start), err)

		if IsFatal(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("all models failed: %w", lastErr)
}

func (c *Client) attempt(ctx context.Context, provider Provider, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	body, err := provider.BuildRequestBody(model, prompt)
	if err != nil {
		return "", NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, provider.BuildURL(c.baseURL, model), bytes.NewReader(body))
	if err != nil {
		return "", NewFatalError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	provider.SetHeaders(req, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", NewTransientError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyHTTPError(resp.StatusCode, respBody)
	}

	content, err := provider.ParseResponse(respBody)
	if err != nil {
		return "", NewTransientError(fmt.Errorf("parse response: %w", err))
	}

	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n < c.minLength {
		return "", NewTransientError(fmt.Errorf("%w: %d chars", ErrDegenerate, n))
	}

	return content, nil
}

// classifyHTTPError decides whether the next model is worth trying.
// A missing model is transient since another identifier may exist.
func classifyHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("provider error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests,
		statusCode == http.StatusNotFound,
		statusCode >= 500:
		return NewTransientError(err)
	default:
		return NewFatalError(err)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDegenerate):
		return "degenerate"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case IsFatal(err):
		return "fatal"
	default:
		return "transient"
	}
}
