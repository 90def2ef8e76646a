// Package ai is the bridge to the generative-language API. Every call
// degrades to a fixed fallback (placeholder text, empty list, nil or no
// match) instead of returning an error; failures are only logged and
// counted.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/sigmax/internal/config"
	"github.com/dmitrijs2005/sigmax/internal/logging"
	"github.com/dmitrijs2005/sigmax/internal/metrics"
	"golang.org/x/time/rate"
)

var (
	errNoAPIKey      = errors.New("api key not configured")
	errEmptyResponse = errors.New("empty response")
)

// Client calls the generateContent endpoint.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	fastModel      string
	reasoningModel string
	visionModel    string
	timeout        time.Duration
	limiter        *rate.Limiter
	logger         logging.Logger
	metrics        *metrics.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithMetrics records call outcomes and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

func NewClient(cfg *config.Config, logger logging.Logger, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.AIRatePerSecond > 0 {
		limit = rate.Limit(cfg.AIRatePerSecond)
	}
	burst := cfg.AIBurst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		httpClient:     &http.Client{},
		baseURL:        strings.TrimRight(cfg.AIBaseURL, "/"),
		apiKey:         cfg.APIKey,
		fastModel:      cfg.AIFastModel,
		reasoningModel: cfg.AIReasoningModel,
		visionModel:    cfg.AIVisionModel,
		timeout:        cfg.AITimeout,
		limiter:        rate.NewLimiter(limit, burst),
		logger:         logger.With("module", "ai"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Enabled reports whether calls can reach the network at all.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// generate runs one generateContent call and returns the concatenated
// text of the first candidate.
func (c *Client) generate(ctx context.Context, op, model string, req *generateRequest) (text string, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if errors.Is(err, errNoAPIKey) {
				outcome = "disabled"
			}
			c.logger.Warn(ctx, "generative call failed", "op", op, "model", model, "error", err)
		}
		if c.metrics != nil {
			c.metrics.AIRequests.WithLabelValues(op, outcome).Inc()
			if outcome != "disabled" {
				c.metrics.AIDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
			}
		}
	}()

	if !c.Enabled() {
		return "", errNoAPIKey
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text = out.text()
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}
