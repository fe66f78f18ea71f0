// Package delegated wraps the Gemini text-understanding service behind a
// strict-JSON request/response contract. Both the category classifier and the
// layout extractor use it, and both treat every failure mode the same way: the
// tier is simply unavailable for that call.
package delegated

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/propledger/propledger/pkg/config"
	"github.com/propledger/propledger/pkg/metrics"
)

// generateFunc performs one model call and returns the raw response text.
type generateFunc func(ctx context.Context, model, prompt string) (string, error)

// Client is a shared, rate-limited handle on the delegated service. A nil
// *Client is valid and reports every call as unavailable.
type Client struct {
	model    string
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *slog.Logger
	generate generateFunc
}

// New builds a delegated client from configuration. When no API key is set it
// returns (nil, nil): the delegated tier is disabled, not broken.
func New(ctx context.Context, cfg config.GeminiConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	perMinute := cfg.CallsPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		model:   cfg.Model,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
		logger:  logger,
		generate: func(ctx context.Context, model, prompt string) (string, error) {
			contents := []*genai.Content{
				{
					Role:  "user",
					Parts: []*genai.Part{{Text: prompt}},
				},
			}
			resp, err := gc.Models.GenerateContent(ctx, model, contents, nil)
			if err != nil {
				return "", err
			}
			return resp.Text(), nil
		},
	}, nil
}

// GenerateJSON sends a prompt that demands strict JSON and returns the
// validated raw JSON payload. The purpose label feeds metrics and logs.
func (c *Client) GenerateJSON(ctx context.Context, purpose, prompt string) Outcome[json.RawMessage] {
	if c == nil {
		return c.miss(purpose, "disabled", "delegated tier disabled")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return c.miss(purpose, "rate_limited", err.Error())
	}

	raw, err := c.generate(ctx, c.model, prompt)
	if err != nil {
		return c.miss(purpose, "call_failed", err.Error())
	}
	if raw == "" {
		return c.miss(purpose, "empty_response", "model returned no text")
	}

	clean := extractJSON(raw)
	if !json.Valid([]byte(clean)) {
		return c.miss(purpose, "bad_json", truncate(raw, 200))
	}

	metrics.DelegatedCallsTotal.WithLabelValues(purpose, "ok").Inc()
	return Ok(json.RawMessage(clean))
}

func (c *Client) miss(purpose, outcome, detail string) Outcome[json.RawMessage] {
	metrics.DelegatedCallsTotal.WithLabelValues(purpose, outcome).Inc()
	if c != nil && c.logger != nil {
		c.logger.Warn("delegated call unavailable",
			slog.String("purpose", purpose),
			slog.String("outcome", outcome),
			slog.String("detail", detail))
	}
	return Unavailable[json.RawMessage](outcome)
}

// extractJSON strips Markdown fences and surrounding prose that models emit
// despite instructions, keeping the outermost JSON object or array.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	switch {
	case objStart != -1 && (arrStart == -1 || objStart < arrStart):
		if end := strings.LastIndex(s, "}"); end > objStart {
			s = s[objStart : end+1]
		}
	case arrStart != -1:
		if end := strings.LastIndex(s, "]"); end > arrStart {
			s = s[arrStart : end+1]
		}
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
