package delegated

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func stubClient(gen generateFunc) *Client {
	return &Client{
		model:    "stub-model",
		timeout:  time.Second,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		logger:   slog.Default(),
		generate: gen,
	}
}

func TestGenerateJSON(t *testing.T) {
	t.Run("clean object passes through", func(t *testing.T) {
		c := stubClient(func(ctx context.Context, model, prompt string) (string, error) {
			return `{"section":"opex","category":"Cleaning"}`, nil
		})
		out := c.GenerateJSON(context.Background(), "classify", "prompt")
		require.True(t, out.OK())
		assert.JSONEq(t, `{"section":"opex","category":"Cleaning"}`, string(out.Value))
	})

	t.Run("markdown fences stripped", func(t *testing.T) {
		c := stubClient(func(ctx context.Context, model, prompt string) (string, error) {
			return "```json\n{\"total\": 115.00}\n```", nil
		})
		out := c.GenerateJSON(context.Background(), "extract", "prompt")
		require.True(t, out.OK())
		assert.JSONEq(t, `{"total": 115.00}`, string(out.Value))
	})

	t.Run("prose around json stripped", func(t *testing.T) {
		c := stubClient(func(ctx context.Context, model, prompt string) (string, error) {
			return `Sure! Here is the result: {"keyword":"bunnings"} Hope that helps.`, nil
		})
		out := c.GenerateJSON(context.Background(), "classify", "prompt")
		require.True(t, out.OK())
		assert.JSONEq(t, `{"keyword":"bunnings"}`, string(out.Value))
	})

	t.Run("call error is unavailable not fatal", func(t *testing.T) {
		c := stubClient(func(ctx context.Context, model, prompt string) (string, error) {
			return "", errors.New("deadline exceeded")
		})
		out := c.GenerateJSON(context.Background(), "classify", "prompt")
		assert.False(t, out.OK())
		assert.Equal(t, "call_failed", out.Reason())
	})

	t.Run("invalid json is unavailable", func(t *testing.T) {
		c := stubClient(func(ctx context.Context, model, prompt string) (string, error) {
			return "I cannot classify that transaction.", nil
		})
		out := c.GenerateJSON(context.Background(), "classify", "prompt")
		assert.False(t, out.OK())
		assert.Equal(t, "bad_json", out.Reason())
	})

	t.Run("nil client is disabled", func(t *testing.T) {
		var c *Client
		out := c.GenerateJSON(context.Background(), "classify", "prompt")
		assert.False(t, out.OK())
		assert.Equal(t, "disabled", out.Reason())
	})
}

func TestExtractJSONPrefersArrayWhenFirst(t *testing.T) {
	s := extractJSON("[{\"a\":1}] trailing")
	assert.JSONEq(t, `[{"a":1}]`, s)
}
