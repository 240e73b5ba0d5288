// Package inference sends prompts to a hosted chat model.
package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse is returned when the model answers without any choices.
var ErrEmptyResponse = errors.New("model returned no choices")

// Request is one system + user exchange.
type Request struct {
	System      string
	User        string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Config selects the endpoint and call policy. The zero value makes a single
// attempt with no deadline.
type Config struct {
	Provider   string
	Endpoint   string
	APIKey     string
	Retries    uint
	RetryDelay time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to any OpenAI-compatible chat completions endpoint.
type Client struct {
	api      *openai.Client
	cfg      Config
	provider provider
	logger   *slog.Logger
}

// New builds a client. The API key falls back to the provider's environment
// variable; it may only be empty when a custom endpoint is given.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}

	p, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(p.apiKeyEnv)
	}
	if cfg.APIKey == "" && cfg.Endpoint == "" {
		return nil, fmt.Errorf("missing API key for %s: set %s", p.name, p.apiKeyEnv)
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if p.baseURL != "" {
		config.BaseURL = p.baseURL
	}
	if cfg.Endpoint != "" {
		config.BaseURL = cfg.Endpoint
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	return &Client{
		api:      openai.NewClientWithConfig(config),
		cfg:      cfg,
		provider: p,
		logger:   logger,
	}, nil
}

// Complete sends req and returns the text of the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	return retry.DoWithData(
		func() (string, error) {
			return c.complete(ctx, req)
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.Retries+1),
		retry.Delay(c.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(Retryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("llm.retry", "attempt", n+1, "error", err)
		}),
	)
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	temperature := req.Temperature
	if temperature == 0 {
		// go-openai drops a zero temperature from the request body
		temperature = math.SmallestNonzeroFloat32
	}

	c.logger.Info("llm.request",
		"provider", c.provider.name,
		"model", req.Model,
		"temperature", req.Temperature,
		"max_tokens", req.MaxTokens,
		"prompt_bytes", len(req.System)+len(req.User),
	)
	start := time.Now()

	response, err := c.api.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: req.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    "system",
					Content: req.System,
				},
				{
					Role:    "user",
					Content: req.User,
				},
			},
			Temperature: temperature,
			MaxTokens:   req.MaxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate preview with %s: %w", req.Model, err)
	}

	if len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	choice := response.Choices[0]
	c.logger.Info("llm.response",
		"model", response.Model,
		"finish_reason", choice.FinishReason,
		"bytes", len(choice.Message.Content),
		"prompt_tokens", response.Usage.PromptTokens,
		"completion_tokens", response.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return choice.Message.Content, nil
}

// Retryable reports whether err is worth another attempt: rate limits,
// server errors and transport failures are; auth and request errors are not.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
