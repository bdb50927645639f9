package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is the model used when none is configured or probed.
const DefaultModel = "claude-3-5-haiku-latest"

// DefaultModelCandidates is the probe order for model resolution, newest
// first. Resolution happens once at startup; the running core never
// switches models.
var DefaultModelCandidates = []string{
	"claude-3-5-haiku-latest",
	"claude-3-5-haiku-20241022",
	"claude-3-haiku-20240307",
}

// Config holds Claude oracle configuration.
type Config struct {
	// Model to use (defaults to DefaultModel)
	Model string

	// Max tokens for the summary output
	MaxTokens int

	// Retry settings
	MaxRetries     int
	RetryBaseDelay time.Duration

	// WindowDuration parameterizes the summarization prompt
	WindowDuration time.Duration

	// API key (if empty, ANTHROPIC_API_KEY env is used)
	APIKey string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model:          DefaultModel,
		MaxTokens:      500,
		MaxRetries:     3,
		RetryBaseDelay: time.Second,
		WindowDuration: 30 * time.Second,
	}
}

// Client wraps the Anthropic SDK for window summarization.
type Client struct {
	cfg    *Config
	client anthropic.Client
}

// NewClient creates a Claude oracle client. Extra request options are
// applied after the API key; tests use option.WithHTTPClient.
func NewClient(cfg *Config, opts ...option.RequestOption) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("oracle: %w", err)
	}

	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{
		cfg:    cfg,
		client: anthropic.NewClient(reqOpts...),
	}, nil
}

// Summarize implements Oracle. Retries with exponential backoff on
// transient failures; a non-retryable error is returned immediately.
func (c *Client) Summarize(ctx context.Context, rendered, rangeLabel string) (Result, error) {
	system := fmt.Sprintf(summaryPrompt, c.cfg.WindowDuration)
	user := buildUserContent(rendered, rangeLabel)

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.RetryBaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := c.doRequest(ctx, c.cfg.Model, system, user, c.cfg.MaxTokens)
		if err == nil {
			return Result{Text: text, Source: "claude"}, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return Result{}, err
		}
	}

	return Result{}, fmt.Errorf("oracle: max retries exceeded: %w", lastErr)
}

// Probe sends a minimal request to check that a model is usable. Used by
// ResolveModel before the timeline starts.
func (c *Client) Probe(ctx context.Context, model string) error {
	text, err := c.doRequest(ctx, model, "Reply with a single word.", "Hello", 8)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("oracle: model %s responded with no text", model)
	}
	return nil
}

// doRequest performs a single Messages API request and extracts the text.
func (c *Client) doRequest(ctx context.Context, model, system, user string, maxTokens int) (string, error) {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 500
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("oracle request: %w", err)
	}

	var result strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	return result.String(), nil
}

// ResolveModel probes the candidate models in order and locks the client
// onto the first one that answers. Fatal to startup if none work; the
// timeline never starts with an unvalidated model.
func ResolveModel(ctx context.Context, c *Client, candidates []string) (string, error) {
	if len(candidates) == 0 {
		candidates = DefaultModelCandidates
	}

	var lastErr error
	for _, model := range candidates {
		if err := c.Probe(ctx, model); err != nil {
			lastErr = err
			continue
		}
		c.cfg.Model = model
		return model, nil
	}

	return "", fmt.Errorf("oracle: no usable model among %d candidates: %w", len(candidates), lastErr)
}

// resolveAPIKey gets the API key from config or environment.
func resolveAPIKey(cfg *Config) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, nil
	}
	return "", errors.New("no API key: set ANTHROPIC_API_KEY or captiond config")
}

// isRetryable checks if an error should be retried.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()

	// Rate limits
	if strings.Contains(errStr, "rate_limit") || strings.Contains(errStr, "429") {
		return true
	}

	// Server errors
	if strings.Contains(errStr, "500") || strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") || strings.Contains(errStr, "504") {
		return true
	}

	// Timeouts
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline") {
		return true
	}

	return false
}
