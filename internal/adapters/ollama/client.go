package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"acolhimento/internal/ports"
)

// Config holds the immutable client settings, established at construction.
type Config struct {
	BaseURL string
	Model   string
	// Timeout applies per attempt.
	Timeout time.Duration
	// MaxRetries is the total attempt budget for Generate (default 3).
	MaxRetries  int
	BackoffBase time.Duration // default 1s
	BackoffMax  time.Duration // default 10s
}

// Client talks to a local Ollama runtime.
type Client struct {
	cfg  Config
	http *http.Client
	pull *http.Client
	log  *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		// Model pulls stream gigabytes; give them their own generous budget.
		pull: &http.Client{Timeout: 300 * time.Second},
		log:  log,
	}
}

// TransportError signals that the runtime was unreachable, timed out or kept
// returning non-2xx after the attempt budget was spent.
type TransportError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ollama %s failed after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
	System  string          `json:"system,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate issues a completion call with fixed decoding parameters, retrying
// transient failures with exponential backoff: min(base<<(attempt-1), max),
// no jitter. The returned string is the model's raw textual output.
func (c *Client) Generate(ctx context.Context, prompt, system string) (string, error) {
	req := generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: 0.1,
			TopP:        0.9,
			MaxTokens:   1000,
		},
		System: system,
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		text, err := c.generateOnce(ctx, req)
		if err == nil {
			c.log.Debug("ollama_generate_success", zap.String("model", c.cfg.Model))
			return text, nil
		}
		lastErr = err
		if attempt == c.cfg.MaxRetries {
			break
		}

		delay := c.cfg.BackoffBase << (attempt - 1)
		if delay > c.cfg.BackoffMax {
			delay = c.cfg.BackoffMax
		}
		c.log.Warn("ollama_generate_retry",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	c.log.Error("ollama_generate_failure", zap.String("model", c.cfg.Model), zap.Error(lastErr))
	return "", &TransportError{Op: "generate", Attempts: c.cfg.MaxRetries, Err: lastErr}
}

func (c *Client) generateOnce(ctx context.Context, req generateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &statusError{Code: resp.StatusCode, Body: string(raw)}
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("parsing response JSON: %w", err)
	}
	return out.Response, nil
}

type tagsResponse struct {
	Models []ports.ModelInfo `json:"models"`
}

// ListModels fetches the runtime's model catalog. Single call, no retry.
func (c *Client) ListModels(ctx context.Context) ([]ports.ModelInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "list_models", Attempts: 1, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "list_models", Attempts: 1, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: "list_models", Attempts: 1, Err: &statusError{Code: resp.StatusCode, Body: string(raw)}}
	}

	var tags tagsResponse
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, &TransportError{Op: "list_models", Attempts: 1, Err: err}
	}
	return tags.Models, nil
}

// CheckModel reports whether the named model (or the configured one, for an
// empty name) is available. Any failure reads as unavailable.
func (c *Client) CheckModel(ctx context.Context, name string) bool {
	if name == "" {
		name = c.cfg.Model
	}
	models, err := c.ListModels(ctx)
	if err != nil {
		return false
	}
	for _, m := range models {
		if m.Name == name {
			return true
		}
	}
	return false
}

// CurrentModel returns the configured model identifier.
func (c *Client) CurrentModel() string { return c.cfg.Model }

// Pull downloads the named model (or the configured one). No retry; the pull
// client's long timeout applies.
func (c *Client) Pull(ctx context.Context, name string) error {
	if name == "" {
		name = c.cfg.Model
	}
	c.log.Info("ollama_pull_start", zap.String("model", name))

	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.pull.Do(httpReq)
	if err != nil {
		return &TransportError{Op: "pull", Attempts: 1, Err: err}
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Op: "pull", Attempts: 1, Err: &statusError{Code: resp.StatusCode, Body: string(raw)}}
	}
	return nil
}
