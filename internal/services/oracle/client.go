package oracle

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

	"vidcheck/internal/services"
)

// SystemPrompt frames every request as a fact-checking task.
const SystemPrompt = "You are a fact-checking assistant. Decide whether the news content you are given is genuine or potentially fake or misleading, and explain why briefly."

const (
	defaultBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout    = 60 * time.Second
	defaultRetryAttempts  = 4
	defaultRetryBaseDelay = time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// Config captures the runtime settings required to reach the oracle.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client wraps the chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      retryPolicy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the total attempt count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retry.attempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.baseDelay = baseDelay
		c.retry.maxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.retry.sleeper = sleeper
	}
}

// NewClient constructs an oracle client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		retry: retryPolicy{
			attempts:  defaultRetryAttempts,
			baseDelay: defaultRetryBaseDelay,
			maxDelay:  defaultRetryMaxDelay,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends the prompt to the oracle and returns its free-text answer.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, "", "oracle complete", "prompt required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "", "oracle complete", "api key required", nil)
	}
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	}
	content, err := c.completeWithRetry(ctx, req, "oracle complete")
	if err != nil {
		return "", services.Wrap(services.ErrOracle, "", "oracle complete", "", err)
	}
	return content, nil
}

// HealthCheck issues a short request to confirm the key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, "", "oracle health", "api key required", nil)
	}
	req := chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: "Reply with the single word OK."}},
		Temperature: 0,
	}
	content, err := c.completeWithRetry(ctx, req, "oracle health")
	if err != nil {
		return services.Wrap(services.ErrOracle, "", "oracle health", "", err)
	}
	if !strings.Contains(strings.ToUpper(content), "OK") {
		return services.Wrap(services.ErrOracle, "", "oracle health", fmt.Sprintf("unexpected reply %q", snippet(content)), nil)
	}
	return nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatReply `json:"message"`
		// Some providers return the streaming schema even when stream=false.
		Delta        chatReply `json:"delta"`
		Text         string    `json:"text"`
		FinishReason string    `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type chatReply struct {
	Content string `json:"content"`
	Refusal string `json:"refusal"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("oracle request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type emptyContentError struct {
	Op           string
	FinishReason string
	Refusal      string
	Snippet      string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q, refusal=%q, response_snippet=%s)",
		e.Op, e.FinishReason, e.Refusal, e.Snippet)
}

func (c *Client) completeWithRetry(ctx context.Context, req chatRequest, op string) (string, error) {
	attempts := c.retry.maxAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, body, err := c.send(ctx, req)
		if err == nil {
			content, finish := replyContent(resp)
			if content != "" {
				return content, nil
			}
			if len(resp.Choices) == 0 {
				err = fmt.Errorf("%s: empty choices", op)
			} else {
				err = &emptyContentError{Op: op, FinishReason: finish, Refusal: replyRefusal(resp), Snippet: snippet(string(body))}
			}
		}
		delay, again := c.retry.delay(ctx, err, attempt)
		if !again {
			return "", err
		}
		if err := c.retry.sleep(ctx, delay); err != nil {
			return "", err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) send(ctx context.Context, payload chatRequest) (chatResponse, []byte, error) {
	var parsed chatResponse
	encoded, err := json.Marshal(payload)
	if err != nil {
		return parsed, nil, fmt.Errorf("oracle request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return parsed, nil, fmt.Errorf("oracle request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return parsed, nil, fmt.Errorf("oracle request: http error (timeout=%s): %w", c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return parsed, nil, fmt.Errorf("oracle request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return parsed, body, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body), RetryAfter: retryAfter}
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return parsed, body, fmt.Errorf("oracle request: decode response: %w", err)
	}
	if parsed.Error != nil {
		return parsed, body, fmt.Errorf("oracle request: api error: %s", strings.TrimSpace(parsed.Error.Message))
	}
	return parsed, body, nil
}

func replyContent(resp chatResponse) (string, string) {
	var finish string
	for _, choice := range resp.Choices {
		if finish == "" {
			finish = strings.TrimSpace(choice.FinishReason)
		}
		for _, candidate := range []string{choice.Message.Content, choice.Delta.Content, choice.Text} {
			if trimmed := strings.TrimSpace(candidate); trimmed != "" {
				return trimmed, finish
			}
		}
	}
	return "", finish
}

func replyRefusal(resp chatResponse) string {
	for _, choice := range resp.Choices {
		if r := strings.TrimSpace(choice.Message.Refusal); r != "" {
			return r
		}
		if r := strings.TrimSpace(choice.Delta.Refusal); r != "" {
			return r
		}
	}
	return ""
}

func snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
