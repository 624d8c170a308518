package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const systemPrompt = "You are a helpful shopping assistant for Shopping Matrix, a smart mall experience. " +
	"Help shoppers with product recommendations, outfit ideas, food pairings and finding stores. " +
	"Keep answers short and friendly."

var (
	ErrEmptyPrompt      = errors.New("prompt is required")
	ErrRateLimited      = errors.New("ai service rate limited")
	ErrCreditsExhausted = errors.New("ai service credits exhausted")
	ErrNotConfigured    = errors.New("ai service not configured")
	// ErrUpstream wraps any other non-success answer from the AI service.
	ErrUpstream = errors.New("ai service error")
)

type Reply struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}

// Client speaks the OpenAI-compatible chat completions API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *log.Logger
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Query sends one prompt with the shopping assistant system prompt.
func (c *Client) Query(ctx context.Context, prompt string) (Reply, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Reply{}, ErrEmptyPrompt
	}
	if c.baseURL == "" || c.apiKey == "" {
		return Reply{}, ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return Reply{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("recommend: send error=%v", err)
		return Reply{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Reply{}, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.Printf("recommend: rate limited")
		return Reply{}, ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		c.logger.Printf("recommend: credits exhausted")
		return Reply{}, ErrCreditsExhausted
	case resp.StatusCode != http.StatusOK:
		c.logger.Printf("recommend: status=%d body=%s", resp.StatusCode, truncate(string(raw), 200))
		return Reply{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Reply{}, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(parsed.Choices) == 0 {
		return Reply{}, fmt.Errorf("%w: no choices in response", ErrUpstream)
	}
	model := parsed.Model
	if model == "" {
		model = c.model
	}
	return Reply{Response: parsed.Choices[0].Message.Content, Model: model}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
