// Package llm provides a shared chat-completions client used by the
// identifier extractor, the scam text classifier, and the honeypot reply
// generator whenever their rule-based paths want LLM augmentation.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"upishield/internal/config"
	"upishield/internal/resilience"
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	breaker    *resilience.Breaker
}

// NewClient builds a Client from LLM configuration. It does not look at
// cfg.Enabled: when the LLM is disabled, callers pass a nil *Client
// instead, which every call site treats as "use the rule-based path".
func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		breaker: resilience.New(
			resilience.BuildSettings("llm-client", 30, 10, 4, 1),
			resilience.GracefulDegradation("llm-client"),
		),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a single system+user prompt pair and returns the raw
// completion text. The call is routed through a circuit breaker: once the
// endpoint fails repeatedly, Complete fails fast with ErrCircuitOpen instead
// of waiting out the full HTTP timeout on every subsequent call.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	result, err := c.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return c.doComplete(ctx, systemPrompt, userPrompt)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) doComplete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
		MaxTokens:   800,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.baseURL, "/")+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: upstream returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("llm: decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: no choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// CompleteJSON calls Complete and unmarshals the result into dst, stripping
// markdown code fences and any prose surrounding the JSON object first.
// LLMs routinely wrap JSON in ```json fences or add a sentence before it;
// this mirrors how every call site in this codebase tolerates that.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, dst interface{}) error {
	start := time.Now()
	raw, err := c.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return err
	}

	cleaned := ExtractJSONObject(raw)
	if cleaned == "" {
		return fmt.Errorf("llm: no JSON object found in response")
	}

	if err := json.Unmarshal([]byte(cleaned), dst); err != nil {
		slog.Warn("llm: failed to parse response as JSON", "error", err, "elapsed", time.Since(start))
		return fmt.Errorf("llm: parsing JSON: %w", err)
	}
	return nil
}

// ExtractJSONObject strips leading/trailing markdown fences and returns the
// substring between the first '{' and the last '}'. Returns "" if no object
// delimiters are found.
func ExtractJSONObject(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return content[start : end+1]
}
