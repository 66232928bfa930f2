// Package mlclient implements the optional ML probability collaborator
// (C7): a hard-timeout HTTP call to an external fraud-probability model,
// wrapped in a circuit breaker so a slow or down model degrades gracefully
// instead of blocking the scoring pipeline.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"upishield/internal/config"
	"upishield/internal/resilience"
)

// Request mirrors the contract's POST /predict body.
type Request struct {
	Text        string   `json:"text"`
	Amount      *float64 `json:"amount,omitempty"`
	ReceiverUPI string   `json:"receiverUPI,omitempty"`
	Description string   `json:"description,omitempty"`
	NewPayee    bool     `json:"newPayee"`
}

// Prediction mirrors the contract's response body.
type Prediction struct {
	Probability float64  `json:"probability"`
	Indicators  []string `json:"indicators,omitempty"`
}

// Client calls the external ML service. A nil Client (or one built from a
// disabled config) always returns (nil, nil) from Predict, so callers don't
// need to branch on whether ML is configured.
type Client struct {
	httpClient *http.Client
	url        string
	breaker    *resilience.Breaker
}

// New builds a Client. If cfg.Enabled is false, Predict is a no-op.
func New(cfg config.MLConfig) *Client {
	if !cfg.Enabled {
		return &Client{}
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		url:        cfg.URL,
		breaker: resilience.New(
			resilience.BuildSettings("ml-client", 30, 5, 4, 1),
			resilience.StaticFallback((*Prediction)(nil)),
		),
	}
}

// Predict asks the ML service for a fraud probability. Any failure -
// timeout, transport error, malformed body, out-of-range probability, or an
// open circuit - yields (nil, nil): the caller treats a missing ML opinion
// as "no additional signal", never as an error to surface to the client.
// The per-request deadline comes from the HTTP client's Timeout, which
// config caps at 180ms; a shorter deadline on ctx also applies.
func (c *Client) Predict(ctx context.Context, req Request) (*Prediction, error) {
	if c == nil || c.httpClient == nil {
		return nil, nil
	}

	result, err := c.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return c.doPredict(ctx, req)
	})
	if err != nil {
		slog.Warn("mlclient: predict unavailable", "error", err)
		return nil, nil
	}

	pred, _ := result.(*Prediction)
	return pred, nil
}

func (c *Client) doPredict(ctx context.Context, req Request) (*Prediction, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mlclient: upstream returned %d", resp.StatusCode)
	}

	var pred Prediction
	if err := json.Unmarshal(body, &pred); err != nil {
		return nil, fmt.Errorf("mlclient: decoding response: %w", err)
	}
	if pred.Probability < 0 || pred.Probability > 1 {
		return nil, fmt.Errorf("mlclient: probability %f out of range", pred.Probability)
	}

	return &pred, nil
}
