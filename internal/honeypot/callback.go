package honeypot

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"upishield/internal/domain"
)

const callbackTimeout = 5 * time.Second

// callbackPayload is the body posted to the external callback URL once a
// honeypot session's scam confidence crosses the reporting threshold
// (spec.md §4.14 step 6).
type callbackPayload struct {
	SessionID              string                               `json:"sessionId"`
	ScamDetected           bool                                 `json:"scamDetected"`
	TotalMessagesExchanged int                                  `json:"totalMessagesExchanged"`
	ExtractedIntelligence  domain.HoneypotIntelligenceSnapshot   `json:"extractedIntelligence"`
	AgentNotes             string                               `json:"agentNotes"`
}

// Notifier delivers the honeypot callback over HTTP. Failure is logged and
// swallowed: the caller is responsible for leaving CallbackSent false so
// the report is retried on the session's next eligible turn.
type Notifier struct {
	httpClient *http.Client
	url        string
}

// NewNotifier builds a Notifier for the given callback URL. An empty url
// makes every Send a no-op that reports failure, matching the case where
// no callback is configured.
func NewNotifier(url string) *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: callbackTimeout},
		url:        url,
	}
}

// Send posts the session's intelligence report. It returns true only on a
// 2xx response; every other outcome (no URL configured, network failure,
// timeout, non-2xx status) returns false and is logged.
func (n *Notifier) Send(ctx context.Context, session *domain.HoneypotSession) bool {
	if n.url == "" {
		return false
	}

	payload := callbackPayload{
		SessionID:              session.SessionID,
		ScamDetected:           session.ScamDetected,
		TotalMessagesExchanged: session.MessageCount,
		ExtractedIntelligence:  session.ExtractedIntelligence.Snapshot(),
		AgentNotes:             strings.Join(session.AgentNotes, "; "),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("honeypot: failed to marshal callback payload", "sessionId", session.SessionID, "error", err)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, callbackTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		slog.Error("honeypot: failed to build callback request", "sessionId", session.SessionID, "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		slog.Warn("honeypot: callback delivery failed, will retry next turn", "sessionId", session.SessionID, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("honeypot: callback endpoint returned non-2xx, will retry next turn",
			"sessionId", session.SessionID, "status", resp.StatusCode)
		return false
	}

	slog.Info("honeypot: callback delivered", "sessionId", session.SessionID)
	return true
}
