package honeypot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"upishield/internal/domain"
	"upishield/internal/extract"
	"upishield/internal/llm"
	"upishield/internal/scoring"
)

// tacticKeywords maps an observed manipulation tactic (spec.md §4.14
// "observedTactics") to the phrases that evidence it in a scammer message.
var tacticKeywords = map[string][]string{
	"urgency":              {"urgent", "immediately", "right now", "act now", "last chance", "within 24 hours"},
	"threats":              {"blocked", "suspended", "legal action", "police", "arrest", "court", "fir"},
	"information_request":  {"otp", "pin", "cvv", "password", "account number", "card number", "aadhaar"},
	"reward_bait":          {"prize", "lottery", "reward", "cashback", "winner", "selected", "lucky"},
	"impersonation":        {"bank official", "customer care", "government", "income tax", "rbi", "police department"},
}

// Engine is the standalone honeypot engine (C13): it holds every
// in-memory session, engages scammers through GenerateReply, and fires
// the external callback once a session's scam confidence is confirmed.
type Engine struct {
	mu       sync.RWMutex
	sessions map[string]*domain.HoneypotSession

	llmClient *llm.Client
	notifier  *Notifier

	scamThreshold          float64
	minMessagesForCallback int
	sessionTimeout         time.Duration
}

// New builds an Engine. llmClient may be nil, in which case replies always
// fall back to the persona templates.
func New(llmClient *llm.Client, notifier *Notifier, scamThreshold float64, minMessagesForCallback int, sessionTimeout time.Duration) *Engine {
	return &Engine{
		sessions:               make(map[string]*domain.HoneypotSession),
		llmClient:              llmClient,
		notifier:               notifier,
		scamThreshold:          scamThreshold,
		minMessagesForCallback: minMessagesForCallback,
		sessionTimeout:         sessionTimeout,
	}
}

// TurnResult is returned to the caller of Engage: the honeypot's reply
// plus a view of the session state a handler can serialize.
type TurnResult struct {
	Reply        string
	AgentNote    string
	Session      *domain.HoneypotSession
	ScamDetected bool
}

// Engage processes one incoming message against sessionID, creating the
// session if it does not exist, and returns the honeypot's reply
// (spec.md §4.14 steps 1-6). It is total: it never returns an error, since
// every internal collaborator (extraction, scoring, the LLM) already
// degrades gracefully on its own. Data collection (history, extraction,
// classification) only happens for sender == "scammer"; any other sender
// still touches the session's lastActivity and still gets a reply. An
// agent note is recorded the first time scamConfidence crosses the
// threshold (step 3); later turns leave scamDetected set without
// repeating the note.
func (e *Engine) Engage(ctx context.Context, sessionID, sender, text string) TurnResult {
	session := e.getOrCreate(sessionID)
	session.Touch()

	if sender == domain.SenderScammer {
		session.MessageCount++
		session.ConversationHistory = append(session.ConversationHistory, domain.HoneypotTurn{
			Sender:    domain.SenderScammer,
			Text:      text,
			Timestamp: time.Now(),
		})

		if ids, err := extract.Extract(text); err == nil {
			unionIntelligence(session.ExtractedIntelligence, ids)
		}

		classification := scoring.ScoreText(ctx, e.llmClient, text, e.scamThreshold)
		session.ScamScores = append(session.ScamScores, classification.Confidence)
		if classification.ScamType != "" {
			session.ScamType = classification.ScamType
		}
		recordTactics(session, text)
	}

	wasDetected := session.ScamDetected
	if session.ScamConfidence() >= e.scamThreshold {
		session.ScamDetected = true
	}
	if session.ScamDetected && !wasDetected {
		session.AgentNotes = append(session.AgentNotes, fmt.Sprintf(
			"scamDetected threshold crossed at confidence=%.2f", session.ScamConfidence()))
	}

	reply := GenerateReply(ctx, e.llmClient, text, session.MessageCount)
	session.ConversationHistory = append(session.ConversationHistory, domain.HoneypotTurn{
		Sender:    "user",
		Text:      reply.Text,
		Timestamp: time.Now(),
	})
	session.AgentNotes = append(session.AgentNotes, reply.AgentNote)

	if e.shouldFireCallback(session) {
		e.fireCallback(ctx, session)
	}

	return TurnResult{
		Reply:        reply.Text,
		AgentNote:    reply.AgentNote,
		Session:      session,
		ScamDetected: session.ScamDetected,
	}
}

// Get returns the session for sessionID, if it exists.
func (e *Engine) Get(sessionID string) (*domain.HoneypotSession, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[sessionID]
	return s, ok
}

// Delete removes a session, e.g. on an explicit teardown request.
func (e *Engine) Delete(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sessions[sessionID]; ok {
		delete(e.sessions, sessionID)
		activeSessionsGauge.Dec()
	}
}

// TriggerCallback manually (re)sends the callback for a session, used by
// the force-callback endpoint. It is a no-op if the
// session is already reported or not yet eligible.
func (e *Engine) TriggerCallback(ctx context.Context, sessionID string) bool {
	e.mu.RLock()
	session, ok := e.sessions[sessionID]
	e.mu.RUnlock()
	if !ok {
		return false
	}
	if !e.shouldFireCallback(session) {
		return session.CallbackSent
	}
	e.fireCallback(ctx, session)
	return session.CallbackSent
}

// EvictIdle removes every session that has been idle for longer than
// sessionTimeout, used by the background sweeper (C13's "session cleanup").
func (e *Engine) EvictIdle() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	evicted := 0
	for id, s := range e.sessions {
		if s.IdleFor() > e.sessionTimeout {
			delete(e.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		activeSessionsGauge.Sub(float64(evicted))
	}
	return evicted
}

func (e *Engine) getOrCreate(sessionID string) *domain.HoneypotSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[sessionID]; ok {
		return s
	}
	s := domain.NewHoneypotSession(sessionID)
	e.sessions[sessionID] = s
	activeSessionsGauge.Inc()
	return s
}

func (e *Engine) shouldFireCallback(session *domain.HoneypotSession) bool {
	return session.ScamDetected && !session.CallbackSent && session.MessageCount >= e.minMessagesForCallback
}

func (e *Engine) fireCallback(ctx context.Context, session *domain.HoneypotSession) {
	if e.notifier.Send(ctx, session) {
		session.CallbackSent = true
		callbacksSentTotal.Inc()
		return
	}
	slog.Warn("honeypot: callback not yet delivered, will retry on next eligible turn", "sessionId", session.SessionID)
}

func unionIntelligence(dst *domain.HoneypotIntelligence, ids *domain.ExtractedIdentifiers) {
	for _, u := range ids.AllUPIIDs {
		dst.UPIIDs[u] = struct{}{}
	}
	for _, p := range ids.PhoneNumbers {
		dst.PhoneNumbers[p] = struct{}{}
	}
	for _, l := range ids.Links {
		dst.PhishingLinks[l] = struct{}{}
	}
	for _, b := range ids.BankAccounts {
		dst.BankAccounts[b] = struct{}{}
	}
	for _, f := range ids.FraudIndicators {
		dst.SuspiciousKeywords[f] = struct{}{}
	}
}

func recordTactics(session *domain.HoneypotSession, text string) {
	lower := strings.ToLower(text)
	for tactic, phrases := range tacticKeywords {
		for _, phrase := range phrases {
			if strings.Contains(lower, phrase) {
				session.RecordTactic(tactic)
				break
			}
		}
	}
}

// DebugString gives a short human-readable summary of a session.
func DebugString(s *domain.HoneypotSession) string {
	return fmt.Sprintf("session=%s messages=%d scamDetected=%v confidence=%.2f",
		s.SessionID, s.MessageCount, s.ScamDetected, s.ScamConfidence())
}
