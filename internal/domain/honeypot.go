package domain

import "time"

// HoneypotIntelligence aggregates the identifiers and keywords extracted
// from every scammer turn of a standalone honeypot session (C13).
type HoneypotIntelligence struct {
	BankAccounts       map[string]struct{}
	UPIIDs             map[string]struct{}
	PhishingLinks      map[string]struct{}
	PhoneNumbers       map[string]struct{}
	SuspiciousKeywords map[string]struct{}
}

// NewHoneypotIntelligence returns an empty intelligence set.
func NewHoneypotIntelligence() *HoneypotIntelligence {
	return &HoneypotIntelligence{
		BankAccounts:       make(map[string]struct{}),
		UPIIDs:             make(map[string]struct{}),
		PhishingLinks:      make(map[string]struct{}),
		PhoneNumbers:       make(map[string]struct{}),
		SuspiciousKeywords: make(map[string]struct{}),
	}
}

// HoneypotIntelligenceSnapshot is the JSON-serializable projection of
// HoneypotIntelligence.
type HoneypotIntelligenceSnapshot struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// Snapshot materializes the current set contents.
func (i *HoneypotIntelligence) Snapshot() HoneypotIntelligenceSnapshot {
	return HoneypotIntelligenceSnapshot{
		BankAccounts:       keys(i.BankAccounts),
		UPIIDs:             keys(i.UPIIDs),
		PhishingLinks:      keys(i.PhishingLinks),
		PhoneNumbers:       keys(i.PhoneNumbers),
		SuspiciousKeywords: keys(i.SuspiciousKeywords),
	}
}

// HoneypotTurn is one message in the honeypot session's conversation
// history, in either direction.
type HoneypotTurn struct {
	Sender    string    `json:"sender"` // scammer | user (honeypot reply)
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// HoneypotSession is the in-memory state of one standalone honeypot
// engagement (C13, spec.md §3/§4.14). It is never persisted.
type HoneypotSession struct {
	SessionID             string
	CreatedAt             time.Time
	LastActivity          time.Time
	ScamScores            []float64
	ScamDetected          bool
	MessageCount          int
	ConversationHistory   []HoneypotTurn
	ExtractedIntelligence *HoneypotIntelligence
	AgentNotes            []string
	CallbackSent          bool
	ScamType              string
	Metadata              map[string]any
	ObservedTactics       map[string]struct{}
}

// NewHoneypotSession creates a fresh session, touching both CreatedAt and
// LastActivity to the same instant.
func NewHoneypotSession(sessionID string) *HoneypotSession {
	t := now()
	return &HoneypotSession{
		SessionID:             sessionID,
		CreatedAt:             t,
		LastActivity:          t,
		ExtractedIntelligence: NewHoneypotIntelligence(),
		ObservedTactics:       make(map[string]struct{}),
	}
}

// Touch refreshes LastActivity to the current time.
func (h *HoneypotSession) Touch() {
	h.LastActivity = now()
}

// IdleFor reports how long the session has been idle.
func (h *HoneypotSession) IdleFor() time.Duration {
	return now().Sub(h.LastActivity)
}

// ScamConfidence returns the mean of ScamScores, or 0 if there are none yet.
// This keeps the invariant scamConfidence == mean(scamScores) true by
// construction rather than by separately-maintained state.
func (h *HoneypotSession) ScamConfidence() float64 {
	if len(h.ScamScores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range h.ScamScores {
		sum += s
	}
	return sum / float64(len(h.ScamScores))
}

// RecordTactic adds an observed manipulation tactic, de-duplicated.
func (h *HoneypotSession) RecordTactic(t string) {
	h.ObservedTactics[t] = struct{}{}
}

// TacticList returns the observed tactics as a slice.
func (h *HoneypotSession) TacticList() []string { return keys(h.ObservedTactics) }
