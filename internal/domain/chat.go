package domain

import "time"

// Sender roles for a ChatMessage.
const (
	SenderScammer  = "scammer"
	SenderHoneypot = "honeypot"
	SenderVictim   = "victim"
)

// ChatMessage is a single turn in a ChatSession.
type ChatMessage struct {
	Sender            string    `json:"sender"`
	Text              string    `json:"text"`
	DeliveredToVictim bool      `json:"deliveredToVictim"`
	Timestamp         time.Time `json:"timestamp"`
}

// ChatSession is the durable record of one scammer<->victim conversation
// (spec.md §3). Mutation is coarse-grained: callers load, mutate the
// in-memory struct, and Save() the whole document back through the store.
type ChatSession struct {
	SessionID         string
	ScammerID         string
	VictimID          string
	Messages          []ChatMessage
	ExtractedDetails  *ExtractedDetails
	LastRisk          *RiskVerdict
	DivertedToHoneypot bool
	IsScamConfirmed    bool
	CreatedAt          time.Time
}

// NewChatSession creates a fresh session with empty extracted-details sets.
func NewChatSession(sessionID, scammerID, victimID string) *ChatSession {
	return &ChatSession{
		SessionID:        sessionID,
		ScammerID:        scammerID,
		VictimID:         victimID,
		ExtractedDetails: NewExtractedDetails(),
		CreatedAt:        now(),
	}
}

// AppendMessage appends a message to the session's transcript.
func (s *ChatSession) AppendMessage(m ChatMessage) {
	s.Messages = append(s.Messages, m)
}

// MarkDiverted sets DivertedToHoneypot. The flag is a monotone join: once
// true it is never cleared (spec.md §3 invariant (i)).
func (s *ChatSession) MarkDiverted() {
	s.DivertedToHoneypot = true
}

// MarkScamConfirmed sets IsScamConfirmed. Also a monotone join
// (spec.md §3 invariant (ii)).
func (s *ChatSession) MarkScamConfirmed() {
	s.IsScamConfirmed = true
}

// SessionProjection is the victim-safe view of a session returned by the
// polling endpoint (spec.md §4.13 "Session projection"): only delivered
// messages, plus confirmation state and the last risk verdict. It never
// includes ExtractedDetails.
type SessionProjection struct {
	SessionID       string        `json:"sessionId"`
	Messages        []ChatMessage `json:"messages"`
	IsScamConfirmed bool          `json:"isScamConfirmed"`
	LastRisk        *RiskVerdict  `json:"lastRisk,omitempty"`
}

// Project builds the victim-safe projection of the session.
func (s *ChatSession) Project() SessionProjection {
	delivered := make([]ChatMessage, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.DeliveredToVictim {
			delivered = append(delivered, m)
		}
	}
	return SessionProjection{
		SessionID:       s.SessionID,
		Messages:        delivered,
		IsScamConfirmed: s.IsScamConfirmed,
		LastRisk:        s.LastRisk,
	}
}

// EmptyProjection is returned for a sessionId with no session yet
// (spec.md §6 "GET /api/chat/session/:sessionId ... No session yet → empty-shell response").
func EmptyProjection(sessionID string) SessionProjection {
	return SessionProjection{
		SessionID: sessionID,
		Messages:  []ChatMessage{},
	}
}
