// Package chat implements the session orchestrator (C12): the state
// machine that drives one scammer<->victim conversation turn by turn,
// deciding when to divert a session to the honeypot reply generator and
// serializing mutations to each session's document.
package chat

import (
	"context"
	"errors"
	"time"

	"upishield/internal/domain"
	"upishield/internal/extract"
	"upishield/internal/honeypot"
	"upishield/internal/llm"
	"upishield/internal/pipeline"
	"upishield/internal/scoring"
	"upishield/internal/store"
)

// maxTextLength is the cap spec.md §4.13 step 1 places on incoming chat
// text; everything beyond it is silently truncated.
const maxTextLength = 4000

// highRiskThreshold and mediumRiskThreshold are the band cutoffs the
// orchestrator branches on, matching C8's band table.
const (
	highRiskThreshold   = 70
	mediumRiskThreshold = 40
)

// ErrSessionNotFound is returned by VictimReply when the session does not
// exist yet.
var ErrSessionNotFound = errors.New("session not found")

// ErrBlockedByDivert is returned by VictimReply when the session is
// diverted and currently at or above the high-risk band.
var ErrBlockedByDivert = errors.New("victim reply blocked: session is diverted under high risk")

// Orchestrator wires the chat session store, the blacklist store, and the
// scoring/LLM collaborators into the spec.md §4.13 state machine.
type Orchestrator struct {
	sessions  *store.ChatSessionStore
	blacklist *store.BlacklistStore
	domains   scoring.PhishingDomainLookup
	llmClient *llm.Client

	scamThreshold float64
}

// New builds an Orchestrator.
func New(sessions *store.ChatSessionStore, blacklist *store.BlacklistStore, domains scoring.PhishingDomainLookup, llmClient *llm.Client, scamThreshold float64) *Orchestrator {
	return &Orchestrator{
		sessions:      sessions,
		blacklist:     blacklist,
		domains:       domains,
		llmClient:     llmClient,
		scamThreshold: scamThreshold,
	}
}

// TurnResult is the output of one scammer turn, per spec.md §6's
// `/api/chat/send` contract.
type TurnResult struct {
	Diverted      bool
	Risk          domain.RiskVerdict
	HoneypotReply string
}

// HandleScammerTurn implements the full branch table of spec.md §4.13 for
// one incoming scammer message.
func (o *Orchestrator) HandleScammerTurn(ctx context.Context, sessionID, scammerID, victimID, text string) TurnResult {
	text = truncate(text)

	lock := o.sessions.Lock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, existed := o.sessions.FindBySessionID(sessionID)
	if !existed {
		session = o.sessions.Create(sessionID, scammerID, victimID)
	}

	identifiers, err := extract.Extract(text)
	if err == nil {
		session.ExtractedDetails.Union(identifiers)
	} else {
		identifiers = &extract.Result{}
	}

	upis := session.ExtractedDetails.UPIIDList()
	phones := session.ExtractedDetails.PhoneNumberList()
	_, blacklisted := o.blacklist.FindMatching(store.MatchCriteria{
		ScammerID:    scammerID,
		UPIIDs:       upis,
		PhoneNumbers: phones,
	})

	scammerMsg := domain.ChatMessage{
		Sender:    domain.SenderScammer,
		Text:      text,
		Timestamp: time.Now(),
	}
	session.AppendMessage(scammerMsg)
	scammerMsgIdx := len(session.Messages) - 1

	var result TurnResult

	if session.DivertedToHoneypot || blacklisted {
		result = o.handleDivertedTurn(ctx, session, text, identifiers, scammerMsgIdx)
	} else {
		result = o.handleLiveTurn(ctx, session, scammerID, text, identifiers, scammerMsgIdx)
	}

	o.sessions.Save(session)
	return result
}

func (o *Orchestrator) handleDivertedTurn(ctx context.Context, session *domain.ChatSession, text string, identifiers *extract.Result, scammerMsgIdx int) TurnResult {
	if !session.DivertedToHoneypot {
		recordDivert("blacklisted")
	}
	session.MarkDiverted()
	session.MarkScamConfirmed()

	currentRisk := o.analyze(ctx, identifiers, text)
	session.LastRisk = &currentRisk
	session.Messages[scammerMsgIdx].DeliveredToVictim = true

	result := TurnResult{Diverted: true, Risk: currentRisk}

	if currentRisk.RiskScore >= highRiskThreshold {
		reply := honeypot.GenerateReply(ctx, o.llmClient, text, len(session.Messages))
		session.AppendMessage(domain.ChatMessage{
			Sender:            domain.SenderHoneypot,
			Text:              reply.Text,
			DeliveredToVictim: true,
			Timestamp:         time.Now(),
		})
		result.HoneypotReply = reply.Text
	}

	return result
}

func (o *Orchestrator) handleLiveTurn(ctx context.Context, session *domain.ChatSession, scammerID, text string, identifiers *extract.Result, scammerMsgIdx int) TurnResult {
	finalRisk := o.analyze(ctx, identifiers, text)
	session.LastRisk = &finalRisk

	switch {
	case finalRisk.RiskScore >= highRiskThreshold:
		recordDivert("high_risk")
		o.blacklist.Upsert(scammerID, session.ExtractedDetails.UPIIDList(), session.ExtractedDetails.PhoneNumberList(), "Confirmed scam activity")
		session.MarkDiverted()
		session.MarkScamConfirmed()

		reply := honeypot.GenerateReply(ctx, o.llmClient, text, len(session.Messages))
		session.Messages[scammerMsgIdx].DeliveredToVictim = true
		session.AppendMessage(domain.ChatMessage{
			Sender:            domain.SenderHoneypot,
			Text:              reply.Text,
			DeliveredToVictim: true,
			Timestamp:         time.Now(),
		})
		return TurnResult{Diverted: true, Risk: finalRisk, HoneypotReply: reply.Text}

	case finalRisk.RiskScore >= mediumRiskThreshold:
		session.Messages[scammerMsgIdx].DeliveredToVictim = true
		return TurnResult{Diverted: false, Risk: finalRisk}

	default:
		session.Messages[scammerMsgIdx].DeliveredToVictim = true
		return TurnResult{Diverted: false, Risk: finalRisk}
	}
}

func (o *Orchestrator) analyze(ctx context.Context, identifiers *extract.Result, text string) domain.RiskVerdict {
	var amount float64
	if identifiers.Amount != nil {
		amount = *identifiers.Amount
	}
	return pipeline.RunModeA(ctx, o.llmClient, o.domains, pipeline.ModeAInput{
		Text:          text,
		Amount:        amount,
		ReceiverUPI:   identifiers.ReceiverUPI,
		IsNewPayee:    identifiers.IsNewPayee,
		ScamThreshold: o.scamThreshold,
	})
}

// VictimReply implements spec.md §4.13's victim-reply flow.
func (o *Orchestrator) VictimReply(sessionID, text string) error {
	text = truncate(text)

	lock := o.sessions.Lock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, ok := o.sessions.FindBySessionID(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	if session.DivertedToHoneypot && session.LastRisk != nil && session.LastRisk.RiskScore >= highRiskThreshold {
		return ErrBlockedByDivert
	}

	session.AppendMessage(domain.ChatMessage{
		Sender:            domain.SenderVictim,
		Text:              text,
		DeliveredToVictim: true,
		Timestamp:         time.Now(),
	})
	o.sessions.Save(session)
	return nil
}

// Project returns the victim-safe projection of a session, or an
// empty-shell projection when no session exists yet.
func (o *Orchestrator) Project(sessionID string) domain.SessionProjection {
	session, ok := o.sessions.FindBySessionID(sessionID)
	if !ok {
		return domain.EmptyProjection(sessionID)
	}
	return session.Project()
}

func truncate(text string) string {
	if len(text) <= maxTextLength {
		return text
	}
	return text[:maxTextLength]
}
