package chat_test

import (
	"context"
	"testing"

	"upishield/internal/chat"
	"upishield/internal/store"
)

func newTestOrchestrator() *chat.Orchestrator {
	sessions := store.NewChatSessionStore()
	blacklist := store.NewBlacklistStore()
	domains := store.NewPhishingDomainStore()
	return chat.New(sessions, blacklist, domains, nil, 0.4)
}

func TestHandleScammerTurn_MediumRiskNoDivert(t *testing.T) {
	o := newTestOrchestrator()
	result := o.HandleScammerTurn(context.Background(), "sess-1", "scammer-1", "victim-1", "please pay me 500 for the book")

	if result.Diverted {
		t.Fatal("expected a medium-risk message to not divert the session")
	}
	if result.HoneypotReply != "" {
		t.Error("expected no honeypot reply for a medium-risk message")
	}
}

func TestHandleScammerTurn_HighRiskDivertsAndBlacklists(t *testing.T) {
	o := newTestOrchestrator()
	text := "Dear Customer, your SBI account will be blocked. Complete KYC immediately by sending Rs 9999 to 9876543210@ybl or click http://sbi-kyc-update.xyz. Call 8765432109 for help."
	result := o.HandleScammerTurn(context.Background(), "sess-2", "scammer-2", "victim-2", text)

	if !result.Diverted {
		t.Fatal("expected a high-risk message to divert the session")
	}
	if result.HoneypotReply == "" {
		t.Error("expected a honeypot reply when risk crosses the high band")
	}
	if result.Risk.RiskScore < 70 {
		t.Errorf("RiskScore = %d, want >= 70", result.Risk.RiskScore)
	}
}

func TestHandleScammerTurn_SubsequentTurnsUseDivertedBranch(t *testing.T) {
	o := newTestOrchestrator()
	highRisk := "Dear Customer, your SBI account will be blocked. Complete KYC immediately by sending Rs 9999 to 9876543210@ybl."
	o.HandleScammerTurn(context.Background(), "sess-3", "scammer-3", "victim-3", highRisk)

	result := o.HandleScammerTurn(context.Background(), "sess-3", "scammer-3", "victim-3", "just checking in")
	if !result.Diverted {
		t.Fatal("expected the session to remain diverted on a subsequent low-risk turn")
	}
}

func TestVictimReply_BlockedWhileDivertedAndHighRisk(t *testing.T) {
	o := newTestOrchestrator()
	highRisk := "Dear Customer, your SBI account will be blocked. Complete KYC immediately by sending Rs 9999 to 9876543210@ybl."
	o.HandleScammerTurn(context.Background(), "sess-4", "scammer-4", "victim-4", highRisk)

	err := o.VictimReply("sess-4", "what is going on")
	if err != chat.ErrBlockedByDivert {
		t.Fatalf("VictimReply() error = %v, want ErrBlockedByDivert", err)
	}
}

func TestVictimReply_UnknownSessionNotFound(t *testing.T) {
	o := newTestOrchestrator()
	if err := o.VictimReply("missing", "hello"); err != chat.ErrSessionNotFound {
		t.Fatalf("VictimReply() error = %v, want ErrSessionNotFound", err)
	}
}

func TestProject_EmptyShellForUnknownSession(t *testing.T) {
	o := newTestOrchestrator()
	proj := o.Project("missing")
	if proj.SessionID != "missing" || len(proj.Messages) != 0 {
		t.Fatalf("Project(missing) = %+v, want empty shell", proj)
	}
}

func TestProject_OnlyReturnsDeliveredMessages(t *testing.T) {
	o := newTestOrchestrator()
	o.HandleScammerTurn(context.Background(), "sess-5", "scammer-5", "victim-5", "please pay me 500 for the book")

	proj := o.Project("sess-5")
	for _, m := range proj.Messages {
		if !m.DeliveredToVictim {
			t.Errorf("projection leaked an undelivered message: %+v", m)
		}
	}
}
