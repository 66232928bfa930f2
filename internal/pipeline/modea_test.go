package pipeline_test

import (
	"context"
	"testing"

	"upishield/internal/pipeline"
	"upishield/internal/store"
)

func TestRunModeA_NormalMessage_LowRisk(t *testing.T) {
	domains := store.NewPhishingDomainStore()
	verdict := pipeline.RunModeA(context.Background(), nil, domains, pipeline.ModeAInput{
		Text:          "Hey, sending you 500 rupees for the dinner last night",
		ScamThreshold: 0.4,
	})
	if verdict.RiskLevel != "LOW" {
		t.Errorf("RiskLevel = %q, want LOW for an ordinary P2P message", verdict.RiskLevel)
	}
}

func TestRunModeA_KYCPhishingText_HighRisk(t *testing.T) {
	domains := store.NewPhishingDomainStore()
	domains.Add("sbi-kyc-update.xyz")
	verdict := pipeline.RunModeA(context.Background(), nil, domains, pipeline.ModeAInput{
		Text:          "Dear Customer, your SBI account will be blocked. Complete KYC immediately by sending Rs 10 to verify@ybl or click http://sbi-kyc-update.xyz.",
		ScamThreshold: 0.4,
	})
	if verdict.RiskScore < 70 {
		t.Errorf("RiskScore = %d, want >= 70 for a KYC phishing message with a known phishing domain", verdict.RiskScore)
	}
}

func TestRunModeA_ScamQRPayload_FoldsQRSignalIn(t *testing.T) {
	domains := store.NewPhishingDomainStore()
	verdict := pipeline.RunModeA(context.Background(), nil, domains, pipeline.ModeAInput{
		Text:          "upi://pay?pa=prize@ybl&pn=&am=9999",
		ScamThreshold: 0.4,
	})
	if verdict.RiskScore <= 0 {
		t.Errorf("RiskScore = %d, want > 0 for a suspicious QR payload with no payee name", verdict.RiskScore)
	}
}

func TestRunModeA_EmptyText_NeverPanics(t *testing.T) {
	domains := store.NewPhishingDomainStore()
	verdict := pipeline.RunModeA(context.Background(), nil, domains, pipeline.ModeAInput{ScamThreshold: 0.4})
	if verdict.RiskLevel == "" {
		t.Errorf("expected a non-empty risk level even for empty input, got %+v", verdict)
	}
}
