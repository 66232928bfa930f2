package scoring_test

import (
	"testing"

	"upishield/internal/scoring"
)

type fakePhishingDomains struct {
	domains map[string]struct{}
}

func (f fakePhishingDomains) IsPhishingDomain(host string) bool {
	_, ok := f.domains[host]
	return ok
}

func TestAnalyzeURLs_NoURL(t *testing.T) {
	result := scoring.AnalyzeURLs("just a normal message", nil)
	if result.RiskIncrement != 0 {
		t.Fatalf("RiskIncrement = %d, want 0", result.RiskIncrement)
	}
}

func TestAnalyzeURLs_KnownPhishingDomainShortCircuits(t *testing.T) {
	domains := fakePhishingDomains{domains: map[string]struct{}{"sbi-kyc-update.xyz": {}}}
	result := scoring.AnalyzeURLs("click http://sbi-kyc-update.xyz now", domains)
	if result.RiskIncrement < 80 {
		t.Fatalf("RiskIncrement = %d, want >= 80 for known phishing domain", result.RiskIncrement)
	}
}

func TestAnalyzeURLs_SuspiciousTLD(t *testing.T) {
	result := scoring.AnalyzeURLs("visit http://bank-verify.xyz/login", nil)
	if result.RiskIncrement == 0 {
		t.Fatalf("expected non-zero risk for suspicious TLD + keywords")
	}
}

func TestAnalyzeURLs_PlainURLFallback(t *testing.T) {
	result := scoring.AnalyzeURLs("see http://example.com/page", nil)
	if result.RiskIncrement != 5 {
		t.Errorf("RiskIncrement = %d, want 5 for a plain URL", result.RiskIncrement)
	}
}

func TestAnalyzeURLs_CappedAt40WithoutShortCircuit(t *testing.T) {
	text := "http://verify-kyc-bank-login.top http://secure-account-confirm.click http://refund-unlock.work"
	result := scoring.AnalyzeURLs(text, nil)
	if result.RiskIncrement > 40 {
		t.Fatalf("RiskIncrement = %d, must be capped at 40 without a short-circuit", result.RiskIncrement)
	}
}
