package extract_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"upishield/internal/config"
	"upishield/internal/extract"
	"upishield/internal/llm"
)

// fakeLLMServer returns a test server whose /chat/completions endpoint
// replies with a single assistant message containing content.
func fakeLLMServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestExtract_EmptyMessage_ReturnsError(t *testing.T) {
	if _, err := extract.Extract("   "); err != extract.ErrEmptyMessage {
		t.Fatalf("Extract(blank) error = %v, want ErrEmptyMessage", err)
	}
}

func TestExtract_UPIIDAndAmount(t *testing.T) {
	res, err := extract.Extract("Send Rs 5000 to scammer@ybl immediately")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.ReceiverUPI != "scammer@ybl" {
		t.Errorf("ReceiverUPI = %q, want scammer@ybl", res.ReceiverUPI)
	}
	if res.Amount == nil || *res.Amount != 5000 {
		t.Errorf("Amount = %v, want 5000", res.Amount)
	}
}

func TestExtract_FiltersOrdinaryEmailAsNonUPI(t *testing.T) {
	res, err := extract.Extract("Contact us at support@example.com for help")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(res.AllUPIIDs) != 0 {
		t.Errorf("expected no UPI ids extracted from an ordinary long-domain email, got %v", res.AllUPIIDs)
	}
}

func TestExtract_PhoneNumberNotConfusedWithBankAccount(t *testing.T) {
	res, err := extract.Extract("My account number: 123456789876543 and my phone is 9876543210")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(res.BankAccounts) != 1 {
		t.Fatalf("expected exactly 1 bank account, got %v", res.BankAccounts)
	}
	for _, p := range res.PhoneNumbers {
		if p == "+919876543210" {
			return
		}
	}
	t.Errorf("expected +919876543210 among phone numbers, got %v", res.PhoneNumbers)
}

func TestExtract_LinksExcludeLegitimateHosts(t *testing.T) {
	res, err := extract.Extract("Click http://sbi-kyc-update.xyz or visit https://google.com")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	found := false
	for _, l := range res.Links {
		if l == "https://google.com" {
			t.Errorf("legitimate host should be excluded, got it in %v", res.Links)
		}
		if l == "http://sbi-kyc-update.xyz" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the phishing link to be extracted, got %v", res.Links)
	}
}

func TestExtractWithLLM_NilClient_ReturnsRuleResultOnly(t *testing.T) {
	res, err := extract.ExtractWithLLM(context.Background(), nil, "Send Rs 5000 to scammer@ybl immediately")
	if err != nil {
		t.Fatalf("ExtractWithLLM() error = %v", err)
	}
	if res.AIExtracted {
		t.Error("expected aiExtracted=false with no LLM client configured")
	}
	if res.ReceiverUPI != "scammer@ybl" {
		t.Errorf("ReceiverUPI = %q, want scammer@ybl", res.ReceiverUPI)
	}
}

func TestExtractWithLLM_MergesAndMarksAIExtracted(t *testing.T) {
	srv := fakeLLMServer(t, `{"senderUPI":"","receiverUPI":"","allUpiIds":[],"amount":0,"phoneNumbers":[],"bankAccounts":[],"links":[],"transactionType":"","scamType":"OTP_FRAUD","fraudIndicators":["impersonates bank support"]}`)
	defer srv.Close()

	client := llm.NewClient(config.LLMConfig{Enabled: true, BaseURL: srv.URL, Model: "test", Timeout: 2 * time.Second})

	res, err := extract.ExtractWithLLM(context.Background(), client, "This is bank support calling about your card")
	if err != nil {
		t.Fatalf("ExtractWithLLM() error = %v", err)
	}
	if !res.AIExtracted {
		t.Error("expected aiExtracted=true when the LLM contributes a new field")
	}
	if res.ScamType != "OTP_FRAUD" {
		t.Errorf("ScamType = %q, want OTP_FRAUD", res.ScamType)
	}
	found := false
	for _, f := range res.FraudIndicators {
		if f == "impersonates bank support" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected LLM fraud indicator to be unioned in, got %v", res.FraudIndicators)
	}
}

func TestExtractWithLLM_UpstreamFailure_FallsBackToRuleResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := llm.NewClient(config.LLMConfig{Enabled: true, BaseURL: srv.URL, Model: "test", Timeout: 2 * time.Second})

	res, err := extract.ExtractWithLLM(context.Background(), client, "Send Rs 200 to friend@ybl")
	if err != nil {
		t.Fatalf("ExtractWithLLM() error = %v, want nil (LLM failure must not surface)", err)
	}
	if res.AIExtracted {
		t.Error("expected aiExtracted=false when the LLM call fails")
	}
	if res.ReceiverUPI != "friend@ybl" {
		t.Errorf("ReceiverUPI = %q, want friend@ybl", res.ReceiverUPI)
	}
}

func TestExtract_NoMatchesLeavesZeroValues(t *testing.T) {
	res, err := extract.Extract("just a normal message with nothing interesting in it")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.ReceiverUPI != "" || res.Amount != nil || len(res.BankAccounts) != 0 {
		t.Errorf("expected all identifier fields at zero value, got %+v", res)
	}
}
