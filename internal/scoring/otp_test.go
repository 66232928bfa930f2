package scoring_test

import (
	"testing"

	"upishield/internal/scoring"
)

func TestDetectOTPFraud_EmptyInput(t *testing.T) {
	result := scoring.DetectOTPFraud("")
	if result.RiskIncrement != 0 || len(result.Indicators) != 0 {
		t.Fatalf("got %+v, want zero result for empty input", result)
	}
}

func TestDetectOTPFraud_PlainRequest(t *testing.T) {
	result := scoring.DetectOTPFraud("Please share otp to confirm your identity")
	if result.RiskIncrement != 40 {
		t.Errorf("RiskIncrement = %d, want 40", result.RiskIncrement)
	}
}

func TestDetectOTPFraud_RequestWithUrgency(t *testing.T) {
	result := scoring.DetectOTPFraud("Send otp immediately or your account will be blocked")
	if result.RiskIncrement != 60 {
		t.Errorf("RiskIncrement = %d, want 60", result.RiskIncrement)
	}
}

func TestDetectOTPFraud_BareOTPWithCode(t *testing.T) {
	result := scoring.DetectOTPFraud("your otp is 445566")
	if result.RiskIncrement != 40 {
		t.Errorf("RiskIncrement = %d, want 40", result.RiskIncrement)
	}
}

func TestDetectOTPFraud_NoOTPMention(t *testing.T) {
	result := scoring.DetectOTPFraud("Hi, dinner at 8pm?")
	if result.RiskIncrement != 0 {
		t.Errorf("RiskIncrement = %d, want 0", result.RiskIncrement)
	}
}
