package scoring

import (
	"regexp"
	"strings"
)

// OTPResult is the output of the OTP Fraud Detector (C5).
type OTPResult struct {
	RiskIncrement int
	Indicators    []string
}

var otpRequestPhrases = []string{
	"share otp", "send otp", "tell me otp", "verification code",
	"one time password", "enter otp", "provide otp", "read out the otp",
	"otp received", "share the code",
}

var urgencyWords = []string{
	"urgent", "now", "fast", "immediately", "asap", "right now", "quick",
}

var fourToEightDigitRe = regexp.MustCompile(`\b\d{4,8}\b`)

// DetectOTPFraud scans text for OTP-solicitation language and urgency
// amplifiers (spec.md §4.5). It is input-tolerant: an empty string simply
// yields a zero result.
func DetectOTPFraud(text string) OTPResult {
	if text == "" {
		return OTPResult{}
	}

	lower := strings.ToLower(text)
	hasRequest := containsAny(lower, otpRequestPhrases)
	hasBareOTPWithCode := strings.Contains(lower, "otp") && fourToEightDigitRe.MatchString(text)

	codes := fourToEightDigitRe.FindAllString(text, -1)

	result := OTPResult{}
	if hasRequest || hasBareOTPWithCode {
		result.RiskIncrement = 40
		if containsAny(lower, urgencyWords) {
			result.RiskIncrement = 60
		}
	}
	if hasRequest {
		result.Indicators = append(result.Indicators, "OTP-solicitation language detected")
	}
	result.Indicators = append(result.Indicators, codes...)

	return result
}
