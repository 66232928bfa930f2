package domain

// Risk level bands, derived from RiskScore by Band (spec.md §4.8).
const (
	RiskLevelLow      = "LOW"
	RiskLevelMedium   = "MEDIUM"
	RiskLevelHigh     = "HIGH"
	RiskLevelCritical = "CRITICAL"
)

// Band boundaries. A score in [BandHigh, BandCritical) is HIGH; a score at
// or above BandCritical is CRITICAL; and so on down to LOW.
const (
	BandCritical = 85
	BandHigh     = 70
	BandMedium   = 40
)

// Band maps a clamped 0-100 score to its risk level.
func Band(score int) string {
	switch {
	case score >= BandCritical:
		return RiskLevelCritical
	case score >= BandHigh:
		return RiskLevelHigh
	case score >= BandMedium:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// FraudCategory names a taxonomy entry the rule scorer can attach to a
// verdict (spec.md §4.2). Icon is optional; when an LLM supplies only a bare
// string for fraud_category, it is normalized into {Name: str}.
type FraudCategory struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Well-known fraud categories (spec.md §4.2).
const (
	CategoryPhishing      = "PHISHING"
	CategoryQRScam        = "QR_SCAM"
	CategoryOTPFraud      = "OTP_FRAUD"
	CategoryVishing       = "VISHING"
	CategoryLottery       = "LOTTERY_SCAM"
	CategoryJobScam       = "JOB_SCAM"
	CategoryImpersonation = "IMPERSONATION"
	CategoryRemoteAccess  = "REMOTE_ACCESS"
	CategoryInvestment    = "INVESTMENT_SCAM"
)

// RiskVerdict is the structured risk assessment returned to clients by
// every entry point (spec.md §3).
type RiskVerdict struct {
	RiskScore          int            `json:"riskScore"`
	RiskLevel          string         `json:"riskLevel"`
	FraudCategory      *FraudCategory `json:"fraudCategory,omitempty"`
	Indicators         []string       `json:"indicators"`
	RecommendedActions []string       `json:"recommendedActions"`
	Reasoning          string         `json:"reasoning"`
	MLProbability      *float64       `json:"mlProbability,omitempty"`
}

// ZeroVerdict is the safe, total fallback verdict: LOW risk, no
// indicators, for when every signal is absent.
func ZeroVerdict() RiskVerdict {
	return RiskVerdict{
		RiskScore:          0,
		RiskLevel:          RiskLevelLow,
		Indicators:         []string{},
		RecommendedActions: []string{},
		Reasoning:          "No significant fraud indicators detected.",
	}
}

// Dedup removes duplicate strings from s, preserving first-occurrence order,
// as required by spec.md §3 for Indicators and by §4.9 for
// RecommendedActions.
func Dedup(s []string) []string {
	seen := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
