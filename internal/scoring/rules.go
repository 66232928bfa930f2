// Package scoring implements the risk-scoring pipeline: the fixed-pattern
// rule scorer (C2), the weighted scam-text classifier (C3), the URL and
// OTP sub-analyzers (C4/C5), the QR payload analyzer (C6), and the risk
// fusion policy (C8) that merges their outputs into one RiskVerdict.
package scoring

import (
	"strconv"
	"strings"

	"upishield/internal/domain"
)

// Indicator is one triggered rule pattern, carrying the severity band used
// for display.
type Indicator struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Severity string `json:"severity"`
}

// RuleResult is the output of the Rule Scorer (C2).
type RuleResult struct {
	Score         int
	Indicators    []Indicator
	FraudCategory *domain.FraudCategory
}

type rulePattern struct {
	id      string
	label   string
	weight  int
	matches func(tx domain.Transaction) bool
}

// rulePatterns is the fixed pattern library from spec.md §4.2. It is
// built once at package init and never mutated per request.
var rulePatterns = []rulePattern{
	{
		id:     "highAmount",
		label:  "Transaction amount exceeds Rs 50,000",
		weight: 15,
		matches: func(tx domain.Transaction) bool { return tx.Amount > 50000 },
	},
	{
		id:     "veryHighAmount",
		label:  "Transaction amount exceeds Rs 200,000",
		weight: 25,
		matches: func(tx domain.Transaction) bool { return tx.Amount > 200000 },
	},
	{
		id:     "roundAmount",
		label:  "Suspiciously round transaction amount",
		weight: 5,
		matches: func(tx domain.Transaction) bool {
			return tx.Amount >= 1000 && int64(tx.Amount)%1000 == 0
		},
	},
	{
		id:     "midnightTransaction",
		label:  "Transaction initiated between midnight and 5 AM",
		weight: 15,
		matches: func(tx domain.Transaction) bool {
			h := tx.Timestamp.Hour()
			return h >= 0 && h < 5
		},
	},
	{
		id:     "lateNightTransaction",
		label:  "Transaction initiated late at night",
		weight: 8,
		matches: func(tx domain.Transaction) bool {
			h := tx.Timestamp.Hour()
			return h >= 22 || h < 6
		},
	},
	{
		id:     "newPayee",
		label:  "First-time payment to this recipient",
		weight: 12,
		matches: func(tx domain.Transaction) bool { return tx.IsNewPayee },
	},
	{
		id:     "suspiciousDescription",
		label:  "Description contains common scam language",
		weight: 20,
		matches: func(tx domain.Transaction) bool {
			return containsAny(strings.ToLower(tx.Description), suspiciousDescriptionWords)
		},
	},
	{
		id:     "p2pLargeTransfer",
		label:  "Large peer-to-peer transfer",
		weight: 8,
		matches: func(tx domain.Transaction) bool {
			return tx.Type == domain.TxnP2P && tx.Amount > 10000
		},
	},
	{
		id:     "rapidSuccession",
		label:  "Part of a rapid succession of transactions",
		weight: 18,
		matches: func(tx domain.Transaction) bool { return tx.IsRapid },
	},
	{
		id:     "autoGeneratedUPI",
		label:  "Receiver UPI handle looks auto-generated",
		weight: 10,
		matches: func(tx domain.Transaction) bool { return hasLongNumericPrefix(tx.ReceiverUPI) },
	},
	{
		id:     "qrCodeTransaction",
		label:  "Transaction originated from a QR code scan",
		weight: 10,
		matches: func(tx domain.Transaction) bool { return tx.Source == domain.SourceQRScan },
	},
}

var suspiciousDescriptionWords = []string{
	"urgent", "immediately", "otp", "kyc", "verify", "blocked", "suspended",
	"lottery", "prize", "winner", "claim", "refund", "cashback", "reward",
	"lucky", "selected", "offer", "fine", "penalty", "police", "arrest",
	"court", "legal",
}

// ScoreTransaction runs the fixed pattern library over tx and classifies
// its best-matching fraud category (C2).
func ScoreTransaction(tx domain.Transaction) RuleResult {
	var indicators []Indicator
	total := 0

	for _, p := range rulePatterns {
		if !p.matches(tx) {
			continue
		}
		total += p.weight
		indicators = append(indicators, Indicator{
			ID:       p.id,
			Label:    p.label,
			Severity: severityFor(p.weight),
		})
	}

	if total > 100 {
		total = 100
	}

	category := classifyFraudCategory(tx)

	return RuleResult{
		Score:         total,
		Indicators:    indicators,
		FraudCategory: category,
	}
}

func severityFor(weight int) string {
	switch {
	case weight >= 15:
		return "HIGH"
	case weight >= 10:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// fraudCategoryKeywords maps each taxonomy entry to the keywords that
// identify it by overlap on concatenated sender/receiver/description/source
// text, per spec.md §4.2.
var fraudCategoryKeywords = map[string][]string{
	domain.CategoryPhishing:      {"link", "click", "verify", "update", "login", "secure"},
	domain.CategoryQRScam:        {"qr", "scan", "pay"},
	domain.CategoryOTPFraud:      {"otp", "one time password", "verification code"},
	domain.CategoryVishing:       {"call", "phone", "ivr", "representative"},
	domain.CategoryLottery:       {"lottery", "prize", "winner", "lucky", "selected"},
	domain.CategoryJobScam:       {"job", "work from home", "hiring", "salary", "recruitment"},
	domain.CategoryImpersonation: {"bank", "government", "police", "officer", "income tax"},
	domain.CategoryRemoteAccess:  {"anydesk", "teamviewer", "remote access", "screen share"},
	domain.CategoryInvestment:    {"invest", "trading", "returns", "profit", "double your money"},
}

// categoryOrder fixes iteration order so ties resolve deterministically.
var categoryOrder = []string{
	domain.CategoryPhishing, domain.CategoryQRScam, domain.CategoryOTPFraud,
	domain.CategoryVishing, domain.CategoryLottery, domain.CategoryJobScam,
	domain.CategoryImpersonation, domain.CategoryRemoteAccess, domain.CategoryInvestment,
}

func classifyFraudCategory(tx domain.Transaction) *domain.FraudCategory {
	if tx.Source == domain.SourceQRScan {
		return &domain.FraudCategory{Name: domain.CategoryQRScam}
	}

	haystack := strings.ToLower(strings.Join([]string{
		tx.SenderUPI, tx.ReceiverUPI, tx.Description, tx.Source,
	}, " "))

	best := ""
	bestCount := 0
	for _, name := range categoryOrder {
		count := 0
		for _, kw := range fraudCategoryKeywords[name] {
			if strings.Contains(haystack, kw) {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			best = name
		}
	}

	if best == "" {
		return nil
	}
	return &domain.FraudCategory{Name: best}
}

func containsAny(haystack string, words []string) bool {
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}

// hasLongNumericPrefix reports whether upi's local part before '@' is
// entirely numeric and longer than 8 digits, a pattern typical of
// auto-generated receiver handles.
func hasLongNumericPrefix(upi string) bool {
	at := strings.Index(upi, "@")
	if at <= 8 {
		return false
	}
	local := upi[:at]
	if _, err := strconv.ParseInt(local, 10, 64); err != nil {
		return false
	}
	return len(local) > 8
}
