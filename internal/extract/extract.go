// Package extract implements the identifier extractor (C1): pulling UPI
// IDs, phone numbers, amounts, bank account numbers, and URLs out of free
// text via a fixed rule set, optionally augmented by an LLM.
package extract

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"upishield/internal/domain"
	"upishield/internal/llm"
)

// ErrEmptyMessage is returned when the input string is empty after
// trimming, per spec.md §4.1.
var ErrEmptyMessage = errors.New("Empty message")

// knownUPIProviders is the known-provider allowlist from spec.md §4.1, used
// to tell real UPI handles apart from ordinary email addresses.
var knownUPIProviders = map[string]struct{}{
	"ybl": {}, "oksbi": {}, "paytm": {}, "okicici": {}, "okhdfcbank": {},
	"axl": {}, "apl": {}, "upi": {}, "ibl": {}, "sbi": {}, "kotak": {},
	"idfcfirst": {},
}

var (
	upiTokenRe = regexp.MustCompile(`[A-Za-z0-9._-]+@[A-Za-z0-9]+`)

	// Indian mobile numbers: optional +91/91/0 prefix, then a ten-digit
	// number whose first digit is 6-9.
	phoneRe = regexp.MustCompile(`(?:\+?91|0)?([6-9]\d{9})`)

	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:rs\.?|inr|₹)\s*([\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)([\d,]+(?:\.\d+)?)\s*(?:rs\.?|rupees|inr|₹)`),
		regexp.MustCompile(`(?i)(?:amount|pay|transfer|send|receive|debit|credit)\D{0,15}?([\d,]+(?:\.\d+)?)`),
	}

	bankAccountRe = regexp.MustCompile(`(?i)(?:account|a/c|ac|acct)\.?\s*(?:no\.?|number|#)?\s*[:\-]?\s*(\d{9,18})`)

	urlRe      = regexp.MustCompile(`https?://[^\s<>"']+`)
	bareLinkRe = regexp.MustCompile(`\b([a-zA-Z0-9-]+\.[a-zA-Z]{2,})(/[^\s<>"']*)?\b`)

	// trailingPunct is sentence punctuation that commonly follows a URL in
	// free text ("click http://evil.xyz.") but is never part of the URL
	// itself.
	trailingPunct = ".,;:!?)'\""

	legitimateHosts = map[string]struct{}{
		"google.com": {}, "facebook.com": {}, "whatsapp.com": {},
	}
)

// Result is the rule-path output before any LLM merge is applied.
type Result = domain.ExtractedIdentifiers

// Extract runs the rule-based extraction pipeline on raw text. It never
// returns an error for non-empty input: unmatched fields are simply left
// at their zero value, keeping the extractor total per spec.md §7.
func Extract(raw string) (*Result, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	res := &domain.ExtractedIdentifiers{
		AllUPIIDs:       []string{},
		PhoneNumbers:    []string{},
		BankAccounts:    []string{},
		Links:           []string{},
		TransactionType: domain.TxnUnknown,
		Source:          domain.SourceUnknown,
		Description:     trimmed,
		IsNewPayee:      true,
		FraudIndicators: []string{},
		RawMessage:      raw,
	}

	res.BankAccounts = extractBankAccounts(trimmed)
	res.AllUPIIDs = extractUPIIDs(trimmed)
	res.PhoneNumbers = extractPhoneNumbers(trimmed, res.BankAccounts)
	res.Links = extractLinks(trimmed)
	if amt, ok := extractAmount(trimmed); ok {
		res.Amount = &amt
	}

	if len(res.AllUPIIDs) > 0 {
		res.ReceiverUPI = res.AllUPIIDs[0]
	}

	return res, nil
}

const llmExtractSystemPrompt = `You extract structured payment-fraud identifiers from a single free-text message for an Indian UPI payments app. Respond ONLY with a JSON object of this exact shape:
{"senderUPI": "", "receiverUPI": "", "allUpiIds": [], "amount": 0, "phoneNumbers": [], "bankAccounts": [], "links": [], "transactionType": "P2P|P2M|COLLECT|REFUND|UNKNOWN", "scamType": "", "fraudIndicators": []}
Omit or zero out any field you cannot confidently determine. phoneNumbers must be normalized to +91XXXXXXXXXX.`

// llmExtraction mirrors the JSON shape requested from the LLM in
// llmExtractSystemPrompt. Zero values (empty string, 0, empty list) are
// treated as "not supplied".
type llmExtraction struct {
	SenderUPI       string   `json:"senderUPI"`
	ReceiverUPI     string   `json:"receiverUPI"`
	AllUPIIDs       []string `json:"allUpiIds"`
	Amount          float64  `json:"amount"`
	PhoneNumbers    []string `json:"phoneNumbers"`
	BankAccounts    []string `json:"bankAccounts"`
	Links           []string `json:"links"`
	TransactionType string   `json:"transactionType"`
	ScamType        string   `json:"scamType"`
	FraudIndicators []string `json:"fraudIndicators"`
}

// ExtractWithLLM runs the rule path (Extract) and, when client is non-nil,
// augments it with an LLM extraction pass per spec.md §4.1's LLM path: LLM
// scalar values take precedence over rule values when present, list fields
// are unioned, and aiExtracted is set to true only when the LLM call
// succeeded and actually changed at least one field of the rule result. Any LLM
// failure leaves the rule-only result untouched.
func ExtractWithLLM(ctx context.Context, client *llm.Client, raw string) (*Result, error) {
	res, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return res, nil
	}

	var got llmExtraction
	if err := client.CompleteJSON(ctx, llmExtractSystemPrompt, raw, &got); err != nil {
		return res, nil
	}

	mergeLLMExtraction(res, got)
	return res, nil
}

// mergeLLMExtraction folds an LLM extraction into res in place, preferring
// LLM scalar values and unioning list fields. res.AIExtracted is set when
// any field actually changed.
func mergeLLMExtraction(res *Result, got llmExtraction) {
	contributed := false

	if got.SenderUPI != "" && got.SenderUPI != res.SenderUPI {
		res.SenderUPI = got.SenderUPI
		contributed = true
	}
	if got.ReceiverUPI != "" && got.ReceiverUPI != res.ReceiverUPI {
		res.ReceiverUPI = got.ReceiverUPI
		contributed = true
	}
	if got.TransactionType != "" && got.TransactionType != res.TransactionType {
		res.TransactionType = got.TransactionType
		contributed = true
	}
	if got.ScamType != "" && got.ScamType != res.ScamType {
		res.ScamType = got.ScamType
		contributed = true
	}
	if got.Amount > 0 && (res.Amount == nil || *res.Amount != got.Amount) {
		amt := got.Amount
		res.Amount = &amt
		contributed = true
	}

	if unionStrings(&res.AllUPIIDs, got.AllUPIIDs) {
		contributed = true
	}
	if unionStrings(&res.PhoneNumbers, got.PhoneNumbers) {
		contributed = true
	}
	if unionStrings(&res.BankAccounts, got.BankAccounts) {
		contributed = true
	}
	if unionStrings(&res.Links, got.Links) {
		contributed = true
	}
	if unionStrings(&res.FraudIndicators, got.FraudIndicators) {
		contributed = true
	}

	if res.ReceiverUPI == "" && len(res.AllUPIIDs) > 0 {
		res.ReceiverUPI = res.AllUPIIDs[0]
	}

	if contributed {
		res.AIExtracted = true
	}
}

// unionStrings appends any values from add not already present in *dst,
// reports whether it changed anything.
func unionStrings(dst *[]string, add []string) bool {
	if len(add) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(*dst))
	for _, v := range *dst {
		seen[strings.ToLower(v)] = struct{}{}
	}
	changed := false
	for _, v := range add {
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		*dst = append(*dst, v)
		changed = true
	}
	return changed
}

// extractUPIIDs finds local@provider tokens, keeping only those whose
// provider handle is in the known-provider list or is <= 6 characters,
// which filters ordinary email addresses out.
func extractUPIIDs(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range upiTokenRe.FindAllString(text, -1) {
		at := strings.LastIndex(tok, "@")
		if at < 0 {
			continue
		}
		provider := strings.ToLower(tok[at+1:])
		_, known := knownUPIProviders[provider]
		if !known && len(provider) > 6 {
			continue
		}
		lower := strings.ToLower(tok)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, lower)
	}
	return out
}

// extractBankAccounts finds 9-18 digit sequences that are context-qualified
// by an "account/a-c/ac/acct" token, per spec.md §4.1. Bare long digit runs
// are deliberately not treated as bank accounts.
func extractBankAccounts(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range bankAccountRe.FindAllStringSubmatch(text, -1) {
		num := m[1]
		if len(num) < 9 || len(num) > 18 {
			continue
		}
		if _, dup := seen[num]; dup {
			continue
		}
		seen[num] = struct{}{}
		out = append(out, num)
	}
	return out
}

// extractPhoneNumbers finds Indian mobile numbers, excluding any digit
// slice that is a contiguous substring of an already-extracted bank
// account number (spec.md §3, the phone/bank-account disjointness
// invariant).
func extractPhoneNumbers(text string, bankAccounts []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range phoneRe.FindAllStringSubmatch(text, -1) {
		digits := m[1]
		if isSliceOfAny(digits, bankAccounts) {
			continue
		}
		normalized := "+91" + digits
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func isSliceOfAny(digits string, accounts []string) bool {
	for _, acc := range accounts {
		if strings.Contains(acc, digits) {
			return true
		}
	}
	return false
}

// extractAmount applies the three amount patterns from spec.md §4.1 in
// order and returns the first match in (0, 1e8).
func extractAmount(text string) (float64, bool) {
	for _, re := range amountPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		cleaned := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		if v > 0 && v < 1e8 {
			return v, true
		}
	}
	return 0, false
}

// extractLinks finds http(s) URLs and bare domain.tld forms, excluding a
// small allowlist of common legitimate hosts.
func extractLinks(text string) []string {
	var out []string
	seen := make(map[string]struct{})

	addIfNew := func(link, host string) {
		if _, legit := legitimateHosts[strings.ToLower(host)]; legit {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}

	for _, raw := range urlRe.FindAllString(text, -1) {
		u := strings.TrimRight(raw, trailingPunct)
		addIfNew(u, hostOf(u))
	}
	// Remove matched full URLs from the text before bare-domain scanning so
	// e.g. "http://sbi-kyc-update.xyz" isn't double-counted as a bare link.
	withoutURLs := urlRe.ReplaceAllString(text, " ")
	for _, m := range bareLinkRe.FindAllString(withoutURLs, -1) {
		host := strings.SplitN(m, "/", 2)[0]
		if looksLikeBareDomain(host) {
			addIfNew(m, host)
		}
	}
	return out
}

func hostOf(u string) string {
	rest := strings.TrimPrefix(u, "https://")
	rest = strings.TrimPrefix(rest, "http://")
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// looksLikeBareDomain is a conservative check so we don't treat every
// "word.word" substring (e.g. "Mr. Sharma") as a link. Requires a
// recognizable TLD-shaped suffix of 2-6 letters.
func looksLikeBareDomain(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return false
	}
	tld := parts[len(parts)-1]
	if len(tld) < 2 || len(tld) > 6 {
		return false
	}
	for _, r := range tld {
		if r < 'a' || r > 'z' {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
	}
	return true
}
