package scoring

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"upishield/internal/domain"
)

// QRPayload is the parsed upi://pay payload fields (spec.md §4.6).
type QRPayload struct {
	PayeeUPI     string
	PayeeName    string
	Amount       float64
	Currency     string
}

// QRResult is the output of the QR Payload Analyzer (C6).
type QRResult struct {
	OK      bool
	Error   string
	Payload QRPayload
	Score   int
}

var qrSuspiciousHandleWords = []string{"support", "help", "refund", "cashback", "prize"}

// ParseQRPayload parses raw as a upi://pay URI. Non-matching input returns
// OK=false with an error message.
func ParseQRPayload(raw string) QRResult {
	if !strings.HasPrefix(raw, "upi://pay") {
		return QRResult{OK: false, Error: "Not a UPI payment QR code"}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return QRResult{OK: false, Error: "Malformed QR payload: " + err.Error()}
	}

	q := parsed.Query()
	payload := QRPayload{
		PayeeUPI:  q.Get("pa"),
		PayeeName: q.Get("pn"),
		Currency:  q.Get("cu"),
	}
	if amt, err := strconv.ParseFloat(q.Get("am"), 64); err == nil {
		payload.Amount = amt
	}

	return QRResult{OK: true, Payload: payload}
}

// ScoreQRPayload applies the rule scoring table over a parsed payload and
// takes the max with a synthetic Transaction scored by C2
// (spec.md §4.6). Always appends the fixed QR warning.
func ScoreQRPayload(result QRResult) (int, []string) {
	if !result.OK {
		return 0, nil
	}

	payload := result.Payload
	score := 0
	var indicators []string

	if payload.Amount > 0 {
		score += 30
		indicators = append(indicators, "QR code specifies a payment amount")
		if payload.Amount > 5000 {
			score += 40
			indicators = append(indicators, "QR code payment amount exceeds Rs 5,000")
		}
	}

	lowerPayee := strings.ToLower(payload.PayeeUPI)
	if containsAny(lowerPayee, qrSuspiciousHandleWords) {
		score += 30
		indicators = append(indicators, "Payee handle uses a suspicious keyword")
	}

	if strings.TrimSpace(payload.PayeeName) == "" {
		score += 20
		indicators = append(indicators, "QR code has no merchant name")
	}

	tx := domain.NewTransaction()
	tx.Type = domain.TxnP2P
	tx.Source = domain.SourceQRScan
	tx.IsNewPayee = true
	tx.ReceiverUPI = payload.PayeeUPI
	tx.Amount = payload.Amount
	tx.Description = fmt.Sprintf("pa=%s pn=%s am=%.2f", payload.PayeeUPI, payload.PayeeName, payload.Amount)

	txResult := ScoreTransaction(tx)
	if txResult.Score > score {
		score = txResult.Score
	}

	if score > 100 {
		score = 100
	}

	indicators = append(indicators, "QR codes are used to SEND money, not receive money.")
	return score, dedupStrings(indicators)
}
