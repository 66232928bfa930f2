package domain

import "time"

// Transaction types recognized by the rule scorer (C2).
const (
	TxnP2P     = "P2P"
	TxnP2M     = "P2M"
	TxnCollect = "COLLECT"
	TxnRefund  = "REFUND"
	TxnUnknown = "UNKNOWN"
)

// Source channels a transaction or message arrived through.
const (
	SourceSMS             = "SMS"
	SourceWhatsApp        = "WHATSAPP"
	SourceEmail           = "EMAIL"
	SourceAppNotification = "APP_NOTIFICATION"
	SourcePhoneCall       = "PHONE_CALL"
	SourceQRScan          = "QR_SCAN"
	SourceLink            = "LINK"
	SourceUserPay         = "USER_PAY"
	SourceUnknown         = "UNKNOWN"
)

// Transaction is a normalized payment event scored by the rule scorer.
type Transaction struct {
	SenderUPI   string    `json:"senderUPI,omitempty"`
	ReceiverUPI string    `json:"receiverUPI,omitempty"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	IsNewPayee  bool      `json:"isNewPayee"`
	Timestamp   time.Time `json:"timestamp"`

	// IsRapid is set by callers who have independently detected a rapid
	// succession of transactions (spec.md §4.2 "rapidSuccession"); the rule
	// scorer itself holds no history, so this flag is computed upstream.
	IsRapid bool `json:"-"`
}

// NewTransaction fills in the zero-value defaults spec.md §3 requires:
// Amount defaults to 0, Timestamp defaults to now, IsNewPayee defaults to
// true unless explicitly overridden by the caller afterward.
func NewTransaction() Transaction {
	return Transaction{
		Type:       TxnUnknown,
		Source:     SourceUnknown,
		IsNewPayee: true,
		Timestamp:  now(),
	}
}
