// Package domain contains the core types shared across the fraud-defense
// pipeline. Keeping them in one place makes the scoring and extraction rules
// easy to reason about together.
package domain

import "time"

// Identifier kinds recognized by the extractor (C1).
const (
	KindUPIID       = "upi_id"
	KindPhoneNumber = "phone_number"
	KindBankAccount = "bank_account"
	KindURL         = "url"
	KindAmount      = "amount"
)

// ExtractedIdentifiers is the structured output of the identifier extractor
// (C1) for a single free-text message.
type ExtractedIdentifiers struct {
	SenderUPI       string   `json:"senderUPI,omitempty"`
	ReceiverUPI     string   `json:"receiverUPI,omitempty"`
	AllUPIIDs       []string `json:"allUpiIds"`
	Amount          *float64 `json:"amount,omitempty"`
	PhoneNumbers    []string `json:"phoneNumbers"`
	BankAccounts    []string `json:"bankAccounts"`
	Links           []string `json:"links"`
	TransactionType string   `json:"transactionType"`
	Source          string   `json:"source"`
	Description     string   `json:"description"`
	IsNewPayee      bool     `json:"isNewPayee"`
	FraudIndicators []string `json:"fraudIndicators"`
	ScamType        string   `json:"scamType,omitempty"`
	RawMessage      string   `json:"rawMessage"`
	AIExtracted     bool     `json:"aiExtracted"`
}

// ExtractedDetails is the monotonically-growing set of identifiers collected
// across a chat session (C10's extractedDetails field).
type ExtractedDetails struct {
	UPIIDs       map[string]struct{} `json:"-"`
	PhoneNumbers map[string]struct{} `json:"-"`
	Links        map[string]struct{} `json:"-"`
	BankAccounts map[string]struct{} `json:"-"`
}

// NewExtractedDetails returns an empty, ready-to-use set.
func NewExtractedDetails() *ExtractedDetails {
	return &ExtractedDetails{
		UPIIDs:       make(map[string]struct{}),
		PhoneNumbers: make(map[string]struct{}),
		Links:        make(map[string]struct{}),
		BankAccounts: make(map[string]struct{}),
	}
}

// Union merges newly extracted identifiers into the set. It never removes
// entries, keeping the growth monotonic as required by spec invariant (iii).
func (d *ExtractedDetails) Union(ids *ExtractedIdentifiers) {
	for _, u := range ids.AllUPIIDs {
		d.UPIIDs[u] = struct{}{}
	}
	for _, p := range ids.PhoneNumbers {
		d.PhoneNumbers[p] = struct{}{}
	}
	for _, l := range ids.Links {
		d.Links[l] = struct{}{}
	}
	for _, b := range ids.BankAccounts {
		d.BankAccounts[b] = struct{}{}
	}
}

// UPIIDList returns the set members as a slice in unspecified order. Map
// iteration order is randomized by Go, so callers that need a stable order
// (e.g. for hashing or tests) should sort the result themselves.
func (d *ExtractedDetails) UPIIDList() []string       { return keys(d.UPIIDs) }
func (d *ExtractedDetails) PhoneNumberList() []string { return keys(d.PhoneNumbers) }
func (d *ExtractedDetails) LinkList() []string        { return keys(d.Links) }
func (d *ExtractedDetails) BankAccountList() []string { return keys(d.BankAccounts) }

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// ExtractedDetailsSnapshot is the JSON-serializable projection of
// ExtractedDetails.
type ExtractedDetailsSnapshot struct {
	UPIIDs       []string `json:"upiIds"`
	PhoneNumbers []string `json:"phoneNumbers"`
	Links        []string `json:"links"`
	BankAccounts []string `json:"bankAccounts"`
}

// Snapshot materializes the current set contents.
func (d *ExtractedDetails) Snapshot() ExtractedDetailsSnapshot {
	return ExtractedDetailsSnapshot{
		UPIIDs:       d.UPIIDList(),
		PhoneNumbers: d.PhoneNumberList(),
		Links:        d.LinkList(),
		BankAccounts: d.BankAccountList(),
	}
}

// now is overridable in tests; production code always calls time.Now.
var now = time.Now
