package domain

import "time"

// PayValidationScammerID is the reserved pseudo-scammerId used to record
// UPIs flagged from the pay-validation path (spec.md §4.11). It must never
// be treated as a real scammer identifier.
const PayValidationScammerID = "pay-validation"

// BlacklistEntry is a persistent record of a scammer's known identifiers
// (spec.md §3). UPIIDs and PhoneNumbers are sets: Upsert performs a
// set-union, never duplicating entries.
type BlacklistEntry struct {
	ScammerID    string
	UPIIDs       map[string]struct{}
	PhoneNumbers map[string]struct{}
	Reason       string
	AddedAt      time.Time
}

// NewBlacklistEntry creates an entry with empty identifier sets.
func NewBlacklistEntry(scammerID, reason string) *BlacklistEntry {
	return &BlacklistEntry{
		ScammerID:    scammerID,
		UPIIDs:       make(map[string]struct{}),
		PhoneNumbers: make(map[string]struct{}),
		Reason:       reason,
		AddedAt:      now(),
	}
}

// UnionUPIs adds upis to the entry's UPI set.
func (e *BlacklistEntry) UnionUPIs(upis []string) {
	for _, u := range upis {
		e.UPIIDs[u] = struct{}{}
	}
}

// UnionPhones adds phones to the entry's phone-number set.
func (e *BlacklistEntry) UnionPhones(phones []string) {
	for _, p := range phones {
		e.PhoneNumbers[p] = struct{}{}
	}
}

// MatchesAny reports whether this entry is matched by any of the given
// criteria, per spec.md §4.11 "findMatching".
func (e *BlacklistEntry) MatchesAny(scammerID string, upiIDs, phoneNumbers []string) bool {
	if scammerID != "" && scammerID == e.ScammerID {
		return true
	}
	for _, u := range upiIDs {
		if _, ok := e.UPIIDs[u]; ok {
			return true
		}
	}
	for _, p := range phoneNumbers {
		if _, ok := e.PhoneNumbers[p]; ok {
			return true
		}
	}
	return false
}

// PhishingDomain is a confirmed phishing hostname (spec.md §3), keyed by
// its lower-cased domain.
type PhishingDomain struct {
	Domain  string
	AddedAt time.Time
}
