package store_test

import (
	"testing"

	"upishield/internal/store"
)

func TestBlacklistStore_UpsertUnionsSets(t *testing.T) {
	s := store.NewBlacklistStore()
	s.Upsert("scammer-1", []string{"a@ybl"}, []string{"+919999999999"}, "Confirmed scam activity")
	entry := s.Upsert("scammer-1", []string{"a@ybl", "b@paytm"}, nil, "")

	if len(entry.UPIIDs) != 2 {
		t.Fatalf("UPIIDs = %v, want 2 unique entries after union", entry.UPIIDs)
	}
	if entry.Reason != "Confirmed scam activity" {
		t.Errorf("Reason = %q, want the original reason preserved when empty reason is passed", entry.Reason)
	}
}

func TestBlacklistStore_FindMatchingByScammerID(t *testing.T) {
	s := store.NewBlacklistStore()
	s.Upsert("scammer-1", nil, nil, "test")

	entry, ok := s.FindMatching(store.MatchCriteria{ScammerID: "scammer-1"})
	if !ok || entry.ScammerID != "scammer-1" {
		t.Fatalf("FindMatching by scammerId failed: %v, %v", entry, ok)
	}
}

func TestBlacklistStore_FindMatchingByUPI(t *testing.T) {
	s := store.NewBlacklistStore()
	s.Upsert("scammer-1", []string{"9876543210@ybl"}, nil, "test")

	entry, ok := s.FindMatching(store.MatchCriteria{UPIIDs: []string{"9876543210@ybl"}})
	if !ok || entry.ScammerID != "scammer-1" {
		t.Fatalf("FindMatching by UPI failed: %v, %v", entry, ok)
	}
}

func TestBlacklistStore_FindMatchingByPhone(t *testing.T) {
	s := store.NewBlacklistStore()
	s.Upsert("scammer-1", nil, []string{"+918765432109"}, "test")

	entry, ok := s.FindMatching(store.MatchCriteria{PhoneNumbers: []string{"+918765432109"}})
	if !ok || entry.ScammerID != "scammer-1" {
		t.Fatalf("FindMatching by phone failed: %v, %v", entry, ok)
	}
}

func TestBlacklistStore_NoMatch(t *testing.T) {
	s := store.NewBlacklistStore()
	_, ok := s.FindMatching(store.MatchCriteria{ScammerID: "nobody"})
	if ok {
		t.Fatal("expected no match for an unknown scammerId")
	}
}
