package store_test

import (
	"testing"

	"upishield/internal/store"
)

func TestPhishingDomainStore_AddAndLookup(t *testing.T) {
	s := store.NewPhishingDomainStore()
	s.Add("SBI-KYC-Update.XYZ")

	if !s.IsPhishingDomain("sbi-kyc-update.xyz") {
		t.Fatal("expected lower-cased lookup to match a mixed-case Add")
	}
}

func TestPhishingDomainStore_UnknownHost(t *testing.T) {
	s := store.NewPhishingDomainStore()
	if s.IsPhishingDomain("example.com") {
		t.Fatal("expected no match for an unregistered host")
	}
}
