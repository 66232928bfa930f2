// Command seed generates a synthetic dataset of realistic and fraudulent
// UPI scan inputs, feeds each one through the scan-message pipeline, and
// writes both the raw dataset and the analysis report to data/seed.json.
//
// Usage:
//
//	go run ./cmd/seed
//
// The generated dataset spans five categories:
//   - normal peer-to-peer and merchant payment messages
//   - KYC/account-block phishing texts
//   - OTP-harvesting texts
//   - lottery/prize scam texts
//   - scam QR payloads (upi://pay with suspicious handles)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/google/uuid"

	"upishield/internal/pipeline"
	"upishield/internal/store"
)

// seedItem is one generated dataset entry, paired with the verdict the
// pipeline produced for it.
type seedItem struct {
	ID       string      `json:"id"`
	Category string      `json:"category"`
	Text     string      `json:"text"`
	Analysis interface{} `json:"analysis"`
}

func main() {
	rng := rand.New(rand.NewSource(42)) // deterministic seed for reproducibility

	domains := store.NewPhishingDomainStore()
	domains.Add("sbi-kyc-update.xyz")
	domains.Add("verify-paytm-kyc.info")
	domains.Add("hdfc-secure-login.top")

	var items []seedItem
	items = append(items, generateNormalMessages(rng)...)
	items = append(items, generateKYCPhishing(rng)...)
	items = append(items, generateOTPHarvesting(rng)...)
	items = append(items, generateLotteryScams(rng)...)
	items = append(items, generateScamQRPayloads(rng)...)

	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	ctx := context.Background()
	counts := map[string]int{}
	for i := range items {
		verdict := pipeline.RunModeA(ctx, nil, domains, pipeline.ModeAInput{
			Text:          items[i].Text,
			ScamThreshold: 0.4,
		})
		items[i].Analysis = verdict
		counts[verdict.RiskLevel]++
	}

	if err := os.MkdirAll("data", 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir error: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create("data/seed.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d items to data/seed.json\n", len(items))
	fmt.Printf("risk level distribution: LOW=%d MEDIUM=%d HIGH=%d CRITICAL=%d\n",
		counts["LOW"], counts["MEDIUM"], counts["HIGH"], counts["CRITICAL"])
}

func generateNormalMessages(rng *rand.Rand) []seedItem {
	templates := []string{
		"Hey, sending you %d rupees for the dinner last night",
		"Paid Rs %d to Sharma Electronics for the headphones",
		"Splitting the cab, sending you %d via GPay",
		"Rent for this month is %d, transferring now",
		"Thanks for the book, here's %d for it",
	}
	var out []seedItem
	for i := 0; i < 120; i++ {
		text := fmt.Sprintf(templates[rng.Intn(len(templates))], 50+rng.Intn(2000))
		out = append(out, seedItem{ID: uuid.NewString(), Category: "normal", Text: text})
	}
	return out
}

func generateKYCPhishing(rng *rand.Rand) []seedItem {
	banks := []string{"SBI", "HDFC", "ICICI", "Axis", "Paytm"}
	domains := []string{"sbi-kyc-update.xyz", "verify-paytm-kyc.info", "hdfc-secure-login.top"}
	var out []seedItem
	for i := 0; i < 40; i++ {
		text := fmt.Sprintf("Dear Customer, your %s account will be blocked. Complete KYC immediately by sending Rs %d to %d@ybl or click http://%s.",
			banks[rng.Intn(len(banks))], 1+rng.Intn(9999), 9000000000+rng.Int63n(999999999), domains[rng.Intn(len(domains))])
		out = append(out, seedItem{ID: uuid.NewString(), Category: "kyc_phishing", Text: text})
	}
	return out
}

func generateOTPHarvesting(rng *rand.Rand) []seedItem {
	var out []seedItem
	for i := 0; i < 30; i++ {
		text := fmt.Sprintf("This is %s bank support, your card has suspicious activity. Share the OTP sent to your phone to verify and block the transaction immediately.",
			[]string{"SBI", "HDFC", "Axis"}[rng.Intn(3)])
		out = append(out, seedItem{ID: uuid.NewString(), Category: "otp_harvesting", Text: text})
	}
	return out
}

func generateLotteryScams(rng *rand.Rand) []seedItem {
	var out []seedItem
	for i := 0; i < 30; i++ {
		text := fmt.Sprintf("Congratulations! You have won Rs %d in the KBC lottery. Pay a processing fee of Rs %d to 9876543210@ybl to claim your prize now.",
			100000+rng.Intn(900000), 500+rng.Intn(4500))
		out = append(out, seedItem{ID: uuid.NewString(), Category: "lottery_scam", Text: text})
	}
	return out
}

func generateScamQRPayloads(rng *rand.Rand) []seedItem {
	handles := []string{"support", "refund", "cashback", "prize"}
	var out []seedItem
	for i := 0; i < 20; i++ {
		text := fmt.Sprintf("upi://pay?pa=%s@ybl&pn=&am=%d", handles[rng.Intn(len(handles))], 100+rng.Intn(9900))
		out = append(out, seedItem{ID: uuid.NewString(), Category: "scam_qr", Text: text})
	}
	return out
}
