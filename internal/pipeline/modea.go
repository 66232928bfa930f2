// Package pipeline assembles the per-component analyzers in the scoring
// package into the Mode A end-to-end fusion pipeline, so the scan endpoint
// and the chat orchestrator share one implementation of "run every
// applicable signal, then fuse." Mode B (pay validation) is not here: the
// validate-pay handler calls scoring.FuseAdvanced directly.
package pipeline

import (
	"context"
	"math"
	"strings"

	"upishield/internal/domain"
	"upishield/internal/llm"
	"upishield/internal/scoring"
)

// ModeAInput carries everything the max-signal pipeline needs to build its
// signals. Amount and ReceiverUPI may be zero-valued when unknown.
type ModeAInput struct {
	Text          string
	Amount        float64
	ReceiverUPI   string
	IsNewPayee    bool
	ScamThreshold float64
}

// RunModeA runs the text classifier (C3), the rule scorer (C2) over a
// transaction synthesized from the known fields, the URL analyzer (C4),
// and — when the text looks like a UPI QR payload — the QR analyzer (C6),
// then fuses them with max-signal fusion (C8 Mode A). Used by the
// scan-message endpoint and by the chat orchestrator's live and diverted
// branches.
func RunModeA(ctx context.Context, llmClient *llm.Client, domains scoring.PhishingDomainLookup, in ModeAInput) domain.RiskVerdict {
	var signals []scoring.Signal

	classifier := scoring.ScoreText(ctx, llmClient, in.Text, in.ScamThreshold)
	signals = append(signals, scoring.Signal{
		Score:      int(math.Round(classifier.Confidence * 100)),
		Indicators: classifier.Indicators,
		Reasoning:  classifier.Reasoning,
	})

	tx := domain.NewTransaction()
	tx.Amount = in.Amount
	tx.ReceiverUPI = in.ReceiverUPI
	tx.Description = in.Text
	tx.IsNewPayee = in.IsNewPayee
	if in.ReceiverUPI != "" {
		tx.Type = domain.TxnP2P
	}

	rule := scoring.ScoreTransaction(tx)
	rule = scoring.AugmentWithLLM(ctx, llmClient, tx, rule)
	ruleIndicators := make([]string, 0, len(rule.Indicators))
	for _, ind := range rule.Indicators {
		ruleIndicators = append(ruleIndicators, ind.Label)
	}
	signals = append(signals, scoring.Signal{
		Score:         rule.Score,
		Indicators:    ruleIndicators,
		FraudCategory: rule.FraudCategory,
	})

	urlResult := scoring.AnalyzeURLs(in.Text, domains)
	if urlResult.RiskIncrement > 0 {
		signals = append(signals, scoring.Signal{
			Score:      urlResult.RiskIncrement,
			Indicators: urlResult.Indicators,
		})
	}

	if strings.Contains(in.Text, "upi://pay") {
		qr := scoring.ParseQRPayload(in.Text)
		if qr.OK {
			qrScore, qrIndicators := scoring.ScoreQRPayload(qr)
			signals = append(signals, scoring.Signal{
				Score:      qrScore,
				Indicators: qrIndicators,
			})
		}
	}

	return scoring.FuseMaxSignal(signals)
}
