package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"upishield/internal/domain"
	"upishield/internal/llm"
)

// llmRuleVerdict is the JSON shape requested from the LLM for rule
// augmentation (spec.md §4.2).
type llmRuleVerdict struct {
	RiskScore          int      `json:"riskScore"`
	IsHighRisk         bool     `json:"isHighRisk"`
	FraudCategory      string   `json:"fraudCategory"`
	Reasoning          string   `json:"reasoning"`
	Indicators         []string `json:"indicators"`
	RecommendedAction  string   `json:"recommendedAction"`
	Confidence         float64  `json:"confidence"`
}

const ruleAugmentSystemPrompt = `You are a fraud analyst reviewing a single UPI transaction for an Indian payments app. Respond ONLY with a JSON object of this exact shape:
{"riskScore": 0-100, "isHighRisk": boolean, "fraudCategory": "PHISHING|QR_SCAM|OTP_FRAUD|VISHING|LOTTERY_SCAM|JOB_SCAM|IMPERSONATION|REMOTE_ACCESS|INVESTMENT_SCAM|", "reasoning": "one or two sentences", "indicators": ["short phrases"], "recommendedAction": "short phrase", "confidence": 0.0-1.0}`

// AugmentWithLLM calls the configured LLM for a second opinion on tx and
// folds it into rule. finalScore = max(ruleScore, llmScore); LLM indicators
// are appended. On any LLM failure the rule result is returned unchanged -
// augmentation never turns a rule-total failure into a pipeline error.
func AugmentWithLLM(ctx context.Context, client *llm.Client, tx domain.Transaction, rule RuleResult) RuleResult {
	if client == nil {
		return rule
	}

	userPrompt := fmt.Sprintf(
		"Sender UPI: %s\nReceiver UPI: %s\nAmount: %.2f\nType: %s\nDescription: %s\nSource: %s\nNew payee: %v",
		tx.SenderUPI, tx.ReceiverUPI, tx.Amount, tx.Type, tx.Description, tx.Source, tx.IsNewPayee,
	)

	var verdict llmRuleVerdict
	if err := client.CompleteJSON(ctx, ruleAugmentSystemPrompt, userPrompt, &verdict); err != nil {
		slog.Warn("scoring: LLM rule augmentation failed, using rule result only", "error", err)
		return rule
	}

	merged := rule
	if verdict.RiskScore > merged.Score {
		merged.Score = clampInt(verdict.RiskScore, 0, 100)
	}
	for _, ind := range verdict.Indicators {
		merged.Indicators = append(merged.Indicators, Indicator{ID: "llm", Label: ind, Severity: "MEDIUM"})
	}
	if merged.FraudCategory == nil && verdict.FraudCategory != "" {
		merged.FraudCategory = &domain.FraudCategory{Name: verdict.FraudCategory}
	}

	return merged
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
