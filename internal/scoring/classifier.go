package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"upishield/internal/llm"
)

// ClassifierResult is the output of the Scam Text Classifier (C3).
type ClassifierResult struct {
	Confidence float64
	IsScam     bool
	ScamType   string
	Indicators []string
	Reasoning  string
}

type lexiconCategory struct {
	name    string
	weight  float64
	phrases []string
}

// scamLexicon is the weighted category taxonomy from spec.md §4.3. Each
// category counts at most once per message, regardless of how many of its
// phrases match.
var scamLexicon = []lexiconCategory{
	{
		name:   "urgency",
		weight: 0.4,
		phrases: []string{
			"urgent", "immediately", "act now", "expire", "last chance",
			"within 24 hours", "hurry", "final notice",
		},
	},
	{
		name:   "threats",
		weight: 0.5,
		phrases: []string{
			"blocked", "suspended", "legal action", "arrest", "police",
			"court", "penalty", "fine", "account closed",
		},
	},
	{
		name:   "financialRequest",
		weight: 0.5,
		phrases: []string{
			"send money", "pay now", "pay me", "transfer", "send rs", "deposit",
			"processing fee", "advance payment", "gift card",
		},
	},
	{
		name:   "impersonation",
		weight: 0.4,
		phrases: []string{
			"bank official", "rbi", "income tax department", "customs",
			"courier company", "government official", "on behalf of",
		},
	},
	{
		name:   "rewards",
		weight: 0.3,
		phrases: []string{
			"congratulations", "you have won", "lucky winner", "lottery",
			"cashback", "reward", "prize",
		},
	},
	{
		name:   "verification",
		weight: 0.3,
		phrases: []string{
			"verify your account", "kyc", "update your details",
			"confirm your identity", "re-verify",
		},
	},
	{
		name:   "jobScam",
		weight: 0.5,
		phrases: []string{
			"work from home", "part time job", "daily income", "registration fee",
			"easy money", "earn from home",
		},
	},
}

// ScoreText runs the weighted-keyword scam classifier over raw text,
// folding in the OTP sub-detector's additive boost (§4.5) and an optional
// LLM verdict.
func ScoreText(ctx context.Context, client *llm.Client, text string, scamThreshold float64) ClassifierResult {
	lower := strings.ToLower(text)

	var ruleScore float64
	var indicators []string
	for _, cat := range scamLexicon {
		if containsAny(lower, cat.phrases) {
			ruleScore += cat.weight
			indicators = append(indicators, "Matched "+cat.name+" language")
		}
	}
	if ruleScore > 1.0 {
		ruleScore = 1.0
	}

	otp := DetectOTPFraud(text)
	if otp.RiskIncrement > 0 {
		ruleScore += float64(otp.RiskIncrement) / 100
		indicators = append(indicators, otp.Indicators...)
	}
	if ruleScore > 1.0 {
		ruleScore = 1.0
	}

	result := ClassifierResult{
		Confidence: ruleScore,
		Indicators: dedupStrings(indicators),
	}

	final := fuseWithLLM(ctx, client, text, ruleScore, &result)

	final = math.Round(final*100) / 100
	if final > 1.0 {
		final = 1.0
	}
	if final < 0 {
		final = 0
	}

	result.Confidence = final
	result.IsScam = final >= scamThreshold
	return result
}

// llmScamVerdict is the JSON shape requested from the LLM for text
// classification (spec.md §4.3).
type llmScamVerdict struct {
	IsScam     bool     `json:"isScam"`
	Confidence float64  `json:"confidence"`
	ScamType   string   `json:"scamType"`
	Indicators []string `json:"indicators"`
	Reasoning  string   `json:"reasoning"`
}

const scamClassifierSystemPrompt = `You are a scam-detection classifier for messages sent to users of an Indian UPI payments app. Respond ONLY with JSON of this exact shape:
{"isScam": boolean, "confidence": 0.0-1.0, "scamType": "short label or empty string", "indicators": ["short phrases"], "reasoning": "one or two sentences"}`

// fuseWithLLM applies the rule/LLM fusion policy from spec.md §4.3: if the
// rule score already exceeds 0.4 and the LLM disagrees, the rule dominates;
// otherwise take the max of the two. It mutates result's ScamType,
// Reasoning, and Indicators as a side effect and returns the fused
// confidence.
func fuseWithLLM(ctx context.Context, client *llm.Client, text string, ruleScore float64, result *ClassifierResult) float64 {
	if client == nil {
		return ruleScore
	}

	var verdict llmScamVerdict
	err := client.CompleteJSON(ctx, scamClassifierSystemPrompt,
		fmt.Sprintf("Message:\n%s", text), &verdict)
	if err != nil {
		slog.Warn("scoring: LLM scam classification failed, using rule result only", "error", err)
		return ruleScore
	}

	result.ScamType = verdict.ScamType
	result.Reasoning = verdict.Reasoning
	result.Indicators = dedupStrings(append(result.Indicators, verdict.Indicators...))

	if ruleScore > 0.4 && !verdict.IsScam {
		return ruleScore
	}
	if verdict.Confidence > ruleScore {
		return verdict.Confidence
	}
	return ruleScore
}

func dedupStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
