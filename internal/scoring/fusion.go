package scoring

import (
	"math"

	"upishield/internal/domain"
)

// Signal is one scoreable contribution to Mode A max-signal fusion: a
// 0-100 score plus the indicators, category, and reasoning it carries.
type Signal struct {
	Score         int
	Indicators    []string
	FraudCategory *domain.FraudCategory
	Reasoning     string
}

// FuseMaxSignal implements Mode A (spec.md §4.8), used by scan-message and
// chat-send: the verdict's score is the max of all available signals, with
// indicators/category/reasoning assembled by de-duplicated concatenation.
func FuseMaxSignal(signals []Signal) domain.RiskVerdict {
	base := 0
	var indicators []string
	var category *domain.FraudCategory
	var reasoningParts []string

	for _, s := range signals {
		if s.Score > base {
			base = s.Score
		}
		indicators = append(indicators, s.Indicators...)
		if category == nil && s.FraudCategory != nil {
			category = s.FraudCategory
		}
		if s.Reasoning != "" {
			reasoningParts = append(reasoningParts, s.Reasoning)
		}
	}

	level := domain.Band(base)
	indicators = dedupStrings(indicators)
	actions := RecommendedActions(base, category)

	return domain.RiskVerdict{
		RiskScore:          base,
		RiskLevel:          level,
		FraudCategory:      category,
		Indicators:         indicators,
		RecommendedActions: actions,
		Reasoning:          joinReasoning(reasoningParts),
	}
}

// AdvancedFusionInput bundles the inputs to Mode B (spec.md §4.8).
type AdvancedFusionInput struct {
	RuleScore     int
	MLProbability float64 // meaningless unless MLAvailable
	MLAvailable   bool    // false when the ML collaborator is disabled or degraded
	IsBlacklisted bool
}

// FuseAdvanced implements Mode B, used by validate-pay: blacklist
// short-circuits to 100, otherwise a confidence-dependent weighted blend of
// rule and ML scores with a rule-strong boost. A missing ML opinion is not
// treated as an ML score of zero - per spec.md §9 the pipeline must produce
// valid verdicts with ML disabled, so the rule score carries the fusion
// unweighted rather than getting diluted against an absent signal.
func FuseAdvanced(in AdvancedFusionInput) int {
	if in.IsBlacklisted {
		return 100
	}

	var score float64
	if !in.MLAvailable {
		score = float64(in.RuleScore)
	} else {
		mlScore := in.MLProbability * 100

		var wRule, wML float64
		if in.MLProbability > 0.9 {
			wRule, wML = 0.4, 0.6
		} else {
			wRule, wML = 0.6, 0.4
		}

		score = wRule*float64(in.RuleScore) + wML*mlScore
	}

	if in.RuleScore > 80 {
		score += 10
	}

	return clampInt(int(math.Round(score)), 0, 100)
}

// FuseLinear is the unboosted linear fusion exposed for callers that want
// the simpler form: existing*0.6 + mlScore*0.4.
func FuseLinear(existing int, mlProbability float64) int {
	score := float64(existing)*0.6 + (mlProbability*100)*0.4
	return clampInt(int(math.Round(score)), 0, 100)
}

func joinReasoning(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += " " + p
	}
	return out
}
