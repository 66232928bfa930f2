package scoring

import "upishield/internal/domain"

// RecommendedActions derives the recommended-actions list from the final
// score band and fraud category (spec.md §4.9), de-duplicated in order.
func RecommendedActions(score int, category *domain.FraudCategory) []string {
	var actions []string

	switch {
	case score >= 75:
		actions = append(actions,
			"BLOCK this transaction immediately",
			"Call your bank's fraud helpline",
			"Report to Cyber Crime helpline: 1930",
			"Change your UPI PIN immediately",
		)
	case score >= 50:
		actions = append(actions,
			"Hold this transaction and verify the payee",
			"Confirm the request directly with the sender through a separate channel",
			"Never share OTP or UPI PIN",
		)
	case score >= 25:
		actions = append(actions,
			"Review transaction details carefully",
			"Verify the receiver",
			"Ensure you are on official app",
		)
	default:
		actions = append(actions,
			"Transaction appears safe",
			"Always verify before large transfers",
		)
	}

	if category != nil {
		switch category.Name {
		case domain.CategoryQRScam:
			actions = append(actions,
				"Never scan QR codes sent by strangers",
				"QR codes are for PAYING, not RECEIVING",
			)
		case domain.CategoryOTPFraud:
			actions = append(actions, "NEVER share OTP")
		case domain.CategoryPhishing:
			actions = append(actions, "Do NOT click suspicious links")
		case domain.CategoryVishing:
			actions = append(actions, "Hang up and call your bank on the official number")
		}
	}

	return dedupStrings(actions)
}
