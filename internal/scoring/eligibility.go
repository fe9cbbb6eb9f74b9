package scoring

// Eligibility is the loan eligibility verdict derived from the credit score
// plus borrower context.
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`

	MaxLoanAmount   int64   `json:"max_loan_amount"`
	MinInterestRate float64 `json:"min_interest_rate"`
	MaxInterestRate float64 `json:"max_interest_rate"`
}

// eligibilityBand is one rung of the score ladder.
type eligibilityBand struct {
	minScore  int
	reason    string
	maxAmount int64
	minRate   float64
	maxRate   float64
}

// Ladder ascending by score. Amounts in VND; rates capped at the legal
// 20%/year maximum.
var eligibilityLadder = []eligibilityBand{
	{800, "Premium loan eligibility - Best rates available", 500_000_000, 8, 12},
	{700, "Excellent loan eligibility", 200_000_000, 10, 14},
	{600, "Very good loan eligibility", 100_000_000, 12, 16},
	{500, "Good loan eligibility", 50_000_000, 14, 18},
	{400, "Standard loan eligibility", 20_000_000, 16, 20},
	{300, "Limited loan eligibility due to low credit score", 5_000_000, 18, 20},
}

// EvaluateEligibility derives loan eligibility from the credit total and the
// borrower's KYC and fraud state. A failing verdict always names the
// specific failing condition.
func EvaluateEligibility(creditTotal int, kycVerified bool, unresolvedCriticalFlags int) Eligibility {
	if unresolvedCriticalFlags > 0 {
		return Eligibility{Eligible: false, Reason: "unresolved critical fraud flag"}
	}
	if !kycVerified {
		return Eligibility{Eligible: false, Reason: "KYC verification not completed"}
	}
	if creditTotal < 300 {
		return Eligibility{Eligible: false, Reason: "Credit score too low. Minimum required: 300"}
	}

	for _, band := range eligibilityLadder {
		if creditTotal >= band.minScore {
			return Eligibility{
				Eligible:        true,
				Reason:          band.reason,
				MaxLoanAmount:   band.maxAmount,
				MinInterestRate: band.minRate,
				MaxInterestRate: band.maxRate,
			}
		}
	}
	// Unreachable given the <300 guard; defensive.
	return Eligibility{Eligible: false, Reason: "Credit score too low. Minimum required: 300"}
}
