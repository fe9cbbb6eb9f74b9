package scoring

import "fmt"

// Band is one contiguous score range with its tier metadata.
type Band struct {
	Tier        string
	Grade       string
	Action      string
	Description string
	Min         int
	Max         int
}

// creditBands cover [0,1000] descending. Grade doubles as the display letter.
var creditBands = []Band{
	{Tier: "LOW", Grade: "A", Action: "APPROVE", Description: "Low Risk", Min: 800, Max: 1000},
	{Tier: "MEDIUM", Grade: "B", Action: "APPROVE", Description: "Medium Risk", Min: 600, Max: 799},
	{Tier: "HIGH", Grade: "C", Action: "REVIEW", Description: "High Risk", Min: 400, Max: 599},
	{Tier: "VERY_HIGH", Grade: "D", Action: "REVIEW", Description: "Very High Risk", Min: 200, Max: 399},
	{Tier: "CRITICAL", Grade: "E", Action: "REJECT", Description: "Critical Risk", Min: 0, Max: 199},
}

// kycBands cover [0,1000] descending. Action is the recommended decision.
var kycBands = []Band{
	{Tier: "LOW", Grade: "A", Action: "Auto Approve", Description: "Low Risk", Min: 800, Max: 1000},
	{Tier: "MEDIUM", Grade: "B", Action: "Manual Review", Description: "Medium Risk", Min: 600, Max: 799},
	{Tier: "HIGH", Grade: "C", Action: "Reject", Description: "High Risk", Min: 300, Max: 599},
	{Tier: "FRAUD", Grade: "F", Action: "Blacklist", Description: "Fraud Detected", Min: 0, Max: 299},
}

// classify scans ordered bands; first match wins. Out-of-range input falls
// through to the lowest band so the function is total.
func classify(bands []Band, score int) Band {
	for _, b := range bands {
		if score >= b.Min && score <= b.Max {
			return b
		}
	}
	return bands[len(bands)-1]
}

// CreditTierFor returns the credit band containing score.
func CreditTierFor(score int) Band {
	return classify(creditBands, score)
}

// KYCTierFor returns the KYC band containing score.
func KYCTierFor(score int) Band {
	return classify(kycBands, score)
}

// LowestKYCTier returns the band forced by the critical-flag override.
func LowestKYCTier() Band {
	return kycBands[len(kycBands)-1]
}

// LowestCreditTier returns the lowest credit band.
func LowestCreditTier() Band {
	return creditBands[len(creditBands)-1]
}

// Grade maps a total score to its display grade.
func Grade(score int) string {
	switch {
	case score >= 900:
		return "A+"
	case score >= 800:
		return "A"
	case score >= 700:
		return "B"
	case score >= 600:
		return "C"
	case score >= 400:
		return "D"
	default:
		return "F"
	}
}

// ValidateBands checks that a band table covers [0, MaxScore] contiguously
// without gaps or overlaps. Called at startup; a violation is a fatal
// configuration error.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("no bands configured")
	}
	expected := MaxScore
	for i, b := range bands {
		if b.Min > b.Max {
			return fmt.Errorf("band %s: min %d > max %d", b.Tier, b.Min, b.Max)
		}
		if b.Max != expected {
			return fmt.Errorf("band %s: max %d leaves gap or overlap (want %d)", b.Tier, b.Max, expected)
		}
		expected = b.Min - 1
		if i == len(bands)-1 && b.Min != MinScore {
			return fmt.Errorf("band %s: lowest band starts at %d, want %d", b.Tier, b.Min, MinScore)
		}
	}
	return nil
}

// ValidateTierConfig verifies both band tables at startup.
func ValidateTierConfig() error {
	if err := ValidateBands(creditBands); err != nil {
		return fmt.Errorf("credit bands: %w", err)
	}
	if err := ValidateBands(kycBands); err != nil {
		return fmt.Errorf("kyc bands: %w", err)
	}
	return nil
}
