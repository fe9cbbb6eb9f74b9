package scoring

import (
	"fmt"
	"math"

	"nexolend/internal/scoring/flags"
)

// CreditWeights distribute the 1000-point scale across the credit
// components. Each component raw value is 0-100.
type CreditWeights struct {
	PaymentHistory int
	Utilization    int
	HistoryLength  int
	Identity       int
	Income         int
	Behavior       int
}

// DefaultCreditWeights is the production configuration.
var DefaultCreditWeights = CreditWeights{
	PaymentHistory: 350,
	Utilization:    200,
	HistoryLength:  150,
	Identity:       150,
	Income:         100,
	Behavior:       50,
}

// Validate checks that the weights cover the full scale exactly. A violation
// is a fatal configuration error at startup, never at scoring time.
func (w CreditWeights) Validate() error {
	sum := w.PaymentHistory + w.Utilization + w.HistoryLength + w.Identity + w.Income + w.Behavior
	if sum != MaxScore {
		return fmt.Errorf("credit weights sum to %d, want %d", sum, MaxScore)
	}
	for name, v := range map[string]int{
		ComponentPaymentHistory: w.PaymentHistory,
		ComponentUtilization:    w.Utilization,
		ComponentHistoryLength:  w.HistoryLength,
		ComponentIdentity:       w.Identity,
		ComponentIncome:         w.Income,
		ComponentBehavior:       w.Behavior,
	} {
		if v <= 0 {
			return fmt.Errorf("credit weight %s must be positive, got %d", name, v)
		}
	}
	return nil
}

// KYCWeights split the KYC total between the document and profile sides.
type KYCWeights struct {
	Document float64
	Profile  float64
}

// DefaultKYCWeights is the production configuration.
var DefaultKYCWeights = KYCWeights{Document: 0.4, Profile: 0.6}

// Validate checks the split covers the whole scale.
func (w KYCWeights) Validate() error {
	if math.Abs(w.Document+w.Profile-1.0) > 1e-9 {
		return fmt.Errorf("kyc weights sum to %v, want 1.0", w.Document+w.Profile)
	}
	if w.Document <= 0 || w.Profile <= 0 {
		return fmt.Errorf("kyc weights must be positive")
	}
	return nil
}

// CreditComponents holds the six credit raw sub-scores, each 0-100.
type CreditComponents struct {
	PaymentHistory int
	Utilization    int
	HistoryLength  int
	Identity       int
	Income         int
	Behavior       int
}

// Ordered returns the breakdown in its fixed display order.
func (c CreditComponents) Ordered(w CreditWeights) []Component {
	return []Component{
		{Name: ComponentPaymentHistory, Raw: c.PaymentHistory, Weight: w.PaymentHistory},
		{Name: ComponentUtilization, Raw: c.Utilization, Weight: w.Utilization},
		{Name: ComponentHistoryLength, Raw: c.HistoryLength, Weight: w.HistoryLength},
		{Name: ComponentIdentity, Raw: c.Identity, Weight: w.Identity},
		{Name: ComponentIncome, Raw: c.Income, Weight: w.Income},
		{Name: ComponentBehavior, Raw: c.Behavior, Weight: w.Behavior},
	}
}

// AggregateCredit computes the weighted credit total, clamped to bounds.
func AggregateCredit(c CreditComponents, w CreditWeights) int {
	score := float64(c.PaymentHistory)/100*float64(w.PaymentHistory) +
		float64(c.Utilization)/100*float64(w.Utilization) +
		float64(c.HistoryLength)/100*float64(w.HistoryLength) +
		float64(c.Identity)/100*float64(w.Identity) +
		float64(c.Income)/100*float64(w.Income) +
		float64(c.Behavior)/100*float64(w.Behavior)
	return clampScore(int(math.Round(score)))
}

// FlagImpact summarizes unresolved flags for aggregation.
type FlagImpact struct {
	Penalty    int // absolute sum of unresolved penalties
	Unresolved int
	Critical   int
}

// SummarizeFlags folds unresolved flags into their aggregate impact.
// Penalties are fixed per type; confidence never scales them.
func SummarizeFlags(list []*flags.Flag) FlagImpact {
	impact := FlagImpact{}
	for _, f := range list {
		if f.Resolved {
			continue
		}
		impact.Unresolved++
		impact.Penalty += -f.Penalty() // penalties are negative
		if f.Critical() {
			impact.Critical++
		}
	}
	return impact
}

// AggregateKYC combines the document and profile sides, subtracts unresolved
// flag penalties, and clamps. The returned override is true when two or more
// unresolved critical flags force the lowest tier regardless of the total.
func AggregateKYC(documentScore, profileScore int, w KYCWeights, impact FlagImpact) (total int, override bool) {
	base := math.Round(float64(documentScore)*w.Document + float64(profileScore)*w.Profile)
	total = clampScore(int(base) - impact.Penalty)
	override = impact.Critical >= 2
	return total, override
}
