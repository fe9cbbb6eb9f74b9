package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateEligibility_BlockingConditions(t *testing.T) {
	blocked := EvaluateEligibility(900, true, 1)
	assert.False(t, blocked.Eligible)
	assert.Equal(t, "unresolved critical fraud flag", blocked.Reason)
	assert.Zero(t, blocked.MaxLoanAmount)

	unverified := EvaluateEligibility(900, false, 0)
	assert.False(t, unverified.Eligible)
	assert.Equal(t, "KYC verification not completed", unverified.Reason)

	low := EvaluateEligibility(299, true, 0)
	assert.False(t, low.Eligible)
	assert.Equal(t, "Credit score too low. Minimum required: 300", low.Reason)
}

func TestEvaluateEligibility_Ladder(t *testing.T) {
	tests := []struct {
		score     int
		maxAmount int64
		minRate   float64
		maxRate   float64
	}{
		{800, 500_000_000, 8, 12},
		{1000, 500_000_000, 8, 12},
		{700, 200_000_000, 10, 14},
		{699, 100_000_000, 12, 16},
		{500, 50_000_000, 14, 18},
		{450, 20_000_000, 16, 20},
		{300, 5_000_000, 18, 20},
	}
	for _, tt := range tests {
		got := EvaluateEligibility(tt.score, true, 0)
		assert.True(t, got.Eligible, "score %d", tt.score)
		assert.Equal(t, tt.maxAmount, got.MaxLoanAmount, "score %d", tt.score)
		assert.Equal(t, tt.minRate, got.MinInterestRate, "score %d", tt.score)
		assert.Equal(t, tt.maxRate, got.MaxInterestRate, "score %d", tt.score)
	}
}

func TestEvaluateEligibility_CriticalFlagDominates(t *testing.T) {
	// Flag gate applies before the KYC gate so the reason names the flag.
	got := EvaluateEligibility(100, false, 2)
	assert.Equal(t, "unresolved critical fraud flag", got.Reason)
}
