package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexolend/internal/scoring/flags"
	id "nexolend/pkg/domain"
)

func TestCreditWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultCreditWeights.Validate())

	short := DefaultCreditWeights
	short.Behavior = 40
	assert.ErrorContains(t, short.Validate(), "sum to 990")

	negative := DefaultCreditWeights
	negative.PaymentHistory = 400
	negative.Behavior = 0
	assert.Error(t, negative.Validate())
}

func TestKYCWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultKYCWeights.Validate())
	assert.Error(t, KYCWeights{Document: 0.5, Profile: 0.6}.Validate())
	assert.Error(t, KYCWeights{Document: 1.2, Profile: -0.2}.Validate())
}

func TestAggregateCredit(t *testing.T) {
	perfect := CreditComponents{100, 100, 100, 100, 100, 100}
	assert.Equal(t, 1000, AggregateCredit(perfect, DefaultCreditWeights))

	zero := CreditComponents{}
	assert.Equal(t, 0, AggregateCredit(zero, DefaultCreditWeights))

	// 50*3.5 + 100*2 + 30*1.5 + 0 + 30*1 + 50*0.5 = 475
	mixed := CreditComponents{
		PaymentHistory: 50,
		Utilization:    100,
		HistoryLength:  30,
		Identity:       0,
		Income:         30,
		Behavior:       50,
	}
	assert.Equal(t, 475, AggregateCredit(mixed, DefaultCreditWeights))
}

func TestSummarizeFlags(t *testing.T) {
	profileID := id.ProfileID(uuid.New())
	list := []*flags.Flag{
		{ID: id.NewFlagID(), ProfileID: profileID, Type: flags.DocumentTampering},
		{ID: id.NewFlagID(), ProfileID: profileID, Type: flags.DocumentBlurry},
		{ID: id.NewFlagID(), ProfileID: profileID, Type: flags.FaceMismatch, Resolved: true},
	}

	impact := SummarizeFlags(list)

	assert.Equal(t, 2, impact.Unresolved)
	assert.Equal(t, 330, impact.Penalty) // 300 tampering + 30 blurry
	assert.Equal(t, 1, impact.Critical)
}

func TestSummarizeFlags_ConfidenceNeverScalesPenalty(t *testing.T) {
	flag := func(confidence float64) []*flags.Flag {
		return []*flags.Flag{{
			ID:         id.NewFlagID(),
			Type:       flags.DocumentTampering,
			Confidence: confidence,
		}}
	}
	assert.Equal(t, SummarizeFlags(flag(0.1)).Penalty, SummarizeFlags(flag(0.99)).Penalty)
}

func TestAggregateKYC(t *testing.T) {
	total, override := AggregateKYC(800, 700, DefaultKYCWeights, FlagImpact{})
	assert.Equal(t, 740, total) // 800*0.4 + 700*0.6
	assert.False(t, override)

	total, override = AggregateKYC(800, 700, DefaultKYCWeights, FlagImpact{Penalty: 500, Unresolved: 1, Critical: 1})
	assert.Equal(t, 240, total)
	assert.False(t, override)

	total, override = AggregateKYC(100, 100, DefaultKYCWeights, FlagImpact{Penalty: 800, Unresolved: 3, Critical: 2})
	assert.Equal(t, 0, total)
	assert.True(t, override)
}
