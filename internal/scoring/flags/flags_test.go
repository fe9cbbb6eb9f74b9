package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFraudType_Catalog(t *testing.T) {
	tests := []struct {
		fraudType FraudType
		penalty   int
		critical  bool
	}{
		{DocumentDuplicate, -500, true},
		{DocumentTampering, -300, true},
		{DocumentExpired, -100, false},
		{DocumentLowQuality, -50, false},
		{DocumentBlurry, -30, false},
		{DocumentOCRMismatch, -150, true},
		{IDCardDuplicate, -500, true},
		{IDCardInvalidFormat, -100, false},
		{IDCardExpired, -100, false},
		{FaceMismatch, -200, true},
		{FaceLowConfidence, -50, false},
		{FaceMultipleDetected, -100, true},
		{ProfileUnderage, -300, true},
		{ProfileSuspiciousEmail, -50, false},
		{ProfileSuspiciousPhone, -50, false},
		{ProfileKnownFraudDB, -500, true},
		{ProfileIPBlacklisted, -200, true},
		{ProfileVPNDetected, -100, false},
		{ProfileDeviceFraud, -300, true},
		{BehaviorRapidSubmission, -30, false},
		{BehaviorCopyPasteDetected, -20, false},
		{BehaviorMultipleAttempts, -50, false},
		{CrossCheckBankMismatch, -100, false},
		{CrossCheckAddressMismatch, -30, false},
	}

	assert.Len(t, Types(), len(tests), "catalog size")

	for _, tt := range tests {
		t.Run(string(tt.fraudType), func(t *testing.T) {
			assert.True(t, tt.fraudType.IsValid())
			assert.Equal(t, tt.penalty, tt.fraudType.Penalty())
			assert.Equal(t, tt.critical, tt.fraudType.Critical())
			assert.NotEmpty(t, tt.fraudType.Description())
		})
	}
}

func TestFraudType_Invalid(t *testing.T) {
	assert.False(t, FraudType("SOMETHING_ELSE").IsValid())
}

func TestFlag_DelegatesToCatalog(t *testing.T) {
	flag := &Flag{Type: FaceMismatch, Confidence: 0.4}
	assert.Equal(t, -200, flag.Penalty())
	assert.True(t, flag.Critical())

	// Confidence is evidence metadata only; penalty stays fixed.
	flag.Confidence = 0.99
	assert.Equal(t, -200, flag.Penalty())
}
