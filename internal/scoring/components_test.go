package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexolend/internal/scoring/flags"
	"nexolend/internal/scoring/ledger"
	"nexolend/internal/scoring/ports"
	id "nexolend/pkg/domain"
)

func paid(daysOverdue int) ports.RepaymentRecord {
	return ports.RepaymentRecord{
		ID:          id.RepaymentID(uuid.New()),
		Status:      ports.RepaymentPaid,
		DaysOverdue: daysOverdue,
	}
}

func TestPaymentHistoryScore(t *testing.T) {
	tests := []struct {
		name       string
		repayments []ports.RepaymentRecord
		want       int
	}{
		{"no history is neutral", nil, 50},
		{"all on time", []ports.RepaymentRecord{paid(0), paid(0), paid(0)}, 100},
		{"one late of two", []ports.RepaymentRecord{paid(0), paid(15)}, 35},
		{"default dominates", []ports.RepaymentRecord{paid(45)}, 0},
		{"long overdue counts as default", []ports.RepaymentRecord{
			{Status: ports.RepaymentOverdue, DaysOverdue: 120},
		}, 0},
		{"pending within grace ignored", []ports.RepaymentRecord{
			paid(0),
			{Status: ports.RepaymentPending},
		}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentHistoryScore(tt.repayments))
		})
	}
}

func TestUtilizationScore(t *testing.T) {
	assert.Equal(t, 100, UtilizationScore(nil))
	assert.Equal(t, 100, UtilizationScore([]ports.LoanRecord{
		{Status: ports.LoanCompleted, RequestedAmount: 400_000_000},
	}))

	active := func(amount int64) []ports.LoanRecord {
		return []ports.LoanRecord{{Status: ports.LoanActive, RequestedAmount: amount}}
	}
	assert.Equal(t, 100, UtilizationScore(active(50_000_000)))
	assert.Equal(t, 85, UtilizationScore(active(150_000_000)))
	assert.Equal(t, 70, UtilizationScore(active(250_000_000)))
	assert.Equal(t, 50, UtilizationScore(active(350_000_000)))
	assert.Equal(t, 30, UtilizationScore(active(450_000_000)))
	assert.Equal(t, 10, UtilizationScore(active(490_000_000)))
}

func TestHistoryLengthScore(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 30, HistoryLengthScore(time.Time{}, now))
	assert.Equal(t, 20, HistoryLengthScore(now.AddDate(0, 0, -10), now))
	assert.Equal(t, 35, HistoryLengthScore(now.AddDate(0, -2, 0), now))
	assert.Equal(t, 50, HistoryLengthScore(now.AddDate(0, -4, 0), now))
	assert.Equal(t, 65, HistoryLengthScore(now.AddDate(0, -8, 0), now))
	assert.Equal(t, 80, HistoryLengthScore(now.AddDate(-1, -6, 0), now))
	assert.Equal(t, 90, HistoryLengthScore(now.AddDate(-2, -6, 0), now))
	assert.Equal(t, 100, HistoryLengthScore(now.AddDate(-4, 0, 0), now))
}

func TestMonthsBetween(t *testing.T) {
	from := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, monthsBetween(from, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, monthsBetween(from, time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, monthsBetween(from, from.AddDate(0, 0, -5)))
}

func TestIdentityScore(t *testing.T) {
	assert.Equal(t, 0, IdentityScore(nil))

	full := &ports.ProfileRecord{
		Status:            ports.KYCApproved,
		IDCardNumber:      "012345678901",
		BankAccountNumber: "19036000000001",
		EmployerName:      "Acme JSC",
		EmailVerified:     true,
		PhoneVerified:     true,
	}
	assert.Equal(t, 100, IdentityScore(full))

	pending := &ports.ProfileRecord{Status: ports.KYCPending, IDCardNumber: "012345678901"}
	assert.Equal(t, 35, IdentityScore(pending))

	rejected := &ports.ProfileRecord{Status: ports.KYCRejected}
	assert.Equal(t, 0, IdentityScore(rejected))
}

func TestIncomeStabilityScore(t *testing.T) {
	assert.Equal(t, 30, IncomeStabilityScore(nil))
	assert.Equal(t, 30, IncomeStabilityScore(&ports.ProfileRecord{}))

	income := int64(25_000_000)
	profile := &ports.ProfileRecord{
		MonthlyIncome: &income,
		EmployerName:  "Acme JSC",
		Occupation:    "Engineer",
	}
	// 30 base + 10 + 15 + 15 income tiers + 15 employer + 10 occupation
	assert.Equal(t, 95, IncomeStabilityScore(profile))

	high := int64(80_000_000)
	assert.Equal(t, 100, IncomeStabilityScore(&ports.ProfileRecord{
		MonthlyIncome: &high,
		EmployerName:  "Acme JSC",
		Occupation:    "Engineer",
	}))
}

func TestBehaviorDelta(t *testing.T) {
	assert.Equal(t, 52, ApplyBehaviorDelta(50, ledger.EventRepaymentOnTime))
	assert.Equal(t, 45, ApplyBehaviorDelta(50, ledger.EventRepaymentLate8To14Days))
	assert.Equal(t, 60, ApplyBehaviorDelta(50, ledger.EventLoanCompleted))
	assert.Equal(t, 0, ApplyBehaviorDelta(20, ledger.EventLoanDefaulted))
	assert.Equal(t, 0, ApplyBehaviorDelta(100, ledger.EventFraudDetected))
	assert.Equal(t, 100, ApplyBehaviorDelta(99, ledger.EventLoanCompleted))
	assert.Equal(t, 50, ApplyBehaviorDelta(50, ledger.EventProfileCompleted))
}

func TestRepaymentEventFor(t *testing.T) {
	assert.Equal(t, ledger.EventRepaymentEarly, RepaymentEventFor(-2))
	assert.Equal(t, ledger.EventRepaymentOnTime, RepaymentEventFor(0))
	assert.Equal(t, ledger.EventRepaymentLate1To7Days, RepaymentEventFor(7))
	assert.Equal(t, ledger.EventRepaymentLate8To14Days, RepaymentEventFor(8))
	assert.Equal(t, ledger.EventRepaymentLate15To30Days, RepaymentEventFor(30))
	assert.Equal(t, ledger.EventRepaymentLateOver30Days, RepaymentEventFor(31))
}

func TestConfidenceToScore(t *testing.T) {
	assert.Equal(t, 40, ConfidenceToScore(0))
	assert.Equal(t, 40, ConfidenceToScore(0.59))
	assert.Equal(t, 60, ConfidenceToScore(0.60))
	assert.Equal(t, 92, ConfidenceToScore(0.915))
	assert.Equal(t, 100, ConfidenceToScore(1.0))
	assert.Equal(t, 100, ConfidenceToScore(1.3))
}

func TestScoreDocument_MissingAnalysis(t *testing.T) {
	doc := ports.DocumentRecord{
		ID:       id.DocumentID(uuid.New()),
		Type:     ports.DocumentIDCardFront,
		FileName: "front.jpg",
	}
	result := ScoreDocument(doc)

	assert.Equal(t, 40, result.Total)
	require.Len(t, result.DataQuality, 1)
	assert.Contains(t, result.DataQuality[0], "floor scores substituted")
	assert.Empty(t, result.Proposals)
}

func TestScoreDocument_ExpiredZeroesExpiration(t *testing.T) {
	doc := ports.DocumentRecord{
		ID:       id.DocumentID(uuid.New()),
		Type:     ports.DocumentIDCardBack,
		FileName: "back.jpg",
		Analysis: &ports.DocumentAnalysis{
			ImageQuality:    0.9,
			OCRAccuracy:     0.9,
			Sharpness:       0.9,
			Authenticity:    0.9,
			DataConsistency: 0.9,
			OCRConfidence:   0.9,
			Expired:         true,
		},
	}
	result := ScoreDocument(doc)

	assert.Equal(t, 0, result.Breakdown.Expiration)
	assert.Equal(t, 100, result.Breakdown.FaceQuality) // no face on the back side

	hasExpired := false
	for _, p := range result.Proposals {
		if p.Type == flags.DocumentExpired {
			hasExpired = true
		}
	}
	assert.True(t, hasExpired)
}

func TestScoreDocument_SelfieFaceProposals(t *testing.T) {
	selfie := func(similarity float64, faces int) ports.DocumentRecord {
		return ports.DocumentRecord{
			ID:       id.DocumentID(uuid.New()),
			Type:     ports.DocumentSelfie,
			FileName: "selfie.jpg",
			Analysis: &ports.DocumentAnalysis{
				ImageQuality: 0.9, OCRAccuracy: 0.9, Sharpness: 0.9,
				Authenticity: 0.9, FaceQuality: 0.9, DataConsistency: 0.9,
				OCRConfidence: 0.9, FacesDetected: faces,
				FaceMatchSimilarity: similarity, HasFaceMatch: true,
			},
		}
	}

	types := func(result DocumentScoreResult) map[flags.FraudType]bool {
		out := map[flags.FraudType]bool{}
		for _, p := range result.Proposals {
			out[p.Type] = true
		}
		return out
	}

	assert.True(t, types(ScoreDocument(selfie(0.5, 1)))[flags.FaceMismatch])
	assert.True(t, types(ScoreDocument(selfie(0.8, 1)))[flags.FaceLowConfidence])
	assert.Empty(t, ScoreDocument(selfie(0.9, 1)).Proposals)
	assert.True(t, types(ScoreDocument(selfie(0.9, 3)))[flags.FaceMultipleDetected])
}

func TestAggregateDocumentScore(t *testing.T) {
	assert.Equal(t, 0, AggregateDocumentScore(nil))

	// Same type means equal weights: plain average scaled to 0-1000.
	results := []DocumentScoreResult{
		{Type: ports.DocumentOther, Total: 90},
		{Type: ports.DocumentOther, Total: 85},
		{Type: ports.DocumentOther, Total: 95},
	}
	assert.Equal(t, 900, AggregateDocumentScore(results))

	// ID card front carries triple the weight of a bank statement.
	weighted := []DocumentScoreResult{
		{Type: ports.DocumentIDCardFront, Total: 100},
		{Type: ports.DocumentBankStatement, Total: 0},
	}
	assert.Equal(t, 750, AggregateDocumentScore(weighted))
}

func TestScoreProfile_MissingProfileUsesFloors(t *testing.T) {
	result := ScoreProfile(nil, ports.IPReputation{}, ports.DeviceReputation{}, time.Now())

	require.Len(t, result.DataQuality, 1)
	assert.Equal(t, 0, result.Breakdown.DataCompleteness)
	assert.Equal(t, 50, result.Breakdown.Age)
	assert.Equal(t, weightProfile(result.Breakdown), result.Total)
}

func TestScoreProfile_SignalsAndProposals(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	dob := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC) // 16 years old
	income := int64(12_000_000)

	profile := &ports.ProfileRecord{
		ProfileID:          id.ProfileID(uuid.New()),
		FullName:           "Nguyen Van A",
		DateOfBirth:        &dob,
		Email:              "a@tempmail.com",
		Phone:              "+84901234567",
		MonthlyIncome:      &income,
		SubmissionDuration: 12 * time.Second,
		SubmissionIP:       "203.0.113.9",
		DeviceFingerprint:  "fp-1",
	}
	ip := ports.IPReputation{Known: true, VPN: true}
	device := ports.DeviceReputation{Known: true, FraudAssociated: true}

	result := ScoreProfile(profile, ip, device, now)

	assert.Equal(t, 0, result.Breakdown.Age)
	assert.Equal(t, 40, result.Breakdown.EmailTrust)
	assert.Equal(t, 85, result.Breakdown.PhoneTrust)
	assert.Equal(t, 50, result.Breakdown.Behavior)
	assert.Equal(t, 40, result.Breakdown.IPReputation)
	assert.Equal(t, 0, result.Breakdown.DeviceTrust)

	proposed := map[flags.FraudType]bool{}
	for _, p := range result.Proposals {
		proposed[p.Type] = true
	}
	assert.True(t, proposed[flags.ProfileUnderage])
	assert.True(t, proposed[flags.ProfileSuspiciousEmail])
	assert.True(t, proposed[flags.ProfileVPNDetected])
	assert.True(t, proposed[flags.ProfileDeviceFraud])
	assert.True(t, proposed[flags.BehaviorRapidSubmission])
}

func TestSuspiciousEmailDomain(t *testing.T) {
	assert.True(t, SuspiciousEmailDomain("x@mailinator.com"))
	assert.True(t, SuspiciousEmailDomain("x@TEMPMAIL.com"))
	assert.False(t, SuspiciousEmailDomain("x@gmail.com"))
	assert.False(t, SuspiciousEmailDomain("not-an-email"))
}

func TestCreditStatisticsFrom(t *testing.T) {
	loans := []ports.LoanRecord{
		{Status: ports.LoanCompleted, RequestedAmount: 10_000_000},
		{Status: ports.LoanDefaulted, RequestedAmount: 5_000_000},
		{Status: ports.LoanActive, RequestedAmount: 8_000_000},
	}
	repayments := []ports.RepaymentRecord{
		{Status: ports.RepaymentPaid, DaysOverdue: 0, PaidAmount: 2_000_000},
		{Status: ports.RepaymentPaid, DaysOverdue: 10, PaidAmount: 2_000_000},
		{Status: ports.RepaymentOverdue, DaysOverdue: 20},
	}

	stats := CreditStatisticsFrom(loans, repayments)

	assert.Equal(t, 1, stats.LoansCompleted)
	assert.Equal(t, 1, stats.LoansDefaulted)
	assert.Equal(t, 1, stats.OnTimePayments)
	assert.Equal(t, 2, stats.LatePayments)
	assert.Equal(t, 15.0, stats.AverageDaysLate)
	assert.Equal(t, int64(23_000_000), stats.TotalBorrowed)
	assert.Equal(t, int64(4_000_000), stats.TotalRepaid)
}
