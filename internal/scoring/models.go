// Package scoring implements the risk and trust scoring engine: pure
// component scorers, weighted aggregation, tier classification, eligibility,
// and the orchestrator that ties them to the ledger, flag registry, and
// snapshot store.
package scoring

import (
	"time"

	"github.com/google/uuid"

	"nexolend/internal/scoring/flags"
	"nexolend/internal/scoring/ledger"
	"nexolend/internal/scoring/ports"
)

// Track separates the two independent scoring tracks per subject.
type Track string

const (
	TrackCredit Track = "credit"
	TrackKYC    Track = "kyc"
)

const (
	MaxScore = 1000
	MinScore = 0

	// InitialBehaviorScore seeds the behavior component for new borrowers.
	InitialBehaviorScore = 50
)

// Component names used in snapshots and breakdowns.
const (
	ComponentPaymentHistory = "payment_history"
	ComponentUtilization    = "credit_utilization"
	ComponentHistoryLength  = "credit_history_length"
	ComponentIdentity       = "identity_verification"
	ComponentIncome         = "income_stability"
	ComponentBehavior       = "behavior"

	ComponentDocument = "document"
	ComponentProfile  = "profile"
)

// Component is one named sub-score with the weight applied to it.
type Component struct {
	Name   string `json:"name"`
	Raw    int    `json:"raw"`
	Weight int    `json:"weight"`
}

// Snapshot is one immutable computed score result. Recomputation creates a
// new snapshot; history is never mutated.
type Snapshot struct {
	SubjectID uuid.UUID
	Track     Track

	Total int
	Max   int

	// Components is ordered; order is part of the breakdown contract.
	Components []Component

	Tier              string
	Grade             string
	RecommendedAction string

	// CriticalOverride is set when two or more unresolved critical flags
	// forced the lowest tier regardless of the numeric total.
	CriticalOverride bool

	FraudPenalty    int
	UnresolvedFlags int
	CriticalFlags   int

	// Eligibility and Statistics are set on credit snapshots only, so a
	// cached read serves the full verdict without refetching evidence.
	Eligibility *Eligibility
	Statistics  *CreditStatistics

	// Explanations is the ordered human-readable breakdown. Deterministic
	// for a fixed input state so recomputation is idempotent.
	Explanations []string

	ComputedAt time.Time
}

// CreditResult is the full credit scoring verdict returned to callers.
type CreditResult struct {
	UserID   uuid.UUID
	Snapshot *Snapshot

	Eligibility Eligibility
	Statistics  CreditStatistics
}

// CreditStatistics summarizes the borrower history behind a credit score.
type CreditStatistics struct {
	LoansCompleted  int
	LoansDefaulted  int
	OnTimePayments  int
	LatePayments    int
	AverageDaysLate float64
	TotalBorrowed   int64
	TotalRepaid     int64
}

// KYCResult is the full KYC scoring verdict returned to callers.
type KYCResult struct {
	ProfileID uuid.UUID
	Snapshot  *Snapshot

	DocumentScore int // 0-1000 aggregate before weighting
	ProfileScore  int // 0-1000 aggregate before weighting

	DocumentBreakdown *DocumentBreakdown
	ProfileBreakdown  *ProfileBreakdown

	Flags []*flags.Flag
}

// DocumentBreakdown exposes the first scored document's sub-scores.
type DocumentBreakdown struct {
	ImageQuality    int     `json:"image_quality"`
	OCRAccuracy     int     `json:"ocr_accuracy"`
	BlurDetection   int     `json:"blur_detection"`
	Tampering       int     `json:"tampering_detection"`
	FaceQuality     int     `json:"face_quality"`
	DataConsistency int     `json:"data_consistency"`
	Expiration      int     `json:"expiration_check"`
	OCRConfidence   float64 `json:"ocr_confidence"`
	FaceMatchScore  float64 `json:"face_match_score"`
}

// ProfileBreakdown exposes the profile-side sub-scores.
type ProfileBreakdown struct {
	Age              int `json:"age_verification"`
	PhoneTrust       int `json:"phone_trust"`
	EmailTrust       int `json:"email_trust"`
	DataCompleteness int `json:"data_completeness"`
	IncomeVerified   int `json:"income_verification"`
	Behavior         int `json:"behavior"`
	IPReputation     int `json:"ip_reputation"`
	DeviceTrust      int `json:"device_trust"`
}

// Summary is the lightweight trend view built from ledger deltas. It is a
// display-only code path, deliberately separate from authoritative
// recomputation.
type Summary struct {
	SubjectID     uuid.UUID
	Track         Track
	Total         int
	Max           int
	Tier          string
	Grade         string
	Change30Days  int
	Trend         string // UP, DOWN, STABLE
	Eligible      bool
	MaxLoanAmount int64
}

// FlagProposal is a fraud signal produced by the pure scorers; the
// orchestrator persists proposals that are not already on file.
type FlagProposal struct {
	Type       flags.FraudType
	Details    string
	Confidence float64
}

// DuplicateReport is the read-only duplicate lookup result for a profile.
type DuplicateReport struct {
	ProfileID uuid.UUID
	Duplicate bool
	// MatchedProfiles is the number of distinct other profiles matched.
	MatchedProfiles int
	Matches         []ports.DuplicateMatch
}

// HistoryPage is a paginated slice of ledger events.
type HistoryPage struct {
	Events []*ledger.Event
	Total  int
	Limit  int
	Offset int
}

// TrendFor maps a summed 30-day delta to its display label.
func TrendFor(change int) string {
	switch {
	case change > 0:
		return "UP"
	case change < 0:
		return "DOWN"
	default:
		return "STABLE"
	}
}

func clampScore(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

func clampComponent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
