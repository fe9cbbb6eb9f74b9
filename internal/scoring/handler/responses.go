package handler

import (
	"time"

	"nexolend/internal/scoring"
	"nexolend/internal/scoring/flags"
	"nexolend/internal/scoring/ledger"
	"nexolend/internal/scoring/ports"
)

// CreditScoreResponse is the full credit verdict on the wire.
type CreditScoreResponse struct {
	UserID            string              `json:"user_id"`
	Score             int                 `json:"score"`
	MaxScore          int                 `json:"max_score"`
	Tier              string              `json:"tier"`
	Grade             string              `json:"grade"`
	RecommendedAction string              `json:"recommended_action"`
	Components        []scoring.Component `json:"components"`
	Eligibility       scoring.Eligibility `json:"eligibility"`
	Statistics        StatisticsResponse  `json:"statistics"`
	Explanations      []string            `json:"explanations"`
	ComputedAt        time.Time           `json:"computed_at"`
}

// StatisticsResponse summarizes the borrower history behind the score.
type StatisticsResponse struct {
	LoansCompleted  int     `json:"loans_completed"`
	LoansDefaulted  int     `json:"loans_defaulted"`
	OnTimePayments  int     `json:"on_time_payments"`
	LatePayments    int     `json:"late_payments"`
	AverageDaysLate float64 `json:"average_days_late"`
	TotalBorrowed   int64   `json:"total_borrowed"`
	TotalRepaid     int64   `json:"total_repaid"`
}

// KYCScoreResponse is the full KYC verdict on the wire. Breakdowns are only
// present when the score was freshly computed.
type KYCScoreResponse struct {
	ProfileID         string                     `json:"profile_id"`
	Score             int                        `json:"score"`
	MaxScore          int                        `json:"max_score"`
	Tier              string                     `json:"tier"`
	RecommendedAction string                     `json:"recommended_action"`
	DocumentScore     int                        `json:"document_score"`
	ProfileScore      int                        `json:"profile_score"`
	Components        []scoring.Component        `json:"components"`
	CriticalOverride  bool                       `json:"critical_override"`
	FraudPenalty      int                        `json:"fraud_penalty"`
	UnresolvedFlags   int                        `json:"unresolved_flags"`
	DocumentBreakdown *scoring.DocumentBreakdown `json:"document_breakdown,omitempty"`
	ProfileBreakdown  *scoring.ProfileBreakdown  `json:"profile_breakdown,omitempty"`
	Flags             []FlagResponse             `json:"flags"`
	Explanations      []string                   `json:"explanations"`
	ComputedAt        time.Time                  `json:"computed_at"`
}

// FlagResponse is one fraud flag on the wire.
type FlagResponse struct {
	ID             string     `json:"id"`
	ProfileID      string     `json:"profile_id"`
	Type           string     `json:"type"`
	Critical       bool       `json:"critical"`
	Penalty        int        `json:"penalty"`
	Details        string     `json:"details,omitempty"`
	Confidence     float64    `json:"confidence"`
	RaisedBy       string     `json:"raised_by"`
	CreatedAt      time.Time  `json:"created_at"`
	Resolved       bool       `json:"resolved"`
	ResolvedBy     string     `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ResolutionNote string     `json:"resolution_note,omitempty"`
}

// EventResponse is one ledger event on the wire.
type EventResponse struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Impact      int               `json:"impact"`
	ScoreBefore int               `json:"score_before"`
	ScoreAfter  int               `json:"score_after"`
	ProcessedBy string            `json:"processed_by"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// HistoryResponse is a paginated slice of ledger events.
type HistoryResponse struct {
	Events []EventResponse `json:"events"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// SummaryResponse is the lightweight trend view.
type SummaryResponse struct {
	UserID        string `json:"user_id"`
	Score         int    `json:"score"`
	MaxScore      int    `json:"max_score"`
	Tier          string `json:"tier"`
	Grade         string `json:"grade"`
	Change30Days  int    `json:"change_30_days"`
	Trend         string `json:"trend"`
	Eligible      bool   `json:"eligible"`
	MaxLoanAmount int64  `json:"max_loan_amount"`
}

// DuplicateMatchResponse is one duplicate index hit.
type DuplicateMatchResponse struct {
	MatchedProfileID string  `json:"matched_profile_id"`
	MatchType        string  `json:"match_type"`
	Similarity       float64 `json:"similarity"`
}

// DuplicateReportResponse is the duplicate lookup result for a profile.
type DuplicateReportResponse struct {
	ProfileID       string                   `json:"profile_id"`
	Duplicate       bool                     `json:"duplicate"`
	MatchedProfiles int                      `json:"matched_profiles"`
	Matches         []DuplicateMatchResponse `json:"matches"`
}

// FromCreditResult maps a credit verdict to its response shape.
func FromCreditResult(result *scoring.CreditResult) CreditScoreResponse {
	snap := result.Snapshot
	return CreditScoreResponse{
		UserID:            result.UserID.String(),
		Score:             snap.Total,
		MaxScore:          snap.Max,
		Tier:              snap.Tier,
		Grade:             snap.Grade,
		RecommendedAction: snap.RecommendedAction,
		Components:        snap.Components,
		Eligibility:       result.Eligibility,
		Statistics:        fromStatistics(result.Statistics),
		Explanations:      snap.Explanations,
		ComputedAt:        snap.ComputedAt,
	}
}

func fromStatistics(s scoring.CreditStatistics) StatisticsResponse {
	return StatisticsResponse{
		LoansCompleted:  s.LoansCompleted,
		LoansDefaulted:  s.LoansDefaulted,
		OnTimePayments:  s.OnTimePayments,
		LatePayments:    s.LatePayments,
		AverageDaysLate: s.AverageDaysLate,
		TotalBorrowed:   s.TotalBorrowed,
		TotalRepaid:     s.TotalRepaid,
	}
}

// FromKYCResult maps a KYC verdict to its response shape.
func FromKYCResult(result *scoring.KYCResult) KYCScoreResponse {
	snap := result.Snapshot
	return KYCScoreResponse{
		ProfileID:         result.ProfileID.String(),
		Score:             snap.Total,
		MaxScore:          snap.Max,
		Tier:              snap.Tier,
		RecommendedAction: snap.RecommendedAction,
		DocumentScore:     result.DocumentScore,
		ProfileScore:      result.ProfileScore,
		Components:        snap.Components,
		CriticalOverride:  snap.CriticalOverride,
		FraudPenalty:      snap.FraudPenalty,
		UnresolvedFlags:   snap.UnresolvedFlags,
		DocumentBreakdown: result.DocumentBreakdown,
		ProfileBreakdown:  result.ProfileBreakdown,
		Flags:             FromFlags(result.Flags),
		Explanations:      snap.Explanations,
		ComputedAt:        snap.ComputedAt,
	}
}

// FromFlag maps one fraud flag to its response shape.
func FromFlag(f *flags.Flag) FlagResponse {
	return FlagResponse{
		ID:             f.ID.String(),
		ProfileID:      f.ProfileID.String(),
		Type:           string(f.Type),
		Critical:       f.Critical(),
		Penalty:        f.Penalty(),
		Details:        f.Details,
		Confidence:     f.Confidence,
		RaisedBy:       f.RaisedBy,
		CreatedAt:      f.CreatedAt,
		Resolved:       f.Resolved,
		ResolvedBy:     f.ResolvedBy,
		ResolvedAt:     f.ResolvedAt,
		ResolutionNote: f.ResolutionNote,
	}
}

// FromFlags maps a flag list, never returning null on the wire.
func FromFlags(list []*flags.Flag) []FlagResponse {
	out := make([]FlagResponse, 0, len(list))
	for _, f := range list {
		out = append(out, FromFlag(f))
	}
	return out
}

func fromEvent(e *ledger.Event) EventResponse {
	return EventResponse{
		ID:          e.ID.String(),
		UserID:      e.UserID.String(),
		Type:        string(e.Type),
		Description: e.Description,
		Impact:      e.Impact,
		ScoreBefore: e.ScoreBefore,
		ScoreAfter:  e.ScoreAfter,
		ProcessedBy: e.ProcessedBy,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
	}
}

// FromHistoryPage maps a ledger page to its response shape.
func FromHistoryPage(page *scoring.HistoryPage) HistoryResponse {
	events := make([]EventResponse, 0, len(page.Events))
	for _, e := range page.Events {
		events = append(events, fromEvent(e))
	}
	return HistoryResponse{
		Events: events,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
}

// FromSummary maps the trend view to its response shape.
func FromSummary(s *scoring.Summary) SummaryResponse {
	return SummaryResponse{
		UserID:        s.SubjectID.String(),
		Score:         s.Total,
		MaxScore:      s.Max,
		Tier:          s.Tier,
		Grade:         s.Grade,
		Change30Days:  s.Change30Days,
		Trend:         s.Trend,
		Eligible:      s.Eligible,
		MaxLoanAmount: s.MaxLoanAmount,
	}
}

// FromDuplicateReport maps the duplicate lookup to its response shape.
func FromDuplicateReport(report *scoring.DuplicateReport) DuplicateReportResponse {
	matches := make([]DuplicateMatchResponse, 0, len(report.Matches))
	for _, m := range report.Matches {
		matches = append(matches, fromDuplicateMatch(m))
	}
	return DuplicateReportResponse{
		ProfileID:       report.ProfileID.String(),
		Duplicate:       report.Duplicate,
		MatchedProfiles: report.MatchedProfiles,
		Matches:         matches,
	}
}

func fromDuplicateMatch(m ports.DuplicateMatch) DuplicateMatchResponse {
	return DuplicateMatchResponse{
		MatchedProfileID: m.MatchedProfileID.String(),
		MatchType:        m.MatchType,
		Similarity:       m.Similarity,
	}
}
