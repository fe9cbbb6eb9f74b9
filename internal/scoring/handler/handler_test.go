package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"nexolend/internal/scoring"
	"nexolend/internal/scoring/flags"
	"nexolend/internal/scoring/handler/mocks"
	"nexolend/internal/scoring/ledger"
	id "nexolend/pkg/domain"
	dErrors "nexolend/pkg/domain-errors"
)

type ScoringHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *ScoringHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestScoringHandlerSuite(t *testing.T) {
	suite.Run(t, new(ScoringHandlerSuite))
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(mockService, logger)
	r := chi.NewRouter()
	h.Register(r, nil)
	return r, mockService
}

func creditResult(userID uuid.UUID, total int) *scoring.CreditResult {
	eligibility := scoring.Eligibility{
		Eligible:        true,
		Reason:          "Good loan eligibility",
		MaxLoanAmount:   100_000_000,
		MinInterestRate: 12,
		MaxInterestRate: 16,
	}
	stats := scoring.CreditStatistics{LoansCompleted: 2, OnTimePayments: 10}
	return &scoring.CreditResult{
		UserID: userID,
		Snapshot: &scoring.Snapshot{
			SubjectID:         userID,
			Track:             scoring.TrackCredit,
			Total:             total,
			Max:               scoring.MaxScore,
			Tier:              "MEDIUM",
			Grade:             "B",
			RecommendedAction: "APPROVE_WITH_CONDITIONS",
			Components: []scoring.Component{
				{Name: scoring.ComponentPaymentHistory, Raw: 80, Weight: 350},
			},
			Eligibility:  &eligibility,
			Statistics:   &stats,
			Explanations: []string{"Payment History: 80/100 (weight 350/1000)"},
			ComputedAt:   time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		},
		Eligibility: eligibility,
		Statistics:  stats,
	}
}

func kycResult(profileID uuid.UUID, total int) *scoring.KYCResult {
	return &scoring.KYCResult{
		ProfileID: profileID,
		Snapshot: &scoring.Snapshot{
			SubjectID:         profileID,
			Track:             scoring.TrackKYC,
			Total:             total,
			Max:               scoring.MaxScore,
			Tier:              "LOW",
			RecommendedAction: "Auto Approve",
			Components: []scoring.Component{
				{Name: scoring.ComponentDocument, Raw: 950, Weight: 40},
				{Name: scoring.ComponentProfile, Raw: 885, Weight: 60},
			},
			Explanations: []string{"Document score: 950/1000 (weight 40%)"},
			ComputedAt:   time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		},
		DocumentScore: 950,
		ProfileScore:  885,
		Flags:         nil,
	}
}

func (s *ScoringHandlerSuite) TestGetCreditScore() {
	r, mockService := newTestRouter(s.T())
	userID := uuid.New()
	mockService.EXPECT().
		CurrentCreditScore(gomock.Any(), id.UserID(userID), false).
		Return(creditResult(userID, 650), nil)

	req := httptest.NewRequest(http.MethodGet, "/scores/credit/"+userID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(s.T(), http.StatusOK, w.Code)
	var resp CreditScoreResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), userID.String(), resp.UserID)
	assert.Equal(s.T(), 650, resp.Score)
	assert.Equal(s.T(), 1000, resp.MaxScore)
	assert.Equal(s.T(), "MEDIUM", resp.Tier)
	assert.True(s.T(), resp.Eligibility.Eligible)
	assert.Equal(s.T(), int64(100_000_000), resp.Eligibility.MaxLoanAmount)
}

func (s *ScoringHandlerSuite) TestGetCreditScore_Cached() {
	r, mockService := newTestRouter(s.T())
	userID := uuid.New()
	mockService.EXPECT().
		CurrentCreditScore(gomock.Any(), id.UserID(userID), true).
		Return(creditResult(userID, 650), nil)

	req := httptest.NewRequest(http.MethodGet, "/scores/credit/"+userID.String()+"?cached=true", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *ScoringHandlerSuite) TestGetCreditScore_InvalidID() {
	r, _ := newTestRouter(s.T())

	req := httptest.NewRequest(http.MethodGet, "/scores/credit/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *ScoringHandlerSuite) TestGetCreditScore_NotFound() {
	r, mockService := newTestRouter(s.T())
	userID := uuid.New()
	mockService.EXPECT().
		CurrentCreditScore(gomock.Any(), id.UserID(userID), false).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "user not found"))

	req := httptest.NewRequest(http.MethodGet, "/scores/credit/"+userID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(s.T(), http.StatusNotFound, w.Code)
	var body map[string]string
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(s.T(), "not_found", body["error"])
	assert.Equal(s.T(), "user not found", body["error_description"])
}

func (s *ScoringHandlerSuite) TestRecalculateCredit() {
	r, mockService := newTestRouter(s.T())
	userID := uuid.New()
	mockService.EXPECT().
		RecalculateCreditScore(gomock.Any(), id.UserID(userID)).
		Return(creditResult(userID, 700), nil)

	req := httptest.NewRequest(http.MethodPost, "/scores/credit/"+userID.String()+"/recalculate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(s.T(), http.StatusOK, w.Code)
	var resp CreditScoreResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), 700, resp.Score)
}

func (s *ScoringHandlerSuite) TestAdjustScore() {
	r, mockService := newTestRouter(s.T())
	userID := uuid.New()
	mockService.EXPECT().
		AdjustScore(gomock.Any(), id.UserID(userID), 50, "goodwill correction").
		Return(creditResult(userID, 700), nil)

	body, err := json.Marshal(AdjustRequest{Adjustment: 50, Reason: "goodwill correction"})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/scores/credit/"+userID.String()+"/adjust", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *ScoringHandlerSuite) TestAdjustScore_Validation() {
	r, _ := newTestRouter(s.T())
	userID := uuid.New()

	cases := []AdjustRequest{
		{Adjustment: 0, Reason: "no-op"},
		{Adjustment: 50, Reason: ""},
	}
	for _, tc := range cases {
		body, err := json.Marshal(tc)
		require.NoError(s.T(), err)

		req := httptest.NewRequest(http.MethodPost, "/scores/credit/"+userID.String()+"/adjust", bytes.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	}
}

func (s *ScoringHandlerSuite) TestRecordEvent() {
	r, mockService := newTestRouter(s.T())
	userID := uuid.New()
	mockService.EXPECT().
		RecordEvent(gomock.Any(), id.UserID(userID), ledger.EventRepaymentOnTime, map[string]string{"loan_id": "L-1"}).
		Return(creditResult(userID, 665), nil)

	body, err := json.Marshal(RecordEventRequest{
		UserID:    userID.String(),
		EventType: string(ledger.EventRepaymentOnTime),
		Metadata:  map[string]string{"loan_id": "L-1"},
	})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(s.T(), http.StatusCreated, w.Code)
	var resp CreditScoreResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), 665, resp.Score)
}

func (s *ScoringHandlerSuite) TestRecordEvent_BadUserID() {
	r, _ := newTestRouter(s.T())

	body, err := json.Marshal(RecordEventRequest{UserID: "nope", EventType: "REPAYMENT_ON_TIME"})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *ScoringHandlerSuite) TestRecordEvent_MalformedBody() {
	r, _ := newTestRouter(s.T())

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *ScoringHandlerSuite) TestCreditHistory_PaginationDefaults() {
	r, mockService := newTestRouter(s.T())
	userID := uuid.New()
	page := &scoring.HistoryPage{
		Events: []*ledger.Event{{
			ID:          id.NewEventID(),
			UserID:      id.UserID(userID),
			Type:        ledger.EventRepaymentOnTime,
			Impact:      15,
			ScoreBefore: 650,
			ScoreAfter:  665,
			ProcessedBy: "SYSTEM",
			CreatedAt:   time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		}},
		Total:  1,
		Limit:  20,
		Offset: 0,
	}
	mockService.EXPECT().
		CreditHistory(gomock.Any(), id.UserID(userID), 20, 0).
		Return(page, nil)

	req := httptest.NewRequest(http.MethodGet, "/scores/credit/"+userID.String()+"/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(s.T(), http.StatusOK, w.Code)
	var resp HistoryResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(s.T(), resp.Events, 1)
	assert.Equal(s.T(), "REPAYMENT_ON_TIME", resp.Events[0].Type)
	assert.Equal(s.T(), 15, resp.Events[0].Impact)
}

func (s *ScoringHandlerSuite) TestCreditHistory_LimitCapped() {
	r, mockService := newTestRouter(s.T())
	userID := uuid.New()
	mockService.EXPECT().
		CreditHistory(gomock.Any(), id.UserID(userID), 100, 40).
		Return(&scoring.HistoryPage{Limit: 100, Offset: 40}, nil)

	req := httptest.NewRequest(http.MethodGet, "/scores/credit/"+userID.String()+"/history?limit=500&offset=40", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
}

func (s *ScoringHandlerSuite) TestCreditSummary() {
	r, mockService := newTestRouter(s.T())
	userID := uuid.New()
	mockService.EXPECT().
		CreditSummary(gomock.Any(), id.UserID(userID)).
		Return(&scoring.Summary{
			SubjectID:     userID,
			Track:         scoring.TrackCredit,
			Total:         665,
			Max:           scoring.MaxScore,
			Tier:          "MEDIUM",
			Grade:         "B",
			Change30Days:  15,
			Trend:         "UP",
			Eligible:      true,
			MaxLoanAmount: 100_000_000,
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/scores/credit/"+userID.String()+"/summary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(s.T(), http.StatusOK, w.Code)
	var resp SummaryResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), 15, resp.Change30Days)
	assert.Equal(s.T(), "UP", resp.Trend)
}

func (s *ScoringHandlerSuite) TestGetKYCScore() {
	r, mockService := newTestRouter(s.T())
	profileID := uuid.New()
	mockService.EXPECT().
		CurrentKYCScore(gomock.Any(), id.ProfileID(profileID), false).
		Return(kycResult(profileID, 911), nil)

	req := httptest.NewRequest(http.MethodGet, "/scores/kyc/"+profileID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(s.T(), http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), float64(911), resp["score"])
	assert.Equal(s.T(), "LOW", resp["tier"])
	// Breakdowns come only from fresh computes; cached rebuilds omit them.
	_, hasDoc := resp["document_breakdown"]
	assert.False(s.T(), hasDoc)
	// Flag list is always present, never null.
	assert.NotNil(s.T(), resp["flags"])
}

func (s *ScoringHandlerSuite) TestRecalculateKYC() {
	r, mockService := newTestRouter(s.T())
	profileID := uuid.New()
	result := kycResult(profileID, 911)
	result.DocumentBreakdown = &scoring.DocumentBreakdown{ImageQuality: 95}
	result.ProfileBreakdown = &scoring.ProfileBreakdown{Age: 100}
	mockService.EXPECT().
		RecalculateKYCScore(gomock.Any(), id.ProfileID(profileID)).
		Return(result, nil)

	req := httptest.NewRequest(http.MethodPost, "/scores/kyc/"+profileID.String()+"/recalculate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(s.T(), http.StatusOK, w.Code)
	var resp KYCScoreResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(s.T(), resp.DocumentBreakdown)
	assert.Equal(s.T(), 95, resp.DocumentBreakdown.ImageQuality)
}

func (s *ScoringHandlerSuite) TestListFlags() {
	r, mockService := newTestRouter(s.T())
	profileID := uuid.New()
	mockService.EXPECT().
		ProfileFlags(gomock.Any(), id.ProfileID(profileID)).
		Return([]*flags.Flag{{
			ID:         id.NewFlagID(),
			ProfileID:  id.ProfileID(profileID),
			Type:       flags.DocumentTampering,
			Confidence: 0.9,
			RaisedBy:   "SYSTEM",
			CreatedAt:  time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/scores/kyc/"+profileID.String()+"/flags", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(s.T(), http.StatusOK, w.Code)
	var resp []FlagResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(s.T(), resp, 1)
	assert.Equal(s.T(), string(flags.DocumentTampering), resp[0].Type)
	assert.Equal(s.T(), -300, resp[0].Penalty)
	assert.True(s.T(), resp[0].Critical)
}

func (s *ScoringHandlerSuite) TestRaiseFlag() {
	r, mockService := newTestRouter(s.T())
	profileID := uuid.New()
	mockService.EXPECT().
		RaiseFraudFlag(gomock.Any(), id.ProfileID(profileID), scoring.FlagProposal{
			Type:       flags.DocumentTampering,
			Details:    "manual review",
			Confidence: 0.8,
		}).
		Return(&flags.Flag{
			ID:         id.NewFlagID(),
			ProfileID:  id.ProfileID(profileID),
			Type:       flags.DocumentTampering,
			Details:    "manual review",
			Confidence: 0.8,
			RaisedBy:   "ADMIN:admin-1",
			CreatedAt:  time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
		}, nil)

	body, err := json.Marshal(RaiseFlagRequest{
		FraudType:  string(flags.DocumentTampering),
		Details:    "manual review",
		Confidence: 0.8,
	})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/scores/kyc/"+profileID.String()+"/flags", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(s.T(), http.StatusCreated, w.Code)
	var resp FlagResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "ADMIN:admin-1", resp.RaisedBy)
}

func (s *ScoringHandlerSuite) TestRaiseFlag_Validation() {
	r, _ := newTestRouter(s.T())
	profileID := uuid.New()

	cases := []RaiseFlagRequest{
		{FraudType: "", Confidence: 0.5},
		{FraudType: "DOCUMENT_TAMPERING", Confidence: 1.5},
	}
	for _, tc := range cases {
		body, err := json.Marshal(tc)
		require.NoError(s.T(), err)

		req := httptest.NewRequest(http.MethodPost, "/scores/kyc/"+profileID.String()+"/flags", bytes.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(s.T(), http.StatusBadRequest, w.Code)
	}
}

func (s *ScoringHandlerSuite) TestResolveFlag() {
	r, mockService := newTestRouter(s.T())
	flagID := id.NewFlagID()
	resolvedAt := time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)
	mockService.EXPECT().
		ResolveFraudFlag(gomock.Any(), flagID, "verified with issuer").
		Return(&flags.Flag{
			ID:             flagID,
			ProfileID:      id.ProfileID(uuid.New()),
			Type:           flags.DocumentTampering,
			Resolved:       true,
			ResolvedBy:     "ADMIN:admin-2",
			ResolvedAt:     &resolvedAt,
			ResolutionNote: "verified with issuer",
		}, nil)

	body, err := json.Marshal(ResolveFlagRequest{Note: "verified with issuer"})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/flags/"+flagID.String()+"/resolve", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(s.T(), http.StatusOK, w.Code)
	var resp FlagResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(s.T(), resp.Resolved)
	assert.Equal(s.T(), "ADMIN:admin-2", resp.ResolvedBy)
}

func (s *ScoringHandlerSuite) TestResolveFlag_AlreadyResolved() {
	r, mockService := newTestRouter(s.T())
	flagID := id.NewFlagID()
	mockService.EXPECT().
		ResolveFraudFlag(gomock.Any(), flagID, "second attempt").
		Return(nil, dErrors.New(dErrors.CodePrecondition, "flag already resolved"))

	body, err := json.Marshal(ResolveFlagRequest{Note: "second attempt"})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/flags/"+flagID.String()+"/resolve", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)
}

func (s *ScoringHandlerSuite) TestResolveFlag_NoteRequired() {
	r, _ := newTestRouter(s.T())
	flagID := id.NewFlagID()

	body, err := json.Marshal(ResolveFlagRequest{})
	require.NoError(s.T(), err)

	req := httptest.NewRequest(http.MethodPost, "/flags/"+flagID.String()+"/resolve", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

func (s *ScoringHandlerSuite) TestCheckDuplicates() {
	r, mockService := newTestRouter(s.T())
	profileID := uuid.New()
	mockService.EXPECT().
		CheckDuplicates(gomock.Any(), id.ProfileID(profileID)).
		Return(&scoring.DuplicateReport{
			ProfileID:       profileID,
			Duplicate:       false,
			MatchedProfiles: 0,
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/scores/kyc/"+profileID.String()+"/duplicates", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(s.T(), http.StatusOK, w.Code)
	var resp DuplicateReportResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(s.T(), resp.Duplicate)
	assert.NotNil(s.T(), resp.Matches)
}
