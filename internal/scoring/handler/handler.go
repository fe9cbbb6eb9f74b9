// Package handler exposes the scoring engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"nexolend/internal/scoring"
	"nexolend/internal/scoring/flags"
	"nexolend/internal/scoring/ledger"
	id "nexolend/pkg/domain"
	dErrors "nexolend/pkg/domain-errors"
	"nexolend/pkg/platform/httputil"
	"nexolend/pkg/requestcontext"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

//go:generate mockgen -source=handler.go -destination=mocks/scoring-mocks.go -package=mocks Service

// Service defines the scoring operations the transport needs.
type Service interface {
	CurrentCreditScore(ctx context.Context, userID id.UserID, allowStale bool) (*scoring.CreditResult, error)
	RecalculateCreditScore(ctx context.Context, userID id.UserID) (*scoring.CreditResult, error)
	RecordEvent(ctx context.Context, userID id.UserID, eventType ledger.EventType, metadata map[string]string) (*scoring.CreditResult, error)
	AdjustScore(ctx context.Context, userID id.UserID, adjustment int, reason string) (*scoring.CreditResult, error)
	CreditHistory(ctx context.Context, userID id.UserID, limit, offset int) (*scoring.HistoryPage, error)
	CreditSummary(ctx context.Context, userID id.UserID) (*scoring.Summary, error)

	CurrentKYCScore(ctx context.Context, profileID id.ProfileID, allowStale bool) (*scoring.KYCResult, error)
	RecalculateKYCScore(ctx context.Context, profileID id.ProfileID) (*scoring.KYCResult, error)
	ProfileFlags(ctx context.Context, profileID id.ProfileID) ([]*flags.Flag, error)
	RaiseFraudFlag(ctx context.Context, profileID id.ProfileID, proposal scoring.FlagProposal) (*flags.Flag, error)
	ResolveFraudFlag(ctx context.Context, flagID id.FlagID, note string) (*flags.Flag, error)
	CheckDuplicates(ctx context.Context, profileID id.ProfileID) (*scoring.DuplicateReport, error)
}

// Handler wires scoring endpoints to the scoring service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a scoring handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts scoring endpoints on the router. The admin middleware
// guards score adjustment and flag resolution.
func (h *Handler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Route("/scores/credit/{userID}", func(r chi.Router) {
		r.Get("/", h.HandleGetCreditScore)
		r.Get("/summary", h.HandleGetCreditSummary)
		r.Get("/history", h.HandleGetCreditHistory)
		r.Post("/recalculate", h.HandleRecalculateCredit)
		r.Group(func(r chi.Router) {
			if admin != nil {
				r.Use(admin)
			}
			r.Post("/adjust", h.HandleAdjustScore)
		})
	})

	r.Route("/scores/kyc/{profileID}", func(r chi.Router) {
		r.Get("/", h.HandleGetKYCScore)
		r.Post("/recalculate", h.HandleRecalculateKYC)
		r.Get("/duplicates", h.HandleCheckDuplicates)
		r.Get("/flags", h.HandleListFlags)
		r.Post("/flags", h.HandleRaiseFlag)
	})

	r.Post("/events", h.HandleRecordEvent)
	r.Group(func(r chi.Router) {
		if admin != nil {
			r.Use(admin)
		}
		r.Post("/flags/{flagID}/resolve", h.HandleResolveFlag)
	})
}

// HandleGetCreditScore handles GET /scores/credit/{userID}. With
// ?cached=true a stale snapshot is served instead of recomputing.
func (h *Handler) HandleGetCreditScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.CurrentCreditScore(ctx, userID, boolQuery(r, "cached"))
	if err != nil {
		h.logError(ctx, "credit score lookup failed", "user_id", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCreditResult(result))
}

// HandleRecalculateCredit handles POST /scores/credit/{userID}/recalculate.
func (h *Handler) HandleRecalculateCredit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.RecalculateCreditScore(ctx, userID)
	if err != nil {
		h.logError(ctx, "credit recalculation failed", "user_id", userID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "credit score recalculated",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"total", result.Snapshot.Total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromCreditResult(result))
}

// HandleGetCreditSummary handles GET /scores/credit/{userID}/summary.
func (h *Handler) HandleGetCreditSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	summary, err := h.service.CreditSummary(ctx, userID)
	if err != nil {
		h.logError(ctx, "credit summary failed", "user_id", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSummary(summary))
}

// HandleGetCreditHistory handles GET /scores/credit/{userID}/history.
func (h *Handler) HandleGetCreditHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}
	limit, offset := paginationQuery(r)

	page, err := h.service.CreditHistory(ctx, userID, limit, offset)
	if err != nil {
		h.logError(ctx, "credit history failed", "user_id", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromHistoryPage(page))
}

// HandleAdjustScore handles POST /scores/credit/{userID}/adjust. Admin only.
func (h *Handler) HandleAdjustScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AdjustRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.AdjustScore(ctx, userID, req.Adjustment, req.Reason)
	if err != nil {
		h.logError(ctx, "score adjustment failed", "user_id", userID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "credit score adjusted",
		"request_id", requestID,
		"user_id", userID,
		"adjustment", req.Adjustment,
		"total", result.Snapshot.Total,
		"actor_id", requestcontext.ActorID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, FromCreditResult(result))
}

// HandleRecordEvent handles POST /events.
func (h *Handler) HandleRecordEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RecordEventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.RecordEvent(ctx, req.ParsedUserID(), ledger.EventType(req.EventType), req.Metadata)
	if err != nil {
		h.logError(ctx, "event processing failed", "user_id", req.UserID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "score event recorded",
		"request_id", requestID,
		"user_id", req.UserID,
		"event_type", req.EventType,
		"total", result.Snapshot.Total,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromCreditResult(result))
}

// HandleGetKYCScore handles GET /scores/kyc/{profileID}.
func (h *Handler) HandleGetKYCScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.CurrentKYCScore(ctx, profileID, boolQuery(r, "cached"))
	if err != nil {
		h.logError(ctx, "kyc score lookup failed", "profile_id", profileID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromKYCResult(result))
}

// HandleRecalculateKYC handles POST /scores/kyc/{profileID}/recalculate.
func (h *Handler) HandleRecalculateKYC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	profileID, ok := h.profileIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.RecalculateKYCScore(ctx, profileID)
	if err != nil {
		h.logError(ctx, "kyc recalculation failed", "profile_id", profileID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "kyc score recalculated",
		"request_id", requestcontext.RequestID(ctx),
		"profile_id", profileID,
		"total", result.Snapshot.Total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromKYCResult(result))
}

// HandleCheckDuplicates handles GET /scores/kyc/{profileID}/duplicates.
func (h *Handler) HandleCheckDuplicates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileIDParam(w, r)
	if !ok {
		return
	}

	report, err := h.service.CheckDuplicates(ctx, profileID)
	if err != nil {
		h.logError(ctx, "duplicate check failed", "profile_id", profileID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDuplicateReport(report))
}

// HandleListFlags handles GET /scores/kyc/{profileID}/flags.
func (h *Handler) HandleListFlags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileIDParam(w, r)
	if !ok {
		return
	}

	list, err := h.service.ProfileFlags(ctx, profileID)
	if err != nil {
		h.logError(ctx, "flag listing failed", "profile_id", profileID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFlags(list))
}

// HandleRaiseFlag handles POST /scores/kyc/{profileID}/flags.
func (h *Handler) HandleRaiseFlag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	profileID, ok := h.profileIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[RaiseFlagRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	flag, err := h.service.RaiseFraudFlag(ctx, profileID, scoring.FlagProposal{
		Type:       flags.FraudType(req.FraudType),
		Details:    req.Details,
		Confidence: req.Confidence,
	})
	if err != nil {
		h.logError(ctx, "flag raising failed", "profile_id", profileID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "fraud flag raised",
		"request_id", requestID,
		"profile_id", profileID,
		"fraud_type", req.FraudType,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromFlag(flag))
}

// HandleResolveFlag handles POST /flags/{flagID}/resolve. Admin only.
func (h *Handler) HandleResolveFlag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	flagID, err := id.ParseFlagID(chi.URLParam(r, "flagID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ResolveFlagRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	flag, err := h.service.ResolveFraudFlag(ctx, flagID, req.Note)
	if err != nil {
		h.logError(ctx, "flag resolution failed", "flag_id", flagID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "fraud flag resolved",
		"request_id", requestID,
		"flag_id", flagID,
		"profile_id", flag.ProfileID,
		"actor_id", requestcontext.ActorID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, FromFlag(flag))
}

func (h *Handler) userIDParam(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) profileIDParam(w http.ResponseWriter, r *http.Request) (id.ProfileID, bool) {
	profileID, err := id.ParseProfileID(chi.URLParam(r, "profileID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ProfileID{}, false
	}
	return profileID, true
}

func (h *Handler) logError(ctx context.Context, msg, key string, value any, err error) {
	if h.logger == nil {
		return
	}
	var de *dErrors.Error
	if httputil.AsDomainError(err, &de) && de.Code != dErrors.CodeInternal {
		// Expected domain outcomes are not server errors.
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			key, value,
			"error", err,
		)
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		key, value,
		"error", err,
	)
}

func boolQuery(r *http.Request, name string) bool {
	return r.URL.Query().Get(name) == "true"
}

func paginationQuery(r *http.Request) (limit, offset int) {
	limit = defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}
