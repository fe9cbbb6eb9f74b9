package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"nexolend/internal/scoring/flags"
	"nexolend/internal/scoring/ledger"
	"nexolend/internal/scoring/metrics"
	"nexolend/internal/scoring/ports"
	id "nexolend/pkg/domain"
	dErrors "nexolend/pkg/domain-errors"
	"nexolend/pkg/platform/sentinel"
	"nexolend/pkg/requestcontext"
)

const (
	defaultCollectTimeout = 5 * time.Second
	defaultStaleAfter     = 30 * 24 * time.Hour

	trendWindow = 30 * 24 * time.Hour

	processedBySystem = "SYSTEM"

	actionRejectImmediately = "REJECT_IMMEDIATELY"
)

// Stores groups the engine's own persistence.
type Stores struct {
	Snapshots SnapshotStore
	Events    ledger.Store
	Flags     flags.Store
}

// Sources groups the external collaborators evidence is fetched from.
type Sources struct {
	Repayments ports.RepaymentSource
	Loans      ports.LoanSource
	Profiles   ports.ProfileSource
	Documents  ports.DocumentSource
	Reputation ports.ReputationSource
	Duplicates ports.DuplicateIndex
}

// Service orchestrates score computation: it fetches evidence, runs the pure
// scorers, persists immutable snapshots, appends ledger events, and manages
// the fraud flag registry.
type Service struct {
	snapshots SnapshotStore
	events    ledger.Store
	flagStore flags.Store

	repayments ports.RepaymentSource
	loans      ports.LoanSource
	profiles   ports.ProfileSource
	documents  ports.DocumentSource
	reputation ports.ReputationSource
	duplicates ports.DuplicateIndex

	notifier ports.Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer

	creditWeights CreditWeights
	kycWeights    KYCWeights

	collectTimeout time.Duration
	staleAfter     time.Duration

	// flight collapses concurrent recomputes of the same subject into one
	// computation whose result all callers share.
	flight singleflight.Group
	// locks serializes mutating operations per subject.
	locks *keyedMutex
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics sets the Prometheus metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithNotifier sets the score change publisher.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithTracer sets the OpenTelemetry tracer for compute spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithCreditWeights overrides the credit component weights.
func WithCreditWeights(w CreditWeights) Option {
	return func(s *Service) { s.creditWeights = w }
}

// WithKYCWeights overrides the document/profile split.
func WithKYCWeights(w KYCWeights) Option {
	return func(s *Service) { s.kycWeights = w }
}

// WithCollectTimeout bounds the evidence gathering step.
func WithCollectTimeout(d time.Duration) Option {
	return func(s *Service) { s.collectTimeout = d }
}

// WithStaleAfter sets the age after which a cached snapshot is recomputed
// even without an explicit invalidation. Zero disables age-based staleness.
func WithStaleAfter(d time.Duration) Option {
	return func(s *Service) { s.staleAfter = d }
}

// New builds the scoring service. Weight and tier configuration is validated
// here so a misconfigured engine fails at startup, never at scoring time.
func New(stores Stores, sources Sources, opts ...Option) (*Service, error) {
	if stores.Snapshots == nil {
		return nil, errors.New("snapshot store is required")
	}
	if stores.Events == nil {
		return nil, errors.New("event store is required")
	}
	if stores.Flags == nil {
		return nil, errors.New("flag store is required")
	}
	if sources.Repayments == nil || sources.Loans == nil || sources.Profiles == nil {
		return nil, errors.New("repayment, loan and profile sources are required")
	}
	if sources.Documents == nil || sources.Duplicates == nil || sources.Reputation == nil {
		return nil, errors.New("document, reputation and duplicate index sources are required")
	}

	s := &Service{
		snapshots:      stores.Snapshots,
		events:         stores.Events,
		flagStore:      stores.Flags,
		repayments:     sources.Repayments,
		loans:          sources.Loans,
		profiles:       sources.Profiles,
		documents:      sources.Documents,
		reputation:     sources.Reputation,
		duplicates:     sources.Duplicates,
		creditWeights:  DefaultCreditWeights,
		kycWeights:     DefaultKYCWeights,
		collectTimeout: defaultCollectTimeout,
		staleAfter:     defaultStaleAfter,
		locks:          newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.creditWeights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid credit weights: %w", err)
	}
	if err := s.kycWeights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kyc weights: %w", err)
	}
	if err := ValidateTierConfig(); err != nil {
		return nil, fmt.Errorf("invalid tier configuration: %w", err)
	}
	return s, nil
}

// ---------- Credit track ----------

// CurrentCreditScore returns the borrower's credit verdict, serving the
// cached snapshot when it is current. A stale snapshot triggers a recompute
// unless the caller explicitly accepts cached data. A never-scored borrower
// gets an initial score computed on first read.
func (s *Service) CurrentCreditScore(ctx context.Context, userID id.UserID, allowStale bool) (*CreditResult, error) {
	snap, err := s.snapshots.Latest(ctx, uuid.UUID(userID), TrackCredit)
	switch {
	case err == nil:
		if allowStale {
			return creditResultFrom(snap), nil
		}
		fresh, ferr := s.snapshotFresh(ctx, snap)
		if ferr != nil {
			return nil, ferr
		}
		if fresh {
			return creditResultFrom(snap), nil
		}
	case errors.Is(err, sentinel.ErrNotFound):
		// First read computes the initial score.
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credit snapshot")
	}
	return s.refreshCredit(ctx, userID)
}

// RecalculateCreditScore forces a full recompute from current evidence.
func (s *Service) RecalculateCreditScore(ctx context.Context, userID id.UserID) (*CreditResult, error) {
	return s.refreshCredit(ctx, userID)
}

// refreshCredit collapses concurrent recomputes of the same borrower; the
// later caller waits and shares the first computation's result. The callback
// takes the same per-borrower lock as RecordEvent/AdjustScore, so a
// read-triggered recompute never overlaps an event-triggered one.
func (s *Service) refreshCredit(ctx context.Context, userID id.UserID) (*CreditResult, error) {
	v, err, _ := s.flight.Do("credit:"+userID.String(), func() (any, error) {
		release := s.locks.lock("credit:" + userID.String())
		defer release()
		return s.computeCredit(ctx, userID, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return v.(*CreditResult), nil
}

// RecordEvent applies a catalogued score event to a borrower: it adjusts the
// behavior component, recomputes the score, and appends the typed ledger
// entry with the before/after totals. System-generated event types cannot be
// submitted externally.
func (s *Service) RecordEvent(ctx context.Context, userID id.UserID, eventType ledger.EventType, metadata map[string]string) (*CreditResult, error) {
	if !eventType.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown event type: "+string(eventType))
	}
	if reservedEventType(eventType) {
		return nil, dErrors.New(dErrors.CodeValidation, "event type "+string(eventType)+" is system-generated")
	}

	release := s.locks.lock("credit:" + userID.String())
	defer release()

	behavior := InitialBehaviorScore
	prev, err := s.snapshots.Latest(ctx, uuid.UUID(userID), TrackCredit)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credit snapshot")
	}
	if prev != nil {
		behavior = componentRaw(prev.Components, ComponentBehavior, InitialBehaviorScore)
	}
	adjusted := ApplyBehaviorDelta(behavior, eventType)

	// Mark stale before recomputing so a failed recompute leaves the
	// snapshot invalidated rather than silently current.
	if err := s.snapshots.MarkStale(ctx, uuid.UUID(userID), TrackCredit); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to invalidate credit snapshot")
	}

	trigger := &creditTrigger{
		eventType:   eventType,
		impact:      eventType.Impact(),
		metadata:    metadata,
		processedBy: processedBySystem,
	}
	return s.computeCredit(ctx, userID, &adjusted, trigger)
}

// AdjustScore applies an admin override on top of the latest snapshot. The
// adjustment is clamped to bounds, the tier is rederived, and a
// MANUAL_ADJUSTMENT entry records the before/after totals. The next full
// recompute derives the score from components again.
func (s *Service) AdjustScore(ctx context.Context, userID id.UserID, adjustment int, reason string) (*CreditResult, error) {
	if adjustment == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "adjustment must be non-zero")
	}
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "adjustment reason is required")
	}

	release := s.locks.lock("credit:" + userID.String())
	defer release()

	prev, err := s.snapshots.Latest(ctx, uuid.UUID(userID), TrackCredit)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodePrecondition, "cannot adjust a score that has never been computed")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credit snapshot")
	}

	now := requestcontext.Now(ctx)
	total := clampScore(prev.Total + adjustment)
	band := CreditTierFor(total)

	kycVerified, criticalFlags := s.borrowerKYCState(ctx, userID)
	elig := EvaluateEligibility(total, kycVerified, criticalFlags)

	snap := &Snapshot{
		SubjectID:         uuid.UUID(userID),
		Track:             TrackCredit,
		Total:             total,
		Max:               MaxScore,
		Components:        append([]Component(nil), prev.Components...),
		Tier:              band.Tier,
		Grade:             Grade(total),
		RecommendedAction: band.Action,
		CriticalFlags:     criticalFlags,
		Eligibility:       &elig,
		Statistics:        prev.Statistics,
		Explanations: append(append([]string(nil), prev.Explanations...),
			fmt.Sprintf("Manual adjustment: %+d (%s)", adjustment, reason)),
		ComputedAt: now,
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save credit snapshot")
	}

	processedBy := actorTag(ctx)
	if err := s.appendEvent(ctx, userID, ledger.EventManualAdjustment, adjustment, prev.Total, total,
		map[string]string{"reason": reason}, processedBy); err != nil {
		return nil, err
	}

	s.metrics.IncrementOutcome(string(TrackCredit), band.Tier)
	s.notifyChange(ctx, userID.String(), TrackCredit, prev.Total, total, band.Tier, now)
	s.logAdjustment(ctx, userID, prev.Total, total, processedBy)

	return creditResultFrom(snap), nil
}

// CreditHistory returns the borrower's ledger, newest first.
func (s *Service) CreditHistory(ctx context.Context, userID id.UserID, limit, offset int) (*HistoryPage, error) {
	events, err := s.events.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list score events")
	}
	total, err := s.events.CountByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count score events")
	}
	return &HistoryPage{Events: events, Total: total, Limit: limit, Offset: offset}, nil
}

// CreditSummary returns the lightweight trend view built from the latest
// snapshot and the ledger's 30-day impact hints. It never recomputes.
func (s *Service) CreditSummary(ctx context.Context, userID id.UserID) (*Summary, error) {
	snap, err := s.snapshots.Latest(ctx, uuid.UUID(userID), TrackCredit)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no credit score computed for user")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credit snapshot")
	}

	since := requestcontext.Now(ctx).Add(-trendWindow)
	change, err := s.events.SumImpactSince(ctx, userID, since)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sum recent score events")
	}

	summary := &Summary{
		SubjectID:    snap.SubjectID,
		Track:        TrackCredit,
		Total:        snap.Total,
		Max:          snap.Max,
		Tier:         snap.Tier,
		Grade:        snap.Grade,
		Change30Days: change,
		Trend:        TrendFor(change),
	}
	if snap.Eligibility != nil {
		summary.Eligible = snap.Eligibility.Eligible
		summary.MaxLoanAmount = snap.Eligibility.MaxLoanAmount
	}
	return summary, nil
}

// creditTrigger describes the ledger entry a recompute should append in
// place of the default INITIAL_SCORE / SCORE_RECALCULATED entry.
type creditTrigger struct {
	eventType   ledger.EventType
	impact      int
	metadata    map[string]string
	processedBy string
}

// computeCredit runs one full credit computation: evidence, components,
// aggregation, tier, eligibility, snapshot, ledger entry, notification.
func (s *Service) computeCredit(ctx context.Context, userID id.UserID, behaviorOverride *int, trigger *creditTrigger) (*CreditResult, error) {
	start := time.Now()
	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "scoring.credit.compute")
		defer span.End()
	}

	evidence, err := s.gatherCreditEvidence(ctx, userID)
	if err != nil {
		return nil, err
	}

	prev, err := s.snapshots.Latest(ctx, uuid.UUID(userID), TrackCredit)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credit snapshot")
	}

	behavior := InitialBehaviorScore
	if prev != nil {
		behavior = componentRaw(prev.Components, ComponentBehavior, InitialBehaviorScore)
	}
	if behaviorOverride != nil {
		behavior = *behaviorOverride
	}

	now := requestcontext.Now(ctx)
	var memberSince time.Time
	if evidence.Profile != nil {
		memberSince = evidence.Profile.MemberSince
	}

	components := CreditComponents{
		PaymentHistory: PaymentHistoryScore(evidence.Repayments),
		Utilization:    UtilizationScore(evidence.Loans),
		HistoryLength:  HistoryLengthScore(memberSince, now),
		Identity:       IdentityScore(evidence.Profile),
		Income:         IncomeStabilityScore(evidence.Profile),
		Behavior:       behavior,
	}
	total := AggregateCredit(components, s.creditWeights)
	band := CreditTierFor(total)

	kycVerified := evidence.Profile != nil && evidence.Profile.Status == ports.KYCApproved
	criticalFlags := 0
	if evidence.Profile != nil {
		criticalFlags = s.unresolvedCriticalFlags(ctx, evidence.Profile.ProfileID)
	}
	elig := EvaluateEligibility(total, kycVerified, criticalFlags)
	stats := CreditStatisticsFrom(evidence.Loans, evidence.Repayments)

	snap := &Snapshot{
		SubjectID:         uuid.UUID(userID),
		Track:             TrackCredit,
		Total:             total,
		Max:               MaxScore,
		Components:        components.Ordered(s.creditWeights),
		Tier:              band.Tier,
		Grade:             Grade(total),
		RecommendedAction: band.Action,
		CriticalFlags:     criticalFlags,
		Eligibility:       &elig,
		Statistics:        &stats,
		Explanations:      creditExplanations(components, s.creditWeights, total, band, elig),
		ComputedAt:        now,
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save credit snapshot")
	}

	if trigger == nil {
		trigger = &creditTrigger{eventType: ledger.EventScoreRecalculated, processedBy: processedBySystem}
		if prev == nil {
			trigger.eventType = ledger.EventInitialScore
		}
	}
	before := 0
	if prev != nil {
		before = prev.Total
	}
	if err := s.appendEvent(ctx, userID, trigger.eventType, trigger.impact, before, total,
		trigger.metadata, trigger.processedBy); err != nil {
		return nil, err
	}

	s.metrics.IncrementOutcome(string(TrackCredit), band.Tier)
	s.metrics.ObserveComputeLatency(string(TrackCredit), time.Since(start))
	if prev == nil || prev.Total != total {
		s.notifyChange(ctx, userID.String(), TrackCredit, before, total, band.Tier, now)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "credit score computed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"total", total,
			"tier", band.Tier,
			"eligible", elig.Eligible,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return creditResultFrom(snap), nil
}

// ---------- KYC track ----------

// CurrentKYCScore returns the profile's KYC risk verdict, serving the cached
// snapshot when current. Cached reads rebuild the result from the snapshot
// and the flag registry; per-document breakdowns are only present on a fresh
// computation.
func (s *Service) CurrentKYCScore(ctx context.Context, profileID id.ProfileID, allowStale bool) (*KYCResult, error) {
	snap, err := s.snapshots.Latest(ctx, uuid.UUID(profileID), TrackKYC)
	switch {
	case err == nil:
		if allowStale {
			return s.kycResultFrom(ctx, profileID, snap)
		}
		fresh, ferr := s.snapshotFresh(ctx, snap)
		if ferr != nil {
			return nil, ferr
		}
		if fresh {
			return s.kycResultFrom(ctx, profileID, snap)
		}
	case errors.Is(err, sentinel.ErrNotFound):
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load kyc snapshot")
	}
	return s.refreshKYC(ctx, profileID)
}

// RecalculateKYCScore forces a full recompute from current evidence.
func (s *Service) RecalculateKYCScore(ctx context.Context, profileID id.ProfileID) (*KYCResult, error) {
	return s.refreshKYC(ctx, profileID)
}

func (s *Service) refreshKYC(ctx context.Context, profileID id.ProfileID) (*KYCResult, error) {
	v, err, _ := s.flight.Do("kyc:"+profileID.String(), func() (any, error) {
		return s.computeKYC(ctx, profileID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*KYCResult), nil
}

// ProfileFlags returns all fraud flags for a profile, newest first.
func (s *Service) ProfileFlags(ctx context.Context, profileID id.ProfileID) ([]*flags.Flag, error) {
	list, err := s.flagStore.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fraud flags")
	}
	return list, nil
}

// RaiseFraudFlag records a fraud signal against a profile and recomputes its
// KYC score. Raising a type that is already open for the profile is
// idempotent and returns the existing flag.
func (s *Service) RaiseFraudFlag(ctx context.Context, profileID id.ProfileID, proposal FlagProposal) (*flags.Flag, error) {
	if !proposal.Type.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown fraud type: "+string(proposal.Type))
	}
	if proposal.Confidence < 0 || proposal.Confidence > 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "confidence must be between 0 and 1")
	}

	release := s.locks.lock("kyc:" + profileID.String())
	defer release()

	existing, err := s.flagStore.ListUnresolvedByProfile(ctx, profileID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fraud flags")
	}
	for _, f := range existing {
		if f.Type == proposal.Type {
			return f, nil
		}
	}

	flag := &flags.Flag{
		ID:         id.NewFlagID(),
		ProfileID:  profileID,
		Type:       proposal.Type,
		Details:    proposal.Details,
		Confidence: proposal.Confidence,
		RaisedBy:   actorTag(ctx),
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.flagStore.Create(ctx, flag); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create fraud flag")
	}
	s.metrics.IncrementFlagsRaised(string(proposal.Type))

	s.invalidateAndRecomputeKYC(ctx, profileID)
	return flag, nil
}

// ResolveFraudFlag marks a flag resolved and recomputes the profile's KYC
// score so the penalty stops applying prospectively. Historical snapshots
// are untouched.
func (s *Service) ResolveFraudFlag(ctx context.Context, flagID id.FlagID, note string) (*flags.Flag, error) {
	flag, err := s.flagStore.Resolve(ctx, flagID, actorTag(ctx), note)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "fraud flag not found")
	}
	if errors.Is(err, sentinel.ErrAlreadyResolved) {
		return nil, dErrors.New(dErrors.CodePrecondition, "fraud flag is already resolved")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve fraud flag")
	}

	s.invalidateAndRecomputeKYC(ctx, flag.ProfileID)
	return flag, nil
}

// CheckDuplicates runs the duplicate lookup for a profile without scoring.
func (s *Service) CheckDuplicates(ctx context.Context, profileID id.ProfileID) (*DuplicateReport, error) {
	profile, err := s.profiles.GetByProfileID(ctx, profileID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "KYC profile not found")
	}
	docs, err := s.documents.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch documents")
	}
	matches, err := s.findDuplicates(ctx, profile, docs)
	if err != nil {
		return nil, err
	}
	return &DuplicateReport{
		ProfileID:       uuid.UUID(profileID),
		Duplicate:       len(matches) > 0,
		MatchedProfiles: distinctProfiles(matches),
		Matches:         matches,
	}, nil
}

// computeKYC runs one full KYC computation. The duplicate check runs first:
// a match short-circuits scoring entirely and commits an immediate-rejection
// verdict.
func (s *Service) computeKYC(ctx context.Context, profileID id.ProfileID) (*KYCResult, error) {
	start := time.Now()
	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "scoring.kyc.compute",
			trace.WithAttributes(attribute.String("profile_id", profileID.String())))
		defer span.End()
	}

	evidence, err := s.gatherKYCEvidence(ctx, profileID)
	if err != nil {
		return nil, err
	}
	profile := evidence.Profile

	prev, err := s.snapshots.Latest(ctx, uuid.UUID(profileID), TrackKYC)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load kyc snapshot")
	}

	matches, err := s.findDuplicates(ctx, profile, evidence.Documents)
	if err != nil {
		return nil, err
	}
	s.indexDocuments(ctx, evidence.Documents)

	if len(matches) > 0 {
		return s.commitDuplicateVerdict(ctx, profile, matches, prev, start)
	}

	now := requestcontext.Now(ctx)
	docResults := make([]DocumentScoreResult, 0, len(evidence.Documents))
	for _, doc := range evidence.Documents {
		docResults = append(docResults, ScoreDocument(doc))
	}
	docScore := AggregateDocumentScore(docResults)
	profResult := ScoreProfile(profile, evidence.IP, evidence.Device, now)

	var proposals []FlagProposal
	for _, r := range docResults {
		proposals = append(proposals, r.Proposals...)
	}
	proposals = append(proposals, profResult.Proposals...)

	allFlags, err := s.persistProposals(ctx, profileID, proposals)
	if err != nil {
		return nil, err
	}

	impact := SummarizeFlags(allFlags)
	total, override := AggregateKYC(docScore, profResult.Total, s.kycWeights, impact)
	band := KYCTierFor(total)
	if override {
		band = LowestKYCTier()
	}

	snap := &Snapshot{
		SubjectID: uuid.UUID(profileID),
		Track:     TrackKYC,
		Total:     total,
		Max:       MaxScore,
		Components: []Component{
			{Name: ComponentDocument, Raw: docScore, Weight: int(s.kycWeights.Document * 100)},
			{Name: ComponentProfile, Raw: profResult.Total, Weight: int(s.kycWeights.Profile * 100)},
		},
		Tier:              band.Tier,
		Grade:             band.Grade,
		RecommendedAction: band.Action,
		CriticalOverride:  override,
		FraudPenalty:      impact.Penalty,
		UnresolvedFlags:   impact.Unresolved,
		CriticalFlags:     impact.Critical,
		Explanations:      kycExplanations(docScore, profResult.Total, s.kycWeights, docResults, profResult, allFlags, total, band, override),
		ComputedAt:        now,
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save kyc snapshot")
	}

	if err := s.recordKYCRecalculation(ctx, profile.UserID, prev, total); err != nil {
		return nil, err
	}

	s.metrics.IncrementOutcome(string(TrackKYC), band.Tier)
	s.metrics.ObserveComputeLatency(string(TrackKYC), time.Since(start))
	before := 0
	if prev != nil {
		before = prev.Total
	}
	if prev == nil || prev.Total != total {
		s.notifyChange(ctx, profileID.String(), TrackKYC, before, total, band.Tier, now)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "kyc score computed",
			"request_id", requestcontext.RequestID(ctx),
			"profile_id", profileID,
			"total", total,
			"tier", band.Tier,
			"unresolved_flags", impact.Unresolved,
			"critical_flags", impact.Critical,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	result := &KYCResult{
		ProfileID:        uuid.UUID(profileID),
		Snapshot:         snap,
		DocumentScore:    docScore,
		ProfileScore:     profResult.Total,
		ProfileBreakdown: &profResult.Breakdown,
		Flags:            allFlags,
	}
	if len(docResults) > 0 {
		result.DocumentBreakdown = &docResults[0].Breakdown
	}
	return result, nil
}

// commitDuplicateVerdict persists the immediate-rejection outcome for a
// profile whose documents or ID number matched another profile.
func (s *Service) commitDuplicateVerdict(ctx context.Context, profile *ports.ProfileRecord, matches []ports.DuplicateMatch, prev *Snapshot, start time.Time) (*KYCResult, error) {
	profileID := profile.ProfileID
	now := requestcontext.Now(ctx)

	proposals := make([]FlagProposal, 0, len(matches))
	for _, m := range matches {
		fraudType := flags.DocumentDuplicate
		if m.MatchType == "SAME_ID_NUMBER" {
			fraudType = flags.IDCardDuplicate
		}
		proposals = append(proposals, FlagProposal{
			Type:       fraudType,
			Details:    fmt.Sprintf("%s match with profile %s", m.MatchType, m.MatchedProfileID),
			Confidence: 0.99,
		})
	}
	allFlags, err := s.persistProposals(ctx, profileID, proposals)
	if err != nil {
		return nil, err
	}
	impact := SummarizeFlags(allFlags)

	band := LowestKYCTier()
	firstType := matches[0].MatchType
	snap := &Snapshot{
		SubjectID: uuid.UUID(profileID),
		Track:     TrackKYC,
		Total:     MinScore,
		Max:       MaxScore,
		Components: []Component{
			{Name: ComponentDocument, Raw: 0, Weight: int(s.kycWeights.Document * 100)},
			{Name: ComponentProfile, Raw: 0, Weight: int(s.kycWeights.Profile * 100)},
		},
		Tier:              band.Tier,
		Grade:             band.Grade,
		RecommendedAction: actionRejectImmediately,
		CriticalOverride:  true,
		FraudPenalty:      impact.Penalty,
		UnresolvedFlags:   impact.Unresolved,
		CriticalFlags:     impact.Critical,
		Explanations: []string{
			"DUPLICATE DETECTED: " + firstType,
			fmt.Sprintf("Matched with %d existing profiles", distinctProfiles(matches)),
			"IMMEDIATE REJECTION RECOMMENDED",
		},
		ComputedAt: now,
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save kyc snapshot")
	}
	if err := s.recordKYCRecalculation(ctx, profile.UserID, prev, MinScore); err != nil {
		return nil, err
	}

	s.metrics.IncrementOutcome(string(TrackKYC), band.Tier)
	s.metrics.ObserveComputeLatency(string(TrackKYC), time.Since(start))
	before := 0
	if prev != nil {
		before = prev.Total
	}
	if prev == nil || prev.Total != MinScore {
		s.notifyChange(ctx, profileID.String(), TrackKYC, before, MinScore, band.Tier, now)
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "duplicate profile detected",
			"request_id", requestcontext.RequestID(ctx),
			"profile_id", profileID,
			"match_type", firstType,
			"matched_profiles", distinctProfiles(matches),
		)
	}

	return &KYCResult{
		ProfileID: uuid.UUID(profileID),
		Snapshot:  snap,
		Flags:     allFlags,
	}, nil
}

// ---------- internals ----------

// reservedEventType reports whether a type may only be generated by the
// engine itself.
func reservedEventType(t ledger.EventType) bool {
	switch t {
	case ledger.EventInitialScore, ledger.EventScoreRecalculated, ledger.EventManualAdjustment:
		return true
	}
	return false
}

func (s *Service) snapshotFresh(ctx context.Context, snap *Snapshot) (bool, error) {
	stale, err := s.snapshots.IsStale(ctx, snap.SubjectID, snap.Track)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check snapshot staleness")
	}
	if stale {
		return false, nil
	}
	if s.staleAfter > 0 && requestcontext.Now(ctx).Sub(snap.ComputedAt) >= s.staleAfter {
		return false, nil
	}
	return true, nil
}

func (s *Service) appendEvent(ctx context.Context, userID id.UserID, t ledger.EventType, impact, before, after int, metadata map[string]string, processedBy string) error {
	event := &ledger.Event{
		ID:          id.NewEventID(),
		UserID:      userID,
		Type:        t,
		Description: t.Description(),
		Impact:      impact,
		ScoreBefore: before,
		ScoreAfter:  after,
		ProcessedBy: processedBy,
		Metadata:    metadata,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := s.events.Append(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append score event")
	}
	return nil
}

// recordKYCRecalculation appends the KYC recompute to the owning user's
// ledger. KYC snapshots are keyed by profile; the ledger is per user.
func (s *Service) recordKYCRecalculation(ctx context.Context, userID id.UserID, prev *Snapshot, total int) error {
	if userID.IsNil() {
		return nil
	}
	before := 0
	if prev != nil {
		before = prev.Total
	}
	return s.appendEvent(ctx, userID, ledger.EventScoreRecalculated, 0, before, total,
		map[string]string{"track": string(TrackKYC)}, processedBySystem)
}

// persistProposals creates flags for proposals whose type is not already on
// file for the profile, then returns the full flag list.
func (s *Service) persistProposals(ctx context.Context, profileID id.ProfileID, proposals []FlagProposal) ([]*flags.Flag, error) {
	existing, err := s.flagStore.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fraud flags")
	}
	onFile := make(map[flags.FraudType]bool, len(existing))
	for _, f := range existing {
		onFile[f.Type] = true
	}

	now := requestcontext.Now(ctx)
	for _, p := range proposals {
		if onFile[p.Type] {
			continue
		}
		flag := &flags.Flag{
			ID:         id.NewFlagID(),
			ProfileID:  profileID,
			Type:       p.Type,
			Details:    p.Details,
			Confidence: p.Confidence,
			RaisedBy:   processedBySystem,
			CreatedAt:  now,
		}
		if err := s.flagStore.Create(ctx, flag); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create fraud flag")
		}
		onFile[p.Type] = true
		existing = append([]*flags.Flag{flag}, existing...)
		s.metrics.IncrementFlagsRaised(string(p.Type))
	}
	return existing, nil
}

func (s *Service) findDuplicates(ctx context.Context, profile *ports.ProfileRecord, docs []ports.DocumentRecord) ([]ports.DuplicateMatch, error) {
	var matches []ports.DuplicateMatch

	lookup := func(found []ports.DuplicateMatch, err error) error {
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "duplicate index unavailable")
		}
		matches = append(matches, found...)
		return nil
	}

	if profile.IDCardNumber != "" {
		if err := lookup(s.duplicates.FindByIDNumber(ctx, profile.IDCardNumber, profile.ProfileID)); err != nil {
			return nil, err
		}
	}
	for _, doc := range docs {
		if doc.Hash != "" {
			if err := lookup(s.duplicates.FindByHash(ctx, doc.Hash, profile.ProfileID)); err != nil {
				return nil, err
			}
		}
		if doc.ExtractedID != "" && doc.ExtractedID != profile.IDCardNumber {
			if err := lookup(s.duplicates.FindByIDNumber(ctx, doc.ExtractedID, profile.ProfileID)); err != nil {
				return nil, err
			}
		}
		if doc.PerceptualHash != "" {
			if err := lookup(s.duplicates.FindSimilar(ctx, doc.PerceptualHash, profile.ProfileID)); err != nil {
				return nil, err
			}
		}
	}
	return matches, nil
}

// indexDocuments registers documents in the duplicate index. Index failures
// are logged, not fatal; the documents are re-indexed on the next recompute.
func (s *Service) indexDocuments(ctx context.Context, docs []ports.DocumentRecord) {
	for _, doc := range docs {
		if err := s.duplicates.Index(ctx, doc); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to index document",
				"document_id", doc.ID,
				"error", err,
			)
		}
	}
}

// invalidateAndRecomputeKYC marks the profile's snapshot stale and attempts
// an immediate recompute. A failed recompute is logged; the stale bit
// guarantees the next read recomputes.
func (s *Service) invalidateAndRecomputeKYC(ctx context.Context, profileID id.ProfileID) {
	if err := s.snapshots.MarkStale(ctx, uuid.UUID(profileID), TrackKYC); err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to invalidate kyc snapshot",
				"profile_id", profileID,
				"error", err,
			)
		}
		return
	}
	if _, err := s.refreshKYC(ctx, profileID); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "kyc recompute after flag change failed",
			"profile_id", profileID,
			"error", err,
		)
	}
}

// borrowerKYCState resolves the borrower's KYC verification and unresolved
// critical flag count for eligibility. Missing profile data degrades to
// not-verified rather than failing the operation.
func (s *Service) borrowerKYCState(ctx context.Context, userID id.UserID) (verified bool, criticalFlags int) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil || profile == nil {
		return false, 0
	}
	return profile.Status == ports.KYCApproved, s.unresolvedCriticalFlags(ctx, profile.ProfileID)
}

func (s *Service) unresolvedCriticalFlags(ctx context.Context, profileID id.ProfileID) int {
	unresolved, err := s.flagStore.ListUnresolvedByProfile(ctx, profileID)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to list unresolved flags",
				"profile_id", profileID,
				"error", err,
			)
		}
		return 0
	}
	critical := 0
	for _, f := range unresolved {
		if f.Critical() {
			critical++
		}
	}
	return critical
}

func (s *Service) notifyChange(ctx context.Context, subjectID string, track Track, oldScore, newScore int, tier string, at time.Time) {
	if s.notifier == nil {
		return
	}
	s.notifier.ScoreChanged(ctx, ports.ScoreNotification{
		SubjectID: subjectID,
		Track:     string(track),
		OldScore:  oldScore,
		NewScore:  newScore,
		Tier:      tier,
		ChangedAt: at,
	})
}

// actorTag attributes an action to the authenticated caller, prefixed with
// the caller's role claim when present. Unauthenticated contexts (internal
// triggers) are attributed to SYSTEM.
func actorTag(ctx context.Context) string {
	actor := requestcontext.ActorID(ctx)
	if actor == "" {
		return processedBySystem
	}
	if role := requestcontext.ActorRole(ctx); role != "" {
		return strings.ToUpper(role) + ":" + actor
	}
	return actor
}

func (s *Service) logAdjustment(ctx context.Context, userID id.UserID, before, after int, processedBy string) {
	if s.logger == nil {
		return
	}
	s.logger.InfoContext(ctx, "credit score manually adjusted",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"score_before", before,
		"score_after", after,
		"processed_by", processedBy,
	)
}

func componentRaw(components []Component, name string, fallback int) int {
	for _, c := range components {
		if c.Name == name {
			return c.Raw
		}
	}
	return fallback
}

func creditResultFrom(snap *Snapshot) *CreditResult {
	result := &CreditResult{UserID: snap.SubjectID, Snapshot: snap}
	if snap.Eligibility != nil {
		result.Eligibility = *snap.Eligibility
	}
	if snap.Statistics != nil {
		result.Statistics = *snap.Statistics
	}
	return result
}

func (s *Service) kycResultFrom(ctx context.Context, profileID id.ProfileID, snap *Snapshot) (*KYCResult, error) {
	list, err := s.flagStore.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fraud flags")
	}
	return &KYCResult{
		ProfileID:     uuid.UUID(profileID),
		Snapshot:      snap,
		DocumentScore: componentRaw(snap.Components, ComponentDocument, 0),
		ProfileScore:  componentRaw(snap.Components, ComponentProfile, 0),
		Flags:         list,
	}, nil
}

func distinctProfiles(matches []ports.DuplicateMatch) int {
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		seen[m.MatchedProfileID.String()] = true
	}
	return len(seen)
}

// creditExplanations builds the ordered breakdown. The lines are a pure
// function of the computed state so recomputing over unchanged inputs yields
// byte-identical output.
func creditExplanations(c CreditComponents, w CreditWeights, total int, band Band, elig Eligibility) []string {
	lines := []string{
		fmt.Sprintf("Payment History: %d/100 (weight %d/1000)", c.PaymentHistory, w.PaymentHistory),
		fmt.Sprintf("Credit Utilization: %d/100 (weight %d/1000)", c.Utilization, w.Utilization),
		fmt.Sprintf("Credit History Length: %d/100 (weight %d/1000)", c.HistoryLength, w.HistoryLength),
		fmt.Sprintf("Identity Verification: %d/100 (weight %d/1000)", c.Identity, w.Identity),
		fmt.Sprintf("Income Stability: %d/100 (weight %d/1000)", c.Income, w.Income),
		fmt.Sprintf("Behavior: %d/100 (weight %d/1000)", c.Behavior, w.Behavior),
		fmt.Sprintf("Total: %d/%d - %s", total, MaxScore, band.Description),
	}
	if elig.Eligible {
		lines = append(lines, fmt.Sprintf("Eligibility: %s (max %d VND)", elig.Reason, elig.MaxLoanAmount))
	} else {
		lines = append(lines, "Not eligible: "+elig.Reason)
	}
	return lines
}

// kycExplanations builds the ordered KYC breakdown, likewise deterministic
// for a fixed input state.
func kycExplanations(docScore, profScore int, w KYCWeights, docResults []DocumentScoreResult, profResult ProfileScoreResult, allFlags []*flags.Flag, total int, band Band, override bool) []string {
	lines := []string{
		fmt.Sprintf("Document Score: %d/%d (weight %.0f%%)", docScore, MaxScore, w.Document*100),
		fmt.Sprintf("Profile Score: %d/%d (weight %.0f%%)", profScore, MaxScore, w.Profile*100),
	}
	for _, r := range docResults {
		lines = append(lines, r.Explanations...)
	}
	lines = append(lines, profResult.Explanations...)

	for i := len(allFlags) - 1; i >= 0; i-- {
		f := allFlags[i]
		if f.Resolved {
			continue
		}
		lines = append(lines, fmt.Sprintf("Fraud flag: %s (%d)", f.Type, f.Penalty()))
	}

	for _, r := range docResults {
		for _, note := range r.DataQuality {
			lines = append(lines, "Data quality: "+note)
		}
	}
	for _, note := range profResult.DataQuality {
		lines = append(lines, "Data quality: "+note)
	}

	if override {
		lines = append(lines, "Multiple critical fraud flags: lowest tier enforced")
	}
	lines = append(lines, fmt.Sprintf("Total: %d/%d - %s", total, MaxScore, band.Description))
	return lines
}
