package scoring

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"nexolend/internal/scoring/ports"
	id "nexolend/pkg/domain"
	dErrors "nexolend/pkg/domain-errors"
)

// creditEvidence is everything the credit scorers need, fetched up front so
// the scoring math stays pure and synchronous.
type creditEvidence struct {
	Repayments []ports.RepaymentRecord
	Loans      []ports.LoanRecord
	Profile    *ports.ProfileRecord
	FetchedAt  time.Time
}

// kycEvidence is everything the KYC scorers need.
type kycEvidence struct {
	Profile   *ports.ProfileRecord
	Documents []ports.DocumentRecord
	IP        ports.IPReputation
	Device    ports.DeviceReputation
	FetchedAt time.Time
}

// gatherCreditEvidence fetches collaborator data in parallel with shared
// cancellation. The configured timeout bounds the whole fetch step.
func (s *Service) gatherCreditEvidence(ctx context.Context, userID id.UserID) (*creditEvidence, error) {
	ctx, cancel := context.WithTimeout(ctx, s.collectTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	evidence := &creditEvidence{FetchedAt: time.Now()}

	g.Go(func() error {
		start := time.Now()
		repayments, err := s.repayments.ListByBorrower(ctx, userID)
		s.metrics.ObserveEvidenceLatency("repayments", time.Since(start))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch repayment history")
		}
		evidence.Repayments = repayments
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		loans, err := s.loans.ListByBorrower(ctx, userID)
		s.metrics.ObserveEvidenceLatency("loans", time.Since(start))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch loan records")
		}
		evidence.Loans = loans
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		profile, err := s.profiles.GetByUserID(ctx, userID)
		s.metrics.ObserveEvidenceLatency("profile", time.Since(start))
		if err != nil {
			// A missing profile is missing evidence, not a failure; the
			// identity and income components fall back to their floors.
			if s.logger != nil {
				s.logger.DebugContext(ctx, "kyc profile lookup failed",
					"user_id", userID,
					"error", err,
				)
			}
			return nil
		}
		evidence.Profile = profile
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return evidence, nil
}

// gatherKYCEvidence fetches the profile first (reputation lookups need its
// submission metadata), then the rest in parallel.
func (s *Service) gatherKYCEvidence(ctx context.Context, profileID id.ProfileID) (*kycEvidence, error) {
	ctx, cancel := context.WithTimeout(ctx, s.collectTimeout)
	defer cancel()

	start := time.Now()
	profile, err := s.profiles.GetByProfileID(ctx, profileID)
	s.metrics.ObserveEvidenceLatency("profile", time.Since(start))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "KYC profile not found")
	}

	g, ctx := errgroup.WithContext(ctx)
	evidence := &kycEvidence{Profile: profile, FetchedAt: time.Now()}

	g.Go(func() error {
		start := time.Now()
		docs, err := s.documents.ListByProfile(ctx, profileID)
		s.metrics.ObserveEvidenceLatency("documents", time.Since(start))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to fetch documents")
		}
		evidence.Documents = docs
		return nil
	})

	g.Go(func() error {
		if profile.SubmissionIP == "" {
			return nil
		}
		start := time.Now()
		rep, err := s.reputation.CheckIP(ctx, profile.SubmissionIP)
		s.metrics.ObserveEvidenceLatency("ip_reputation", time.Since(start))
		if err != nil {
			// Reputation is advisory; the sub-score falls back to its
			// default and the gap shows up as a data-quality note.
			if s.logger != nil {
				s.logger.DebugContext(ctx, "ip reputation lookup failed",
					"profile_id", profileID,
					"error", err,
				)
			}
			return nil
		}
		evidence.IP = rep
		return nil
	})

	g.Go(func() error {
		if profile.DeviceFingerprint == "" {
			return nil
		}
		start := time.Now()
		rep, err := s.reputation.CheckDevice(ctx, profile.DeviceFingerprint)
		s.metrics.ObserveEvidenceLatency("device_reputation", time.Since(start))
		if err != nil {
			if s.logger != nil {
				s.logger.DebugContext(ctx, "device reputation lookup failed",
					"profile_id", profileID,
					"error", err,
				)
			}
			return nil
		}
		evidence.Device = rep
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return evidence, nil
}
