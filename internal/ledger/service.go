// Package ledger records donations and keeps campaign funding totals equal
// to the sum and count of their donation rows.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"rainbowrise/internal/domain"
	"rainbowrise/internal/validation"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 20 * time.Millisecond
)

// Receipt is the result of a recorded donation.
type Receipt struct {
	Donation domain.Donation
	Totals   domain.FundingTotals
}

// Report summarizes one reconciliation run.
type Report struct {
	Drifts   []domain.FundingDrift
	Repaired []domain.FundingTotals
}

// Service is the funding ledger updater.
type Service struct {
	store       domain.LedgerStore
	logger      zerolog.Logger
	maxAttempts int
	backoff     time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithRetry sets how many times a conflicting transaction is attempted and
// the base delay between attempts.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
		if backoff >= 0 {
			s.backoff = backoff
		}
	}
}

// NewService creates a ledger service over store.
func NewService(store domain.LedgerStore, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordDonation validates in, then in one transaction checks the donor,
// increments the campaign totals and inserts the donation row. Nothing is
// written when any step fails. Conflicts are retried; once the attempts are
// used up the returned error matches domain.ErrConflict.
func (s *Service) RecordDonation(ctx context.Context, in domain.NewDonation) (*Receipt, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		receipt, err := s.recordOnce(ctx, in)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= s.maxAttempts {
			return nil, err
		}
		s.logger.Warn().Err(err).
			Int64("campaign_id", in.CampaignID).
			Int("attempt", attempt).
			Msg("donation conflicted, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.backoff * time.Duration(attempt)):
		}
	}
}

func (s *Service) recordOnce(ctx context.Context, in domain.NewDonation) (*Receipt, error) {
	d := domain.Donation{
		Amount:     in.Amount,
		CampaignID: in.CampaignID,
		UserID:     in.UserID,
		Anonymous:  in.Anonymous,
	}
	var totals domain.FundingTotals
	err := s.store.WithinTx(ctx, func(tx domain.LedgerTx) error {
		ok, err := tx.DonorExists(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("user", nil)
		}
		totals, err = tx.IncrementFunding(ctx, in.CampaignID, in.Amount)
		if err != nil {
			return err
		}
		return tx.InsertDonation(ctx, &d)
	})
	if err != nil {
		return nil, err
	}
	// Stores may assign the donation id at commit.
	return &Receipt{Donation: d, Totals: totals}, nil
}

// Reconcile compares every campaign's stored totals with its donation rows.
// When repair is set, drifting campaigns are rewritten from the donation rows.
func (s *Service) Reconcile(ctx context.Context, repair bool) (*Report, error) {
	drifts, err := s.store.FundingDrift(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	report := &Report{Drifts: drifts}
	for _, d := range drifts {
		s.logger.Warn().
			Int64("campaign_id", d.CampaignID).
			Int64("stored_raised", d.Stored.Raised).
			Int64("stored_backers", d.Stored.Backers).
			Int64("actual_raised", d.Actual.Raised).
			Int64("actual_backers", d.Actual.Backers).
			Msg("funding drift detected")
		if !repair {
			continue
		}
		totals, err := s.store.RepairFunding(ctx, d.CampaignID)
		if err != nil {
			return report, fmt.Errorf("reconcile: %w", err)
		}
		s.logger.Info().
			Int64("campaign_id", totals.CampaignID).
			Int64("raised", totals.Raised).
			Int64("backers", totals.Backers).
			Msg("funding repaired")
		report.Repaired = append(report.Repaired, totals)
	}
	return report, nil
}
