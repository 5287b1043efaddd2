package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rainbowrise/internal/domain"
	"rainbowrise/internal/infra"
	"rainbowrise/internal/sqlinline"
)

// LedgerStorePG runs funding ledger writes inside one Postgres transaction.
// The campaign row lock taken by the increment serializes donations per
// campaign; donations to different campaigns do not contend.
type LedgerStorePG struct {
	db infra.TxExecutor
}

// NewLedgerStore creates a new LedgerStorePG.
func NewLedgerStore(db infra.TxExecutor) *LedgerStorePG {
	return &LedgerStorePG{db: db}
}

func (s *LedgerStorePG) WithinTx(ctx context.Context, fn func(domain.LedgerTx) error) error {
	err := s.db.WithinTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(q infra.SQLExecutor) error {
		return fn(ledgerTx{db: q})
	})
	return mapPgError(err)
}

// FundingDrift lists campaigns whose stored totals differ from their donation rows.
func (s *LedgerStorePG) FundingDrift(ctx context.Context) ([]domain.FundingDrift, error) {
	rows, err := s.db.Query(ctx, sqlinline.QFundingDrift)
	if err != nil {
		return nil, fmt.Errorf("funding drift: %w", err)
	}
	defer rows.Close()

	drifts := make([]domain.FundingDrift, 0)
	for rows.Next() {
		var d domain.FundingDrift
		if err := rows.Scan(&d.CampaignID, &d.Stored.Raised, &d.Stored.Backers, &d.Actual.Raised, &d.Actual.Backers); err != nil {
			return nil, fmt.Errorf("scan funding drift: %w", err)
		}
		d.Stored.CampaignID = d.CampaignID
		d.Actual.CampaignID = d.CampaignID
		drifts = append(drifts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return drifts, nil
}

// RepairFunding rewrites the campaign totals from its donation rows. The
// campaign row is locked before the donations are summed so a donation
// committing in between is counted.
func (s *LedgerStorePG) RepairFunding(ctx context.Context, campaignID int64) (domain.FundingTotals, error) {
	var totals domain.FundingTotals
	err := s.db.WithinTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(q infra.SQLExecutor) error {
		var locked int64
		if err := q.QueryRow(ctx, sqlinline.QLockCampaign, campaignID).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFound("campaign", nil)
			}
			return err
		}
		return q.QueryRow(ctx, sqlinline.QRepairCampaignFunding, campaignID).Scan(&totals.CampaignID, &totals.Raised, &totals.Backers)
	})
	if err != nil {
		return domain.FundingTotals{}, fmt.Errorf("repair funding %d: %w", campaignID, mapPgError(err))
	}
	return totals, nil
}

type ledgerTx struct {
	db infra.SQLExecutor
}

func (t ledgerTx) DonorExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	if err := t.db.QueryRow(ctx, sqlinline.QDonorExists, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check donor: %w", err)
	}
	return exists, nil
}

func (t ledgerTx) IncrementFunding(ctx context.Context, campaignID, amount int64) (domain.FundingTotals, error) {
	var totals domain.FundingTotals
	err := t.db.QueryRow(ctx, sqlinline.QIncrementCampaignFunding, campaignID, amount).Scan(&totals.CampaignID, &totals.Raised, &totals.Backers)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FundingTotals{}, domain.NotFound("campaign", nil)
	}
	if err != nil {
		return domain.FundingTotals{}, fmt.Errorf("increment funding: %w", mapPgError(err))
	}
	return totals, nil
}

func (t ledgerTx) InsertDonation(ctx context.Context, d *domain.Donation) error {
	err := t.db.QueryRow(ctx, sqlinline.QInsertDonation, d.Amount, d.CampaignID, d.UserID, d.Anonymous).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert donation: %w", mapPgError(err))
	}
	return nil
}
