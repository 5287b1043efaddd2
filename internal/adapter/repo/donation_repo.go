package repo

import (
	"context"
	"fmt"

	"rainbowrise/internal/domain"
	"rainbowrise/internal/infra"
	"rainbowrise/internal/sqlinline"
)

// DonationRepositoryPG reads donation rows. Inserts happen in LedgerStorePG.
type DonationRepositoryPG struct {
	db infra.SQLExecutor
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(db infra.SQLExecutor) *DonationRepositoryPG {
	return &DonationRepositoryPG{db: db}
}

// ListByCampaign returns the campaign's donations, newest first.
func (r *DonationRepositoryPG) ListByCampaign(ctx context.Context, campaignID int64) ([]domain.Donation, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListDonationsByCampaign, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Donation, 0)
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(&d.ID, &d.Amount, &d.CampaignID, &d.UserID, &d.Anonymous, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
