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

// CampaignRepositoryPG implements domain.CampaignRepository backed by PostgreSQL.
type CampaignRepositoryPG struct {
	db infra.SQLExecutor
}

// NewCampaignRepository creates a new CampaignRepositoryPG.
func NewCampaignRepository(db infra.SQLExecutor) *CampaignRepositoryPG {
	return &CampaignRepositoryPG{db: db}
}

func (r *CampaignRepositoryPG) List(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListCampaigns)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return collectCampaigns(rows)
}

func (r *CampaignRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRow(ctx, sqlinline.QSelectCampaignByID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("campaign", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign %d: %w", id, err)
	}
	return c, nil
}

func (r *CampaignRepositoryPG) ListByCategory(ctx context.Context, category string) ([]domain.Campaign, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListCampaignsByCategory, domain.CanonicalCategory(category))
	if err != nil {
		return nil, fmt.Errorf("list campaigns by category: %w", err)
	}
	return collectCampaigns(rows)
}

// Create inserts c with zero raised and backers and sets its ID.
func (r *CampaignRepositoryPG) Create(ctx context.Context, c *domain.Campaign) error {
	err := r.db.QueryRow(ctx, sqlinline.QInsertCampaign,
		c.Title,
		c.Description,
		c.Category,
		c.Goal,
		c.DaysLeft,
		c.ImageURL,
		c.UserID,
		c.Location,
		c.OwnerName,
		c.Deadline,
		c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", mapPgError(err))
	}
	c.Raised, c.Backers = 0, 0
	return nil
}

func (r *CampaignRepositoryPG) UpdateMetadata(ctx context.Context, id int64, patch domain.CampaignPatch) (*domain.Campaign, error) {
	var category *string
	if patch.Category != nil {
		canonical := domain.CanonicalCategory(*patch.Category)
		category = &canonical
	}
	c, err := scanCampaign(r.db.QueryRow(ctx, sqlinline.QUpdateCampaignMetadata,
		id,
		patch.Title,
		patch.Description,
		category,
		patch.Goal,
		patch.ImageURL,
		patch.Location,
		patch.OwnerName,
		patch.Deadline,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("campaign", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("update campaign %d: %w", id, mapPgError(err))
	}
	return c, nil
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Category,
		&c.Goal,
		&c.Raised,
		&c.Backers,
		&c.DaysLeft,
		&c.ImageURL,
		&c.UserID,
		&c.Location,
		&c.OwnerName,
		&c.Deadline,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCampaigns(rows pgx.Rows) ([]domain.Campaign, error) {
	defer rows.Close()
	items := make([]domain.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
