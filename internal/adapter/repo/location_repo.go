package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rainbowrise/internal/domain"
	"rainbowrise/internal/infra"
	"rainbowrise/internal/sqlinline"
)

type LocationRepositoryPG struct {
	db infra.SQLExecutor
}

func NewLocationRepository(db infra.SQLExecutor) *LocationRepositoryPG {
	return &LocationRepositoryPG{db: db}
}

func (r *LocationRepositoryPG) List(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListLocations)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return collectLocations(rows)
}

func (r *LocationRepositoryPG) ListByCampaign(ctx context.Context, campaignID int64) ([]domain.Location, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListLocationsByCampaign, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list campaign locations: %w", err)
	}
	return collectLocations(rows)
}

// Create inserts l. A campaignId that does not exist yields a campaign NotFoundError.
func (r *LocationRepositoryPG) Create(ctx context.Context, l *domain.Location) error {
	err := r.db.QueryRow(ctx, sqlinline.QInsertLocation, l.Name, l.Latitude, l.Longitude, l.Type, l.CampaignID).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("insert location: %w", mapPgError(err))
	}
	return nil
}

func collectLocations(rows pgx.Rows) ([]domain.Location, error) {
	defer rows.Close()
	items := make([]domain.Location, 0)
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Latitude, &l.Longitude, &l.Type, &l.CampaignID); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
