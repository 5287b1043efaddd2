package repo

import (
	"context"
	"fmt"

	"rainbowrise/internal/domain"
	"rainbowrise/internal/infra"
	"rainbowrise/internal/sqlinline"
)

type TestimonialRepositoryPG struct {
	db infra.SQLExecutor
}

func NewTestimonialRepository(db infra.SQLExecutor) *TestimonialRepositoryPG {
	return &TestimonialRepositoryPG{db: db}
}

func (r *TestimonialRepositoryPG) List(ctx context.Context) ([]domain.Testimonial, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListTestimonials)
	if err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Testimonial, 0)
	for rows.Next() {
		var t domain.Testimonial
		if err := rows.Scan(&t.ID, &t.Name, &t.Role, &t.Content, &t.ImageURL); err != nil {
			return nil, fmt.Errorf("scan testimonial: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *TestimonialRepositoryPG) Create(ctx context.Context, t *domain.Testimonial) error {
	if err := r.db.QueryRow(ctx, sqlinline.QInsertTestimonial, t.Name, t.Role, t.Content, t.ImageURL).Scan(&t.ID); err != nil {
		return fmt.Errorf("insert testimonial: %w", err)
	}
	return nil
}
