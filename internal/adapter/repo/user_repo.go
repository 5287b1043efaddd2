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

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	db infra.SQLExecutor
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(db infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{db: db}
}

func (r *UserRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, sqlinline.QSelectUserByID, id)
}

func (r *UserRepositoryPG) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, sqlinline.QSelectUserByUsername, username)
}

// Create inserts u and sets its ID. A taken username or email yields a
// *domain.DuplicateError.
func (r *UserRepositoryPG) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx, sqlinline.QInsertUser, u.Username, u.Email, u.Name, u.PasswordHash).Scan(&u.ID)
	if err != nil {
		mapped := mapPgError(err)
		if errors.Is(mapped, domain.ErrDuplicate) {
			return mapped
		}
		return fmt.Errorf("insert user: %w", mapped)
	}
	return nil
}

func (r *UserRepositoryPG) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("user", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
