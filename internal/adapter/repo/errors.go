package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"rainbowrise/internal/domain"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgNumericOutOfRange    = "22003"
)

// mapPgError translates Postgres error codes into domain errors. Other
// errors pass through unchanged.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected:
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Message)
	case pgUniqueViolation:
		return &domain.DuplicateError{Field: duplicateField(pgErr.ConstraintName)}
	case pgForeignKeyViolation:
		return &domain.NotFoundError{Resource: referencedResource(pgErr.ConstraintName)}
	case pgNumericOutOfRange:
		return domain.NewValidationError("amount", "amount would overflow the campaign total")
	case pgCheckViolation:
		field := checkedField(pgErr.ConstraintName)
		return domain.NewValidationError(field, field+" is out of range")
	}
	return err
}

func duplicateField(constraint string) string {
	switch {
	case strings.Contains(constraint, "username"):
		return "username"
	case strings.Contains(constraint, "email"):
		return "email"
	}
	return ""
}

// checkedField reads the column out of a default check constraint name
// such as campaigns_raised_check.
func checkedField(constraint string) string {
	switch {
	case strings.Contains(constraint, "amount"), strings.Contains(constraint, "raised"):
		return "amount"
	case strings.Contains(constraint, "goal"):
		return "goal"
	case strings.Contains(constraint, "backers"):
		return "backers"
	}
	return "value"
}

func referencedResource(constraint string) string {
	switch {
	case strings.Contains(constraint, "campaign_id"):
		return "campaign"
	case strings.Contains(constraint, "user_id"):
		return "user"
	}
	return "record"
}
