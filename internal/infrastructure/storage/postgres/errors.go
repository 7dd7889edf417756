package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"backoffice/internal/core/apperror"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNumericOutOfRange   = "22003"
)

// MapConstraintError converts unique and foreign-key violations and bigint
// overflow into AppErrors. Other errors are returned unchanged.
func MapConstraintError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewDuplicate(entity, pgErr.ConstraintName, "").WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewValidation(entity+" references a missing record").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgNumericOutOfRange:
		return apperror.NewValidation("value out of range").
			WithDetail("entity", entity).
			WithCause(err)
	}
	return err
}
