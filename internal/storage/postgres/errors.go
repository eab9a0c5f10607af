package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
)

// Postgres error classes the service layer relies on as a second line of
// defense. See https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
	codeForeignKeyViolation = "23503"
)

// mapError converts driver errors into the shared taxonomy. Constraint
// violations keep the violated constraint's name; pgx.ErrNoRows becomes a
// NotFoundError for the given entity and id.
func mapError(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation, codeCheckViolation, codeNotNullViolation, codeForeignKeyViolation:
			return apperr.Constraint(pgErr.ConstraintName, err)
		}
	}
	return err
}
