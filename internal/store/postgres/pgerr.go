package postgres

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"restoledger/internal/apperr"
)

const (
	pgForeignKeyViolation = "23503"
	pgIntegrityClass      = "23"
)

var restaurantIDRe = regexp.MustCompile(`res_\w+`)

// ClassifyError re-reads low-level database failures as API errors at the
// boundary. A foreign key miss against restaurants becomes
// RESTAURANT_NOT_FOUND with the offending id pulled from the error detail;
// any other constraint violation is an integrity conflict; the rest is a
// database fault. Returns nil for errors that are not postgres errors.
func ClassifyError(err error) *apperr.Error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	if pgErr.Code == pgForeignKeyViolation &&
		strings.Contains(strings.ToLower(pgErr.Message+" "+pgErr.Detail+" "+pgErr.ConstraintName), "restaurant") {
		id := restaurantIDRe.FindString(pgErr.Detail)
		if id == "" {
			id = restaurantIDRe.FindString(pgErr.Message)
		}
		if id == "" {
			id = "unknown"
		}
		return apperr.RestaurantNotFound(id)
	}
	if strings.HasPrefix(pgErr.Code, pgIntegrityClass) {
		return apperr.Integrity("Database constraint violation")
	}
	return apperr.Database("Database operation failed")
}
