// Package sqlerr classifies errors raised by the store drivers and turns them
// into client-facing errors.
package sqlerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"userhub/internal/errs"
)

// SQLSTATE of a unique_violation in postgres.
const pgUniqueViolation = "23505"

// ErrUniqueViolation is returned by stores without a native driver error
// (the in-memory repository) when a unique column would be duplicated.
var ErrUniqueViolation = errors.New("duplicate key value violates unique constraint")

// IsUniqueViolation reports whether err was caused by a unique constraint.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrUniqueViolation) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Message returns the store's own message for err, stripped of the wrapping
// added by the repositories.
func Message(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Error()
	}

	root := err
	for {
		next := errors.Unwrap(root)
		if next == nil {
			break
		}
		root = next
	}
	// fmt.Errorf("%w: detail", sentinel) unwraps to the bare sentinel,
	// keep the detail in that case.
	if root == ErrUniqueViolation {
		if i := strings.Index(err.Error(), root.Error()); i >= 0 {
			return err.Error()[i:]
		}
	}
	return root.Error()
}

// HandleError converts a store error into an *errs.HTTPError. Errors that are
// already client-facing pass through unchanged; every other failure becomes a
// 400 carrying the store's message. entity names the code prefix, e.g. "user"
// gives USER_ALREADY_EXISTS.
func HandleError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if _, ok := errs.As(err); ok {
		return err
	}

	if IsUniqueViolation(err) {
		code := fmt.Sprintf("%s_ALREADY_EXISTS", strings.ToUpper(entity))
		return errs.NewBadRequestError(Message(err), code)
	}
	return errs.NewBadRequestError(Message(err), "")
}
