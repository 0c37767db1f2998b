package persistence

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/labtrack/labtrack/internal/domain"
)

var (
	sqliteUniqueColumn = regexp.MustCompile(`UNIQUE constraint failed: (?:\w+\.)?(\w+)`)
	pqKeyColumn        = regexp.MustCompile(`Key \(([^)]+)\)=`)
)

// translateError maps driver errors onto the domain taxonomy. sql.ErrNoRows
// passes through so repositories can turn it into NotFoundError.
func translateError(op string, err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return &domain.DuplicateKeyError{Field: pqColumn(pqErr)}
		case "40001", "40P01":
			return &domain.StorageError{Op: op, Err: err, Retryable: true}
		}
		return &domain.StorageError{Op: op, Err: err}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			if m := sqliteUniqueColumn.FindStringSubmatch(liteErr.Error()); m != nil {
				return &domain.DuplicateKeyError{Field: m[1]}
			}
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return &domain.StorageError{Op: op, Err: err, Retryable: true}
		}
		return &domain.StorageError{Op: op, Err: err}
	}

	if m := sqliteUniqueColumn.FindStringSubmatch(err.Error()); m != nil {
		return &domain.DuplicateKeyError{Field: m[1]}
	}
	return &domain.StorageError{Op: op, Err: err}
}

// pqColumn prefers the column named in the error detail and falls back to
// the conventional <table>_<column>_key constraint name.
func pqColumn(e *pq.Error) string {
	if e.Column != "" {
		return e.Column
	}
	if m := pqKeyColumn.FindStringSubmatch(e.Detail); m != nil {
		return m[1]
	}
	name := strings.TrimSuffix(e.Constraint, "_key")
	if e.Table != "" {
		name = strings.TrimPrefix(name, e.Table+"_")
	}
	return name
}

// relabel replaces the generic operation name of a StorageError with the
// repository operation that failed.
func relabel(op string, err error) error {
	var se *domain.StorageError
	if errors.As(err, &se) {
		return &domain.StorageError{Op: op, Err: se.Err, Retryable: se.Retryable}
	}
	return err
}
