package kvstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ErrBusy is returned when the database stayed locked past the busy timeout.
var ErrBusy = errors.New("database busy")

// ErrSchemaError is returned when the kv table is missing, which means the
// migrations did not run.
type ErrSchemaError struct {
	DBError error
}

// Error returns the error message.
func (e ErrSchemaError) Error() string {
	return fmt.Sprintf("schema error: %v", e.DBError)
}

// Unwrap returns the wrapped error.
func (e ErrSchemaError) Unwrap() error {
	return e.DBError
}

// MapSQLError interprets a sqlite error as one of the package's error types.
// Errors that are not sqlite errors are returned unchanged.
func MapSQLError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return fmt.Errorf("%w: %v", ErrBusy, sqliteErr)

	case sqlite3.ErrError:
		if strings.Contains(sqliteErr.Error(), "no such table") {
			return &ErrSchemaError{DBError: sqliteErr}
		}
	}

	return fmt.Errorf("sqlite error: %w", sqliteErr)
}
