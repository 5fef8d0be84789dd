package db

import (
	"strings"

	"github.com/teranos/bomx/errors"
)

// ErrDatabaseClosed is returned when operations are attempted on a closed
// database, typically while a shutdown races in-flight cache traffic.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the database connection is
// closed. Handles both wrapped ErrDatabaseClosed and raw driver errors,
// which cannot be wrapped at the source.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "database is closed") ||
		strings.Contains(errMsg, "sql: database is closed")
}
