package export

import (
	"errors"
	"fmt"
)

// ErrIllegalState is returned when a sequence is driven out of order, e.g.
// Next without a preceding successful HasNext.
var ErrIllegalState = errors.New("illegal cursor state")

// ErrTooManyExports is returned when all export slots are busy and the wait
// timeout expires.
var ErrTooManyExports = errors.New("too many concurrent exports, please try again later")

// MappingError reports a raw row that could not be turned into an ExportRow.
// It aborts the enclosing export; malformed rows are never skipped.
type MappingError struct {
	Row    int    // 0-based position in the cursor
	Column string // offending column, empty if the whole row failed
	Err    error
}

func (e *MappingError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("map row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("map row %d column %q: %v", e.Row, e.Column, e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }

// ResourceReleaseError reports a cursor that failed to close. Data already
// delivered stays valid.
type ResourceReleaseError struct {
	Err error
}

func (e *ResourceReleaseError) Error() string {
	return fmt.Sprintf("release cursor: %v", e.Err)
}

func (e *ResourceReleaseError) Unwrap() error { return e.Err }

// ConfigurationError reports caller misconfiguration detected before any
// query is issued.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid export configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

var (
	errMissingColumn   = errors.New("column not present in result set")
	errIncompatibleVal = errors.New("incompatible column value")
)
