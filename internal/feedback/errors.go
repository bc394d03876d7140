package feedback

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyFile indicates the input has no header row.
var ErrEmptyFile = errors.New("input file is empty")

// SchemaError indicates the header does not match the 17-column schema.
type SchemaError struct {
	Missing    []string
	Extra      []string
	Duplicated []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected columns: "+strings.Join(e.Extra, ", "))
	}
	if len(e.Duplicated) > 0 {
		parts = append(parts, "duplicated columns: "+strings.Join(e.Duplicated, ", "))
	}
	return "schema mismatch: " + strings.Join(parts, "; ")
}

// FieldError reports a value that is missing, unparsable or out of range.
// Row is 1-based and counts data rows (the header is row 0).
type FieldError struct {
	Row    int
	Column Column
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("row %d, column %s: %v", e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("row %d, column %s: value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ErrMissingValue is wrapped by FieldError for null cells under the fail policy.
var ErrMissingValue = errors.New("missing value")

// DuplicateIDError indicates two distinct rows share an identifier.
type DuplicateIDError struct {
	ID           int
	FirstRow     int
	DuplicateRow int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate ID %d: rows %d and %d differ", e.ID, e.FirstRow, e.DuplicateRow)
}
