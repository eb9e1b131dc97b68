/*
errors.go - Centralized error types for the payroll domain

PURPOSE:
  All domain error values in one place. Outer packages (ingest, store,
  api) wrap these with their own context and the API maps them onto
  HTTP status codes through the predicate helpers.

ERROR CATEGORIES:
  1. Record errors - malformed or incomplete employee records
  2. Run errors - missing runs or runs without results
  3. Input errors - unreadable or empty source workbooks
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNilRecord is returned when evaluation is invoked without a record.
	ErrNilRecord = errors.New("nil employee record")

	// ErrRecordInvalid is returned when a record fails structural or
	// business validation. Usually wrapped in a RecordValidationError.
	ErrRecordInvalid = errors.New("invalid employee record")

	// ErrRunNotFound is returned when a referenced processing run does
	// not exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrNoResults is returned when a run exists but produced no results.
	ErrNoResults = errors.New("run has no results")

	// ErrEmptyWorkbook is returned when a source workbook has no data rows.
	ErrEmptyWorkbook = errors.New("workbook has no data rows")

	// ErrUnknownColumn is returned when a required workbook column is missing.
	ErrUnknownColumn = errors.New("required column missing")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RecordValidationError lists everything wrong with one source row.
type RecordValidationError struct {
	Row    int
	Legajo int
	Issues []string
}

func (e *RecordValidationError) Error() string {
	return fmt.Sprintf("row %d (legajo %d): %d validation issue(s): %v",
		e.Row, e.Legajo, len(e.Issues), e.Issues)
}

func (e *RecordValidationError) Unwrap() error {
	return ErrRecordInvalid
}

// MissingColumnError names the absent workbook column.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column missing: %q", e.Column)
}

func (e *MissingColumnError) Unwrap() error {
	return ErrUnknownColumn
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrRecordInvalid) ||
		errors.Is(err, ErrEmptyWorkbook) ||
		errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrNilRecord)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound) ||
		errors.Is(err, ErrNoResults)
}
