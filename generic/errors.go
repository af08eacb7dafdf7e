/*
errors.go - Centralized error types

PURPOSE:
  All error types in one place for consistency and discoverability.
  The classification engine itself never fails for a valid request; these
  errors belong to request construction, configuration stores and imports.

ERROR CATEGORIES:
  1. Input validation - unparseable dates, reversed ranges, unreadable imports
  2. Configuration - unknown employees/holidays, malformed events/scopes
  3. Store - persistence failures (wrapped by store implementations)

USAGE:
  period, err := generic.ParsePeriod(q.Get("start"), q.Get("end"))
  if generic.IsClientError(err) {
      // 400
  }

SEE ALSO:
  - period.go: NewPeriod returns RangeError
  - store/sqlite/sqlite.go: wraps ErrEmployeeNotFound
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date string matches no accepted layout.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrHolidayNotFound is returned when a referenced holiday doesn't exist.
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrCityNotFound is returned when a referenced city doesn't exist.
	ErrCityNotFound = errors.New("city not found")

	// ErrCityExists is returned when creating a city whose name is taken.
	ErrCityExists = errors.New("city already exists")

	// ErrPostInOtherCity is returned when a post is assigned to two cities.
	ErrPostInOtherCity = errors.New("post already belongs to another city")

	// ErrInvalidEvent is returned when a manual event kind is neither REST nor HOLIDAY.
	ErrInvalidEvent = errors.New("invalid manual event")

	// ErrInvalidScope is returned when a holiday scope is neither NATIONAL nor LOCAL.
	ErrInvalidScope = errors.New("invalid holiday scope")

	// ErrRangeTooLong is returned when a requested period exceeds the configured limit.
	ErrRangeTooLong = errors.New("period too long")

	// ErrInvalidImport is returned when a roster or legacy store file cannot be read at all.
	ErrInvalidImport = errors.New("invalid import file")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidDateError reports the offending input.
type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q (use YYYY-MM-DD or DD/MM/YYYY)", e.Value)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// RangeError reports a reversed period.
type RangeError struct {
	Start Date
	End   Date
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid period: end %s before start %s", e.End, e.Start)
}

func (e *RangeError) Unwrap() error { return ErrInvalidPeriod }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidEvent) ||
		errors.Is(err, ErrInvalidScope) ||
		errors.Is(err, ErrRangeTooLong) ||
		errors.Is(err, ErrInvalidImport)
}

// IsConflict returns true if the error reports a clash with stored data.
func IsConflict(err error) bool {
	return errors.Is(err, ErrCityExists) ||
		errors.Is(err, ErrPostInOtherCity)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrHolidayNotFound) ||
		errors.Is(err, ErrCityNotFound)
}
