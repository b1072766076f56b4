package domain

import (
	"fmt"
	"slices"
)

// ApplyDateOverride returns a copy of rec with its date range replaced.
// Name-derived fields are untouched; status follows on the next read.
func ApplyDateOverride(rec Record, start, end Date) (Record, error) {
	if err := ValidateRange(start, end); err != nil {
		return Record{}, err
	}
	out := rec
	out.Tags = slices.Clone(rec.Tags)
	out.StartDate = start
	out.EndDate = end
	return out, nil
}

// ValidateRange checks a user supplied range before it is stored.
func ValidateRange(start, end Date) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrOverrideRejected)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start %s is after end %s", ErrOverrideRejected, start, end)
	}
	return nil
}
