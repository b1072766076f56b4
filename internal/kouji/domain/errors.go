package domain

import "errors"

var (
	// ErrOverrideRejected marks a date edit that violates start <= end.
	ErrOverrideRejected = errors.New("date override rejected")
	ErrProjectNotFound  = errors.New("project not found")
	ErrDatesNotFound    = errors.New("stored dates not found")
)
