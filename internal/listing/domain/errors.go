package domain

import (
	"errors"
	"fmt"
)

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidListingData = errors.New("invalid listing data")
	ErrUpstream           = errors.New("upstream service failure")
)

// ValidationError names the rule a submission violated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidListingData
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
