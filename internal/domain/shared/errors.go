// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidID     = errors.New("invalid ID")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrNegativeValue = errors.New("value cannot be negative")

	// Economy errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownItem       = errors.New("unknown item")

	// Progression errors
	ErrNotEligible = errors.New("not eligible")

	// State errors
	ErrInvalidState = errors.New("invalid state")
	ErrExpired      = errors.New("expired")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "account", "economy", "achievement"
	Op      string // Operation that failed, e.g., "Purchase", "Prestige"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Account domain errors
var (
	ErrAccountNotFound   = NewDomainError("account", "Find", ErrNotFound, "account not found")
	ErrInvalidTelegramID = NewDomainError("account", "Validate", ErrInvalidID, "invalid Telegram ID")
	ErrInvalidXP         = NewDomainError("account", "Validate", ErrNegativeValue, "experience cannot be negative")
	ErrSelfReputation    = NewDomainError("account", "GiveReputation", ErrInvalidInput, "cannot give reputation to yourself")
)

// Economy domain errors
var (
	ErrItemNotInCatalog  = NewDomainError("economy", "Purchase", ErrUnknownItem, "item is not in the catalog")
	ErrNotEnoughCoins    = NewDomainError("economy", "Purchase", ErrInsufficientFunds, "not enough HubCoins")
	ErrInvalidTitle      = NewDomainError("economy", "Purchase", ErrValidation, "invalid custom title")
	ErrTitleForbidden    = NewDomainError("economy", "Purchase", ErrValidation, "custom title contains a forbidden word")
	ErrMissingItemOption = NewDomainError("economy", "Purchase", ErrValidation, "required item option is missing")
)

// Progression domain errors
var (
	ErrPrestigeNotEligible = NewDomainError("progression", "Prestige", ErrNotEligible, "level 100 required to prestige")
	ErrDailyAlreadyClaimed = NewDomainError("progression", "ClaimDaily", ErrAlreadyExists, "daily bonus already claimed today")
)

// Storage errors
var (
	ErrStorageUnavailable = NewDomainError("storage", "Access", ErrServiceUnavailable, "durable store is unreachable")
	ErrMutationConflict   = NewDomainError("storage", "Mutate", ErrConcurrentModification, "mutation retries exhausted")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrUnknownItem)
}

// IsInsufficientFunds checks if the error is an insufficient funds rejection.
func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsUnavailable checks if the error should surface to the caller as a
// temporary outage rather than a user mistake.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
