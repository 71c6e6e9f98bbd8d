package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// StaleWriteError is returned when an optimistic-lock check fails: either a
// caller-supplied expected version no longer matches the stored version, or a
// conditional UPDATE affected zero rows because another writer committed
// first. The conflicting write is not applied; callers reload and retry.
type StaleWriteError struct {
	Entity          string
	ExpectedVersion int
	CurrentVersion  int
}

func (e *StaleWriteError) Error() string {
	return fmt.Sprintf("%s was modified by another user: expected version %d, current version %d",
		e.Entity, e.ExpectedVersion, e.CurrentVersion)
}

// CheckVersion compares a caller-supplied expected version against the
// version currently loaded on the aggregate. A nil expected version skips
// the check (last-write-wins). The comparison happens before any field is
// mutated so a rejected update has no partial effects.
func CheckVersion(entity string, current AggregateRoot, expected *int) error {
	if expected == nil {
		return nil
	}
	if current.GetVersion() != *expected {
		return &StaleWriteError{
			Entity:          entity,
			ExpectedVersion: *expected,
			CurrentVersion:  current.GetVersion(),
		}
	}
	return nil
}
