package model

import "fmt"

// SchemaError reports a raw table that cannot be normalized.
type SchemaError struct {
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: %s: %v", e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ValidationError reports an input that violates a computation's contract.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InsufficientHistoryError reports fewer bars than a computation needs.
type InsufficientHistoryError struct {
	Need int
	Have int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: need %d bars, have %d", e.Need, e.Have)
}

// ModelUnavailableError reports a classifier that is missing or failed to load.
type ModelUnavailableError struct {
	Symbol string
	Err    error
}

func (e *ModelUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("model unavailable for %s", e.Symbol)
	}
	return fmt.Sprintf("model unavailable for %s: %v", e.Symbol, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }
