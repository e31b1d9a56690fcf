package store

import "fmt"

// ValidationError reports malformed or missing required input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

// NotFoundError reports a referenced identifier that does not exist.
// Ref carries non-numeric references such as URNs.
type NotFoundError struct {
	Entity string
	ID     uint
	Ref    string
}

func (e *NotFoundError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s %q not found", e.Entity, e.Ref)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports a duplicate identifier supplied on create.
type ConflictError struct {
	Entity string
	ID     uint
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %d already exists", e.Entity, e.ID)
}
