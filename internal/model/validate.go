package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateRecordInput checks the mutable record fields against their presence
// and length constraints. It returns a *ValidationError naming every offending
// field, or nil if the input is valid.
func ValidateRecordInput(in RecordInput) error {
	var ve ValidationError

	requireText(&ve, "name", in.Name, MaxNameLength)
	requireText(&ve, "rights", in.Rights, MaxRightsLength)
	requireText(&ve, "status", in.Status, MaxStatusLength)

	// Remarks: optional.
	if n := utf8.RuneCountInString(in.Remarks); n > MaxRemarksLength {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "remarks",
			Message: fmt.Sprintf("must be %d characters or fewer, got %d", MaxRemarksLength, n),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func requireText(ve *ValidationError, field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: "is required"})
		return
	}
	if n := utf8.RuneCountInString(value); n > max {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be %d characters or fewer, got %d", max, n),
		})
	}
}
