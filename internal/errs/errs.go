// Package errs defines the error kinds shared across the survey core.
package errs

import (
	"errors"
	"fmt"
)

// SchemaError reports a malformed or ambiguous survey definition. Fatal: the
// run aborts before any processing.
type SchemaError struct {
	ID     string // offending survey/question/option id, when known
	Reason string
}

func (e *SchemaError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("schema error: %s: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("schema error: %s", e.Reason)
}

// NotFoundError reports a reference to a nonexistent question id. Fatal for
// the record, not for the run.
type NotFoundError struct {
	QuestionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("question %q not found", e.QuestionID)
}

// ValidationError reports an answer that fails its question type's contract.
// Recoverable: the record is excluded from analysis and reported as rejected.
type ValidationError struct {
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.QuestionID != "" {
		return fmt.Sprintf("invalid response for question %q: %s", e.QuestionID, e.Reason)
	}
	return fmt.Sprintf("invalid response: %s", e.Reason)
}

// Constructors

func Schema(id, format string, args ...interface{}) *SchemaError {
	return &SchemaError{ID: id, Reason: fmt.Sprintf(format, args...)}
}

func NotFound(questionID string) *NotFoundError {
	return &NotFoundError{QuestionID: questionID}
}

func Validation(questionID, format string, args ...interface{}) *ValidationError {
	return &ValidationError{QuestionID: questionID, Reason: fmt.Sprintf(format, args...)}
}

// Kind checks

func IsSchema(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
