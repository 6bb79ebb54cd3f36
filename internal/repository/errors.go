package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/timeleft/tasktracker/internal/models"
)

// ValidationError reports one or more field constraint failures. The
// caller is expected to correct the input; it is never retried.
type ValidationError struct {
	Violations []models.Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// InvalidReferenceError reports a groupId that does not resolve to an
// existing group. A validation failure, not a system fault.
type InvalidReferenceError struct {
	GroupID string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid task group reference: %s", e.GroupID)
}

// NotFoundError reports an update/delete/toggle target that does not
// exist. Kept distinct from validation failures so callers can render
// "already gone" differently from "bad input".
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// ConnectionError reports an unreachable store. Propagated unmodified;
// the caller retries the whole operation if it wants to.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "store unreachable: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError or an
// InvalidReferenceError.
func IsValidation(err error) bool {
	var ve *ValidationError
	var re *InvalidReferenceError
	return errors.As(err, &ve) || errors.As(err, &re)
}
