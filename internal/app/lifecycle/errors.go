// internal/app/lifecycle/errors.go
package lifecycle

import (
	"errors"
	"fmt"
)

// The caller-visible error kinds for lifecycle operations. All are
// synchronous, locally-detected rejections — none represent transient
// failure, so no retry semantics apply. The HTTP layer maps kinds to
// display messages; this package only guarantees a stable, distinguishable
// kind via errors.Is / errors.As.
var (
	// ErrForbidden means a role guard failed. Guards run before any
	// mutation, so a Forbidden result never leaves partial state behind.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced walk or finding does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means a precondition on the finding's current state
	// failed (e.g. setting a due date that is already set, or reopening a
	// closed finding).
	ErrInvalidState = errors.New("invalid state")
)

// ValidationError reports malformed input: a missing required field or an
// area that is not among the owning walk's areas.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
