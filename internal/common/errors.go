package common

import (
	"errors"
	"fmt"
)

// Sentinel error categories. Callers classify failures with errors.Is.
var (
	// ErrValidation marks input the engine refuses to persist.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound covers both absent records and records owned by another user.
	ErrNotFound = errors.New("not found or unauthorized")
	// ErrConflict marks a request that collides with existing state.
	ErrConflict = errors.New("conflict")
)

// Specific errors, each wrapping one of the categories above.
var (
	ErrUnbalanced         = fmt.Errorf("%w: debit and credit totals differ", ErrValidation)
	ErrInvalidYear        = fmt.Errorf("%w: invalid fiscal year", ErrValidation)
	ErrUnknownAccountType = fmt.Errorf("%w: unknown account type", ErrValidation)
	ErrDuplicateAccount   = fmt.Errorf("%w: account name already exists", ErrConflict)
	ErrAlreadyRun         = fmt.Errorf("%w: already posted for this year", ErrConflict)
)

// UserError pairs an internal error with a message suitable for display.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	return e.Err.Error()
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with a display message.
func NewUserError(err error, message string) *UserError {
	return &UserError{Err: err, UserMessage: message}
}

// UserMessage returns the display message carried by err, or err.Error().
func UserMessage(err error) string {
	var ue *UserError
	if errors.As(err, &ue) && ue.UserMessage != "" {
		return ue.UserMessage
	}
	return err.Error()
}
