package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrNotAvailable     = errors.New("no copies available")
	ErrAlreadyProcessed = errors.New("request already processed")
	ErrRestricted       = errors.New("account is restricted from borrowing")
	ErrDuplicateRequest = errors.New("duplicate pending request")
	ErrActiveLoan       = errors.New("book is already borrowed by this user")
	ErrNotOwner         = errors.New("record belongs to another user")
	ErrEmptyNotes       = errors.New("rejection requires a reason")
)

// ValidationError carries a caller-facing message, surfaced verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
