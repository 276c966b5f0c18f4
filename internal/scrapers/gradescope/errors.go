package gradescope

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable wraps transport level failures (dns, tls, timeouts).
	ErrUnreachable = errors.New("gradescope unreachable")

	ErrInvalidCredentials = errors.New("incorrect email or password")

	// ErrNotLoggedIn means the session is missing or expired, logging in
	// again may fix it.
	ErrNotLoggedIn = errors.New("you must be logged in to access this page")
	// ErrNotAuthorized means the session is valid but the account lacks the
	// role the page needs.
	ErrNotAuthorized = errors.New("you are not authorized to access this page")
	// ErrUnrecognizedAuthError is a 401 whose message is neither of the two
	// known ones.
	ErrUnrecognizedAuthError = errors.New("unrecognized authorization error")

	ErrNotFound         = errors.New("page not found")
	ErrUnexpectedStatus = errors.New("unexpected status code")

	ErrInvalidId       = errors.New("id must not be empty")
	ErrNoDates         = errors.New("at least one date must be provided")
	ErrDatesOutOfOrder = errors.New("dates must be in order: release date <= due date <= late due date")

	ErrImageOnlySubmission = errors.New("image only submissions are not supported")
	// ErrStudentNotFound is also an ErrNotFound.
	ErrStudentNotFound     = fmt.Errorf("%w: no submission row contains the student", ErrNotFound)
	ErrNoSubmission        = errors.New("no submission found")
	ErrUnknownRole         = errors.New("unknown role code")
	ErrNotImplemented      = errors.New("not implemented")

	ErrUnexpectedStructure = errors.New("unexpected page structure")
)

// StatusError is returned when a page answers with a status the guard does
// not map to anything more specific.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s: %d", e.Path, ErrUnexpectedStatus.Error(), e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// StructureError is returned when a page no longer has the element or
// attribute an extractor expected.
type StructureError struct {
	// Page is the page type, one of the keys of the selector tables.
	Page string
	// Selector is the selector or attribute that did not match.
	Selector string
	Err      error
}

func structureError(page, selector string, err error) *StructureError {
	return &StructureError{Page: page, Selector: selector, Err: err}
}

func (e *StructureError) Error() string {
	msg := fmt.Sprintf("%s: %s: %q", ErrUnexpectedStructure.Error(), e.Page, e.Selector)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructureError) Is(target error) bool {
	return target == ErrUnexpectedStructure
}

func (e *StructureError) Unwrap() error {
	return e.Err
}
