package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeNotConfigured ErrorType = "NOT_CONFIGURED"
	ErrTypeInvalidInput  ErrorType = "INVALID_INPUT"
	ErrTypeNotFound      ErrorType = "NOT_FOUND"
	ErrTypeConflict      ErrorType = "CONFLICT"
	ErrTypeUnavailable   ErrorType = "UNAVAILABLE"
	ErrTypeRateLimit     ErrorType = "RATE_LIMIT"
	ErrTypePersistence   ErrorType = "PERSISTENCE"
	ErrTypeParseFailed   ErrorType = "PARSE_FAILED"
	ErrTypeInternal      ErrorType = "INTERNAL"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

// NotConfigured marks a missing credential or setting. Callers check it before
// any network call and never retry it.
func NotConfigured(message string) *DomainError {
	return New(ErrTypeNotConfigured, message, nil)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func Conflict(message string, err error) *DomainError {
	return New(ErrTypeConflict, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

func RateLimit(message string, err error) *DomainError {
	return New(ErrTypeRateLimit, message, err)
}

// Persistence wraps an error returned by the store.
func Persistence(message string, err error) *DomainError {
	return New(ErrTypePersistence, message, err)
}

func ParseFailed(message string, err error) *DomainError {
	return New(ErrTypeParseFailed, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

// TypeOf returns the type of the first DomainError in err's chain, or
// ErrTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Type
	}
	return ErrTypeInternal
}

func Is(err error, errType ErrorType) bool {
	var de *DomainError
	return stderrors.As(err, &de) && de.Type == errType
}
