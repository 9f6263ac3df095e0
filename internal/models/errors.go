package models

import (
	"errors"
	"fmt"
)

var (
	ErrUNIQUEConstraintFailed = errors.New("unique constraint failed")
	ErrInternal               = errors.New("internal server error")
	ErrMethodNotAllowed       = errors.New("method not allowed")
	ErrForbidden              = errors.New("access denied")
	ErrInvalidParams          = errors.New("invalid params")
	ErrInvalidBody            = errors.New("invalid request body")
	ErrBodyTooLarge           = errors.New("request body too large")
	ErrInvalidQuery           = errors.New("invalid rql query")
	ErrInvalidPointer         = errors.New("invalid json pointer")
	ErrNotCollection          = errors.New("query target is not an array or object")
	ErrValidationFailed       = errors.New("validation failed")
	ErrItemNotFound           = errors.New("json store item not found")
	ErrDataNotFound           = errors.New("no json data at pointer")
	ErrXIDExists              = errors.New("xid already in use")
	ErrUserNotFound           = errors.New("user not found")
	ErrUserExists             = errors.New("user already exists")
	ErrEmailInUse             = errors.New("email address already in use")
	ErrRegistrationDisabled   = errors.New("public registration is disabled")
	ErrInvalidToken           = errors.New("invalid token")
	ErrTokenUsed              = errors.New("token has already been used")
	ErrWrongTokenKind         = errors.New("token can not be used for this operation")
)

type UniqueConstraintError struct {
	Constraint string
	Err        error
}

func (e *UniqueConstraintError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Constraint)
}

func (e *UniqueConstraintError) Unwrap() error {
	return e.Err
}

type ValidationMessage struct {
	Property string `json:"property"`
	Message  string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Messages []ValidationMessage
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return ErrValidationFailed.Error()
	}
	return fmt.Sprintf("%v: %s %s", ErrValidationFailed, e.Messages[0].Property, e.Messages[0].Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// WithPrefix returns a copy whose properties are nested under prefix, e.g.
// "password" becomes "user.password".
func (e *ValidationError) WithPrefix(prefix string) *ValidationError {
	out := &ValidationError{Messages: make([]ValidationMessage, 0, len(e.Messages))}
	for _, m := range e.Messages {
		out.Messages = append(out.Messages, ValidationMessage{Property: prefix + "." + m.Property, Message: m.Message})
	}
	return out
}
