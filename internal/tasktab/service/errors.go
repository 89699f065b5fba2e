package service

import (
	"errors"
	"strings"
)

var (
	// ErrConflict reports a duplicate identity (email or username taken).
	ErrConflict = errors.New("service: account already exists")

	// ErrInvalidCredentials is the single login failure. An unknown email
	// and a wrong password both produce exactly this value so a caller
	// cannot enumerate accounts from the response.
	ErrInvalidCredentials = errors.New("service: invalid credentials")

	// ErrNotFound reports a task that is absent or owned by someone else.
	// The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("service: not found")
)

// FieldError names a single violated input field.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// ValidationError carries every violated field, not just the first.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Msg)
	}
	return "service: validation failed: " + strings.Join(msgs, "; ")
}

func validationError(fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
