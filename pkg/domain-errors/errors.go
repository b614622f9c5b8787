// Package domainerrors provides the service-wide error taxonomy: stable
// codes the transport layer translates to HTTP statuses. Callers branch on
// codes via HasCode, never on message strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a stable error category.
type Code string

const (
	CodeBadRequest Code = "bad_request"
	CodeValidation Code = "validation_failed"
	CodeNotFound   Code = "not_found"
	CodeInternal   Code = "internal_error"

	// Codec-specific codes. CorruptedContainer is a fatal structural
	// violation; DecryptionFailed usually means a wrong platform
	// identifier; VerificationFailed means a freshly encoded container
	// did not decode back to the intended document and was discarded.
	CodeCorruptedContainer Code = "corrupted_container"
	CodeDecryptionFailed   Code = "decryption_failed"
	CodeVerificationFailed Code = "verification_failed"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err is (or wraps) a domain error with the code.
func HasCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// CodeOf returns the error's code, defaulting to CodeInternal for errors
// that carry none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
