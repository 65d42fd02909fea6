// Package apperror defines the failure kinds surfaced by the gateway. Provider
// faults are converted to one of these kinds at the orchestrator or speech
// handler boundary and never leak past it in their original form.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindRateLimitExceeded
	KindValidation
	KindProvider
	KindSynthesis
)

func (k Kind) String() string {
	switch k {
	case KindRateLimitExceeded:
		return "RateLimitExceeded"
	case KindValidation:
		return "ValidationError"
	case KindProvider:
		return "ProviderError"
	case KindSynthesis:
		return "SynthesisError"
	default:
		return "UnknownError"
	}
}

// Error is a typed failure. Message is safe to show to users; Cause keeps the
// underlying error for logging.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind, so errors.Is(err, apperror.ErrValidation) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Code == "" && t.Message == ""
}

var (
	ErrRateLimitExceeded = &Error{Kind: KindRateLimitExceeded}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrProvider          = &Error{Kind: KindProvider}
	ErrSynthesis         = &Error{Kind: KindSynthesis}
)

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Provider(code, message string, cause error) *Error {
	return &Error{Kind: KindProvider, Code: code, Message: message, Cause: cause}
}

func Synthesis(code, message string, cause error) *Error {
	return &Error{Kind: KindSynthesis, Code: code, Message: message, Cause: cause}
}

func RateLimited(code, message string) *Error {
	return &Error{Kind: KindRateLimitExceeded, Code: code, Message: message}
}

// KindOf reports the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// CodeOf returns the error code of err, or fallback when it carries none.
func CodeOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return fallback
}
