package service

import (
	"errors"
	"fmt"
)

// Failure classes, callers branch on them with errors.Is.
// Conflict must not be retried, Upstream may be retried with backoff.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
	ErrInvalidInput = errors.New("invalid input")
)

type TermoError struct {
	Kind    error
	Message string
	Err     error
}

func (e *TermoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Message without the wrapped cause, for clients.
func (e *TermoError) PublicMessage() string {
	return e.Message
}

func (e *TermoError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func notFound(message string, err error) error {
	return &TermoError{Kind: ErrNotFound, Message: message, Err: err}
}

func forbidden(message string) error {
	return &TermoError{Kind: ErrForbidden, Message: message}
}

func conflict(message string, err error) error {
	return &TermoError{Kind: ErrConflict, Message: message, Err: err}
}

func upstream(message string, err error) error {
	return &TermoError{Kind: ErrUpstream, Message: message, Err: err}
}

func invalidInput(message string, err error) error {
	return &TermoError{Kind: ErrInvalidInput, Message: message, Err: err}
}
