package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindInputRejected       ErrorKind = "input_rejected"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindResponseMalformed   ErrorKind = "response_malformed"
	KindPersistenceFailure  ErrorKind = "persistence_failure"
)

// Sentinels for errors.Is; any *AnalysisError of the same kind matches.
var (
	ErrInputRejected       = &AnalysisError{Kind: KindInputRejected}
	ErrUpstreamUnavailable = &AnalysisError{Kind: KindUpstreamUnavailable}
	ErrResponseMalformed   = &AnalysisError{Kind: KindResponseMalformed}
	ErrPersistenceFailure  = &AnalysisError{Kind: KindPersistenceFailure}
)

// AnalysisError is a pipeline failure. Message is safe to show to the user.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func (e *AnalysisError) Is(target error) bool {
	t, ok := target.(*AnalysisError)
	return ok && t.Kind == e.Kind
}

func rejectInput(message string) error {
	return &AnalysisError{Kind: KindInputRejected, Message: message}
}

func upstreamUnavailable(message string, err error) error {
	return &AnalysisError{Kind: KindUpstreamUnavailable, Message: message, Err: err}
}

func responseMalformed(message string, err error) error {
	return &AnalysisError{Kind: KindResponseMalformed, Message: message, Err: err}
}

func persistenceFailure(message string, err error) error {
	return &AnalysisError{Kind: KindPersistenceFailure, Message: message, Err: err}
}

// AsAnalysisError unwraps err into an *AnalysisError when it carries one.
func AsAnalysisError(err error) (*AnalysisError, bool) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
