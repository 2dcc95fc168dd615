package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a failed model invocation. The orchestrator uses the
// kind to decide between retry with backoff and immediate surfacing.
type ErrorKind string

const (
	KindTimeout      ErrorKind = "TIMEOUT"
	KindRateLimited  ErrorKind = "RATE_LIMITED"
	KindUnavailable  ErrorKind = "SERVICE_UNAVAILABLE"
	KindAuth         ErrorKind = "AUTH_ERROR"
	KindNetwork      ErrorKind = "NETWORK_ERROR"
	KindUnclassified ErrorKind = "UNCLASSIFIED"
)

// Error wraps a provider failure with its classification.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified error.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the classification, defaulting to Unclassified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}

// Retryable reports whether the orchestrator may re-attempt the call.
// Auth failures and anything unclassified are fatal.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindRateLimited, KindUnavailable, KindNetwork:
		return true
	}
	return false
}

// Client is the minimal text-completion contract the planner depends on.
// A single call, no retry logic; implementations classify failures via Error.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
	EffectiveMaxTokens(requested int) int
}
