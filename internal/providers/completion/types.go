package completion

import (
	"context"
	"fmt"
)

// Messages is a system/user message pair for one completion call.
type Messages struct {
	System string
	User   string
}

// Completer wraps the single external chat-completion endpoint so it can be
// replaced with a stub in tests.
type Completer interface {
	Complete(ctx context.Context, msgs Messages) (string, error)
}

// CompletionError reports a failed provider call: transport error, non-success
// status, or a response with no message content.
type CompletionError struct {
	Reason string
	Err    error
}

func (e *CompletionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("completion %s", e.Reason)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports model output that parsed as JSON but did not
// match the required shape, or did not parse at all.
type MalformedResponseError struct {
	Field string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("malformed response: %s", e.Field)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
