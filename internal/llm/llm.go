// Package llm defines the model collaborator boundary: an ordered list of
// role-tagged turns in, a text completion or a typed failure out. The
// orchestrator treats every failure subtype the same for control flow; the
// subtypes exist so error reports keep the detail.
package llm

import (
	"context"
	"errors"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged turn in a completion request.
type Message struct {
	Role    string
	Content string
}

// Typed failures. All are recoverable at per-document granularity.
var (
	// ErrAuth indicates the provider rejected the credentials.
	ErrAuth = errors.New("model authentication failed")
	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("model rate limit exceeded")
	// ErrTimeout indicates the bounded wait for a completion elapsed.
	ErrTimeout = errors.New("model invocation timed out")
	// ErrTransport indicates a network or server-side failure.
	ErrTransport = errors.New("model transport failure")
	// ErrEmptyResponse indicates the provider returned no usable completion.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Client is the request/response function the orchestrator consumes.
// Implementations must honor ctx cancellation and bound their own wait.
type Client interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
}

// Func adapts a plain function to the Client interface, mostly for tests.
type Func func(ctx context.Context, msgs []Message) (string, error)

// Complete implements Client.
func (f Func) Complete(ctx context.Context, msgs []Message) (string, error) {
	return f(ctx, msgs)
}
