package ai

import (
	"context"
	"errors"
)

// LocalBackend generates text in-process. The editor layer renders one of
// its prompt templates before calling this subsystem; which template is
// used is not this package's decision, only which backend runs it.
type LocalBackend interface {
	Generate(ctx context.Context, prompt string, promptContext string) (string, error)
}

// LocalBackendFunc adapts a function to the LocalBackend interface.
type LocalBackendFunc func(ctx context.Context, prompt string, promptContext string) (string, error)

func (f LocalBackendFunc) Generate(ctx context.Context, prompt string, promptContext string) (string, error) {
	return f(ctx, prompt, promptContext)
}

// UnconfiguredLocalBackend is the default backend wired at startup until
// the embedding editor injects its generation pipeline.
var UnconfiguredLocalBackend = LocalBackendFunc(func(context.Context, string, string) (string, error) {
	return "", errors.New("no local generation pipeline is configured")
})
