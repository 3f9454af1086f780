package executor

import (
	"context"
	"io"
)

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// ExecuteWithInput runs a command with stdin connected to input and returns raw stdout.
	ExecuteWithInput(ctx context.Context, input io.Reader, name string, args ...string) ([]byte, error)
}
