package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Env is what the commands need from the process. A nil Store means a clone
// of the process Store; empty Modules means the core modules.
type Env struct {
	Out     io.Writer
	Store   *config.Store
	Modules []registry.Module
}

// Execute runs the command line args against the process environment.
func Execute(ctx context.Context, outW io.Writer, args []string) error {
	return Run(ctx, NewRootCmd(&Env{Out: outW}), args)
}

// Run executes root with args. Errors that are not already an ExitError are
// usage errors from cobra itself and exit with code 2.
func Run(ctx context.Context, root *cobra.Command, args []string) error {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return usageError("%s", err.Error())
}

// parseSettings turns KEY=VALUE pairs into a map. Later pairs win.
func parseSettings(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, usageError("invalid --set %q: expected KEY=VALUE", p)
		}
		out[config.Normalize(k)] = v
	}
	return out, nil
}
