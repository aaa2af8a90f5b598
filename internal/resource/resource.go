// Package resource owns the lifecycle of the external resources tasks run
// against: database sessions, object-store clients, notification clients.
//
// A Manager holds at most one open resource at a time. Consecutive tasks
// that need the same kind share one handle; a task that needs a different
// kind causes the current handle to be closed before the new one is opened.
package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/CadentTech/bigrays/internal/config"
)

// Kind identifies a category of external resource. The zero value means a
// task needs no resource.
type Kind string

// None is the Kind of tasks that need no resource.
const None Kind = ""

// Client opens and closes handles of one Kind.
type Client interface {
	// Open acquires a new handle using the effective configuration.
	Open(ctx context.Context, cfg *config.Store) (any, error)
	// Close releases a handle previously returned by Open.
	Close(ctx context.Context, handle any) error
	// RequiredConfigs lists the config keys Open cannot do without, given
	// the rest of cfg.
	RequiredConfigs(cfg *config.Store) []string
}

// Clients resolves the Client registered for a Kind.
type Clients interface {
	Client(kind Kind) (Client, bool)
}

// ErrUnknownKind is wrapped by AcquireError when no Client is registered for
// the requested Kind.
var ErrUnknownKind = errors.New("unknown resource kind")

// AcquireError reports a failure to open a resource. It aborts the run.
type AcquireError struct {
	Kind Kind
	Err  error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("could not open %s resource: %v", e.Kind, e.Err)
}

func (e *AcquireError) Unwrap() error { return e.Err }

// ReleaseError reports a failure to close a resource. It is logged and
// never aborts a run on its own.
type ReleaseError struct {
	Kind Kind
	Err  error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("could not close %s resource: %v", e.Kind, e.Err)
}

func (e *ReleaseError) Unwrap() error { return e.Err }
