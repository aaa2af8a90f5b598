package resource

import (
	"context"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/ctxlog"
)

// Manager tracks the single currently open resource of a run.
//
// The Manager is either Closed or Open(kind, cfg). It is used from one
// goroutine and holds no locks.
type Manager struct {
	clients  Clients
	defaults *config.Store

	open   bool
	kind   Kind
	cfg    *config.Store
	handle any
}

// NewManager returns a Closed Manager that opens resources through clients,
// using defaults whenever a task carries no config override.
func NewManager(clients Clients, defaults *config.Store) *Manager {
	return &Manager{clients: clients, defaults: defaults}
}

// Current reports the kind of the open resource, if any.
func (m *Manager) Current() (Kind, bool) {
	return m.kind, m.open
}

// Ensure makes a handle of kind available and returns it.
//
// An empty kind is a no-op that returns a nil handle. If kind is already
// open with the same effective config, the handle is reused. Otherwise the
// open resource, if any, is closed first; a failure to close is logged and
// the Manager still becomes Closed. A failure to open returns an
// *AcquireError and leaves the Manager Closed.
func (m *Manager) Ensure(ctx context.Context, kind Kind, override *config.Store) (any, error) {
	logger := ctxlog.FromContext(ctx)
	if kind == None {
		return nil, nil
	}

	cfg := override
	if cfg == nil {
		cfg = m.defaults
	}

	if m.open && m.kind == kind && m.cfg == cfg {
		logger.Debug("Reusing open resource.", "kind", kind)
		return m.handle, nil
	}

	if m.open {
		if err := m.release(ctx); err != nil {
			logger.Warn("Could not release resource, continuing.", "kind", err.Kind, "error", err.Err)
		}
	}

	client, ok := m.clients.Client(kind)
	if !ok {
		return nil, &AcquireError{Kind: kind, Err: ErrUnknownKind}
	}

	logger.Info("▶️ Opening resource", "kind", kind)
	handle, err := client.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open resource.", "kind", kind, "error", err)
		return nil, &AcquireError{Kind: kind, Err: err}
	}
	m.open, m.kind, m.cfg, m.handle = true, kind, cfg, handle
	logger.Info("✅ Resource opened", "kind", kind)
	return handle, nil
}

// CloseAll closes the open resource, if any. Calling it on a Closed Manager
// does nothing, so it is safe to call more than once.
func (m *Manager) CloseAll(ctx context.Context) error {
	if !m.open {
		return nil
	}
	if err := m.release(ctx); err != nil {
		return err
	}
	return nil
}

// release closes the current handle and always leaves the Manager Closed.
func (m *Manager) release(ctx context.Context) *ReleaseError {
	logger := ctxlog.FromContext(ctx)
	kind, handle := m.kind, m.handle
	m.open, m.kind, m.cfg, m.handle = false, None, nil, nil

	client, ok := m.clients.Client(kind)
	if !ok {
		return &ReleaseError{Kind: kind, Err: ErrUnknownKind}
	}
	logger.Info("🔥 Closing resource", "kind", kind)
	if err := client.Close(ctx, handle); err != nil {
		return &ReleaseError{Kind: kind, Err: err}
	}
	return nil
}
