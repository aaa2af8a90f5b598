// Package executor runs an ordered plan of task definitions.
//
// A Runner walks the plan strictly in order. For every task it resolves the
// attributes, makes the task's resource available through a resource
// Manager, invokes the work and records the output. The first failure stops
// the run; the open resource is closed exactly once on every exit path.
package executor

import (
	"context"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/resource"
	"github.com/CadentTech/bigrays/internal/task"
)

// ResourceManager is the part of resource.Manager the Runner depends on.
type ResourceManager interface {
	Ensure(ctx context.Context, kind resource.Kind, override *config.Store) (any, error)
	CloseAll(ctx context.Context) error
}

// ManagerFactory creates the ResourceManager for one run.
type ManagerFactory func(clients resource.Clients, defaults *config.Store) ResourceManager

// Runner executes plans of task definitions.
type Runner struct {
	clients    resource.Clients
	store      *config.Store
	registry   *task.Registry
	newManager ManagerFactory
}

// Option configures a Runner.
type Option func(*Runner)

// WithRegistry sets the registry whose declaration order is the default plan.
func WithRegistry(r *task.Registry) Option {
	return func(rn *Runner) { rn.registry = r }
}

// WithManagerFactory replaces the resource manager used for each run.
func WithManagerFactory(f ManagerFactory) Option {
	return func(rn *Runner) { rn.newManager = f }
}

// New creates a Runner that opens resources through clients and reads
// configuration from store. Without WithRegistry the default plan comes from
// task.DefaultRegistry.
func New(clients resource.Clients, store *config.Store, opts ...Option) *Runner {
	r := &Runner{
		clients:  clients,
		store:    store,
		registry: task.DefaultRegistry,
		newManager: func(c resource.Clients, s *config.Store) ResourceManager {
			return resource.NewManager(c, s)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the config Store the Runner reads from.
func (r *Runner) Store() *config.Store { return r.store }

// Registry returns the registry that supplies the default plan.
func (r *Runner) Registry() *task.Registry { return r.registry }
