// Package socketio provides a socket.io client resource and task variants
// that emit events and wait for replies.
package socketio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/CadentTech/bigrays/internal/resource"
	"github.com/CadentTech/bigrays/internal/table"
	"github.com/CadentTech/bigrays/internal/task"
)

// Kind is the resource kind of a socket.io connection.
const Kind resource.Kind = "socketio"

// DefaultTimeout is how long socketio_request waits for its reply.
const DefaultTimeout = "10s"

// Module implements the registry.Module interface for this package.
type Module struct{}

var (
	// EmitVariant emits its input on topic and does not wait.
	EmitVariant = &task.Variant{
		Name:        "socketio_emit",
		Description: "Emit the input as a socket.io event.",
		Resource:    Kind,
		Required:    []string{"input", "topic"},
		Templates:   []string{"topic"},
		Work:        task.WorkFunc(runEmit),
	}
	// RequestVariant emits emit_event and outputs the first argument of the
	// next on_event.
	RequestVariant = &task.Variant{
		Name:        "socketio_request",
		Description: "Emit an event and wait for a reply event.",
		Resource:    Kind,
		Required:    []string{"emit_event", "on_event"},
		Templates:   []string{"emit_event", "on_event"},
		Defaults:    task.Attributes{"timeout": DefaultTimeout},
		Work:        task.WorkFunc(runRequest),
	}
)

// Register registers the client and variants with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClient(Kind, Client{})
	r.RegisterVariant(EmitVariant)
	r.RegisterVariant(RequestVariant)
}

type opResult struct {
	value any
	err   error
}

func conn(env *task.Env) (Conn, error) {
	c, ok := env.Handle.(Conn)
	if !ok || c == nil {
		return nil, fmt.Errorf("socket.io client dependency was not injected")
	}
	if !c.Connected() {
		return nil, fmt.Errorf("socket.io client is not connected")
	}
	return c, nil
}

// payload converts tables to records so they serialize as JSON objects.
func payload(v any) any {
	if t, ok := v.(*table.Table); ok {
		return t.Records()
	}
	return v
}

func runEmit(ctx context.Context, env *task.Env) (any, error) {
	c, err := conn(env)
	if err != nil {
		return nil, err
	}
	topic, err := env.Attrs.String("topic")
	if err != nil {
		return nil, err
	}
	data := payload(env.Attrs["input"])
	logger := ctxlog.FromContext(ctx).With("sid", c.ID())
	if jsonData, err := json.Marshal(data); err == nil {
		logger.Debug("Emitting event", "event", topic, "data", string(jsonData))
	}
	c.Emit(topic, data)
	logger.Info("Event emitted", "event", topic)
	return nil, nil
}

func runRequest(ctx context.Context, env *task.Env) (any, error) {
	c, err := conn(env)
	if err != nil {
		return nil, err
	}
	emitEvent, err := env.Attrs.String("emit_event")
	if err != nil {
		return nil, err
	}
	onEvent, err := env.Attrs.String("on_event")
	if err != nil {
		return nil, err
	}
	rawTimeout, err := env.Attrs.StringOr("timeout", DefaultTimeout)
	if err != nil {
		return nil, err
	}
	timeout, err := time.ParseDuration(rawTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timeout: %w", err)
	}

	logger := ctxlog.FromContext(ctx).With("sid", c.ID())
	logger.Info("Executing request", "emitEvent", emitEvent, "onEvent", onEvent)

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.Once(onEvent, func(data ...any) {
		var response any
		if len(data) > 0 {
			response = data[0]
		}
		select {
		case done <- opResult{value: response}:
		default:
		}
	})
	c.Emit(emitEvent, payload(env.Attrs["input"]))

	select {
	case <-opCtx.Done():
		return nil, fmt.Errorf("timed out after %v waiting for event '%s'", timeout, onEvent)
	case res := <-done:
		logger.Info("Successfully received response event", "event", onEvent)
		return res.value, res.err
	}
}
