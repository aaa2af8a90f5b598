package socketio

import (
	"context"
	"sync"
	"testing"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/table"
	"github.com/CadentTech/bigrays/internal/task"
	"github.com/CadentTech/bigrays/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	Event string
	Data  any
}

// fakeConn replies to every emitted event listed in replies.
type fakeConn struct {
	mu           sync.Mutex
	emits        []emitted
	handlers     map[string]func(...any)
	replies      map[string]emitted
	disconnected bool
	offline      bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{handlers: map[string]func(...any){}, replies: map[string]emitted{}}
}

func (f *fakeConn) Emit(event string, data any) {
	f.mu.Lock()
	f.emits = append(f.emits, emitted{event, data})
	reply, ok := f.replies[event]
	fn := f.handlers[reply.Event]
	delete(f.handlers, reply.Event)
	f.mu.Unlock()
	if ok && fn != nil {
		go fn(reply.Data)
	}
}

func (f *fakeConn) Once(event string, fn func(...any)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = fn
}

func (f *fakeConn) ID() string      { return "sid-1" }
func (f *fakeConn) Connected() bool { return !f.offline }
func (f *fakeConn) Disconnect()     { f.disconnected = true }

func run(t *testing.T, v *task.Variant, c Conn, attrs task.Attributes) (any, error) {
	t.Helper()
	ctx, _ := testutil.Context(t)
	d, err := v.Define("io", attrs)
	require.NoError(t, err)
	return d.Work.Run(ctx, &task.Env{Task: d, Attrs: d.Attrs, Handle: c})
}

func TestEmit_SendsTablesAsRecords(t *testing.T) {
	c := newFakeConn()
	tbl := table.New("id")
	require.NoError(t, tbl.Append(7))

	out, err := run(t, EmitVariant, c, task.Attributes{"topic": "rows", "input": tbl})
	require.NoError(t, err)
	assert.Nil(t, out)
	require.Len(t, c.emits, 1)
	assert.Equal(t, "rows", c.emits[0].Event)
	assert.Equal(t, []map[string]any{{"id": 7}}, c.emits[0].Data)
}

func TestRequest_ReturnsReply(t *testing.T) {
	c := newFakeConn()
	c.replies["ping"] = emitted{Event: "pong", Data: map[string]any{"ok": true}}

	out, err := run(t, RequestVariant, c, task.Attributes{
		"emit_event": "ping",
		"on_event":   "pong",
		"input":      map[string]any{"n": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, out)
	assert.Equal(t, map[string]any{"n": 1}, c.emits[0].Data)
}

func TestRequest_TimesOut(t *testing.T) {
	c := newFakeConn()
	_, err := run(t, RequestVariant, c, task.Attributes{
		"emit_event": "ping",
		"on_event":   "pong",
		"timeout":    "20ms",
	})
	assert.ErrorContains(t, err, "timed out after 20ms waiting for event 'pong'")
}

func TestRequest_BadTimeout(t *testing.T) {
	_, err := run(t, RequestVariant, newFakeConn(), task.Attributes{
		"emit_event": "ping",
		"on_event":   "pong",
		"timeout":    "soon",
	})
	assert.ErrorContains(t, err, "failed to parse timeout")
}

func TestWork_RequiresConnectedHandle(t *testing.T) {
	_, err := run(t, EmitVariant, nil, task.Attributes{"topic": "t", "input": 1})
	assert.ErrorContains(t, err, "not injected")

	c := newFakeConn()
	c.offline = true
	_, err = run(t, EmitVariant, c, task.Attributes{"topic": "t", "input": 1})
	assert.ErrorContains(t, err, "not connected")
}

func TestClient_CloseDisconnects(t *testing.T) {
	c := newFakeConn()
	require.NoError(t, Client{}.Close(context.Background(), c))
	assert.True(t, c.disconnected)

	assert.Error(t, Client{}.Close(context.Background(), "nope"))
	assert.Equal(t, []string{KeyURL}, Client{}.RequiredConfigs(config.NewStore()))
}
