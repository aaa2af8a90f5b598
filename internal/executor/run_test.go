package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/resource"
	"github.com/CadentTech/bigrays/internal/task"
	"github.com/CadentTech/bigrays/internal/template"
	"github.com/CadentTech/bigrays/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sqlKind resource.Kind = "sql-session"
	s3Kind  resource.Kind = "object-store"
)

type fixture struct {
	journal *testutil.Journal
	fakes   map[resource.Kind]*testutil.FakeClient
	store   *config.Store
	runner  *Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	j := &testutil.Journal{}
	clients, fakes := testutil.NewFakeClients(j, sqlKind, s3Kind)
	store := config.NewStore()
	return &fixture{
		journal: j,
		fakes:   fakes,
		store:   store,
		runner:  New(clients, store, WithRegistry(task.NewRegistry())),
	}
}

// recordingTask returns a definition whose work logs "run:<name>" and
// returns value.
func (f *fixture) recordingTask(name string, kind resource.Kind, value any) *task.Definition {
	return task.Func(name, kind, func(_ context.Context, env *task.Env) (any, error) {
		f.journal.Add("run:%s", name)
		return value, nil
	})
}

func TestRun_DefaultPlanUsesDeclarationOrder(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	reg := f.runner.Registry()
	for _, name := range []string{"t1", "t2", "t3"} {
		reg.MustRegister(f.recordingTask(name, resource.None, name))
	}

	require.NoError(t, f.runner.Run(ctx))
	assert.Equal(t, []string{"run:t1", "run:t2", "run:t3"}, f.journal.Events())
}

func TestRun_ExplicitPlanOrderAndRepeats(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	a := f.recordingTask("a", resource.None, 1)
	b := f.recordingTask("b", resource.None, 2)

	require.NoError(t, f.runner.Run(ctx, b, a, b))
	assert.Equal(t, []string{"run:b", "run:a", "run:b"}, f.journal.Events())
}

func TestRun_ReusesResourceAcrossContiguousTasks(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	plan := []*task.Definition{
		f.recordingTask("q1", sqlKind, nil),
		f.recordingTask("q2", sqlKind, nil),
		f.recordingTask("q3", sqlKind, nil),
	}

	require.NoError(t, f.runner.Run(ctx, plan...))
	assert.Equal(t, []string{
		"open:sql-session", "run:q1", "run:q2", "run:q3", "close:sql-session",
	}, f.journal.Events())
	assert.Equal(t, 1, f.fakes[sqlKind].Opened())
}

func TestRun_SwitchesResources(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	plan := []*task.Definition{
		f.recordingTask("q", sqlKind, nil),
		f.recordingTask("none", resource.None, nil),
		f.recordingTask("put", s3Kind, nil),
		f.recordingTask("q2", sqlKind, nil),
	}

	require.NoError(t, f.runner.Run(ctx, plan...))
	assert.Equal(t, []string{
		"open:sql-session", "run:q", "run:none",
		"close:sql-session", "open:object-store", "run:put",
		"close:object-store", "open:sql-session", "run:q2",
		"close:sql-session",
	}, f.journal.Events())
}

func TestRun_PassesHandleAndOutputs(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	extract := f.recordingTask("extract", sqlKind, []string{"row"})

	var seenHandle any
	var seenInput any
	load := task.Func("load", sqlKind, func(_ context.Context, env *task.Env) (any, error) {
		seenHandle = env.Handle
		v, err := env.Outputs.Of(extract)
		seenInput = v
		return len(v.([]string)), err
	})

	require.NoError(t, f.runner.Run(ctx, extract, load))
	require.IsType(t, &testutil.Handle{}, seenHandle)
	assert.Equal(t, sqlKind, seenHandle.(*testutil.Handle).Kind)
	assert.Equal(t, []string{"row"}, seenInput)

	out, err := load.Output()
	require.NoError(t, err)
	assert.Equal(t, 1, out)
}

func TestRun_TemplatesResolveFromStoreSnapshot(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	f.store.Set("START_DATE", "2024-01-01")

	var got string
	d := task.Func("q", resource.None, func(_ context.Context, env *task.Env) (any, error) {
		s, err := env.Attrs.String("query")
		got = s
		return nil, err
	})
	d.Attrs = task.Attributes{"query": "select * from t where d > '{start_date}'", "other": "{untouched}"}
	d.Templates = []string{"query", "missing_attr"}

	require.NoError(t, f.runner.Run(ctx, d))
	assert.Equal(t, "select * from t where d > '2024-01-01'", got)
	assert.Equal(t, "select * from t where d > '{start_date}'", d.Attrs["query"], "static attributes are never mutated")
}

func TestRun_MissingTemplateKeyAbortsBeforeWork(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	first := f.recordingTask("first", sqlKind, nil)
	bad := f.recordingTask("bad", sqlKind, nil)
	bad.Attrs = task.Attributes{"query": "{NOPE}"}
	bad.Templates = []string{"query"}
	never := f.recordingTask("never", resource.None, nil)

	err := f.runner.Run(ctx, first, bad, never)

	var missing *template.MissingKeyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "NOPE", missing.Key)
	assert.Equal(t, []string{"open:sql-session", "run:first", "close:sql-session"}, f.journal.Events())
}

func TestRun_TaskFailureAbortsAndClosesOnce(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	boom := errors.New("boom")
	failing := task.Func("t2", sqlKind, func(context.Context, *task.Env) (any, error) {
		f.journal.Add("run:t2")
		return nil, boom
	})

	var closeCalls int
	f.runner.newManager = func(c resource.Clients, s *config.Store) ResourceManager {
		return &countingManager{inner: resource.NewManager(c, s), calls: &closeCalls}
	}

	t1 := f.recordingTask("t1", sqlKind, "one")
	t3 := f.recordingTask("t3", resource.None, nil)
	err := f.runner.Run(ctx, t1, failing, t3)

	var execErr *task.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "t2", execErr.Task)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, closeCalls)
	assert.Equal(t, []string{"open:sql-session", "run:t1", "run:t2", "close:sql-session"}, f.journal.Events())

	_, err = t3.Output()
	assert.Error(t, err, "tasks after the failure never run")

	out, err := t1.Output()
	require.NoError(t, err, "outputs of tasks that finished before the failure stay readable")
	assert.Equal(t, "one", out)
}

func TestRun_AcquireFailureIsFatal(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	f.fakes[s3Kind].OpenErr = errors.New("denied")

	err := f.runner.Run(ctx,
		f.recordingTask("q", sqlKind, nil),
		f.recordingTask("put", s3Kind, nil),
	)

	var acquireErr *resource.AcquireError
	require.True(t, errors.As(err, &acquireErr))
	assert.Equal(t, s3Kind, acquireErr.Kind)
	assert.Equal(t, []string{
		"open:sql-session", "run:q", "close:sql-session", "open-failed:object-store",
	}, f.journal.Events())
}

func TestRun_ReleaseFailureDoesNotFailRun(t *testing.T) {
	ctx, logs := testutil.Context(t)
	f := newFixture(t)
	f.fakes[sqlKind].CloseErr = errors.New("socket closed")

	err := f.runner.Run(ctx,
		f.recordingTask("q", sqlKind, nil),
		f.recordingTask("put", s3Kind, nil),
		f.recordingTask("q2", sqlKind, nil),
	)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "socket closed")
}

func TestRun_ConfigurationCheckedBeforeAnyTask(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	f.fakes[sqlKind].Required = []string{"DB_DSN"}
	f.fakes[s3Kind].Required = []string{"AWS_ACCESS_KEY_ID"}
	f.store.Set("AWS_ACCESS_KEY_ID", "x")

	err := f.runner.Run(ctx,
		f.recordingTask("none", resource.None, nil),
		f.recordingTask("q", sqlKind, nil),
		f.recordingTask("put", s3Kind, nil),
	)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, map[resource.Kind][]string{sqlKind: {"DB_DSN"}}, cfgErr.Missing)
	assert.Contains(t, err.Error(), "BIGRAYS_DB_DSN")
	assert.Empty(t, f.journal.Events())
}

func TestRun_ResourceConfigOverrideIsUsed(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	f.fakes[sqlKind].Required = []string{"DB_DSN"}
	override := f.store.With(map[string]string{"DB_DSN": "sqlite://other"})

	var seen *config.Store
	q1 := f.recordingTask("q1", sqlKind, nil)
	q1.ResourceConfig = override
	q2 := task.Func("q2", sqlKind, func(_ context.Context, env *task.Env) (any, error) {
		seen = env.Handle.(*testutil.Handle).Config
		return nil, nil
	})
	q2.ResourceConfig = override

	require.NoError(t, f.runner.Run(ctx, q1, q2))
	assert.Same(t, override, seen)
	assert.Equal(t, 1, f.fakes[sqlKind].Opened())
}

func TestRun_CancellationStopsBetweenTasks(t *testing.T) {
	ctx, _ := testutil.Context(t)
	ctx, cancel := context.WithCancel(ctx)
	f := newFixture(t)

	first := task.Func("first", sqlKind, func(context.Context, *task.Env) (any, error) {
		f.journal.Add("run:first")
		cancel()
		return nil, nil
	})
	second := f.recordingTask("second", resource.None, nil)

	err := f.runner.Run(ctx, first, second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"open:sql-session", "run:first", "close:sql-session"}, f.journal.Events())
}

func TestRun_OutputsResetEachRun(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	calls := 0
	d := task.Func("counter", resource.None, func(context.Context, *task.Env) (any, error) {
		calls++
		return calls, nil
	})
	failing := task.Func("fail", resource.None, func(context.Context, *task.Env) (any, error) {
		return nil, errors.New("no")
	})

	require.NoError(t, f.runner.Run(ctx, d))
	out, err := d.Output()
	require.NoError(t, err)
	assert.Equal(t, 1, out)

	require.Error(t, f.runner.Run(ctx, failing, d))
	_, err = d.Output()
	assert.Error(t, err, "a run that never reached the task leaves its slot empty")
}

func TestRun_DeferredExpressionsSeePriorOutputs(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	f.store.Set("SUFFIX", ".csv")

	extract := f.recordingTask("extract", resource.None, "payload")
	v := &task.Variant{
		Name:      "sink",
		Required:  []string{"input"},
		Templates: []string{"name"},
		Work: task.WorkFunc(func(_ context.Context, env *task.Env) (any, error) {
			return env.Attrs, nil
		}),
	}
	sink, err := v.DefineDeferred("sink", task.Attributes{"name": "out{SUFFIX}"}, map[string]config.Expression{
		"input": config.OutputOf("extract"),
	})
	require.NoError(t, err)

	require.NoError(t, f.runner.Run(ctx, extract, sink))
	out, err := sink.Output()
	require.NoError(t, err)
	assert.Equal(t, task.Attributes{"input": "payload", "name": "out.csv"}, out)

	err = f.runner.Run(ctx, sink)
	var notReady *task.OutputNotReadyError
	assert.True(t, errors.As(err, &notReady))
}

func TestRun_ResolvedValuesAreNotSubstitutedAgain(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	f.store.Set("DAY", "2024-01-01")
	f.store.Set("FILTER", `{"a":1}`)

	extract := f.recordingTask("extract", resource.None, `{"id": 7}`)
	v := &task.Variant{
		Name:      "sink",
		Templates: []string{"key", "query", "prefix", "name"},
		Work: task.WorkFunc(func(_ context.Context, env *task.Env) (any, error) {
			return env.Attrs, nil
		}),
	}
	sink, err := v.DefineDeferred("sink", task.Attributes{"prefix": "in/{DAY}"}, map[string]config.Expression{
		"key":   config.OutputOf("extract"),
		"query": config.ValueOf("FILTER"),
		"name":  config.Literal("out/{DAY}.json"),
	})
	require.NoError(t, err)

	require.NoError(t, f.runner.Run(ctx, extract, sink))
	out, err := sink.Output()
	require.NoError(t, err)
	assert.Equal(t, task.Attributes{
		"key":    `{"id": 7}`,
		"query":  `{"a":1}`,
		"prefix": "in/2024-01-01",
		"name":   "out/2024-01-01.json",
	}, out)
}

func TestRun_NilWork(t *testing.T) {
	ctx, _ := testutil.Context(t)
	f := newFixture(t)
	err := f.runner.Run(ctx, &task.Definition{Name: "empty"})
	assert.ErrorIs(t, err, task.ErrNoWork)
}

type countingManager struct {
	inner ResourceManager
	calls *int
}

func (m *countingManager) Ensure(ctx context.Context, kind resource.Kind, override *config.Store) (any, error) {
	return m.inner.Ensure(ctx, kind, override)
}

func (m *countingManager) CloseAll(ctx context.Context) error {
	*m.calls++
	return m.inner.CloseAll(ctx)
}
