package resource

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// journal records open/close events across all fake clients.
type journal struct {
	events []string
}

type fakeClient struct {
	kind     Kind
	j        *journal
	openErr  error
	closeErr error
	opened   int
}

func (c *fakeClient) Open(_ context.Context, cfg *config.Store) (any, error) {
	if c.openErr != nil {
		c.j.events = append(c.j.events, "open-failed:"+string(c.kind))
		return nil, c.openErr
	}
	c.opened++
	c.j.events = append(c.j.events, "open:"+string(c.kind))
	return fmt.Sprintf("%s#%d", c.kind, c.opened), nil
}

func (c *fakeClient) Close(_ context.Context, handle any) error {
	c.j.events = append(c.j.events, fmt.Sprintf("close:%v", handle))
	return c.closeErr
}

func (c *fakeClient) RequiredConfigs(*config.Store) []string { return nil }

type clientMap map[Kind]Client

func (m clientMap) Client(kind Kind) (Client, bool) {
	c, ok := m[kind]
	return c, ok
}

func newFakes() (*journal, *fakeClient, *fakeClient, clientMap) {
	j := &journal{}
	sql := &fakeClient{kind: "sql-session", j: j}
	s3 := &fakeClient{kind: "object-store", j: j}
	return j, sql, s3, clientMap{sql.kind: sql, s3.kind: s3}
}

func TestManager_EnsureNoneIsNoop(t *testing.T) {
	j, _, _, clients := newFakes()
	m := NewManager(clients, config.NewStore())

	h, err := m.Ensure(context.Background(), None, nil)
	require.NoError(t, err)
	assert.Nil(t, h)
	_, open := m.Current()
	assert.False(t, open)
	assert.Empty(t, j.events)
}

func TestManager_ReusesSameKind(t *testing.T) {
	ctx := context.Background()
	j, _, _, clients := newFakes()
	m := NewManager(clients, config.NewStore())

	h1, err := m.Ensure(ctx, "sql-session", nil)
	require.NoError(t, err)
	h2, err := m.Ensure(ctx, "sql-session", nil)
	require.NoError(t, err)
	_, err = m.Ensure(ctx, None, nil)
	require.NoError(t, err)
	h3, err := m.Ensure(ctx, "sql-session", nil)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Equal(t, h1, h3, "a task without a resource must not close the open one")
	require.NoError(t, m.CloseAll(ctx))
	assert.Equal(t, []string{"open:sql-session", "close:sql-session#1"}, j.events)
}

func TestManager_SwitchClosesBeforeOpening(t *testing.T) {
	ctx := context.Background()
	j, _, _, clients := newFakes()
	m := NewManager(clients, config.NewStore())

	for _, k := range []Kind{"sql-session", "object-store", "sql-session"} {
		_, err := m.Ensure(ctx, k, nil)
		require.NoError(t, err)
	}
	require.NoError(t, m.CloseAll(ctx))

	assert.Equal(t, []string{
		"open:sql-session",
		"close:sql-session#1",
		"open:object-store",
		"close:object-store#1",
		"open:sql-session",
		"close:sql-session#2",
	}, j.events)
}

func TestManager_DifferentConfigForcesReopen(t *testing.T) {
	ctx := context.Background()
	j, _, _, clients := newFakes()
	base := config.NewStore()
	override := base.With(map[string]string{"DB_DSN": "other"})
	m := NewManager(clients, base)

	_, err := m.Ensure(ctx, "sql-session", nil)
	require.NoError(t, err)
	_, err = m.Ensure(ctx, "sql-session", override)
	require.NoError(t, err)
	_, err = m.Ensure(ctx, "sql-session", override)
	require.NoError(t, err)

	assert.Equal(t, []string{"open:sql-session", "close:sql-session#1", "open:sql-session"}, j.events)
}

func TestManager_ReleaseFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	j, sql, _, clients := newFakes()
	sql.closeErr = errors.New("connection reset")
	m := NewManager(clients, config.NewStore())

	_, err := m.Ensure(ctx, "sql-session", nil)
	require.NoError(t, err)
	h, err := m.Ensure(ctx, "object-store", nil)
	require.NoError(t, err)
	assert.Equal(t, "object-store#1", h)

	kind, open := m.Current()
	assert.True(t, open)
	assert.Equal(t, Kind("object-store"), kind)
	assert.Equal(t, []string{"open:sql-session", "close:sql-session#1", "open:object-store"}, j.events)
}

func TestManager_AcquireFailureLeavesClosed(t *testing.T) {
	ctx := context.Background()
	j, _, s3, clients := newFakes()
	s3.openErr = errors.New("bad credentials")
	m := NewManager(clients, config.NewStore())

	_, err := m.Ensure(ctx, "sql-session", nil)
	require.NoError(t, err)
	_, err = m.Ensure(ctx, "object-store", nil)

	var acquireErr *AcquireError
	require.True(t, errors.As(err, &acquireErr))
	assert.Equal(t, Kind("object-store"), acquireErr.Kind)
	assert.ErrorContains(t, err, "bad credentials")

	_, open := m.Current()
	assert.False(t, open)
	require.NoError(t, m.CloseAll(ctx))
	assert.Equal(t, []string{"open:sql-session", "close:sql-session#1", "open-failed:object-store"}, j.events)
}

func TestManager_UnknownKind(t *testing.T) {
	_, _, _, clients := newFakes()
	m := NewManager(clients, config.NewStore())

	_, err := m.Ensure(context.Background(), "ftp", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestManager_CloseAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	j, sql, _, clients := newFakes()
	sql.closeErr = errors.New("boom")
	m := NewManager(clients, config.NewStore())

	require.NoError(t, m.CloseAll(ctx))
	_, err := m.Ensure(ctx, "sql-session", nil)
	require.NoError(t, err)

	err = m.CloseAll(ctx)
	var releaseErr *ReleaseError
	require.True(t, errors.As(err, &releaseErr))
	assert.Equal(t, Kind("sql-session"), releaseErr.Kind)

	require.NoError(t, m.CloseAll(ctx))
	assert.Equal(t, []string{"open:sql-session", "close:sql-session#1"}, j.events)
}
