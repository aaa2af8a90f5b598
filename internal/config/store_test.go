package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadEnv_StripsPrefixAndIgnoresOthers(t *testing.T) {
	s := FromEnviron([]string{
		"BIGRAYS_DB_DSN=sqlite::memory:",
		"BIGRAYS_aws_region=us-east-1",
		"HOME=/root",
		"BIGRAYS_=ignored",
		"BIGRAYS_EMPTY=",
		"malformed",
	})

	assert.Equal(t, "sqlite::memory:", s.Get("DB_DSN"))
	assert.Equal(t, "us-east-1", s.Get("AWS_REGION"))
	v, ok := s.Lookup("EMPTY")
	assert.True(t, ok)
	assert.Empty(t, v)
	_, ok = s.Lookup("HOME")
	assert.False(t, ok)
	assert.Equal(t, []string{"AWS_REGION", "DB_DSN", "EMPTY"}, s.Keys())
}

func TestStore_ExplicitBeatsEnvironment(t *testing.T) {
	s := NewStore()
	s.Set("x", "explicit-1")
	s.LoadEnv(EnvPrefix, []string{"BIGRAYS_X=from-env"})
	assert.Equal(t, "explicit-1", s.Get("X"), "explicit assignment must win even when the env is loaded later")

	s.Set("X", "explicit-2")
	assert.Equal(t, "explicit-2", s.Get("x"), "last explicit write wins")

	s.Unset("X")
	assert.Equal(t, "from-env", s.Get("X"))
}

func TestStore_Missing(t *testing.T) {
	s := NewStore()
	s.Set("A", "1")
	s.Set("B", "")
	assert.Equal(t, []string{"B", "C"}, s.Missing("a", "b", "c"))
	assert.Nil(t, s.Missing("A"))
}

func TestStore_TypedAccessors(t *testing.T) {
	s := NewStore()
	s.Set("ON", "yes")
	s.Set("OFF", "false")
	s.Set("BAD", "maybe")
	s.Set("SECS", "5")
	s.Set("DUR", "250ms")

	b, err := s.Bool("ON", false)
	require.NoError(t, err)
	assert.True(t, b)
	b, err = s.Bool("OFF", true)
	require.NoError(t, err)
	assert.False(t, b)
	b, err = s.Bool("UNSET", true)
	require.NoError(t, err)
	assert.True(t, b)
	_, err = s.Bool("BAD", false)
	assert.Error(t, err)

	d, err := s.Duration("SECS", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
	d, err = s.Duration("DUR", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
	d, err = s.Duration("UNSET", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)
}

func TestStore_CloneAndWithAreIndependent(t *testing.T) {
	s := NewStore()
	s.Set("A", "1")
	o := s.With(map[string]string{"b": "2"})
	s.Set("A", "changed")

	assert.Equal(t, "1", o.Get("A"))
	assert.Equal(t, "2", o.Get("B"))
	_, ok := s.Lookup("B")
	assert.False(t, ok)
}

func TestOverrideKey_IsOrderAndCaseInsensitive(t *testing.T) {
	a := OverrideKey(map[string]string{"db_dsn": "x", "DB_FLAVOR": "sqlite"})
	b := OverrideKey(map[string]string{"DB_FLAVOR": "sqlite", "DB_DSN": "x"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, OverrideKey(map[string]string{"DB_DSN": "y", "DB_FLAVOR": "sqlite"}))
	assert.Empty(t, OverrideKey(nil))
}

type mapScope struct {
	outputs map[string]any
	store   *Store
}

func (m mapScope) Output(name string) (any, error) {
	v, ok := m.outputs[name]
	if !ok {
		return nil, errors.New("not ready")
	}
	return v, nil
}

func (m mapScope) Lookup(key string) (string, bool) { return m.store.Lookup(key) }

func TestExpressions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.Set("BUCKET", "b")
	scope := mapScope{outputs: map[string]any{"extract": []int{1, 2}}, store: s}

	v, err := Literal(42).Evaluate(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = OutputOf("extract").Evaluate(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, v)

	_, err = OutputOf("later").Evaluate(ctx, scope)
	assert.ErrorContains(t, err, `task "later"`)

	v, err = ValueOf("bucket").Evaluate(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	_, err = ValueOf("nope").Evaluate(ctx, scope)
	assert.ErrorContains(t, err, "NOPE")
}

func TestModel_MergeRejectsDuplicates(t *testing.T) {
	m := &Model{Tasks: []*Task{{Name: "a", Source: "one.hcl:1"}}}
	require.NoError(t, m.Merge(&Model{
		Settings: []Setting{{Key: "K", Value: "v"}},
		Tasks:    []*Task{{Name: "b", Source: "two.hcl:1"}},
	}))
	assert.Len(t, m.Tasks, 2)

	err := m.Merge(&Model{Tasks: []*Task{{Name: "a", Source: "three.hcl:4"}}})
	assert.ErrorContains(t, err, "three.hcl:4")

	s := NewStore()
	m.ApplyTo(s)
	assert.Equal(t, "v", s.Get("k"))
}
