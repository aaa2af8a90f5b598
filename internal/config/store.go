package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// EnvPrefix marks the environment variables that are loaded into a Store.
const EnvPrefix = "BIGRAYS_"

// Store maps uppercase configuration keys to string values.
//
// Values come from two layers. The environment layer is filled by LoadEnv;
// the explicit layer is filled by Set. A key set explicitly shadows the same
// key from the environment no matter which happened first.
//
// A Store is mutated before a run and only read while tasks execute, so it
// carries no locking.
type Store struct {
	env      map[string]string
	explicit map[string]string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		env:      make(map[string]string),
		explicit: make(map[string]string),
	}
}

// FromEnviron returns a Store whose environment layer is loaded from environ
// (in os.Environ form) using EnvPrefix.
func FromEnviron(environ []string) *Store {
	s := NewStore()
	s.LoadEnv(EnvPrefix, environ)
	return s
}

var (
	processOnce  sync.Once
	processStore *Store
)

// Process returns the process-wide Store, loading it from the current
// environment on first use.
func Process() *Store {
	processOnce.Do(func() {
		processStore = FromEnviron(os.Environ())
	})
	return processStore
}

// Normalize returns the canonical form of a key.
func Normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// EnvName returns the environment variable that feeds key.
func EnvName(key string) string {
	return EnvPrefix + Normalize(key)
}

// LoadEnv copies every variable in environ that starts with prefix into the
// environment layer, with the prefix stripped. Later duplicates win.
func (s *Store) LoadEnv(prefix string, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		key := Normalize(strings.TrimPrefix(name, prefix))
		if key == "" {
			continue
		}
		s.env[key] = value
	}
}

// Set assigns key explicitly. The last explicit write wins.
func (s *Store) Set(key, value string) {
	s.explicit[Normalize(key)] = value
}

// Unset removes an explicit assignment, exposing the environment value again
// if there is one.
func (s *Store) Unset(key string) {
	delete(s.explicit, Normalize(key))
}

// Lookup returns the effective value of key and whether it is present.
// Lookup implements template.Lookup.
func (s *Store) Lookup(key string) (string, bool) {
	key = Normalize(key)
	if v, ok := s.explicit[key]; ok {
		return v, true
	}
	v, ok := s.env[key]
	return v, ok
}

// Get returns the effective value of key, or "" when it is absent.
func (s *Store) Get(key string) string {
	v, _ := s.Lookup(key)
	return v
}

// GetOr returns the effective value of key, or def when it is absent or empty.
func (s *Store) GetOr(key, def string) string {
	if v, ok := s.Lookup(key); ok && v != "" {
		return v
	}
	return def
}

// Bool parses key as a boolean, returning def when it is absent or empty.
func (s *Store) Bool(key string, def bool) (bool, error) {
	v, ok := s.Lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("config key %s: %q is not a boolean", Normalize(key), v)
	}
	return b, nil
}

// Duration parses key with time.ParseDuration, returning def when it is
// absent or empty. A bare integer is read as seconds.
func (s *Store) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := s.Lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("config key %s: %w", Normalize(key), err)
	}
	return d, nil
}

// Missing returns, in the given order, the keys that are absent or empty.
func (s *Store) Missing(keys ...string) []string {
	var missing []string
	for _, k := range keys {
		if v, ok := s.Lookup(k); !ok || v == "" {
			missing = append(missing, Normalize(k))
		}
	}
	return missing
}

// Keys returns every effective key in sorted order.
func (s *Store) Keys() []string {
	seen := make(map[string]struct{}, len(s.env)+len(s.explicit))
	for k := range s.env {
		seen[k] = struct{}{}
	}
	for k := range s.explicit {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns the effective key/value pairs as a plain map.
func (s *Store) Snapshot() map[string]string {
	out := make(map[string]string, len(s.env)+len(s.explicit))
	for k, v := range s.env {
		out[k] = v
	}
	for k, v := range s.explicit {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy that keeps the two layers apart.
func (s *Store) Clone() *Store {
	c := NewStore()
	for k, v := range s.env {
		c.env[k] = v
	}
	for k, v := range s.explicit {
		c.explicit[k] = v
	}
	return c
}

// With returns a clone with the given keys assigned explicitly.
func (s *Store) With(overrides map[string]string) *Store {
	c := s.Clone()
	for k, v := range overrides {
		c.Set(k, v)
	}
	return c
}
