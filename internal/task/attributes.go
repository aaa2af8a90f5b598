package task

import (
	"fmt"
	"strconv"
)

// Attributes are the named inputs of a task.
type Attributes map[string]any

// Clone returns a shallow copy.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Has reports whether name is present with a non-nil value.
func (a Attributes) Has(name string) bool {
	v, ok := a[name]
	return ok && v != nil
}

// String returns name as a string. Byte slices and fmt.Stringers are
// accepted; any other type is an error.
func (a Attributes) String(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", fmt.Errorf("attribute %q is not set", name)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	}
	return "", fmt.Errorf("attribute %q must be a string, got %T", name, v)
}

// StringOr returns name as a string, or def when it is absent.
func (a Attributes) StringOr(name, def string) (string, error) {
	if !a.Has(name) {
		return def, nil
	}
	return a.String(name)
}

// Bool returns name as a bool. An absent attribute is false; strings are
// parsed with strconv.ParseBool.
func (a Attributes) Bool(name string) (bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return false, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("attribute %q: %q is not a boolean", name, b)
		}
		return parsed, nil
	}
	return false, fmt.Errorf("attribute %q must be a bool, got %T", name, v)
}

// Value returns the raw value of name, or an error when it is absent.
func (a Attributes) Value(name string) (any, error) {
	v, ok := a[name]
	if !ok {
		return nil, fmt.Errorf("attribute %q is not set", name)
	}
	return v, nil
}
