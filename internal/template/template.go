// Package template substitutes `{key}` placeholders in task attributes with
// values from a lookup, typically the config Store.
//
// `{{` and `}}` produce literal braces. Substituted values are inserted
// verbatim and never rescanned.
package template

import (
	"fmt"
	"strings"
)

// Lookup resolves a placeholder key.
type Lookup interface {
	Lookup(key string) (string, bool)
}

// Values is a Lookup over a plain map with exact key matching.
type Values map[string]string

// Lookup implements Lookup.
func (v Values) Lookup(key string) (string, bool) {
	s, ok := v[key]
	return s, ok
}

// MissingKeyError is returned when a placeholder names a key the lookup
// does not have.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("template references unknown key %q", e.Key)
}

// SyntaxError is returned for malformed placeholders.
type SyntaxError struct {
	Offset int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax error at offset %d: %s", e.Offset, e.Reason)
}

// Substitute replaces every `{key}` in tmpl with its value from lookup.
func Substitute(tmpl string, lookup Lookup) (string, error) {
	if !strings.ContainsAny(tmpl, "{}") {
		return tmpl, nil
	}
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); {
		switch c := tmpl[i]; c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			key, next, err := placeholder(tmpl, i)
			if err != nil {
				return "", err
			}
			var (
				val string
				ok  bool
			)
			if lookup != nil {
				val, ok = lookup.Lookup(key)
			}
			if !ok {
				return "", &MissingKeyError{Key: key}
			}
			b.WriteString(val)
			i = next
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return "", &SyntaxError{Offset: i, Reason: "single '}' encountered"}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// Keys returns the placeholder keys referenced by tmpl, in order of first
// appearance.
func Keys(tmpl string) ([]string, error) {
	var keys []string
	seen := make(map[string]bool)
	for i := 0; i < len(tmpl); {
		switch tmpl[i] {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				i += 2
				continue
			}
			key, next, err := placeholder(tmpl, i)
			if err != nil {
				return nil, err
			}
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
			i = next
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				i += 2
				continue
			}
			return nil, &SyntaxError{Offset: i, Reason: "single '}' encountered"}
		default:
			i++
		}
	}
	return keys, nil
}

// placeholder parses the placeholder opening at tmpl[start] and returns its
// key and the offset just past the closing brace.
func placeholder(tmpl string, start int) (string, int, error) {
	end := strings.IndexAny(tmpl[start+1:], "{}")
	if end < 0 || tmpl[start+1+end] != '}' {
		return "", 0, &SyntaxError{Offset: start, Reason: "unterminated placeholder"}
	}
	key := tmpl[start+1 : start+1+end]
	if key == "" {
		return "", 0, &SyntaxError{Offset: start, Reason: "empty placeholder"}
	}
	return key, start + end + 2, nil
}
