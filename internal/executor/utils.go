package executor

import (
	"fmt"
	"unicode/utf8"

	"github.com/CadentTech/bigrays/internal/task"
)

const maxLoggedString = 120

// formatAttrsForLogs converts attributes to a loggable form. Long strings are
// truncated and byte payloads are summarised by size.
func formatAttrsForLogs(attrs task.Attributes) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = formatValueForLogs(v)
	}
	return out
}

func formatValueForLogs(v any) any {
	switch val := v.(type) {
	case string:
		if len(val) > maxLoggedString {
			cut := maxLoggedString
			for cut > 0 && !utf8.RuneStart(val[cut]) {
				cut--
			}
			return val[:cut] + "…"
		}
		return val
	case []byte:
		return fmt.Sprintf("[%d bytes]", len(val))
	case fmt.Stringer:
		return formatValueForLogs(val.String())
	default:
		return v
	}
}
