package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/CadentTech/bigrays/internal/table"
	"github.com/CadentTech/bigrays/internal/task"
)

// Module implements the registry.Module interface for this package. Out
// defaults to os.Stdout.
type Module struct {
	Out io.Writer
}

// NewVariant returns a print variant that writes to out.
func NewVariant(out io.Writer) *task.Variant {
	return &task.Variant{
		Name:        "print",
		Description: "Print the input.",
		Templates:   []string{"input"},
		Work: task.WorkFunc(func(ctx context.Context, env *task.Env) (any, error) {
			return nil, write(ctx, out, env.Attrs["input"])
		}),
	}
}

// Variant prints to standard output.
var Variant = NewVariant(os.Stdout)

func write(ctx context.Context, out io.Writer, v any) error {
	ctxlog.FromContext(ctx).Info("Printing input")

	switch val := v.(type) {
	case nil:
		_, err := fmt.Fprintln(out, "      (null)")
		return err
	case *table.Table:
		return val.WriteCSV(out)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(out, "      %s = %q\n", k, table.FormatCell(val[k])); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(out, table.FormatCell(val))
		return err
	}
}

// Register registers the variant with the engine.
func (m *Module) Register(r *registry.Registry) {
	if m.Out == nil {
		r.RegisterVariant(Variant)
		return
	}
	r.RegisterVariant(NewVariant(m.Out))
}
