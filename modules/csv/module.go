// Package csv provides task variants that write tables to local CSV files
// and read them back.
package csv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/CadentTech/bigrays/internal/table"
	"github.com/CadentTech/bigrays/internal/task"
)

// ErrFileExists is returned when to_csv would replace a file and
// overwrite_if_exists is false.
var ErrFileExists = errors.New("file already exists")

// Module implements the registry.Module interface for this package.
type Module struct{}

var (
	// WriteVariant writes its input table to filename.
	WriteVariant = &task.Variant{
		Name:        "to_csv",
		Description: "Write a table to a local CSV file.",
		Required:    []string{"input", "filename"},
		Templates:   []string{"filename"},
		Defaults:    task.Attributes{"overwrite_if_exists": false},
		Work:        task.WorkFunc(runWrite),
	}
	// ReadVariant outputs the table in filename. Every cell is a string.
	ReadVariant = &task.Variant{
		Name:        "from_csv",
		Description: "Read a local CSV file into a table.",
		Required:    []string{"filename"},
		Templates:   []string{"filename"},
		Work:        task.WorkFunc(runRead),
	}
)

// Register registers the variants with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterVariant(WriteVariant)
	r.RegisterVariant(ReadVariant)
}

func runWrite(ctx context.Context, env *task.Env) (any, error) {
	filename, err := env.Attrs.String("filename")
	if err != nil {
		return nil, err
	}
	overwrite, err := env.Attrs.Bool("overwrite_if_exists")
	if err != nil {
		return nil, err
	}
	t, ok := env.Attrs["input"].(*table.Table)
	if !ok {
		return nil, fmt.Errorf("input must be a table, got %T", env.Attrs["input"])
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(filename, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%s: %w; set overwrite_if_exists to replace it", filename, ErrFileExists)
		}
		return nil, err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing %s: %w", filename, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Wrote CSV file.", "filename", filename, "rows", t.Len())
	return int64(t.Len()), nil
}

func runRead(ctx context.Context, env *task.Env) (any, error) {
	filename, err := env.Attrs.String("filename")
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	t, err := table.ReadCSV(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	ctxlog.FromContext(ctx).Info("Read CSV file.", "filename", filename, "rows", t.Len())
	return t, nil
}
