package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/fsutil"
	"github.com/CadentTech/bigrays/internal/hcl"
	"github.com/CadentTech/bigrays/internal/yamljob"
)

// loaders maps a file extension to the loader for that format.
func loaders() map[string]config.Loader {
	y := yamljob.NewLoader()
	m := map[string]config.Loader{hcl.Extension: hcl.NewLoader()}
	for _, ext := range yamljob.Extensions {
		m[ext] = y
	}
	return m
}

// LoadJobs reads every job file under paths, in path order and then lexical
// file order, and merges them into one model.
func LoadJobs(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	byExt := loaders()
	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	model := &config.Model{}
	for _, path := range paths {
		files, err := fsutil.FindFilesByExtension(path, exts...)
		if err != nil {
			return nil, fmt.Errorf("finding job files in %s: %w", path, err)
		}
		if len(files) == 0 {
			logger.Warn("No job files found in path", "path", path)
		}
		for _, file := range files {
			src, err := os.ReadFile(file)
			if err != nil {
				return nil, err
			}
			m, err := byExt[filepath.Ext(file)].LoadSource(file, src)
			if err != nil {
				return nil, err
			}
			if err := model.Merge(m); err != nil {
				return nil, err
			}
			logger.Debug("Loaded job file.", "file", file, "tasks", len(m.Tasks), "settings", len(m.Settings))
		}
	}
	logger.Info("Job files loaded.", "tasks", len(model.Tasks))
	return model, nil
}
