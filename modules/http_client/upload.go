package http_client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/table"
	"github.com/CadentTech/bigrays/internal/task"
)

// payload opens the upload body and reports its size and a name to guess
// the content type from.
func payload(env *task.Env, target string) (io.ReadCloser, int64, string, error) {
	if env.Attrs.Has("source_path") {
		path, err := env.Attrs.String("source_path")
		if err != nil {
			return nil, 0, "", err
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, 0, "", fmt.Errorf("failed to open source file '%s': %w", path, err)
		}
		stat, err := file.Stat()
		if err != nil {
			file.Close()
			return nil, 0, "", fmt.Errorf("failed to get file stats for '%s': %w", path, err)
		}
		return file, stat.Size(), path, nil
	}
	if !env.Attrs.Has("input") {
		return nil, 0, "", fmt.Errorf("one of input or source_path must be set")
	}
	b, err := table.Bytes(env.Attrs["input"])
	if err != nil {
		return nil, 0, "", fmt.Errorf("input: %w", err)
	}
	name := target
	if u, err := url.Parse(target); err == nil {
		name = u.Path
	}
	return io.NopCloser(bytes.NewReader(b)), int64(len(b)), name, nil
}

func runUpload(ctx context.Context, env *task.Env) (any, error) {
	c, err := client(env)
	if err != nil {
		return nil, err
	}
	target, err := env.Attrs.String("url")
	if err != nil {
		return nil, err
	}
	body, size, name, err := payload(env, target)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}

	contentType, err := env.Attrs.StringOr("content_type", mime.TypeByExtension(filepath.Ext(name)))
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = size

	logger := ctxlog.FromContext(ctx).With("action", "upload")
	logger.Info("Uploading payload", "name", name, "size", size, "contentType", contentType)

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upload failed with status: %s", resp.Status)
	}
	logger.Info("Successfully uploaded payload", "status", resp.Status)

	return map[string]any{"status_code": int64(resp.StatusCode)}, nil
}
