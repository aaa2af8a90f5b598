package http_client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/table"
	"github.com/CadentTech/bigrays/internal/task"
)

func runRequest(ctx context.Context, env *task.Env) (any, error) {
	c, err := client(env)
	if err != nil {
		return nil, err
	}
	url, err := env.Attrs.String("url")
	if err != nil {
		return nil, err
	}
	method, err := env.Attrs.StringOr("method", http.MethodGet)
	if err != nil {
		return nil, err
	}
	method = strings.ToUpper(method)

	var body io.Reader
	if env.Attrs.Has("body") {
		b, err := table.Bytes(env.Attrs["body"])
		if err != nil {
			return nil, fmt.Errorf("body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request", "method", method, "url", url)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return map[string]any{
		"status_code": int64(resp.StatusCode),
		"body":        string(bodyBytes),
	}, nil
}
