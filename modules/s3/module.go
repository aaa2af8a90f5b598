// Package s3 provides the object-store resource, backed by Amazon S3, and
// the task variants that upload, download and list objects.
package s3

import (
	"context"
	"fmt"

	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/CadentTech/bigrays/internal/resource"
	"github.com/CadentTech/bigrays/internal/table"
	"github.com/CadentTech/bigrays/internal/task"
)

// Kind is the resource kind of an object store client.
const Kind resource.Kind = "object-store"

// Module implements the registry.Module interface for this package.
type Module struct{}

var (
	// UploadVariant uploads its input. Tables are written as CSV.
	UploadVariant = &task.Variant{
		Name:        "to_s3",
		Description: "Upload the input to s3://bucket/key.",
		Resource:    Kind,
		Required:    []string{"input", "bucket", "key"},
		Templates:   []string{"bucket", "key"},
		Defaults:    task.Attributes{"overwrite_if_exists": false},
		Work:        task.WorkFunc(runUpload),
	}
	// DownloadVariant outputs the object's bytes.
	DownloadVariant = &task.Variant{
		Name:        "from_s3",
		Description: "Download s3://bucket/key.",
		Resource:    Kind,
		Required:    []string{"bucket", "key"},
		Templates:   []string{"bucket", "key"},
		Work:        task.WorkFunc(runDownload),
	}
	// ListVariant outputs the matching keys as a []string.
	ListVariant = &task.Variant{
		Name:        "list_s3_objects",
		Description: "List keys under a prefix, optionally filtered by suffix.",
		Resource:    Kind,
		Required:    []string{"bucket"},
		Templates:   []string{"bucket", "prefix", "suffix"},
		Work:        task.WorkFunc(runList),
	}
	// DeleteVariant removes an object.
	DeleteVariant = &task.Variant{
		Name:        "delete_s3_object",
		Description: "Delete s3://bucket/key.",
		Resource:    Kind,
		Required:    []string{"bucket", "key"},
		Templates:   []string{"bucket", "key"},
		Work:        task.WorkFunc(runDelete),
	}
)

// Register registers the client and variants with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClient(Kind, Client{})
	r.RegisterVariant(UploadVariant)
	r.RegisterVariant(DownloadVariant)
	r.RegisterVariant(ListVariant)
	r.RegisterVariant(DeleteVariant)
}

func store(env *task.Env) (*Store, error) {
	s, ok := env.Handle.(*Store)
	if !ok || s == nil {
		return nil, fmt.Errorf("object-store resource was not provided")
	}
	return s, nil
}

func location(env *task.Env) (bucket, key string, err error) {
	if bucket, err = env.Attrs.String("bucket"); err != nil {
		return "", "", err
	}
	if key, err = env.Attrs.String("key"); err != nil {
		return "", "", err
	}
	return bucket, key, nil
}

func runUpload(ctx context.Context, env *task.Env) (any, error) {
	s, err := store(env)
	if err != nil {
		return nil, err
	}
	bucket, key, err := location(env)
	if err != nil {
		return nil, err
	}
	overwrite, err := env.Attrs.Bool("overwrite_if_exists")
	if err != nil {
		return nil, err
	}
	body, err := table.Bytes(env.Attrs["input"])
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("Uploading object.", "bucket", bucket, "key", key, "size", len(body))
	if err := s.Put(ctx, bucket, key, body, overwrite); err != nil {
		return nil, err
	}
	logger.Info("Successfully uploaded object.", "bucket", bucket, "key", key)
	return nil, nil
}

func runDownload(ctx context.Context, env *task.Env) (any, error) {
	s, err := store(env)
	if err != nil {
		return nil, err
	}
	bucket, key, err := location(env)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Downloading object.", "bucket", bucket, "key", key)
	return s.Get(ctx, bucket, key)
}

func runList(ctx context.Context, env *task.Env) (any, error) {
	s, err := store(env)
	if err != nil {
		return nil, err
	}
	bucket, err := env.Attrs.String("bucket")
	if err != nil {
		return nil, err
	}
	prefix, err := env.Attrs.StringOr("prefix", "")
	if err != nil {
		return nil, err
	}
	suffix, err := env.Attrs.StringOr("suffix", "")
	if err != nil {
		return nil, err
	}
	keys, err := s.List(ctx, bucket, prefix, suffix)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Listed objects.", "bucket", bucket, "prefix", prefix, "count", len(keys))
	return keys, nil
}

func runDelete(ctx context.Context, env *task.Env) (any, error) {
	s, err := store(env)
	if err != nil {
		return nil, err
	}
	bucket, key, err := location(env)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("🔥 Deleting object.", "bucket", bucket, "key", key)
	return nil, s.Delete(ctx, bucket, key)
}
