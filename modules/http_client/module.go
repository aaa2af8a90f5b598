// Package http_client provides a shareable HTTP client resource and the
// task variants that make requests and upload payloads with it.
package http_client

import (
	"fmt"
	"net/http"

	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/CadentTech/bigrays/internal/resource"
	"github.com/CadentTech/bigrays/internal/task"
)

// Kind is the resource kind of an HTTP client.
const Kind resource.Kind = "http"

// Module implements the registry.Module interface. It registers the http
// resource client and the variants that use it.
type Module struct{}

var (
	// RequestVariant performs a single request and outputs a map with
	// status_code and body.
	RequestVariant = &task.Variant{
		Name:        "http_request",
		Description: "Make an HTTP request.",
		Resource:    Kind,
		Required:    []string{"url"},
		Templates:   []string{"url", "method"},
		Defaults:    task.Attributes{"method": http.MethodGet},
		Work:        task.WorkFunc(runRequest),
	}
	// UploadVariant PUTs its input, or the file at source_path, to a
	// pre-signed URL.
	UploadVariant = &task.Variant{
		Name:        "http_upload",
		Description: "Upload the input or a local file to a pre-signed URL.",
		Resource:    Kind,
		Required:    []string{"url"},
		Templates:   []string{"url", "source_path", "content_type"},
		Work:        task.WorkFunc(runUpload),
	}
)

// Register registers all of the module's components with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClient(Kind, Client{})
	r.RegisterVariant(RequestVariant)
	r.RegisterVariant(UploadVariant)
}

func client(env *task.Env) (*http.Client, error) {
	c, ok := env.Handle.(*http.Client)
	if !ok || c == nil {
		return nil, fmt.Errorf("http client dependency was not injected")
	}
	return c, nil
}
