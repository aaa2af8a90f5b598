package http_client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/ctxlog"
)

// KeyTimeout bounds every request made through the client.
const KeyTimeout = "HTTP_TIMEOUT"

// DefaultTimeout applies when HTTP_TIMEOUT is unset.
const DefaultTimeout = 30 * time.Second

// Client opens http resources. The handle is a *http.Client shared by every
// consecutive task of this kind.
type Client struct{}

// RequiredConfigs implements resource.Client.
func (Client) RequiredConfigs(*config.Store) []string { return nil }

// Open implements resource.Client.
func (Client) Open(ctx context.Context, cfg *config.Store) (any, error) {
	timeout, err := cfg.Duration(KeyTimeout, DefaultTimeout)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Creating HTTP client.", "timeout", timeout)
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}, nil
}

// Close closes idle connections.
func (Client) Close(_ context.Context, handle any) error {
	client, ok := handle.(*http.Client)
	if !ok {
		return fmt.Errorf("unexpected http handle %T", handle)
	}
	client.CloseIdleConnections()
	return nil
}
