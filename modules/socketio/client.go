package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Config keys read by the socketio client.
const (
	KeyURL                = "SOCKETIO_URL"
	KeyNamespace          = "SOCKETIO_NAMESPACE"
	KeyInsecureSkipVerify = "SOCKETIO_INSECURE_SKIP_VERIFY"
	KeyConnectTimeout     = "SOCKETIO_CONNECT_TIMEOUT"
)

// DefaultConnectTimeout bounds the wait for the initial connection.
const DefaultConnectTimeout = 15 * time.Second

// Conn is the handle of a socketio resource.
type Conn interface {
	Emit(event string, data any)
	Once(event string, fn func(data ...any))
	ID() string
	Connected() bool
	Disconnect()
}

// socketConn adapts *socket.Socket to Conn.
type socketConn struct {
	s *socket.Socket
}

func (c *socketConn) Emit(event string, data any) { c.s.Emit(event, data) }

func (c *socketConn) Once(event string, fn func(data ...any)) {
	c.s.Once(types.EventName(event), func(data ...any) { fn(data...) })
}

func (c *socketConn) ID() string { return fmt.Sprint(c.s.Id()) }

func (c *socketConn) Connected() bool { return c.s.Connected() }

func (c *socketConn) Disconnect() { c.s.Disconnect() }

// Client opens socketio resources.
type Client struct{}

// RequiredConfigs implements resource.Client.
func (Client) RequiredConfigs(*config.Store) []string { return []string{KeyURL} }

// Open connects to SOCKETIO_URL and waits for the connect event.
func (Client) Open(ctx context.Context, cfg *config.Store) (any, error) {
	rawURL := cfg.Get(KeyURL)
	logger := ctxlog.FromContext(ctx).With("resource", "socketio", "url", rawURL)
	logger.Info("Creating new client instance...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	insecure, err := cfg.Bool(KeyInsecureSkipVerify, false)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Duration(KeyConnectTimeout, DefaultConnectTimeout)
	if err != nil {
		return nil, err
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if insecure {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.GetOr(KeyNamespace, "/"), opts)

	signal := func(err error) {
		select {
		case connectChan <- err:
		default:
		}
	}
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		signal(nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", errs[0])
			}
		}
		signal(err)
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &socketConn{s: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Close implements resource.Client.
func (Client) Close(ctx context.Context, handle any) error {
	conn, ok := handle.(Conn)
	if !ok {
		return fmt.Errorf("unexpected socketio handle %T", handle)
	}
	ctxlog.FromContext(ctx).Info("Destroying socket.io client instance", "sid", conn.ID())
	conn.Disconnect()
	return nil
}
