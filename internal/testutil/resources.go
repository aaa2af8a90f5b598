package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/resource"
)

// Journal records resource and task events in order, so tests can assert
// on the exact interleaving of opens, closes and work.
type Journal struct {
	mu     sync.Mutex
	events []string
}

// Add appends an event.
func (j *Journal) Add(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, fmt.Sprintf(format, args...))
}

// Events returns a copy of the recorded events.
func (j *Journal) Events() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

// Handle is what FakeClient.Open returns.
type Handle struct {
	Kind   resource.Kind
	Serial int
	Config *config.Store
}

func (h *Handle) String() string { return fmt.Sprintf("%s#%d", h.Kind, h.Serial) }

// FakeClient is a resource.Client that records its lifecycle in a Journal.
type FakeClient struct {
	Kind     resource.Kind
	Journal  *Journal
	Required []string
	OpenErr  error
	CloseErr error

	opened int
}

// Open implements resource.Client.
func (c *FakeClient) Open(_ context.Context, cfg *config.Store) (any, error) {
	if c.OpenErr != nil {
		c.Journal.Add("open-failed:%s", c.Kind)
		return nil, c.OpenErr
	}
	c.opened++
	c.Journal.Add("open:%s", c.Kind)
	return &Handle{Kind: c.Kind, Serial: c.opened, Config: cfg}, nil
}

// Close implements resource.Client.
func (c *FakeClient) Close(_ context.Context, handle any) error {
	c.Journal.Add("close:%s", c.Kind)
	return c.CloseErr
}

// RequiredConfigs implements resource.Client.
func (c *FakeClient) RequiredConfigs(*config.Store) []string { return c.Required }

// Opened returns how many handles were opened.
func (c *FakeClient) Opened() int { return c.opened }

// Clients is a resource.Clients over a plain map.
type Clients map[resource.Kind]resource.Client

// Client implements resource.Clients.
func (m Clients) Client(kind resource.Kind) (resource.Client, bool) {
	c, ok := m[kind]
	return c, ok
}

// NewFakeClients returns one FakeClient per kind, all sharing journal.
func NewFakeClients(journal *Journal, kinds ...resource.Kind) (Clients, map[resource.Kind]*FakeClient) {
	clients := make(Clients, len(kinds))
	fakes := make(map[resource.Kind]*FakeClient, len(kinds))
	for _, k := range kinds {
		fc := &FakeClient{Kind: k, Journal: journal}
		clients[k] = fc
		fakes[k] = fc
	}
	return clients, fakes
}
