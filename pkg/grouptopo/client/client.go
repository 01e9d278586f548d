// Package client implements GroupCommClient, the task-level entry point:
// one instance per task process, owning every CommunicationGroupClient
// the task participates in and routing inbound traffic to them.
package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/jabolina/grouptopo/pkg/grouptopo/group"
	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
	"github.com/jabolina/grouptopo/pkg/grouptopo/logging"
	"github.com/jabolina/grouptopo/pkg/grouptopo/nameservice"
	"github.com/jabolina/grouptopo/pkg/grouptopo/wire"
)

// GroupCommClient is the task-level singleton spec.md §4.5 describes: it
// registers the task's own endpoint with the name service once at
// startup (Register) and retracts it on shutdown (Close), then owns one
// CommunicationGroupClient per group the task participates in.
type GroupCommClient struct {
	Self      ids.TaskID
	log       logging.Logger
	registrar nameservice.Registrar
	endpoint  string

	mu     sync.RWMutex
	groups map[ids.GroupName]*group.CommunicationGroupClient
}

// New builds a GroupCommClient for self, listening at endpoint. registrar
// is the name service this task announces itself to in Register and
// retracts itself from in Close; it may be nil for a client that never
// calls Register (e.g. a test harness wiring its own name service
// directly).
func New(self ids.TaskID, log logging.Logger, registrar nameservice.Registrar, endpoint string) *GroupCommClient {
	return &GroupCommClient{
		Self:      self,
		log:       log,
		registrar: registrar,
		endpoint:  endpoint,
		groups:    make(map[ids.GroupName]*group.CommunicationGroupClient),
	}
}

// Register announces this task's endpoint to the name service. Callers
// invoke it once, after the task's own Transport server is already
// serving (so a peer resolving this task can reach it immediately), and
// before InitializeAll.
func (c *GroupCommClient) Register(ctx context.Context) error {
	if c.registrar == nil {
		return nil
	}
	if err := c.registrar.Register(ctx, c.Self, c.endpoint); err != nil {
		return fmt.Errorf("task %s: registering with name service: %w", c.Self, err)
	}
	return nil
}

// GroupFor returns the named group's client, creating it empty on first
// use so config loading and operator registration can proceed group by
// group without a separate "declare the group" step.
func (c *GroupCommClient) GroupFor(name ids.GroupName) *group.CommunicationGroupClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.groups[name]
	if !ok {
		g = group.New(name, c.log)
		c.groups[name] = g
	}
	return g
}

// Group returns the named group's client if it has been created.
func (c *GroupCommClient) Group(name ids.GroupName) (*group.CommunicationGroupClient, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.groups[name]
	return g, ok
}

// InitializeAll runs every group's InitializeAll. The first group to fail
// aborts the rest, matching a single operator's failure being fatal to
// its own group.
func (c *GroupCommClient) InitializeAll(ctx context.Context) error {
	c.mu.RLock()
	groups := make([]*group.CommunicationGroupClient, 0, len(c.groups))
	for _, g := range c.groups {
		groups = append(groups, g)
	}
	c.mu.RUnlock()

	for _, g := range groups {
		c.log.Infof("task %s: initializing group %s", c.Self, g.Name())
		if err := g.InitializeAll(ctx); err != nil {
			return fmt.Errorf("task %s: %w", c.Self, err)
		}
	}
	return nil
}

// Close retracts this task's registration, if any, then tears down every
// group this task owns.
func (c *GroupCommClient) Close() {
	if c.registrar != nil {
		if err := c.registrar.Unregister(context.Background(), c.Self); err != nil {
			c.log.Warnf("task %s: unregistering from name service: %v", c.Self, err)
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, g := range c.groups {
		g.Close()
	}
}

// GroupNames returns the names of every group this task has created,
// for diagnostics.
func (c *GroupCommClient) GroupNames() []ids.GroupName {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]ids.GroupName, 0, len(c.groups))
	for name := range c.groups {
		names = append(names, name)
	}
	return names
}

// Dispatch routes an inbound frame to its group, the entry point the
// MessageRouter's gRPC Send handler calls.
func (c *GroupCommClient) Dispatch(msg wire.FramedMessage) error {
	key := ids.Key{Group: msg.Group, Operator: msg.Operator}
	g, ok := c.Group(msg.Group)
	if !ok {
		return fmt.Errorf("task %s: routing %s: unknown group", c.Self, key)
	}
	if err := g.Dispatch(msg); err != nil {
		return fmt.Errorf("task %s: routing %s: %w", c.Self, key, err)
	}
	return nil
}
