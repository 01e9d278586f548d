// Package test holds fixtures shared by every pkg/grouptopo/... test
// package: an in-memory Sender/NameLookup pair that wires a handful of
// operator.Topology instances together without a network, the shape the
// teacher's own test/testing.go used for its Peer fixtures.
package test

import (
	"context"
	"fmt"
	"sync"

	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
	"github.com/jabolina/grouptopo/pkg/grouptopo/wire"
)

// FakeNameService resolves every task id registered with it and nothing
// else, standing in for the driver-mediated name service in tests.
type FakeNameService struct {
	mu        sync.Mutex
	endpoints map[ids.TaskID]string
}

func NewFakeNameService() *FakeNameService {
	return &FakeNameService{endpoints: make(map[ids.TaskID]string)}
}

// RegisterAll marks every id as resolvable, the common case for a test
// cluster that is already fully formed before Initialize runs.
func (f *FakeNameService) RegisterAll(ids ...ids.TaskID) *FakeNameService {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.endpoints[id] = string(id)
	}
	return f
}

func (f *FakeNameService) Lookup(_ context.Context, id ids.TaskID) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	endpoint, ok := f.endpoints[id]
	return endpoint, ok, nil
}

// RecordingSender records every FramedMessage handed to it and, if route
// is set, forwards the call synchronously — the loopback transport a
// cluster of in-process topologies uses to exchange messages without a
// network.
type RecordingSender struct {
	mu    sync.Mutex
	sent  []wire.FramedMessage
	route func(wire.FramedMessage) error
}

func NewRecordingSender(route func(wire.FramedMessage) error) *RecordingSender {
	return &RecordingSender{route: route}
}

func (s *RecordingSender) Send(_ context.Context, msg wire.FramedMessage) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	if s.route == nil {
		return nil
	}
	return s.route(msg)
}

func (s *RecordingSender) Sent() []wire.FramedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wire.FramedMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

// Deliverer is implemented by anything that can accept an inbound
// FramedMessage — satisfied by *operator.Topology[T].OnMessage bound as a
// method value, so Cluster stays free of a type parameter of its own.
type Deliverer func(wire.FramedMessage) error

// Cluster is a registry of Deliverer by task id, used to build a Sender
// that routes a message straight into the destination's OnMessage without
// going through gRPC.
type Cluster struct {
	mu    sync.Mutex
	nodes map[ids.TaskID]Deliverer
}

func NewCluster() *Cluster {
	return &Cluster{nodes: make(map[ids.TaskID]Deliverer)}
}

func (c *Cluster) Register(id ids.TaskID, d Deliverer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes[id] = d
}

// Sender returns a Sender that looks msg.Destination up in the cluster
// and calls its Deliverer inline. The returned RecordingSender also
// records every message, so tests can assert on what was sent.
func (c *Cluster) Sender() *RecordingSender {
	return NewRecordingSender(func(msg wire.FramedMessage) error {
		c.mu.Lock()
		d, ok := c.nodes[msg.Destination]
		c.mu.Unlock()
		if !ok {
			return fmt.Errorf("test cluster: no node registered for destination %s", msg.Destination)
		}
		return d(msg)
	})
}
