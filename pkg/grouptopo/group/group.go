// Package group implements CommunicationGroupClient, the per-group facade
// that owns a name's set of OperatorTopology instances (spec.md §4.4).
package group

import (
	"context"
	"fmt"
	"sync"

	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
	"github.com/jabolina/grouptopo/pkg/grouptopo/logging"
	"github.com/jabolina/grouptopo/pkg/grouptopo/operator"
	"github.com/jabolina/grouptopo/pkg/grouptopo/wire"
)

// CommunicationGroupClient owns every operator declared for one named
// group on the local task, grounded on the teacher's pkg/mcast/protocol.go
// "build every component, then start it" constructor. Unlike the teacher,
// which wires a single fixed protocol, a group here is an open registry:
// operators are added as their configuration is parsed (config package)
// and initialized together.
type CommunicationGroupClient struct {
	name ids.GroupName
	log  logging.Logger

	mu        sync.RWMutex
	operators map[ids.OperatorName]operator.Handle
}

// New creates an empty group client. Operators are attached with Register
// before InitializeAll is called.
func New(name ids.GroupName, log logging.Logger) *CommunicationGroupClient {
	return &CommunicationGroupClient{
		name:      name,
		log:       log,
		operators: make(map[ids.OperatorName]operator.Handle),
	}
}

func (g *CommunicationGroupClient) Name() ids.GroupName {
	return g.name
}

// Register attaches an operator topology to this group. It is an
// ArgumentError (spec.md's error-kind vocabulary) to register the same
// operator name twice.
func (g *CommunicationGroupClient) Register(handle operator.Handle) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.operators[handle.Operator()]; exists {
		return fmt.Errorf("group %s: operator %s already registered: %w", g.name, handle.Operator(), operator.ErrArgument)
	}
	g.operators[handle.Operator()] = handle
	return nil
}

// Operator returns the named operator's type-erased handle. Callers that
// need the typed Send/Receive surface recover it with operator.Typed.
func (g *CommunicationGroupClient) Operator(name ids.OperatorName) (operator.Handle, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	h, ok := g.operators[name]
	return h, ok
}

// Operators returns a snapshot of every registered handle, keyed by name.
func (g *CommunicationGroupClient) Operators() map[ids.OperatorName]operator.Handle {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[ids.OperatorName]operator.Handle, len(g.operators))
	for k, v := range g.operators {
		out[k] = v
	}
	return out
}

// InitializeAll calls Initialize on every registered operator. An
// InitializationError from any one operator is fatal to the whole group
// (spec.md §4.3's Initialize note: the task should treat it as fatal), so
// the first failure aborts the remaining operators without attempting
// them.
func (g *CommunicationGroupClient) InitializeAll(ctx context.Context) error {
	g.mu.RLock()
	handles := make([]operator.Handle, 0, len(g.operators))
	for _, h := range g.operators {
		handles = append(handles, h)
	}
	g.mu.RUnlock()

	for _, h := range handles {
		g.log.Infof("group %s: initializing operator %s", g.name, h.Operator())
		if err := h.Initialize(ctx); err != nil {
			return fmt.Errorf("group %s: operator %s: %w", g.name, h.Operator(), err)
		}
	}
	return nil
}

// Close tears down every operator in this group.
func (g *CommunicationGroupClient) Close() {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, h := range g.operators {
		h.Close()
	}
}

// Dispatch routes an inbound framed message to the operator it names. It
// is the unit MessageRouter (client package) calls once it has picked the
// group out of the envelope.
func (g *CommunicationGroupClient) Dispatch(msg wire.FramedMessage) error {
	h, ok := g.Operator(msg.Operator)
	if !ok {
		return fmt.Errorf("group %s: unknown operator %s: %w", g.name, msg.Operator, operator.ErrUnknownPeer)
	}
	return h.OnMessage(msg)
}

// Barrier is SPEC_FULL.md E.4: a zero-payload broadcast/reduce round trip
// built entirely from existing primitives, used to synchronize every task
// in the group past a point (e.g. immediately after InitializeAll). The
// named operator must have been registered with payload type struct{}.
func (g *CommunicationGroupClient) Barrier(ctx context.Context, name ids.OperatorName) error {
	h, ok := g.Operator(name)
	if !ok {
		return fmt.Errorf("group %s: barrier operator %s not registered: %w", g.name, name, operator.ErrArgument)
	}
	topo, err := operator.Typed[struct{}](h)
	if err != nil {
		return fmt.Errorf("group %s: barrier operator %s: %w", g.name, name, err)
	}

	ack := operator.NewReducerWithIdentity(func([]struct{}) struct{} { return struct{}{} }, struct{}{})

	if !topo.IsRoot() {
		if _, err := topo.ReceiveFromParent(ctx); err != nil {
			return err
		}
	}
	if topo.HasChildren() {
		if err := topo.SendToChildren(ctx, struct{}{}, wire.Data); err != nil {
			return err
		}
		if _, err := topo.ReceiveFromChildren(ctx, ack); err != nil {
			return err
		}
	}
	if !topo.IsRoot() {
		if err := topo.SendToParent(ctx, struct{}{}, wire.Data); err != nil {
			return err
		}
	}
	return nil
}
