// Package operator implements OperatorTopology, the core of the engine:
// a per-operator view of (optional parent, ordered children) with the
// send/receive/scatter/reduce primitives built over NodeChannels.
//
// Grounded on the teacher's pkg/mcast/core/peer.go (Peer): a
// mutex-protected struct built by a constructor that validates its
// configuration and wires goroutines, torn down via a cancellable
// context. The collective algorithms themselves follow spec.md §4.3.
package operator

import (
	"context"
	"sync"
	"time"

	"github.com/jabolina/grouptopo/pkg/grouptopo/channel"
	"github.com/jabolina/grouptopo/pkg/grouptopo/codec"
	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
	"github.com/jabolina/grouptopo/pkg/grouptopo/internal/backoffutil"
	"github.com/jabolina/grouptopo/pkg/grouptopo/logging"
	"github.com/jabolina/grouptopo/pkg/grouptopo/metrics"
	"github.com/jabolina/grouptopo/pkg/grouptopo/nameservice"
	"github.com/jabolina/grouptopo/pkg/grouptopo/sender"
	"github.com/jabolina/grouptopo/pkg/grouptopo/wire"
)

// readySignalCapacity bounds how many pending wakeups can queue before
// further Add calls start dropping their signal. Spurious wakeups (and
// the occasional dropped one) are tolerated: wait_for_any always
// re-scans has_message directly before relying on a signal.
const readySignalCapacity = 1024

// state is the topology's externally visible lifecycle, per spec.md §4.3
// ("no externally visible states beyond {Uninitialized, Initialized,
// Closed}; transitions are linear").
type state int32

const (
	stateUninitialized state = iota
	stateInitialized
	stateClosed
)

// Config is the per-operator configuration surface spec.md §6 describes,
// provided by the driver.
type Config struct {
	Group    ids.GroupName
	Operator ids.OperatorName
	Self     ids.TaskID
	Driver   ids.TaskID

	// RootTaskID is the root of this operator's tree. A task whose Self
	// equals RootTaskID has no parent; every other task's parent is
	// RootTaskID (the configuration surface names only the root and the
	// local children, so a node's parent is always the declared root).
	RootTaskID ids.TaskID

	// ChildTaskIDs is this node's children, in driver order. Order is
	// authoritative for send_to_children and the default scatter
	// ordering.
	ChildTaskIDs []ids.TaskID

	// TimeoutMillis bounds every blocking receive. Defaults to 50000.
	TimeoutMillis int64
	// RetryCount bounds Initialize's per-peer lookup attempts. Defaults
	// to 10.
	RetryCount int
}

func (c Config) withDefaults() Config {
	if c.TimeoutMillis <= 0 {
		c.TimeoutMillis = 50000
	}
	if c.RetryCount <= 0 {
		c.RetryCount = 10
	}
	return c
}

// IsRoot reports whether this task is the topology root for this
// operator (spec.md I4: exactly one such task per topology per group).
func (c Config) IsRoot() bool {
	return c.Self == c.RootTaskID
}

// Topology is the concrete OperatorTopology. Parameterized by T, the
// payload type its Codec encodes and decodes.
type Topology[T any] struct {
	cfg    Config
	codec  codec.Codec[T]
	log    logging.Logger
	send   sender.Sender
	lookup nameservice.NameLookup
	rec    metrics.Recorder

	// mu is the single coordination lock from spec.md §5: it protects
	// NodeChannel-queue mutation together with the ready-signal enqueue
	// (on_message), and the has_message scan together with the
	// stale-signal drain (wait_for_any). Lock hold times are constant.
	mu          sync.Mutex
	st          state
	parent      *channel.NodeChannel
	children    []*channel.NodeChannel
	idToChannel map[ids.TaskID]*channel.NodeChannel
	ready       chan *channel.NodeChannel

	ctx    context.Context
	cancel context.CancelFunc
}

// New constructs a Topology for cfg. NodeChannels are created immediately
// for the parent (if any) and every declared child — their identity is
// stable for the topology's lifetime (spec.md I1) even though Initialize
// has not yet confirmed the peers are reachable.
func New[T any](cfg Config, c codec.Codec[T], snd sender.Sender, lookup nameservice.NameLookup, log logging.Logger, rec metrics.Recorder) *Topology[T] {
	cfg = cfg.withDefaults()
	if rec == nil {
		rec = metrics.Noop{}
	}

	idToChannel := make(map[ids.TaskID]*channel.NodeChannel)
	var parent *channel.NodeChannel
	if !cfg.IsRoot() {
		parent = channel.New(cfg.RootTaskID)
		idToChannel[cfg.RootTaskID] = parent
	}

	children := make([]*channel.NodeChannel, 0, len(cfg.ChildTaskIDs))
	for _, id := range cfg.ChildTaskIDs {
		nc := channel.New(id)
		children = append(children, nc)
		idToChannel[id] = nc
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Topology[T]{
		cfg:         cfg,
		codec:       c,
		log:         log,
		send:        snd,
		lookup:      lookup,
		rec:         rec,
		st:          stateUninitialized,
		parent:      parent,
		children:    children,
		idToChannel: idToChannel,
		ready:       make(chan *channel.NodeChannel, readySignalCapacity),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// HasChildren reports whether this node is interior or root (spec.md I3).
func (t *Topology[T]) HasChildren() bool {
	return len(t.children) > 0
}

// IsRoot reports whether this task is the topology root (spec.md I4:
// parent == None iff root).
func (t *Topology[T]) IsRoot() bool {
	return t.parent == nil
}

// Group and Operator expose this topology's identity, used by the
// MessageRouter and diagnostics.
func (t *Topology[T]) Group() ids.GroupName       { return t.cfg.Group }
func (t *Topology[T]) Operator() ids.OperatorName { return t.cfg.Operator }

// State reports the current lifecycle phase, for diagnostics.
func (t *Topology[T]) State() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.st {
	case stateInitialized:
		return "Initialized"
	case stateClosed:
		return "Closed"
	default:
		return "Uninitialized"
	}
}

// ChannelDepths snapshots the queue depth of every registered peer, for
// diagnostics.
func (t *Topology[T]) ChannelDepths() map[ids.TaskID]int {
	t.mu.Lock()
	peers := make([]*channel.NodeChannel, 0, len(t.idToChannel))
	for _, nc := range t.idToChannel {
		peers = append(peers, nc)
	}
	t.mu.Unlock()

	depths := make(map[ids.TaskID]int, len(peers))
	for _, nc := range peers {
		depths[nc.PeerID()] = nc.Depth()
	}
	return depths
}

// Initialize iterates peers in order (parent first if present, then
// children in declared order), resolving each through the name service
// with a fixed-interval retry loop (RetryCount attempts, 500ms between
// attempts). No messages may be sent or received until Initialize
// returns successfully.
func (t *Topology[T]) Initialize(ctx context.Context) error {
	t.mu.Lock()
	if t.st != stateUninitialized {
		st := t.st
		t.mu.Unlock()
		if st == stateClosed {
			return ErrClosed
		}
		return nil
	}
	t.mu.Unlock()

	peers := make([]*channel.NodeChannel, 0, 1+len(t.children))
	if t.parent != nil {
		peers = append(peers, t.parent)
	}
	peers = append(peers, t.children...)

	start := time.Now()
	interval := 500 * time.Millisecond
	for _, p := range peers {
		peerID := p.PeerID()
		attempt := func() error {
			_, found, err := t.lookup.Lookup(ctx, peerID)
			if err != nil {
				return err
			}
			if !found {
				return errPeerUnregistered(peerID)
			}
			return nil
		}
		if err := backoffutil.Retry(ctx, interval, t.cfg.RetryCount, attempt); err != nil {
			return &InitializationError{Peer: peerID, Err: err}
		}
	}
	t.rec.ObserveInitialize(t.cfg.Group, t.cfg.Operator, time.Since(start))

	t.mu.Lock()
	t.st = stateInitialized
	t.mu.Unlock()
	return nil
}

// Close tears the topology down. Draining pending messages is not
// required (best-effort close, spec.md §3 Lifecycle); blocked waiters
// unblock with ErrCancelled.
func (t *Topology[T]) Close() {
	t.mu.Lock()
	if t.st == stateClosed {
		t.mu.Unlock()
		return
	}
	t.st = stateClosed
	t.mu.Unlock()
	t.cancel()
}

// OnMessage is the inbound dispatch hook a MessageRouter calls. For data
// traffic it atomically appends the payloads to the source's NodeChannel
// and signals the ready set, both under the coordination lock. Control
// traffic (wire.Control) never reaches a NodeChannel; it is a topology
// update from the driver, applied by applyTopologyUpdate.
func (t *Topology[T]) OnMessage(msg wire.FramedMessage) error {
	if !msg.Valid() {
		return malformed("message has no source")
	}

	if msg.Kind == wire.Control {
		return t.applyTopologyUpdate(msg)
	}

	t.mu.Lock()
	if t.st == stateClosed {
		t.mu.Unlock()
		return ErrClosed
	}
	nc, ok := t.idToChannel[msg.Source]
	if !ok {
		t.mu.Unlock()
		return unknownPeer(msg.Source)
	}
	nc.Add(msg.Payloads)
	t.signalReady(nc)
	depth := nc.Depth()
	t.mu.Unlock()

	t.rec.MessageReceived(t.cfg.Group, t.cfg.Operator, msg.Source)
	t.rec.ChannelDepth(t.cfg.Group, t.cfg.Operator, msg.Source, depth)
	return nil
}

// applyTopologyUpdate replaces this operator's child set with the one
// named in msg.Payloads (one task id per payload, raw bytes). NodeChannels
// for task ids present both before and after the swap are kept as-is, so
// any message already queued for a surviving child is not lost. The swap
// only takes effect once Initialize has run, matching every other
// collective primitive's state requirement.
func (t *Topology[T]) applyTopologyUpdate(msg wire.FramedMessage) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.st == stateClosed {
		return ErrClosed
	}
	if t.st != stateInitialized {
		return ErrNotInitialized
	}

	newChildren := make([]*channel.NodeChannel, len(msg.Payloads))
	idToChannel := make(map[ids.TaskID]*channel.NodeChannel, len(msg.Payloads)+1)
	if t.parent != nil {
		idToChannel[t.parent.PeerID()] = t.parent
	}
	for i, p := range msg.Payloads {
		id := ids.TaskID(p)
		nc, ok := t.idToChannel[id]
		if !ok {
			nc = channel.New(id)
		}
		newChildren[i] = nc
		idToChannel[id] = nc
	}
	t.children = newChildren
	t.idToChannel = idToChannel
	return nil
}

// signalReady must be called with mu held.
func (t *Topology[T]) signalReady(nc *channel.NodeChannel) {
	select {
	case t.ready <- nc:
	default:
		// Ready set is saturated; the receiver's next drain-and-rescan
		// will still observe nc via has_message directly.
	}
}

// SendToParent encodes value and hands it to the Sender addressed to
// the parent. Fails with ErrNoParent on the root.
func (t *Topology[T]) SendToParent(ctx context.Context, value T, kind wire.Kind) error {
	if err := t.requireReady(); err != nil {
		return err
	}
	if t.parent == nil {
		return ErrNoParent
	}
	encoded, err := t.codec.Encode(value)
	if err != nil {
		return err
	}
	return t.dispatch(ctx, t.parent.PeerID(), kind, [][]byte{encoded})
}

// SendToChildren encodes value once and sends a copy to each child in
// declared order.
func (t *Topology[T]) SendToChildren(ctx context.Context, value T, kind wire.Kind) error {
	if err := t.requireReady(); err != nil {
		return err
	}
	if isNilValue(value) {
		return argumentErr("value must not be nil")
	}
	encoded, err := t.codec.Encode(value)
	if err != nil {
		return err
	}
	for _, c := range t.children {
		if err := t.dispatch(ctx, c.PeerID(), kind, [][]byte{encoded}); err != nil {
			return err
		}
	}
	return nil
}

func (t *Topology[T]) dispatch(ctx context.Context, dest ids.TaskID, kind wire.Kind, payloads [][]byte) error {
	msg := wire.FramedMessage{
		Group:       t.cfg.Group,
		Operator:    t.cfg.Operator,
		Source:      t.cfg.Self,
		Destination: dest,
		Kind:        kind,
		Payloads:    payloads,
		UID:         ids.NewUID(),
	}
	if err := t.send.Send(ctx, msg); err != nil {
		return &TransportError{Destination: dest, Err: err}
	}
	t.rec.MessageSent(t.cfg.Group, t.cfg.Operator, kind.String())
	return nil
}

// ReceiveFromParent blocks on the parent's NodeChannel until a single
// payload arrives, decodes and returns it.
func (t *Topology[T]) ReceiveFromParent(ctx context.Context) (T, error) {
	var zero T
	if err := t.requireReady(); err != nil {
		return zero, err
	}
	if t.parent == nil {
		return zero, ErrNoParent
	}

	bounded, cancel := t.boundedCtx(ctx)
	defer cancel()
	payloads, err := t.parent.Take(bounded)
	if err != nil {
		return zero, t.translateWaitErr(err, []ids.TaskID{t.parent.PeerID()})
	}
	if len(payloads) != 1 {
		return zero, protocolErr("expected exactly one payload from parent")
	}
	value, err := t.codec.Decode(payloads[0])
	if err != nil {
		return zero, err
	}
	return value, nil
}

// ReceiveListFromParent is ReceiveFromParent but allows one or more
// payloads per message, decoding each in order.
func (t *Topology[T]) ReceiveListFromParent(ctx context.Context) ([]T, error) {
	if err := t.requireReady(); err != nil {
		return nil, err
	}
	if t.parent == nil {
		return nil, ErrNoParent
	}

	bounded, cancel := t.boundedCtx(ctx)
	defer cancel()
	payloads, err := t.parent.Take(bounded)
	if err != nil {
		return nil, t.translateWaitErr(err, []ids.TaskID{t.parent.PeerID()})
	}
	if len(payloads) == 0 {
		return nil, protocolErr("expected at least one payload from parent")
	}

	result := make([]T, len(payloads))
	for i, p := range payloads {
		v, err := t.codec.Decode(p)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}
