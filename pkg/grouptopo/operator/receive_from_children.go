package operator

import (
	"context"
	"time"

	"github.com/jabolina/grouptopo/pkg/grouptopo/channel"
	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
)

// ReceiveFromChildren collects one payload from each child and reduces
// them. Children that have no declared peers (a non-leaf node the
// driver gave zero children) fall straight through to reducer's
// identity, per SPEC_FULL.md E.1.
func (t *Topology[T]) ReceiveFromChildren(ctx context.Context, reducer Reducer[T]) (T, error) {
	var zero T
	if err := t.requireReady(); err != nil {
		return zero, err
	}
	received, err := t.collectFromChildren(ctx)
	if err != nil {
		return zero, err
	}
	return reducer.reduce(received)
}

// collectFromChildren implements spec.md §4.3's receive_from_children
// algorithm without applying a reducer: it waits for and decodes exactly
// one payload from every child, in arrival order. Shared by
// ReceiveFromChildren and AllGather's gather phase.
func (t *Topology[T]) collectFromChildren(ctx context.Context) ([]T, error) {
	if len(t.children) == 0 {
		return nil, nil
	}

	pending := make(map[ids.TaskID]struct{}, len(t.children))
	for _, c := range t.children {
		pending[c.PeerID()] = struct{}{}
	}

	bounded, cancel := t.boundedCtx(ctx)
	defer cancel()

	received := make([]T, 0, len(t.children))
	for len(pending) > 0 {
		ready, err := t.waitForAny(bounded, pending)
		if err != nil {
			return nil, t.translateWaitErr(err, pendingKeys(pending))
		}
		for _, nc := range ready {
			payloads, err := nc.Take(bounded)
			if err != nil {
				return nil, t.translateWaitErr(err, pendingKeys(pending))
			}
			if len(payloads) != 1 {
				return nil, protocolErr("expected exactly one payload per child")
			}
			v, err := t.codec.Decode(payloads[0])
			if err != nil {
				return nil, err
			}
			received = append(received, v)
			delete(pending, nc.PeerID())
			t.rec.MessageReceived(t.cfg.Group, t.cfg.Operator, nc.PeerID())
		}
	}
	return received, nil
}

// waitForAny returns a non-empty set of children, among the peers named
// in pending, that currently have a queued message. It blocks until at
// least one does or ctx fires.
//
// This is the design-critical primitive from spec.md §4.3: the scan and
// the stale-signal drain happen under the coordination lock so a
// message that arrives between the scan and the block is guaranteed to
// produce a signal observed after the drain.
func (t *Topology[T]) waitForAny(ctx context.Context, pending map[ids.TaskID]struct{}) ([]*channel.NodeChannel, error) {
	start := time.Now()
	defer func() { t.rec.ObserveWaitForAny(t.cfg.Group, t.cfg.Operator, time.Since(start)) }()

	for {
		t.mu.Lock()
		found := t.scanPending(pending)
		if len(found) > 0 {
			t.mu.Unlock()
			return found, nil
		}
		t.drainStaleLocked()
		t.mu.Unlock()

		if err := t.waitForRelevantSignal(ctx, pending); err != nil {
			return nil, err
		}
		// A relevant signal arrived; restart the outer scan.
	}
}

// scanPending must be called with mu held.
func (t *Topology[T]) scanPending(pending map[ids.TaskID]struct{}) []*channel.NodeChannel {
	var found []*channel.NodeChannel
	for id := range pending {
		nc, ok := t.idToChannel[id]
		if ok && nc.HasMessage() {
			found = append(found, nc)
		}
	}
	return found
}

// drainStaleLocked discards every entry currently queued in the ready
// set without blocking. Must be called with mu held.
func (t *Topology[T]) drainStaleLocked() {
	for {
		select {
		case <-t.ready:
		default:
			return
		}
	}
}

// waitForRelevantSignal blocks on the ready set. A signal for a peer
// outside pending is consumed and discarded without waking the outer
// scan; the message it announced stays queued in that peer's
// NodeChannel.
func (t *Topology[T]) waitForRelevantSignal(ctx context.Context, pending map[ids.TaskID]struct{}) error {
	for {
		select {
		case nc := <-t.ready:
			if _, ok := pending[nc.PeerID()]; ok {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func pendingKeys(pending map[ids.TaskID]struct{}) []ids.TaskID {
	keys := make([]ids.TaskID, 0, len(pending))
	for id := range pending {
		keys = append(keys, id)
	}
	return keys
}
