package operator

import (
	"context"

	"github.com/jabolina/grouptopo/pkg/grouptopo/wire"
)

// AllGather is the standard two-phase tree implementation: every task
// contributes value, each interior node merges its own value with its
// children's before forwarding up, the root assembles the full set and
// broadcasts it back down the tree. Built entirely from send_to_parent /
// receive_from_parent / send_to_children / receive_from_children — the
// primitives spec.md's glossary names "all-gather" without giving an
// algorithm for (SPEC_FULL.md E.2).
func (t *Topology[T]) AllGather(ctx context.Context, value T, kind wire.Kind) ([]T, error) {
	if err := t.requireReady(); err != nil {
		return nil, err
	}

	all := []T{value}
	if t.HasChildren() {
		gathered, err := t.collectFromChildren(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, gathered...)
	}

	if t.parent != nil {
		if err := t.sendListToParent(ctx, all, kind); err != nil {
			return nil, err
		}
		broadcast, err := t.ReceiveListFromParent(ctx)
		if err != nil {
			return nil, err
		}
		all = broadcast
	}

	if t.HasChildren() {
		if err := t.sendListToChildren(ctx, all, kind); err != nil {
			return nil, err
		}
	}

	return all, nil
}

// sendListToParent hands an ordered list of payloads to the parent in a
// single framed message, used by AllGather's gather phase at every
// interior node.
func (t *Topology[T]) sendListToParent(ctx context.Context, values []T, kind wire.Kind) error {
	if t.parent == nil {
		return ErrNoParent
	}
	payloads, err := t.encodeAll(values)
	if err != nil {
		return err
	}
	return t.dispatch(ctx, t.parent.PeerID(), kind, payloads)
}

// sendListToChildren broadcasts the same ordered list of payloads to
// every child, used by AllGather's fan-out phase. Unlike SendToChildren
// (one payload per child) every child here receives the whole list.
func (t *Topology[T]) sendListToChildren(ctx context.Context, values []T, kind wire.Kind) error {
	payloads, err := t.encodeAll(values)
	if err != nil {
		return err
	}
	for _, c := range t.children {
		if err := t.dispatch(ctx, c.PeerID(), kind, payloads); err != nil {
			return err
		}
	}
	return nil
}

func (t *Topology[T]) encodeAll(values []T) ([][]byte, error) {
	payloads := make([][]byte, len(values))
	for i, v := range values {
		encoded, err := t.codec.Encode(v)
		if err != nil {
			return nil, err
		}
		payloads[i] = encoded
	}
	return payloads, nil
}
