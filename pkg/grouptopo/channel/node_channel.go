// Package channel implements the per-peer inbound mailbox (NodeChannel)
// an OperatorTopology keeps one of for every registered peer.
package channel

import (
	"context"
	"sync"

	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
)

// NodeChannel is a concurrent FIFO mailbox dedicated to messages arriving
// from one peer. Ordering is strict FIFO: add/take are linearizable with
// respect to each other. At most one logical receiver calls Take per
// channel; that invariant is enforced by the collective algorithms built
// on top, not by NodeChannel itself.
//
// Grounded on the teacher's per-peer transport queue
// (pkg/mcast/core/peer.go's rqueue/updated fields) and the other_examples
// NSQ Channel (per-consumer ordered delivery with a wake-on-arrival
// signal instead of per-message polling).
type NodeChannel struct {
	peerID ids.TaskID

	mu    sync.Mutex
	queue [][][]byte

	// wake is a best-effort, non-blocking doorbell: a send never blocks
	// (buffered, size 1) and a missed send is harmless because Take
	// re-checks the queue itself on every wakeup.
	wake chan struct{}
}

// New constructs an empty mailbox for the given peer.
func New(peerID ids.TaskID) *NodeChannel {
	return &NodeChannel{
		peerID: peerID,
		wake:   make(chan struct{}, 1),
	}
}

// PeerID returns the peer this mailbox is dedicated to.
func (c *NodeChannel) PeerID() ids.TaskID {
	return c.peerID
}

// Add appends a payload list to the queue. Never blocks; wakes any
// waiter parked in Take.
func (c *NodeChannel) Add(payloads [][]byte) {
	c.mu.Lock()
	c.queue = append(c.queue, payloads)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// HasMessage is a non-blocking peek: true iff the queue is non-empty.
func (c *NodeChannel) HasMessage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue) > 0
}

// Depth reports the number of queued payload lists, for diagnostics.
func (c *NodeChannel) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Take removes and returns the oldest queued payload list, blocking
// until one is available or ctx is done. There is no timeout at this
// level; higher layers impose deadlines by passing a context with a
// deadline or cancellation attached.
func (c *NodeChannel) Take(ctx context.Context) ([][]byte, error) {
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			payloads := c.queue[0]
			c.queue = c.queue[1:]
			c.mu.Unlock()
			return payloads, nil
		}
		c.mu.Unlock()

		select {
		case <-c.wake:
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
