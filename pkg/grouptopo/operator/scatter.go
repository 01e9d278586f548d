package operator

import (
	"context"

	"github.com/jabolina/grouptopo/pkg/grouptopo/channel"
	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
	"github.com/jabolina/grouptopo/pkg/grouptopo/wire"
)

// scatterConfig holds the optional chunk size / explicit order a
// ScatterOption mutates. Go has no overloading, so spec.md's three
// scatter(...) overloads become this single method plus functional
// options.
type scatterConfig struct {
	chunkSize      int
	chunkSizeIsSet bool
	order          []ids.TaskID
}

// ScatterOption customizes ScatterToChildren.
type ScatterOption func(*scatterConfig)

// WithChunkSize picks an explicit chunk size instead of the default
// ceil(N / len(children)). n <= 0 is rejected by ScatterToChildren with
// ArgumentError rather than silently falling back to the default, since
// the caller asked for something specific.
func WithChunkSize(n int) ScatterOption {
	return func(c *scatterConfig) {
		c.chunkSize = n
		c.chunkSizeIsSet = true
	}
}

// WithOrder picks an explicit child ordering by peer id instead of the
// declared children order.
func WithOrder(order []ids.TaskID) ScatterOption {
	return func(c *scatterConfig) { c.order = order }
}

// ScatterToChildren partitions messages into consecutive sublists and
// sends one sublist per child. With no options this is spec.md's
// overload 1 (default chunk size, declared order); WithChunkSize is
// overload 2; WithOrder is overload 3.
func (t *Topology[T]) ScatterToChildren(ctx context.Context, messages []T, kind wire.Kind, opts ...ScatterOption) error {
	if err := t.requireReady(); err != nil {
		return err
	}

	cfg := scatterConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	targets := t.children
	if cfg.order != nil {
		if len(cfg.order) != len(t.children) {
			return argumentErr("explicit order length must match number of children")
		}
		resolved := make([]*channel.NodeChannel, len(cfg.order))
		for i, id := range cfg.order {
			nc, ok := t.idToChannel[id]
			if !ok {
				return unknownPeer(id)
			}
			resolved[i] = nc
		}
		targets = resolved
	}

	n := len(messages)
	k := len(targets)
	chunkSize := cfg.chunkSize
	if !cfg.chunkSizeIsSet {
		if k == 0 {
			return argumentErr("no children to scatter to")
		}
		chunkSize = ceilDiv(n, k)
	}
	if chunkSize <= 0 {
		return argumentErr("chunk size must be positive")
	}

	for i, target := range targets {
		start := i * chunkSize
		if start >= n {
			continue // last sublist would be empty: that child receives nothing
		}
		end := start + chunkSize
		if end > n {
			end = n
		}
		sub := messages[start:end]

		payloads := make([][]byte, len(sub))
		for j, m := range sub {
			encoded, err := t.codec.Encode(m)
			if err != nil {
				return err
			}
			payloads[j] = encoded
		}
		if err := t.dispatch(ctx, target.PeerID(), kind, payloads); err != nil {
			return err
		}
	}
	return nil
}

func ceilDiv(n, k int) int {
	if k == 0 {
		return 0
	}
	return (n + k - 1) / k
}
