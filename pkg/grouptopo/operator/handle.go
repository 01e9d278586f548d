package operator

import (
	"context"

	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
	"github.com/jabolina/grouptopo/pkg/grouptopo/wire"
)

// Handle is the type-erased face of a Topology[T]. CommunicationGroupClient
// and GroupCommClient hold a group's operators as Handle so a group can mix
// operators over different payload types (spec.md §4.4); callers that need
// the typed Send/Receive surface recover it with Typed.
type Handle interface {
	Group() ids.GroupName
	Operator() ids.OperatorName
	State() string
	HasChildren() bool
	IsRoot() bool
	ChannelDepths() map[ids.TaskID]int
	Initialize(ctx context.Context) error
	Close()
	OnMessage(msg wire.FramedMessage) error
}

var _ Handle = (*Topology[int])(nil)

// Typed recovers the concrete *Topology[T] behind a Handle, failing with
// ErrArgument if h was registered with a different payload type.
func Typed[T any](h Handle) (*Topology[T], error) {
	topo, ok := h.(*Topology[T])
	if !ok {
		return nil, ErrArgument
	}
	return topo, nil
}
