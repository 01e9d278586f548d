// Package sender defines the outbound boundary an OperatorTopology sends
// framed messages through, plus a default gRPC-backed implementation.
package sender

import (
	"context"

	"github.com/jabolina/grouptopo/pkg/grouptopo/wire"
)

// Sender hands a framed message to the transport, addressed to a peer
// task id already embedded in msg.Destination. Implementations must be
// safe for concurrent Send calls from different collective primitives.
type Sender interface {
	Send(ctx context.Context, msg wire.FramedMessage) error
}
