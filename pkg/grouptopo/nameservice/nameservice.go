// Package nameservice defines the lookup contract OperatorTopology.Initialize
// uses to resolve peers, plus a default gRPC-backed implementation.
package nameservice

import (
	"context"

	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
)

// NameLookup is a pure query: a lookup from task identifier to network
// endpoint. Initialize calls it to resolve every peer; the default
// sender.GRPCSender also calls it on every Send to find the
// destination's endpoint.
type NameLookup interface {
	// Lookup returns the peer's endpoint and found=true if registered,
	// or found=false if the peer has not yet appeared in the directory.
	// err is reserved for transport-level failure of the lookup itself.
	Lookup(ctx context.Context, peer ids.TaskID) (endpoint string, found bool, err error)
}

// Registrar lets a task announce or retract its own endpoint with the
// name service. A GroupCommClient calls Register once at startup and
// Unregister on Close (spec.md §4.5).
type Registrar interface {
	Register(ctx context.Context, self ids.TaskID, endpoint string) error
	Unregister(ctx context.Context, self ids.TaskID) error
}

// Directory is the full surface a driver-held name service exposes: the
// query side Initialize drives plus the register/unregister pair a
// task's own GroupCommClient drives.
type Directory interface {
	NameLookup
	Registrar
}
