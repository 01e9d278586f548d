// Package wire defines the decoded envelope that moves between the
// router, the Sender and an OperatorTopology. The core never sees the
// serialized wire format; by the time a FramedMessage reaches on_message
// it has already been parsed by the transport binding.
package wire

import "github.com/jabolina/grouptopo/pkg/grouptopo/ids"

// Kind distinguishes a collective's payload traffic from control traffic
// (e.g. a driver-initiated topology update, see SPEC_FULL.md E.3).
type Kind int

const (
	// Data carries a collective operator's payload.
	Data Kind = iota
	// Control carries topology-management traffic, never seen by a
	// collective's receive primitives.
	Control
)

func (k Kind) String() string {
	switch k {
	case Data:
		return "data"
	case Control:
		return "control"
	default:
		return "unknown"
	}
}

// FramedMessage is the wire envelope, already decoded by the transport
// binding. Payloads is one or more opaque blobs; most operators use
// exactly one, scatter uses one sublist per destination. UID tags the
// message for diagnostics; the sending topology sets it on every outbound
// frame and no receiver reads it.
type FramedMessage struct {
	Group       ids.GroupName
	Operator    ids.OperatorName
	Source      ids.TaskID
	Destination ids.TaskID
	Kind        Kind
	Payloads    [][]byte
	UID         ids.UID
}

// Valid reports whether the envelope has the minimum shape on_message
// requires: a non-empty source. Destination is checked against the
// topology's registered peers by the caller, not here.
func (m FramedMessage) Valid() bool {
	return m.Source != ""
}
