package operator

import (
	"errors"
	"fmt"

	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
)

// Sentinel errors a caller can match with errors.Is. Each corresponds to
// an error kind from spec.md §7; the wrapping functions below attach the
// offending peer/operator so the message is actionable without losing
// errors.Is compatibility.
var (
	ErrNotInitialized   = errors.New("operator: collective called before Initialize")
	ErrClosed           = errors.New("operator: topology is closed")
	ErrNoParent         = errors.New("operator: no parent, operation invalid on root")
	ErrUnknownPeer      = errors.New("operator: peer is not registered in this topology")
	ErrMalformedMessage = errors.New("operator: malformed inbound message")
	ErrProtocol         = errors.New("operator: payload count incompatible with operation")
	ErrArgument         = errors.New("operator: invalid argument")
	ErrReceiveTimeout   = errors.New("operator: receive timed out")
	ErrCancelled        = errors.New("operator: cancelled")
)

// InitializationError names the peer that never resolved through the
// name service, after retry_count attempts were exhausted.
type InitializationError struct {
	Peer ids.TaskID
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("operator: failed to resolve peer %s: %v", e.Peer, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// TransportError wraps a Sender failure as-is, surfaced immediately to
// the caller of the collective that triggered it.
type TransportError struct {
	Destination ids.TaskID
	Err         error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("operator: transport failure sending to %s: %v", e.Destination, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ReceiveTimeoutError names the subset of peers still without data when
// a blocking receive's deadline fired.
type ReceiveTimeoutError struct {
	Pending []ids.TaskID
}

func (e *ReceiveTimeoutError) Error() string {
	return fmt.Sprintf("%v: still waiting on %v", ErrReceiveTimeout, e.Pending)
}

func (e *ReceiveTimeoutError) Unwrap() error { return ErrReceiveTimeout }

func unknownPeer(peer ids.TaskID) error {
	return fmt.Errorf("%w: %s", ErrUnknownPeer, peer)
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedMessage, reason)
}

func protocolErr(reason string) error {
	return fmt.Errorf("%w: %s", ErrProtocol, reason)
}

func argumentErr(reason string) error {
	return fmt.Errorf("%w: %s", ErrArgument, reason)
}
