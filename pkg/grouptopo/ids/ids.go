// Package ids defines the identifier types shared across the topology
// engine: tasks, communication groups and operators.
package ids

import "github.com/google/uuid"

// TaskID identifies a single task (an evaluator-side process endpoint)
// inside a communication group. Stable for the lifetime of the task.
type TaskID string

// GroupName identifies a communication group: a named set of tasks that
// share a set of collective operators.
type GroupName string

// OperatorName identifies a single operator instance within a group.
type OperatorName string

// UID uniquely tags a single outbound message for diagnostics. Nothing in
// the engine reads it back, and the gRPC transport does not carry it.
type UID string

// NewUID generates a fresh message identifier.
func NewUID() UID {
	return UID(uuid.NewString())
}

// Key identifies an OperatorTopology within a GroupCommClient: the pair a
// MessageRouter dispatches inbound messages on.
type Key struct {
	Group    GroupName
	Operator OperatorName
}

func (k Key) String() string {
	return string(k.Group) + "/" + string(k.Operator)
}
