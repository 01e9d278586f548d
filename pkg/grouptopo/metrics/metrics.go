// Package metrics instruments the topology engine. Recording is opt-in:
// operator.New substitutes the no-op implementation for a nil Recorder,
// so metrics never sit on the hot path of correctness per SPEC_FULL.md
// D.2.
package metrics

import (
	"time"

	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
)

// Recorder receives instrumentation events from an OperatorTopology.
// Grounded on github.com/prometheus/client_golang, wired in via
// TickTockBent-REPRAM's go.mod.
type Recorder interface {
	MessageSent(group ids.GroupName, operator ids.OperatorName, kind string)
	MessageReceived(group ids.GroupName, operator ids.OperatorName, source ids.TaskID)
	ChannelDepth(group ids.GroupName, operator ids.OperatorName, peer ids.TaskID, depth int)
	ObserveWaitForAny(group ids.GroupName, operator ids.OperatorName, d time.Duration)
	ObserveInitialize(group ids.GroupName, operator ids.OperatorName, d time.Duration)
}

// Noop discards every event. It is the default when no Recorder is
// supplied.
type Noop struct{}

func (Noop) MessageSent(ids.GroupName, ids.OperatorName, string)              {}
func (Noop) MessageReceived(ids.GroupName, ids.OperatorName, ids.TaskID)      {}
func (Noop) ChannelDepth(ids.GroupName, ids.OperatorName, ids.TaskID, int)    {}
func (Noop) ObserveWaitForAny(ids.GroupName, ids.OperatorName, time.Duration) {}
func (Noop) ObserveInitialize(ids.GroupName, ids.OperatorName, time.Duration) {}

var _ Recorder = Noop{}
