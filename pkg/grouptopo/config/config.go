// Package config loads the TOML descriptors that describe a job's groups
// and operators, the configuration surface described in the operator
// package's Config doc comment.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/jabolina/grouptopo/pkg/grouptopo/ids"
	"github.com/jabolina/grouptopo/pkg/grouptopo/operator"
)

// OperatorDescriptor is one [[group.operator]] TOML table: everything
// needed to build an operator.Config for the local task plus the kind of
// collective the operator is declared as.
type OperatorDescriptor struct {
	Name          string   `toml:"name" validate:"required"`
	Kind          string   `toml:"kind" validate:"required,oneof=broadcast reduce scatter gather allgather"`
	RootTaskID    string   `toml:"root_task_id" validate:"required"`
	ChildTaskIDs  []string `toml:"child_task_ids"`
	TimeoutMillis int64    `toml:"timeout_ms" validate:"gte=0"`
	RetryCount    int      `toml:"retry_count" validate:"gte=0"`
}

// GroupDescriptor is one [[group]] TOML table.
type GroupDescriptor struct {
	Name      string               `toml:"name" validate:"required"`
	Operators []OperatorDescriptor `toml:"operator" validate:"required,min=1,dive"`
}

// JobDescriptor is the root of a job's communication-topology file: the
// local task id plus every group it participates in.
type JobDescriptor struct {
	SelfTaskID string            `toml:"self_task_id" validate:"required"`
	DriverID   string            `toml:"driver_task_id" validate:"required"`
	Groups     []GroupDescriptor `toml:"group" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Load parses and validates a job descriptor from path.
func Load(path string) (*JobDescriptor, error) {
	var jd JobDescriptor
	if _, err := toml.DecodeFile(path, &jd); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := validate.Struct(&jd); err != nil {
		return nil, fmt.Errorf("config: invalid %s: %w", path, err)
	}
	return &jd, nil
}

// OperatorConfig builds an operator.Config for descriptor d, scoped to
// group name, for the job's local task.
func (jd *JobDescriptor) OperatorConfig(groupName string, d OperatorDescriptor) operator.Config {
	children := make([]ids.TaskID, len(d.ChildTaskIDs))
	for i, c := range d.ChildTaskIDs {
		children[i] = ids.TaskID(c)
	}
	return operator.Config{
		Group:         ids.GroupName(groupName),
		Operator:      ids.OperatorName(d.Name),
		Self:          ids.TaskID(jd.SelfTaskID),
		Driver:        ids.TaskID(jd.DriverID),
		RootTaskID:    ids.TaskID(d.RootTaskID),
		ChildTaskIDs:  children,
		TimeoutMillis: d.TimeoutMillis,
		RetryCount:    d.RetryCount,
	}
}
