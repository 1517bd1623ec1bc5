package model

import "time"

// TaskSpec is one node in a dependency graph. Immutable once a run starts.
type TaskSpec struct {
	ID        string         `yaml:"id" json:"id"`
	Name      string         `yaml:"name,omitempty" json:"name,omitempty"`
	Agent     string         `yaml:"agent" json:"agent"`
	Inputs    map[string]any `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	DependsOn []string       `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
}

// GraphSpec is a full DAG run request: tasks plus the seed context.
type GraphSpec struct {
	Context map[string]any `yaml:"context,omitempty" json:"context,omitempty"`
	Tasks   []TaskSpec     `yaml:"tasks" json:"tasks"`
}

// NodeResult is the outcome of one task execution. Never mutated after
// creation.
type NodeResult struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     NodeStatus `json:"status"`
	Cost       float64    `json:"cost"`
	DurationMS float64    `json:"duration_ms"`
	Error      string     `json:"error,omitempty"`
}

// RunRecord is the result of one DAG run. Nodes appear in task declaration
// order; tasks never scheduled because an ancestor failed are absent.
type RunRecord struct {
	OwnerID   string         `json:"owner_id,omitempty"`
	Nodes     []NodeResult   `json:"nodes"`
	TotalCost float64        `json:"total_cost"`
	Status    RunStatus      `json:"status"`
	Context   map[string]any `json:"context"`
	Timestamp time.Time      `json:"timestamp"`
}
