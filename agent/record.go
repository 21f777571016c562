package agent

import (
	"time"

	"github.com/hupe1980/agentpipe/core"
)

// Status is the lifecycle state of an agent. It changes only through the
// documented state machine; no external code sets it directly.
type Status string

const (
	// StatusIdle means the agent is ready to accept a task.
	StatusIdle Status = "idle"
	// StatusBusy means a task is currently executing.
	StatusBusy Status = "busy"
	// StatusFailed means the most recent task ended in an error.
	StatusFailed Status = "failed"
	// StatusSuspended means the agent is paused until resumed.
	StatusSuspended Status = "suspended"
	// StatusTerminated is terminal; the agent rejects all further work.
	StatusTerminated Status = "terminated"
)

// ExecutionRecord is the immutable outcome of one agent invocation. Success
// records are appended to the owning agent's history; the orchestrator keeps
// every record, success or failure, in its global result log.
type ExecutionRecord struct {
	Agent     string        `json:"agent"`
	AgentID   string        `json:"agent_id"`
	AgentRole Role          `json:"agent_role"`
	Task      string        `json:"task"`
	Context   *core.Context `json:"context,omitempty"`
	Success   bool          `json:"success"`
	Output    string        `json:"output,omitempty"`
	Error     string        `json:"error,omitempty"`
	ErrorType string        `json:"error_type,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// StatusReport is the snapshot returned by GetStatus.
type StatusReport struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Role           Role             `json:"role"`
	Status         Status           `json:"status"`
	Capabilities   Capabilities     `json:"capabilities"`
	ExecutionCount int              `json:"execution_count"`
	LastExecution  *ExecutionRecord `json:"last_execution,omitempty"`
}
