package agent

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/interpreter"
	"github.com/hupe1980/agentpipe/logging"
)

// Options configures an Agent instance.
//
// Use functional options with New to override defaults.
type Options struct {
	Role         Role
	Capabilities Capabilities
	Tags         []string
	Logger       logging.Logger
	// Preamble overrides the role's default prompt preamble. Leave empty to
	// use Role.Preamble().
	Preamble string
}

// Agent wraps one interpreter backend with identity, declared capabilities
// and a status state machine. All exported methods are safe for concurrent
// use, though the execution model itself is single-threaded: one task runs
// to completion before the next begins.
type Agent struct {
	identity Identity
	caps     Capabilities
	interp   interpreter.Interpreter
	logger   logging.Logger
	preamble string

	mu      sync.Mutex
	status  Status
	history []ExecutionRecord
	cbs     callbacks
}

// New constructs an Agent with sensible defaults: general role, baseline
// capabilities and a no-op logger.
func New(name string, interp interpreter.Interpreter, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Role:         RoleGeneral,
		Capabilities: DefaultCapabilities(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	identity := NewIdentity(name, opts.Role)
	identity.Tags = opts.Tags

	preamble := opts.Preamble
	if preamble == "" {
		preamble = opts.Role.Preamble()
	}

	a := &Agent{
		identity: identity,
		caps:     opts.Capabilities,
		interp:   interp,
		logger:   opts.Logger,
		preamble: preamble,
		status:   StatusIdle,
	}

	a.logger.Info("agent initialized", "name", name, "role", string(identity.Role))

	return a
}

// Identity returns the agent's immutable identity.
func (a *Agent) Identity() Identity { return a.identity }

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.identity.Name }

// Role returns the agent's role.
func (a *Agent) Role() Role { return a.identity.Role }

// Capabilities returns the declared permission surface.
func (a *Agent) Capabilities() Capabilities { return a.caps }

// Status returns the current lifecycle state.
func (a *Agent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// ValidateTask reports whether the agent can accept the task. The base rule
// rejects empty and whitespace-only tasks; specialized variants may layer
// further checks but must preserve this precondition.
func (a *Agent) ValidateTask(task string) bool {
	return strings.TrimSpace(task) != ""
}

// Execute runs a task through the interpreter and returns its record. It
// never returns an error: validation failures, backend errors and timeouts
// are all converted into failure records. Invalid tasks are rejected before
// the backend is touched.
func (a *Agent) Execute(ctx context.Context, task string, extra *core.Context) ExecutionRecord {
	a.mu.Lock()
	switch a.status {
	case StatusTerminated:
		a.mu.Unlock()
		return a.failureRecord(task, extra, &core.AgentTerminatedError{AgentID: a.identity.ID}, 0)
	case StatusSuspended:
		a.mu.Unlock()
		return a.failureRecord(task, extra, &core.ValidationError{Reason: "agent is suspended"}, 0)
	case StatusBusy:
		a.mu.Unlock()
		return a.failureRecord(task, extra, &core.ValidationError{Reason: "agent is busy"}, 0)
	}

	if !a.ValidateTask(task) {
		// Status is untouched and the backend is never consulted.
		a.mu.Unlock()
		return a.failureRecord(task, extra, &core.ValidationError{Reason: "Invalid task: task must not be empty"}, 0)
	}

	a.status = StatusBusy
	a.mu.Unlock()

	a.runStart(task, extra)
	a.logger.Debug("task execution started", "agent", a.identity.Name, "task", preview(task))

	if a.caps.MaxExecutionTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.caps.MaxExecutionTime)
		defer cancel()
	}

	start := time.Now()
	output, err := a.invoke(ctx, task, extra)
	duration := time.Since(start)

	if err != nil {
		a.mu.Lock()
		a.status = StatusFailed
		a.mu.Unlock()
		a.logger.Error("task failed", "agent", a.identity.Name, "task", preview(task), "error", err.Error())
		return a.failureRecord(task, extra, err, duration)
	}

	record := ExecutionRecord{
		Agent:     a.identity.Name,
		AgentID:   a.identity.ID,
		AgentRole: a.identity.Role,
		Task:      task,
		Context:   extra.Clone(),
		Success:   true,
		Output:    output,
		Duration:  duration,
		Timestamp: time.Now(),
	}

	a.mu.Lock()
	a.history = append(a.history, record)
	a.status = StatusIdle
	a.mu.Unlock()

	a.runComplete(record)
	a.logger.Debug("task execution completed", "agent", a.identity.Name, "duration", duration)

	return record
}

// invoke builds the effective prompt and calls the interpreter. Specialized
// agents fold the preamble and context into a single prompt; unspecialized
// agents let the interpreter merge the context itself.
func (a *Agent) invoke(ctx context.Context, task string, extra *core.Context) (string, error) {
	if a.preamble == "" {
		return a.interp.Chat(ctx, task, extra)
	}
	return a.interp.Chat(ctx, BuildRolePrompt(a.preamble, task, extra), nil)
}

// failureRecord builds an error record, dispatches error callbacks and
// leaves the history untouched: only completed tasks are appended there.
func (a *Agent) failureRecord(task string, extra *core.Context, err error, duration time.Duration) ExecutionRecord {
	record := ExecutionRecord{
		Agent:     a.identity.Name,
		AgentID:   a.identity.ID,
		AgentRole: a.identity.Role,
		Task:      task,
		Context:   extra.Clone(),
		Success:   false,
		Error:     err.Error(),
		ErrorType: core.Kind(err),
		Duration:  duration,
		Timestamp: time.Now(),
	}
	a.runError(err, task)
	return record
}

// Reset returns the agent to idle and clears backend-held state. It fails
// only on a terminated agent.
func (a *Agent) Reset() error {
	a.mu.Lock()
	if a.status == StatusTerminated {
		a.mu.Unlock()
		return &core.AgentTerminatedError{AgentID: a.identity.ID}
	}
	a.status = StatusIdle
	a.mu.Unlock()

	a.interp.Reset()
	a.logger.Debug("agent reset", "agent", a.identity.Name)
	return nil
}

// Suspend pauses the agent. Allowed from idle, busy and failed.
func (a *Agent) Suspend() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.status {
	case StatusTerminated:
		return &core.AgentTerminatedError{AgentID: a.identity.ID}
	case StatusSuspended:
		return &core.ValidationError{Reason: "agent is already suspended"}
	}
	a.status = StatusSuspended
	a.logger.Info("agent suspended", "agent", a.identity.Name)
	return nil
}

// Resume returns a suspended agent to idle.
func (a *Agent) Resume() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == StatusTerminated {
		return &core.AgentTerminatedError{AgentID: a.identity.ID}
	}
	if a.status != StatusSuspended {
		return &core.ValidationError{Reason: "agent is not suspended"}
	}
	a.status = StatusIdle
	a.logger.Info("agent resumed", "agent", a.identity.Name)
	return nil
}

// Terminate clears backend state and retires the agent permanently. Every
// operation afterwards fails with AgentTerminatedError.
func (a *Agent) Terminate() {
	a.interp.Reset()

	a.mu.Lock()
	a.status = StatusTerminated
	a.mu.Unlock()

	a.logger.Info("agent terminated", "agent", a.identity.Name)
}

// History returns a copy of the agent's success records in completion order.
func (a *Agent) History() []ExecutionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	history := make([]ExecutionRecord, len(a.history))
	copy(history, a.history)
	return history
}

// GetStatus returns a point-in-time snapshot of the agent.
func (a *Agent) GetStatus() StatusReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	report := StatusReport{
		ID:             a.identity.ID,
		Name:           a.identity.Name,
		Role:           a.identity.Role,
		Status:         a.status,
		Capabilities:   a.caps,
		ExecutionCount: len(a.history),
	}
	if len(a.history) > 0 {
		last := a.history[len(a.history)-1]
		report.LastExecution = &last
	}
	return report
}

func preview(task string) string {
	if len(task) > 100 {
		return task[:100] + "..."
	}
	return task
}
