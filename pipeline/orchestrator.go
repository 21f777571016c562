package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/hupe1980/agentpipe/agent"
	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/interpreter"
	"github.com/hupe1980/agentpipe/logging"
)

// PreviousResultKey is the context key under which a step's predecessor
// output is injected when the step sets UsePrevious.
const PreviousResultKey = "previous_result"

// registryEntry records a declared agent name before an Agent instance is
// materialized for it. Re-declaring a name updates the role used for future
// materialization; it never discards an existing instance or its history.
type registryEntry struct {
	role    agent.Role
	created time.Time
}

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	Logger logging.Logger
	// Capabilities is attached to every agent the orchestrator materializes.
	Capabilities agent.Capabilities
}

// Orchestrator owns a registry of named agents sharing one interpreter
// backend, runs them individually or as ordered pipelines, and keeps the
// aggregate result log across all of them.
//
// The backend is reset after every invocation, success or failure, so each
// call starts from clean session state: no conversational leakage between
// agents or successive steps.
type Orchestrator struct {
	interp interpreter.Interpreter
	logger logging.Logger
	caps   agent.Capabilities

	mu       sync.Mutex
	registry map[string]registryEntry
	agents   map[string]*agent.Agent
	results  []agent.ExecutionRecord
}

// New constructs an Orchestrator around a shared interpreter backend.
func New(interp interpreter.Interpreter, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Logger:       logging.NoOpLogger{},
		Capabilities: agent.DefaultCapabilities(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{
		interp:   interp,
		logger:   opts.Logger,
		caps:     opts.Capabilities,
		registry: make(map[string]registryEntry),
		agents:   make(map[string]*agent.Agent),
	}
}

// CreateAgent inserts or updates a name-to-role registry entry. Agent
// instances are materialized lazily on first run; updating an entry for a
// name that already has an instance affects nothing retroactively, and no
// execution history is ever discarded.
func (o *Orchestrator) CreateAgent(name string, role agent.Role) {
	if role == "" {
		role = agent.RoleAssistant
	}
	o.mu.Lock()
	o.registry[name] = registryEntry{role: role, created: time.Now()}
	o.mu.Unlock()
	o.logger.Info("agent registered", "name", name, "role", string(role))
}

// materialize resolves the named agent, creating it on first use from its
// registry entry (or with the assistant fallback role).
func (o *Orchestrator) materialize(name string) *agent.Agent {
	o.mu.Lock()
	defer o.mu.Unlock()
	if a, ok := o.agents[name]; ok {
		return a
	}
	role := agent.RoleAssistant
	if entry, ok := o.registry[name]; ok {
		role = entry.role
	} else {
		o.registry[name] = registryEntry{role: role, created: time.Now()}
	}
	a := agent.New(name, o.interp, func(ao *agent.Options) {
		ao.Role = role
		ao.Capabilities = o.caps
		ao.Logger = o.logger
	})
	o.agents[name] = a
	return a
}

// RunAgent runs one task on the named agent, creating it with the assistant
// role if it was never declared. The record is appended to the global result
// log, and the shared backend is reset afterwards regardless of outcome.
func (o *Orchestrator) RunAgent(ctx context.Context, name, task string, extra *core.Context) agent.ExecutionRecord {
	a := o.materialize(name)

	// Exactly one reset per invocation, success or failure.
	defer o.interp.Reset()

	o.logger.Info("running agent", "agent", name, "task", task)
	record := a.Execute(ctx, task, extra)

	o.mu.Lock()
	o.results = append(o.results, record)
	o.mu.Unlock()

	if record.Success {
		o.logger.Success("agent run completed", "agent", name, "duration", record.Duration)
	} else {
		o.logger.Error("agent run failed", "agent", name, "error", record.Error)
	}

	return record
}

// RunPipeline executes steps in declaration order with no reordering and no
// parallelism. Each step's effective context starts from its explicit
// entries; when UsePrevious is set on a non-first step, the immediately
// preceding step's output is injected under PreviousResultKey (explicit keys
// are preserved, only that key is added or overwritten). A failing step
// halts the pipeline only when its ContinueOnError is explicitly false; the
// returned slice then contains exactly the records produced so far,
// including the failing one.
func (o *Orchestrator) RunPipeline(ctx context.Context, steps []Step) ([]agent.ExecutionRecord, error) {
	o.logger.Info("starting pipeline", "steps", len(steps))
	start := time.Now()

	records := make([]agent.ExecutionRecord, 0, len(steps))
	halted := false

	for i, step := range steps {
		if err := step.Validate(); err != nil {
			return records, fmt.Errorf("step %d invalid: %w", i+1, err)
		}

		o.logger.Info("pipeline step", "step", i+1, "total", len(steps), "agent", step.Agent)

		o.mu.Lock()
		_, known := o.registry[step.Agent]
		o.mu.Unlock()
		if !known {
			o.CreateAgent(step.Agent, step.Role)
		}

		extra := step.buildContext()
		if step.UsePrevious && i > 0 {
			extra.Set(PreviousResultKey, records[len(records)-1].Output)
		}

		record := o.RunAgent(ctx, step.Agent, step.Task, extra)
		records = append(records, record)

		if !record.Success {
			o.logger.Warn("pipeline step failed", "step", i+1, "error", record.Error)
			if !step.continueOnError() {
				o.logger.Error("pipeline halted", "step", i+1)
				halted = true
				break
			}
		}
	}

	o.logger.Success("pipeline completed", "steps", len(records), "duration", time.Since(start), "halted", halted)
	return records, nil
}

// Agent returns the materialized agent for name, or nil if it was never run.
func (o *Orchestrator) Agent(name string) *agent.Agent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.agents[name]
}

// AgentNames lists all declared agent names.
func (o *Orchestrator) AgentNames() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	names := make([]string, 0, len(o.registry))
	for name := range o.registry {
		names = append(names, name)
	}
	return names
}

// Results returns a copy of the global result log in completion order.
func (o *Orchestrator) Results() []agent.ExecutionRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	results := make([]agent.ExecutionRecord, len(o.results))
	copy(results, o.results)
	return results
}

// SaveResults writes the global result log to w as indented JSON.
func (o *Orchestrator) SaveResults(w io.Writer) error {
	results := o.Results()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

// SaveResultsFile writes the global result log to a JSON file.
func (o *Orchestrator) SaveResultsFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer f.Close()
	return o.SaveResults(f)
}
