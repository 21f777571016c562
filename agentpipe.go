// Package agentpipe provides a high-level façade over the pipeline
// orchestrator and its collaborators (interpreter backend, configuration,
// logging) enabling rapid construction of multi-agent task pipelines. Most
// applications interact with this package by:
//  1. Creating a System via New() (optionally overriding the interpreter,
//     configuration or logger)
//  2. Declaring agents (CreateAgent) or letting pipeline steps declare them
//  3. Running single tasks (RunAgent) or ordered pipelines (RunPipeline)
//
// The façade delegates orchestration to pipeline.Orchestrator while keeping
// setup ergonomics concise. All defaults are safe for local development and
// testing: without overrides the system runs against the deterministic mock
// interpreter; production deployments supply a live backend (for example
// interpreter/openai or interpreter/anthropic) and a structured logger.
package agentpipe

import (
	"context"

	"github.com/hupe1980/agentpipe/agent"
	"github.com/hupe1980/agentpipe/config"
	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/interpreter"
	"github.com/hupe1980/agentpipe/logging"
	"github.com/hupe1980/agentpipe/pipeline"
)

// Options configures the System instance.
type Options struct {
	// Config supplies backend tunables. Defaults to config.Defaults().
	Config config.Config
	// Interpreter is the shared execution backend. Defaults to the
	// deterministic mock built from Config.
	Interpreter interpreter.Interpreter
	// Capabilities is attached to every agent the system materializes.
	Capabilities agent.Capabilities
	// Logger defaults to the NoOp logger if nil.
	Logger logging.Logger
}

// System is the high-level façade aggregating the orchestrator and its
// collaborators.
type System struct {
	opts         Options
	orchestrator *pipeline.Orchestrator
}

// New creates a System with optional overrides. Any unset collaborator is
// initialized with a local default.
func New(optFns ...func(o *Options)) *System {
	opts := Options{
		Config:       config.Defaults(),
		Capabilities: agent.DefaultCapabilities(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Interpreter == nil {
		opts.Interpreter = interpreter.NewMock(opts.Config.Interpreter(), func(o *interpreter.MockOptions) {
			o.Logger = opts.Logger
		})
	}

	orchestrator := pipeline.New(opts.Interpreter, func(o *pipeline.Options) {
		o.Logger = opts.Logger
		o.Capabilities = opts.Capabilities
	})

	return &System{opts: opts, orchestrator: orchestrator}
}

// CreateAgent declares a named agent with a role.
func (s *System) CreateAgent(name string, role agent.Role) {
	s.orchestrator.CreateAgent(name, role)
}

// RunAgent runs one task on the named agent.
func (s *System) RunAgent(ctx context.Context, name, task string, extra *core.Context) agent.ExecutionRecord {
	return s.orchestrator.RunAgent(ctx, name, task, extra)
}

// RunPipeline runs an ordered sequence of steps.
func (s *System) RunPipeline(ctx context.Context, steps []pipeline.Step) ([]agent.ExecutionRecord, error) {
	return s.orchestrator.RunPipeline(ctx, steps)
}

// Results returns the aggregate result log across all agents.
func (s *System) Results() []agent.ExecutionRecord {
	return s.orchestrator.Results()
}

// SaveResultsFile writes the aggregate result log to a JSON file.
func (s *System) SaveResultsFile(path string) error {
	return s.orchestrator.SaveResultsFile(path)
}

// Orchestrator exposes the underlying orchestrator for advanced use.
func (s *System) Orchestrator() *pipeline.Orchestrator {
	return s.orchestrator
}
