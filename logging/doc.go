// Package logging provides a minimal logging interface and adapters for AgentPipe.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error,
// Success) that interpreters, agents and the orchestrator use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - PipeLogger with contextual cloning and execution helpers
//
// The core only emits events through the interface; it never blocks on or
// depends on a sink's durability.
package logging
