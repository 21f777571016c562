// Package interpreter defines the execution backend contract of AgentPipe
// and a deterministic in-memory implementation for tests.
//
// An Interpreter is the component that actually interprets a prompt and may
// run code on behalf of an agent. The package focuses on three concerns:
//
//  1. The polymorphic Interpreter interface (initialize, chat, code
//     execution, validation, state snapshot/restore)
//  2. The immutable Config value passed at construction; reconfiguration
//     means constructing a new interpreter, never mutating shared state
//  3. The Mock implementation that simulates success, error and timeout
//     outcomes from lexical cues in the prompt
//
// Live implementations live in the subpackages interpreter/openai and
// interpreter/anthropic. Swapping any implementation for another changes no
// orchestration logic.
package interpreter
