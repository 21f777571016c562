// Package pipeline contains the orchestrator of AgentPipe: a registry of
// named agents and the machinery to run them individually or as an ordered
// pipeline with inter-step context threading.
//
// Execution is single-threaded and synchronous. Steps run in declaration
// order with no overlap, so records appear in the global result log in
// exactly step-completion order. The shared interpreter is reset after every
// agent invocation, success or failure, which guarantees that no two logical
// tasks ever observe live backend state from another task.
package pipeline
