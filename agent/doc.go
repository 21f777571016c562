// Package agent contains the agent core of AgentPipe: a named, role-scoped
// wrapper around an interpreter backend with its own status state machine
// and execution history. The package focuses on three concerns:
//
//  1. Identity and capability declaration (Identity, Role, Capabilities)
//  2. The status lifecycle (idle, busy, failed, suspended, terminated) and
//     the Execute path that drives it
//  3. Typed lifecycle callbacks (start, complete, error) that observers can
//     hook without being able to destabilize execution
//
// Design principles:
//   - Execute never lets an error escape: every outcome is an ExecutionRecord
//   - No internal retries; error records are terminal for that task
//   - Callback panics are caught and logged, never propagated
//   - Capabilities gate validation only; enforcement belongs to the backend
package agent
