package agent

import (
	"strings"

	"github.com/hupe1980/agentpipe/core"
)

// rolePreambles maps each role to the system preamble prepended to its
// prompts. The general role carries no preamble: a general agent passes the
// task straight to the interpreter.
var rolePreambles = map[Role]string{
	RoleCoder:      "You are an expert software engineer. Write clean, working code and save files as appropriate.",
	RoleReviewer:   "You are a code reviewer. Identify defects, risks and style issues, and suggest concrete fixes.",
	RoleTester:     "You are a test writer. Write focused, runnable tests for the code you are given.",
	RoleArchitect:  "You are a software architect. Design clear structure and explain the trade-offs you make.",
	RoleDebugger:   "You are a debugger. Locate the root cause of the fault and propose a minimal fix.",
	RoleDocumenter: "You are a documentation writer. Produce accurate, concise documentation.",
	RoleAnalyst:    "You are a code analyst. Examine the input and report your findings precisely.",
	RoleAssistant:  "You are a helpful assistant. Complete this task autonomously. Write any code needed and save files as appropriate.",
}

// Preamble returns the role's prompt preamble, or "" when the role is
// unspecialized.
func (r Role) Preamble() string {
	return rolePreambles[r]
}

// BuildRolePrompt assembles the effective prompt of a specialized agent:
// the role preamble, the context rendered as "key: value" lines, then the
// task text, separated by blank lines. It is a pure function so prompt
// assembly is testable without any backend.
func BuildRolePrompt(preamble, task string, extra *core.Context) string {
	parts := make([]string, 0, 3)
	if preamble != "" {
		parts = append(parts, preamble)
	}
	if extra.Len() > 0 {
		parts = append(parts, "Context:\n"+extra.Render())
	}
	parts = append(parts, "Task:\n"+task)
	return strings.Join(parts, "\n\n")
}
