package interpreter

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/agentpipe/core"
)

// Mode selects where an interpreter executes.
type Mode string

const (
	// ModeLocal runs against a locally hosted backend.
	ModeLocal Mode = "local"
	// ModeRemote runs against a remote API endpoint.
	ModeRemote Mode = "remote"
	// ModeSandbox runs inside an isolated sandbox.
	ModeSandbox Mode = "sandbox"
)

// DefaultLanguage is assumed when ExecuteCode or ValidateCode is called with
// an empty language.
const DefaultLanguage = "python"

// Config is the immutable configuration value an interpreter is constructed
// with. All fallible setup happens inside Initialize, so constructing an
// interpreter from a Config never fails.
type Config struct {
	Model         string        `json:"model" yaml:"model"`
	Mode          Mode          `json:"mode" yaml:"mode"`
	ContextWindow int           `json:"context_window" yaml:"context_window"`
	MaxTokens     int           `json:"max_tokens" yaml:"max_tokens"`
	Temperature   float64       `json:"temperature" yaml:"temperature"`
	APIBase       string        `json:"api_base,omitempty" yaml:"api_base"`
	APIKey        string        `json:"-" yaml:"api_key"`
	AutoRun       bool          `json:"auto_run" yaml:"auto_run"`
	SafeMode      bool          `json:"safe_mode" yaml:"safe_mode"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout"`
}

// DefaultConfig returns a Config tuned for a locally hosted coder model.
func DefaultConfig() Config {
	return Config{
		Model:         "qwen2.5-coder:14b-instruct-q4_K_M",
		Mode:          ModeLocal,
		ContextWindow: 32000,
		MaxTokens:     4096,
		Temperature:   0.7,
		APIBase:       "http://localhost:11434/v1",
		AutoRun:       true,
		SafeMode:      true,
		Timeout:       5 * time.Minute,
	}
}

// ExecutionResult is the normalized outcome of ExecuteCode. It never carries
// a Go error: all failures are captured in the Error field.
type ExecutionResult struct {
	Success  bool          `json:"success"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Language string        `json:"language"`
	Code     string        `json:"code"`
	Duration time.Duration `json:"duration,omitempty"`
}

// ValidationResult reports static validation of a code snippet. Valid is
// tri-state: nil means no validator is available for the language.
type ValidationResult struct {
	Valid    *bool  `json:"valid"`
	Error    string `json:"error,omitempty"`
	Line     int    `json:"line,omitempty"`
	Offset   int    `json:"offset,omitempty"`
	Language string `json:"language"`
	Message  string `json:"message,omitempty"`
}

// HistoryEntry is one element of an interpreter's bounded diagnostic history.
type HistoryEntry struct {
	Prompt    string        `json:"prompt"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// State is a serializable snapshot of interpreter bookkeeping for
// checkpoint/resume. Restoring a State never re-validates it against the
// current Config.
type State struct {
	Config         Config         `json:"config"`
	Initialized    bool           `json:"initialized"`
	ExecutionCount int            `json:"execution_count"`
	History        []HistoryEntry `json:"history,omitempty"`
	Capabilities   []string       `json:"capabilities"`
}

// Interpreter is the uniform contract for "run a prompt, get a result".
//
// Implementations must:
//   - Make Initialize idempotent; expensive or fallible setup happens there
//     exactly once, and Chat calls it lazily when needed
//   - Classify failures with the core error taxonomy (ExecutionError,
//     TimeoutError, InitializationError)
//   - Keep Reset safe to call even before Initialize; backend-level reset
//     failures are logged, never propagated
type Interpreter interface {
	// Initialize performs backend setup. Subsequent calls are no-ops.
	Initialize(ctx context.Context) error

	// Chat sends a prompt, optionally merged with extra context rendered as
	// "key: value" lines, and returns the backend's opaque output.
	Chat(ctx context.Context, prompt string, extra *core.Context) (string, error)

	// ExecuteCode frames code inside a Chat call and normalizes the outcome.
	// It never returns a Go error; failures are captured in the result.
	ExecuteCode(ctx context.Context, code, language string) ExecutionResult

	// Reset clears backend-held conversational/session state.
	Reset()

	// ValidateCode statically validates code without executing it.
	ValidateCode(code, language string) ValidationResult

	// State returns a snapshot of interpreter bookkeeping.
	State() State

	// SetState restores a previously captured snapshot.
	SetState(state State)

	// Capabilities returns the static feature tags of the implementation.
	Capabilities() []string
}

// BuildPrompt merges a prompt with optional context. The context is rendered
// as "key: value" lines ahead of the task text; with no context the prompt
// passes through unchanged.
func BuildPrompt(prompt string, extra *core.Context) string {
	if extra.Len() == 0 {
		return prompt
	}
	return fmt.Sprintf("Context:\n%s\n\nTask:\n%s", extra.Render(), prompt)
}

// maxHistory bounds the diagnostic history kept by implementations.
const maxHistory = 10

// AppendHistory appends entry to history, trimming to the newest maxHistory
// entries. Shared by implementations so State snapshots stay bounded.
func AppendHistory(history []HistoryEntry, entry HistoryEntry) []HistoryEntry {
	history = append(history, entry)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	return history
}
