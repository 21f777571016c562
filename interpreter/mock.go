package interpreter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/logging"
)

// Canned response keys understood by Mock.SetResponse.
const (
	mockResponseDefault = "default"
	mockResponseError   = "error"
	mockResponseTimeout = "timeout"
)

// MockOptions configures a Mock interpreter.
type MockOptions struct {
	Logger logging.Logger
}

// Mock is a deterministic Interpreter for testing orchestration logic
// without a live backend. Outcomes are driven by lexical cues in the prompt:
// a prompt containing "error" fails with an ExecutionError, one containing
// "timeout" waits out the configured timeout and fails with a TimeoutError,
// everything else succeeds with a canned response. No artificial latency is
// added on the success path, so tests stay fast.
type Mock struct {
	mu             sync.Mutex
	cfg            Config
	logger         logging.Logger
	initialized    bool
	executionCount int
	responses      map[string]string
}

// NewMock constructs a Mock interpreter with the given configuration.
func NewMock(cfg Config, optFns ...func(o *MockOptions)) *Mock {
	opts := MockOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Mock{
		cfg:    cfg,
		logger: opts.Logger,
		responses: map[string]string{
			mockResponseDefault: "Mock execution completed successfully",
			mockResponseError:   "Mock error occurred",
			mockResponseTimeout: "Mock timeout occurred",
		},
	}
}

// Initialize implements Interpreter. The mock has no external resources, so
// initialization only flips the flag.
func (m *Mock) Initialize(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return nil
	}
	m.initialized = true
	m.logger.Info("mock interpreter initialized", "model", m.cfg.Model)
	return nil
}

// Chat implements Interpreter with deterministic cue-driven outcomes.
func (m *Mock) Chat(ctx context.Context, prompt string, extra *core.Context) (string, error) {
	if err := m.Initialize(ctx); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.executionCount++
	count := m.executionCount
	cfg := m.cfg
	errMsg := m.responses[mockResponseError]
	response := m.responses[mockResponseDefault]
	m.mu.Unlock()

	full := BuildPrompt(prompt, extra)
	lower := strings.ToLower(full)

	switch {
	case strings.Contains(lower, "error"):
		return "", &core.ExecutionError{Err: errors.New(errMsg)}
	case strings.Contains(lower, "timeout"):
		// Wait out the configured timeout before failing, mirroring a
		// backend that only gives up once its deadline elapses.
		select {
		case <-time.After(cfg.Timeout + 10*time.Millisecond):
		case <-ctx.Done():
		}
		return "", &core.TimeoutError{Timeout: cfg.Timeout}
	default:
		m.logger.Debug("mock execution completed", "execution", count)
		return response, nil
	}
}

// ExecuteCode implements Interpreter. Failures are captured in the result,
// never returned as errors.
func (m *Mock) ExecuteCode(ctx context.Context, code, language string) ExecutionResult {
	if language == "" {
		language = DefaultLanguage
	}
	start := time.Now()
	prompt := "Execute this " + language + " code:\n```" + language + "\n" + code + "\n```"
	output, err := m.Chat(ctx, prompt, nil)
	result := ExecutionResult{
		Language: language,
		Code:     code,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.Output = output
	return result
}

// Reset implements Interpreter, clearing the execution counter. Safe to call
// before Initialize.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executionCount = 0
	m.logger.Debug("mock interpreter reset")
}

// ValidateCode implements Interpreter. A snippet containing "syntax_error"
// is reported invalid; everything else is valid.
func (m *Mock) ValidateCode(code, language string) ValidationResult {
	if language == "" {
		language = DefaultLanguage
	}
	if strings.Contains(strings.ToLower(code), "syntax_error") {
		invalid := false
		return ValidationResult{
			Valid:    &invalid,
			Error:    "mock syntax error",
			Line:     1,
			Offset:   10,
			Language: language,
		}
	}
	valid := true
	return ValidationResult{Valid: &valid, Language: language}
}

// State implements Interpreter.
func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		Config:         m.cfg,
		Initialized:    m.initialized,
		ExecutionCount: m.executionCount,
		Capabilities:   m.Capabilities(),
	}
}

// SetState implements Interpreter, restoring only the bookkeeping fields the
// mock recognizes.
func (m *Mock) SetState(state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executionCount = state.ExecutionCount
}

// Capabilities implements Interpreter.
func (m *Mock) Capabilities() []string {
	return []string{
		"mock_chat",
		"mock_execution",
		"testing",
		"simulation",
		"error_injection",
		"timeout_simulation",
	}
}

// SetResponse overrides a canned response ("default", "error", "timeout")
// for test scenarios.
func (m *Mock) SetResponse(key, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[key] = response
}

// ExecutionCount reports the number of Chat invocations since the last Reset.
func (m *Mock) ExecutionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executionCount
}

// compile-time conformance check
var _ Interpreter = (*Mock)(nil)
