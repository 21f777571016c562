// Package anthropic provides a live Interpreter over the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/interpreter"
	"github.com/hupe1980/agentpipe/logging"
)

// Options configure the Anthropic interpreter beyond its immutable Config.
type Options struct {
	Logger logging.Logger
}

// Interpreter wraps the Anthropic Messages API behind the generic
// interpreter.Interpreter contract. As with the OpenAI backend, construction
// is cheap and all fallible setup happens in Initialize; the running
// conversation is the session state that Reset clears.
type Interpreter struct {
	mu             sync.Mutex
	cfg            interpreter.Config
	logger         logging.Logger
	client         *anthropic.Client
	initialized    bool
	executionCount int
	session        []anthropic.MessageParam
	history        []interpreter.HistoryEntry
}

// New creates an uninitialized Anthropic interpreter from an immutable Config.
func New(cfg interpreter.Config, optFns ...func(o *Options)) *Interpreter {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Interpreter{cfg: cfg, logger: opts.Logger}
}

// Initialize implements interpreter.Interpreter.
func (i *Interpreter) Initialize(_ context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.initialized {
		return nil
	}
	if i.cfg.Model == "" {
		return &core.InitializationError{Backend: "anthropic", Err: errors.New("model identifier is required")}
	}

	var clientOpts []option.RequestOption
	if i.cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(i.cfg.APIKey))
	}
	if i.cfg.APIBase != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(i.cfg.APIBase))
	}

	client := anthropic.NewClient(clientOpts...)
	i.client = &client
	i.initialized = true
	i.logger.Info("anthropic interpreter initialized", "model", i.cfg.Model)
	return nil
}

// Chat implements interpreter.Interpreter, bounded by the configured timeout.
func (i *Interpreter) Chat(ctx context.Context, prompt string, extra *core.Context) (string, error) {
	if err := i.Initialize(ctx); err != nil {
		return "", err
	}

	full := interpreter.BuildPrompt(prompt, extra)

	i.mu.Lock()
	i.executionCount++
	i.session = append(i.session, anthropic.NewUserMessage(anthropic.NewTextBlock(full)))
	messages := make([]anthropic.MessageParam, len(i.session))
	copy(messages, i.session)
	client := i.client
	cfg := i.cfg
	i.mu.Unlock()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(cfg.Model),
		MaxTokens:   int64(cfg.MaxTokens),
		Temperature: anthropic.Float(cfg.Temperature),
		Messages:    messages,
	})
	duration := time.Since(start)

	if err != nil {
		classified := classify(ctx, err, cfg.Timeout)
		i.record(full, duration, classified)
		i.logger.Error("anthropic chat failed", "error", classified.Error(), "duration", duration)
		return "", classified
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	output := sb.String()

	i.mu.Lock()
	i.session = append(i.session, anthropic.NewAssistantMessage(anthropic.NewTextBlock(output)))
	i.mu.Unlock()

	i.record(full, duration, nil)
	i.logger.Debug("anthropic chat completed", "duration", duration)
	return output, nil
}

func classify(ctx context.Context, err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &core.TimeoutError{Timeout: timeout}
	}
	return &core.ExecutionError{Err: err}
}

func (i *Interpreter) record(prompt string, duration time.Duration, err error) {
	entry := interpreter.HistoryEntry{
		Prompt:    prompt,
		Success:   err == nil,
		Duration:  duration,
		Timestamp: time.Now(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	i.mu.Lock()
	i.history = interpreter.AppendHistory(i.history, entry)
	i.mu.Unlock()
}

// ExecuteCode implements interpreter.Interpreter. It never returns a Go error.
func (i *Interpreter) ExecuteCode(ctx context.Context, code, language string) interpreter.ExecutionResult {
	if language == "" {
		language = interpreter.DefaultLanguage
	}
	start := time.Now()
	prompt := "Execute this " + language + " code:\n```" + language + "\n" + code + "\n```"
	output, err := i.Chat(ctx, prompt, nil)
	result := interpreter.ExecutionResult{
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

// Reset implements interpreter.Interpreter, dropping the conversation
// transcript. Safe to call before Initialize.
func (i *Interpreter) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.session = nil
	i.logger.Debug("anthropic interpreter session reset")
}

// ValidateCode implements interpreter.Interpreter via the shared validators.
func (i *Interpreter) ValidateCode(code, language string) interpreter.ValidationResult {
	if language == "" {
		language = interpreter.DefaultLanguage
	}
	result := interpreter.StaticValidate(code, language)
	if result.Valid == nil {
		i.logger.Warn("no validator for language", "language", language)
	}
	return result
}

// State implements interpreter.Interpreter.
func (i *Interpreter) State() interpreter.State {
	i.mu.Lock()
	defer i.mu.Unlock()
	history := make([]interpreter.HistoryEntry, len(i.history))
	copy(history, i.history)
	return interpreter.State{
		Config:         i.cfg,
		Initialized:    i.initialized,
		ExecutionCount: i.executionCount,
		History:        history,
		Capabilities:   i.Capabilities(),
	}
}

// SetState implements interpreter.Interpreter without re-validating the
// snapshot against the current Config.
func (i *Interpreter) SetState(state interpreter.State) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.executionCount = state.ExecutionCount
	i.history = make([]interpreter.HistoryEntry, len(state.History))
	copy(i.history, state.History)
}

// Capabilities implements interpreter.Interpreter.
func (i *Interpreter) Capabilities() []string {
	return []string{
		"chat",
		"code_execution",
		"context_aware",
		"state_management",
		"session_memory",
		"go_validation",
	}
}

// compile-time conformance check
var _ interpreter.Interpreter = (*Interpreter)(nil)
