// Package openai provides a live Interpreter over the OpenAI Chat
// Completions API. Because the official client speaks to any
// OpenAI-compatible endpoint, this backend also covers locally hosted
// models (for example an Ollama server) via Config.APIBase.
package openai

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/interpreter"
	"github.com/hupe1980/agentpipe/logging"
)

// Options configure the OpenAI interpreter beyond its immutable Config.
type Options struct {
	Logger logging.Logger
}

// Interpreter wraps the OpenAI Chat Completions API behind the generic
// interpreter.Interpreter contract. Construction is cheap and infallible;
// the client is built inside Initialize (two-phase construction), so startup
// failures surface as InitializationError rather than at construction time.
//
// The interpreter keeps the running conversation as session state: each Chat
// call appends to the transcript and sends it whole, and Reset clears it.
type Interpreter struct {
	mu             sync.Mutex
	cfg            interpreter.Config
	logger         logging.Logger
	client         *openai.Client
	initialized    bool
	executionCount int
	session        []openai.ChatCompletionMessageParamUnion
	history        []interpreter.HistoryEntry
}

// New creates an uninitialized OpenAI interpreter from an immutable Config.
func New(cfg interpreter.Config, optFns ...func(o *Options)) *Interpreter {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Interpreter{cfg: cfg, logger: opts.Logger}
}

// Initialize implements interpreter.Interpreter. It builds the API client
// from the Config exactly once; subsequent calls are no-ops.
func (i *Interpreter) Initialize(_ context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.initialized {
		return nil
	}
	if i.cfg.Model == "" {
		return &core.InitializationError{Backend: "openai", Err: errors.New("model identifier is required")}
	}

	var clientOpts []option.RequestOption
	if i.cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(i.cfg.APIKey))
	}
	if i.cfg.APIBase != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(i.cfg.APIBase))
	}

	client := openai.NewClient(clientOpts...)
	i.client = &client
	i.initialized = true
	i.logger.Info("openai interpreter initialized", "model", i.cfg.Model, "api_base", i.cfg.APIBase)
	return nil
}

// Chat implements interpreter.Interpreter. The call is bounded by the
// configured timeout via a context deadline; cancellation mid-call is not
// supported beyond that bound.
func (i *Interpreter) Chat(ctx context.Context, prompt string, extra *core.Context) (string, error) {
	if err := i.Initialize(ctx); err != nil {
		return "", err
	}

	full := interpreter.BuildPrompt(prompt, extra)

	i.mu.Lock()
	i.executionCount++
	i.session = append(i.session, openai.UserMessage(full))
	messages := make([]openai.ChatCompletionMessageParamUnion, len(i.session))
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
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               openai.ChatModel(cfg.Model),
		Temperature:         openai.Float(cfg.Temperature),
		MaxCompletionTokens: openai.Int(int64(cfg.MaxTokens)),
	})
	duration := time.Since(start)

	if err != nil {
		classified := classify(ctx, err, cfg.Timeout)
		i.record(full, duration, classified)
		i.logger.Error("openai chat failed", "error", classified.Error(), "duration", duration)
		return "", classified
	}
	if len(resp.Choices) == 0 {
		classified := &core.ExecutionError{Err: errors.New("no choices returned")}
		i.record(full, duration, classified)
		return "", classified
	}

	output := resp.Choices[0].Message.Content

	i.mu.Lock()
	i.session = append(i.session, openai.AssistantMessage(output))
	i.mu.Unlock()

	i.record(full, duration, nil)
	i.logger.Debug("openai chat completed", "duration", duration)
	return output, nil
}

// classify maps an SDK failure onto the core taxonomy.
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

// ExecuteCode implements interpreter.Interpreter by framing the snippet
// inside a Chat call. It never returns a Go error.
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
	i.logger.Debug("openai interpreter session reset")
}

// ValidateCode implements interpreter.Interpreter using the shared static
// validators; languages without one report a nil (unknown) Valid.
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

// SetState implements interpreter.Interpreter. The snapshot is restored
// as-is, without re-validation against the current Config.
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
		"local_models",
	}
}

// compile-time conformance check
var _ interpreter.Interpreter = (*Interpreter)(nil)
