package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentpipe/agent"
	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/interpreter"
)

// spyInterpreter wraps the mock to count invocations across resets and to
// capture the prompts the orchestrator actually sends.
type spyInterpreter struct {
	*interpreter.Mock

	mu         sync.Mutex
	chatCalls  int
	resetCalls int
	prompts    []string
}

func newSpy(t *testing.T) *spyInterpreter {
	t.Helper()
	cfg := interpreter.DefaultConfig()
	cfg.Timeout = 10 * time.Millisecond
	return &spyInterpreter{Mock: interpreter.NewMock(cfg)}
}

func (s *spyInterpreter) Chat(ctx context.Context, prompt string, extra *core.Context) (string, error) {
	s.mu.Lock()
	s.chatCalls++
	s.prompts = append(s.prompts, interpreter.BuildPrompt(prompt, extra))
	s.mu.Unlock()
	return s.Mock.Chat(ctx, prompt, extra)
}

func (s *spyInterpreter) Reset() {
	s.mu.Lock()
	s.resetCalls++
	s.mu.Unlock()
	s.Mock.Reset()
}

func (s *spyInterpreter) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

func TestOrchestrator_RunAgent(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)

	record := o.RunAgent(context.Background(), "worker", "do something", nil)

	assert.True(t, record.Success)
	assert.Equal(t, "worker", record.Agent)
	assert.Equal(t, 1, spy.chatCalls)
	assert.Equal(t, 1, spy.resetCalls)
	assert.Len(t, o.Results(), 1)
}

func TestOrchestrator_RunAgentResetsOnFailureToo(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)

	record := o.RunAgent(context.Background(), "worker", "trigger an error", nil)

	assert.False(t, record.Success)
	assert.Equal(t, 1, spy.resetCalls)
}

func TestOrchestrator_UndeclaredAgentGetsAssistantRole(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)

	o.RunAgent(context.Background(), "ghost", "do something", nil)

	a := o.Agent("ghost")
	require.NotNil(t, a)
	assert.Equal(t, agent.RoleAssistant, a.Role())
	assert.Contains(t, o.AgentNames(), "ghost")
}

func TestOrchestrator_CreateAgentPreservesInstances(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)

	o.CreateAgent("worker", agent.RoleCoder)
	o.RunAgent(context.Background(), "worker", "first task", nil)
	first := o.Agent("worker")
	require.NotNil(t, first)
	require.Len(t, first.History(), 1)

	// Re-declaring the name must not discard the instance or its history.
	o.CreateAgent("worker", agent.RoleTester)
	o.RunAgent(context.Background(), "worker", "second task", nil)

	assert.Same(t, first, o.Agent("worker"))
	assert.Equal(t, agent.RoleCoder, first.Role())
	assert.Len(t, first.History(), 2)
}

func TestOrchestrator_RunPipelineInOrder(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)

	steps := []Step{
		{Agent: "a", Role: agent.RoleAnalyst, Task: "analyze"},
		{Agent: "b", Role: agent.RoleCoder, Task: "implement"},
		{Agent: "c", Role: agent.RoleTester, Task: "verify"},
	}

	records, err := o.RunPipeline(context.Background(), steps)

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{records[0].Agent, records[1].Agent, records[2].Agent})
	for _, record := range records {
		assert.True(t, record.Success)
	}
	assert.Equal(t, 3, spy.chatCalls)
	assert.Equal(t, 3, spy.resetCalls)
}

func TestOrchestrator_RunPipelineThreadsPreviousResult(t *testing.T) {
	spy := newSpy(t)
	spy.SetResponse("default", "OK")
	o := New(spy)

	steps := []Step{
		{Agent: "first", Task: "produce output"},
		{
			Agent:       "second",
			Task:        "consume output",
			Context:     map[string]string{"language": "go"},
			UsePrevious: true,
		},
	}

	records, err := o.RunPipeline(context.Background(), steps)

	require.NoError(t, err)
	require.Len(t, records, 2)

	// The second step's prompt carries both its explicit context entry and
	// the injected predecessor output.
	prompt := spy.lastPrompt()
	assert.Contains(t, prompt, "language: go")
	assert.Contains(t, prompt, "previous_result: OK")
}

func TestOrchestrator_RunPipelineIgnoresUsePreviousOnFirstStep(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)

	steps := []Step{
		{Agent: "only", Task: "run", UsePrevious: true},
	}

	records, err := o.RunPipeline(context.Background(), steps)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotContains(t, spy.lastPrompt(), PreviousResultKey)
}

func TestOrchestrator_RunPipelineContinuesOnErrorByDefault(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)

	steps := []Step{
		{Agent: "a", Task: "trigger an error"},
		{Agent: "b", Task: "keep going"},
	}

	records, err := o.RunPipeline(context.Background(), steps)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.False(t, records[0].Success)
	assert.True(t, records[1].Success)
	assert.Equal(t, 2, spy.chatCalls)
}

func TestOrchestrator_RunPipelineHaltsWhenOptedOut(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)

	halt := false
	steps := []Step{
		{Agent: "a", Task: "trigger an error", ContinueOnError: &halt},
		{Agent: "b", Task: "never runs"},
		{Agent: "c", Task: "never runs either"},
	}

	records, err := o.RunPipeline(context.Background(), steps)

	require.NoError(t, err)
	// The failing record is included; nothing after it runs.
	require.Len(t, records, 1)
	assert.False(t, records[0].Success)
	assert.Equal(t, 1, spy.chatCalls)
	assert.Nil(t, o.Agent("b"))
}

func TestOrchestrator_RunPipelineRejectsInvalidStep(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)

	steps := []Step{
		{Agent: "a", Task: "fine"},
		{Agent: "", Task: "missing agent"},
	}

	records, err := o.RunPipeline(context.Background(), steps)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 2")
	assert.Len(t, records, 1)
}

func TestOrchestrator_SaveResults(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)
	o.RunAgent(context.Background(), "worker", "do something", nil)

	var buf bytes.Buffer
	require.NoError(t, o.SaveResults(&buf))

	var decoded []agent.ExecutionRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "worker", decoded[0].Agent)
	assert.True(t, decoded[0].Success)
}

func TestOrchestrator_SaveResultsFile(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)
	o.RunAgent(context.Background(), "worker", "do something", nil)

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, o.SaveResultsFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []agent.ExecutionRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "worker", decoded[0].Agent)
}

func TestOrchestrator_ResultsAreACopy(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)
	o.RunAgent(context.Background(), "worker", "do something", nil)

	results := o.Results()
	require.Len(t, results, 1)
	results[0].Agent = "mutated"

	assert.Equal(t, "worker", o.Results()[0].Agent)
}

func TestOrchestrator_RunPipelineEmptySteps(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)

	records, err := o.RunPipeline(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, spy.chatCalls)
}

func TestOrchestrator_ResultsAccumulateAcrossRuns(t *testing.T) {
	spy := newSpy(t)
	o := New(spy)

	o.RunAgent(context.Background(), "worker", "one", nil)
	_, err := o.RunPipeline(context.Background(), []Step{{Agent: "worker", Task: "two"}})
	require.NoError(t, err)

	results := o.Results()
	require.Len(t, results, 2)
	assert.True(t, strings.HasPrefix(results[0].Task, "one"))
	assert.True(t, strings.HasPrefix(results[1].Task, "two"))
}
