package agentpipe

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentpipe/agent"
	"github.com/hupe1980/agentpipe/pipeline"
)

func TestSystem_RunAgent(t *testing.T) {
	system := New()
	system.CreateAgent("coder", agent.RoleCoder)

	record := system.RunAgent(context.Background(), "coder", "write a hello world program", nil)

	assert.True(t, record.Success)
	assert.Equal(t, "coder", record.Agent)
	assert.Equal(t, agent.RoleCoder, record.AgentRole)
	assert.Len(t, system.Results(), 1)
}

func TestSystem_RunPipeline(t *testing.T) {
	system := New()

	steps := []pipeline.Step{
		{Agent: "analyzer", Role: agent.RoleAnalyst, Task: "analyze the input"},
		{Agent: "coder", Role: agent.RoleCoder, Task: "implement it", UsePrevious: true},
	}

	records, err := system.RunPipeline(context.Background(), steps)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Success)
	assert.True(t, records[1].Success)
	assert.Len(t, system.Results(), 2)
}

func TestSystem_SaveResultsFile(t *testing.T) {
	system := New()
	system.RunAgent(context.Background(), "worker", "do something", nil)

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, system.SaveResultsFile(path))
	assert.FileExists(t, path)
}

func TestSystem_OrchestratorAccess(t *testing.T) {
	system := New()
	require.NotNil(t, system.Orchestrator())

	system.RunAgent(context.Background(), "worker", "do something", nil)
	assert.NotNil(t, system.Orchestrator().Agent("worker"))
}
