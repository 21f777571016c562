package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentpipe/agent"
)

func TestStep_Validate(t *testing.T) {
	assert.NoError(t, Step{Agent: "a", Task: "t"}.Validate())
	assert.Error(t, Step{Task: "t"}.Validate())
	assert.Error(t, Step{Agent: "a"}.Validate())
}

func TestStep_ContinueOnErrorDefaultsToTrue(t *testing.T) {
	assert.True(t, Step{}.continueOnError())

	yes, no := true, false
	assert.True(t, Step{ContinueOnError: &yes}.continueOnError())
	assert.False(t, Step{ContinueOnError: &no}.continueOnError())
}

func TestStep_BuildContextSortsKeys(t *testing.T) {
	step := Step{Context: map[string]string{
		"zeta":  "3",
		"alpha": "1",
		"mid":   "2",
	}}

	c := step.buildContext()

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, c.Keys())
}

func TestLoadSteps(t *testing.T) {
	doc := `
- agent: analyzer
  role: analyst
  task: analyze the repository
  context:
    language: go
- agent: coder
  task: implement the fix
  use_previous: true
  continue_on_error: false
`
	steps, err := LoadSteps(strings.NewReader(doc))

	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, "analyzer", steps[0].Agent)
	assert.Equal(t, agent.RoleAnalyst, steps[0].Role)
	assert.Equal(t, "go", steps[0].Context["language"])
	assert.False(t, steps[0].UsePrevious)
	assert.Nil(t, steps[0].ContinueOnError)

	assert.Equal(t, "coder", steps[1].Agent)
	assert.True(t, steps[1].UsePrevious)
	require.NotNil(t, steps[1].ContinueOnError)
	assert.False(t, *steps[1].ContinueOnError)
}

func TestLoadSteps_RejectsInvalidStep(t *testing.T) {
	doc := `
- agent: worker
`
	_, err := LoadSteps(strings.NewReader(doc))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1")
}

func TestLoadSteps_RejectsMalformedDocument(t *testing.T) {
	_, err := LoadSteps(strings.NewReader("agent: not-a-list"))
	assert.Error(t, err)
}
