package pipeline

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/agentpipe/agent"
	"github.com/hupe1980/agentpipe/core"
)

// Step describes one pipeline entry: which agent to run, what task to give
// it, and how to treat its context and failures. Steps are input, not
// persisted state.
type Step struct {
	// Agent is the name of the agent to run. Required.
	Agent string `json:"agent" yaml:"agent"`
	// Role is used only if the agent does not exist yet; the orchestrator
	// falls back to the assistant role when empty.
	Role agent.Role `json:"role,omitempty" yaml:"role"`
	// Task is the prompt text. Required.
	Task string `json:"task" yaml:"task"`
	// Context supplies explicit context entries for this step.
	Context map[string]string `json:"context,omitempty" yaml:"context"`
	// UsePrevious injects the immediately preceding step's output under the
	// key "previous_result". Ignored on the first step.
	UsePrevious bool `json:"use_previous,omitempty" yaml:"use_previous"`
	// ContinueOnError controls whether the pipeline proceeds past a failure
	// of this step. Unset means true.
	ContinueOnError *bool `json:"continue_on_error,omitempty" yaml:"continue_on_error"`
}

// Validate checks the required fields.
func (s Step) Validate() error {
	if s.Agent == "" {
		return &core.ValidationError{Reason: "step is missing the agent name"}
	}
	if s.Task == "" {
		return &core.ValidationError{Reason: fmt.Sprintf("step for agent %q is missing the task", s.Agent)}
	}
	return nil
}

// continueOnError resolves the default: a step continues unless it
// explicitly opts out.
func (s Step) continueOnError() bool {
	return s.ContinueOnError == nil || *s.ContinueOnError
}

// buildContext converts the step's explicit context into an ordered Context.
// Go maps carry no declaration order, so keys are inserted sorted to keep
// prompt rendering deterministic.
func (s Step) buildContext() *core.Context {
	c := core.NewContext()
	keys := make([]string, 0, len(s.Context))
	for k := range s.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.Set(k, s.Context[k])
	}
	return c
}

// LoadSteps decodes an ordered pipeline definition from YAML (which is a
// superset of JSON, so JSON documents work too) and validates every step.
func LoadSteps(r io.Reader) ([]Step, error) {
	var steps []Step
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&steps); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline definition: %w", err)
	}
	for i, step := range steps {
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("step %d invalid: %w", i+1, err)
		}
	}
	return steps, nil
}

// LoadStepsFile reads a pipeline definition from a file.
func LoadStepsFile(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pipeline definition: %w", err)
	}
	defer f.Close()
	return LoadSteps(f)
}
