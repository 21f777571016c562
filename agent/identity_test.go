package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/agentpipe/core"
)

func TestNewIdentity(t *testing.T) {
	a := NewIdentity("alpha", RoleCoder)
	b := NewIdentity("alpha", RoleCoder)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "alpha", a.Name)
	assert.Equal(t, RoleCoder, a.Role)
	assert.Equal(t, "1.0.0", a.Version)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestNewIdentity_EmptyRoleDefaultsToGeneral(t *testing.T) {
	id := NewIdentity("beta", "")
	assert.Equal(t, RoleGeneral, id.Role)
}

func TestCapabilities_AllowsLanguage(t *testing.T) {
	caps := DefaultCapabilities()

	assert.True(t, caps.AllowsLanguage("python"))
	assert.False(t, caps.AllowsLanguage("go"))

	empty := Capabilities{}
	assert.False(t, empty.AllowsLanguage("python"))
}

func TestBuildRolePrompt(t *testing.T) {
	extra := core.NewContext().Set("language", "go")

	got := BuildRolePrompt("You are a tester.", "write tests", extra)

	assert.Equal(t, "You are a tester.\n\nContext:\nlanguage: go\n\nTask:\nwrite tests", got)
}

func TestBuildRolePrompt_NoPreambleNoContext(t *testing.T) {
	got := BuildRolePrompt("", "just the task", nil)
	assert.Equal(t, "Task:\njust the task", got)
}
