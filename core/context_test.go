package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_SetPreservesInsertionOrder(t *testing.T) {
	c := NewContext().
		Set("alpha", "1").
		Set("beta", "2").
		Set("gamma", "3")

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, c.Keys())
	assert.Equal(t, 3, c.Len())
}

func TestContext_SetOverwritesInPlace(t *testing.T) {
	c := NewContext().
		Set("alpha", "1").
		Set("beta", "2").
		Set("alpha", "changed")

	assert.Equal(t, []string{"alpha", "beta"}, c.Keys())

	v, ok := c.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "changed", v)
}

func TestContext_Render(t *testing.T) {
	c := NewContext().
		Set("language", "go").
		Set("style", "idiomatic")

	assert.Equal(t, "language: go\nstyle: idiomatic", c.Render())
}

func TestContext_RenderEmpty(t *testing.T) {
	assert.Equal(t, "", NewContext().Render())

	var nilCtx *Context
	assert.Equal(t, "", nilCtx.Render())
	assert.Equal(t, 0, nilCtx.Len())
}

func TestContext_CloneIsIndependent(t *testing.T) {
	original := NewContext().Set("key", "value")
	clone := original.Clone()

	clone.Set("key", "other")
	clone.Set("extra", "entry")

	v, _ := original.Get("key")
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, original.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestContext_CloneNil(t *testing.T) {
	var nilCtx *Context
	assert.Nil(t, nilCtx.Clone())
}

func TestContext_JSONRoundTrip(t *testing.T) {
	c := NewContext().
		Set("zeta", "last-first").
		Set("alpha", "second")

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":"last-first","alpha":"second"}`, string(data))

	decoded := NewContext()
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, []string{"zeta", "alpha"}, decoded.Keys())
}
