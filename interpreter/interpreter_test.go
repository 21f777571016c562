package interpreter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentpipe/core"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "qwen2.5-coder:14b-instruct-q4_K_M", cfg.Model)
	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, 32000, cfg.ContextWindow)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Temperature, 0.0001)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.True(t, cfg.AutoRun)
	assert.True(t, cfg.SafeMode)
}

func TestBuildPrompt_WithoutContext(t *testing.T) {
	assert.Equal(t, "do the thing", BuildPrompt("do the thing", nil))
	assert.Equal(t, "do the thing", BuildPrompt("do the thing", core.NewContext()))
}

func TestBuildPrompt_WithContext(t *testing.T) {
	extra := core.NewContext().
		Set("language", "go").
		Set("previous_result", "OK")

	got := BuildPrompt("write tests", extra)

	assert.Equal(t, "Context:\nlanguage: go\nprevious_result: OK\n\nTask:\nwrite tests", got)
}

func TestStaticValidate_ValidGo(t *testing.T) {
	result := StaticValidate("package main\n\nfunc main() {}\n", "go")

	require.NotNil(t, result.Valid)
	assert.True(t, *result.Valid)
	assert.Equal(t, "go", result.Language)
}

func TestStaticValidate_SnippetWithoutPackageClause(t *testing.T) {
	result := StaticValidate("func add(a, b int) int { return a + b }", "go")

	require.NotNil(t, result.Valid)
	assert.True(t, *result.Valid)
}

func TestStaticValidate_InvalidGo(t *testing.T) {
	result := StaticValidate("package main\n\nfunc main() {", "go")

	require.NotNil(t, result.Valid)
	assert.False(t, *result.Valid)
	assert.NotEmpty(t, result.Error)
}

func TestStaticValidate_UnknownLanguage(t *testing.T) {
	result := StaticValidate("puts 'hello'", "ruby")

	assert.Nil(t, result.Valid)
	assert.Equal(t, "ruby", result.Language)
	assert.Contains(t, result.Message, "ruby")
}

func TestAppendHistory_Bounded(t *testing.T) {
	var history []HistoryEntry
	for i := 0; i < 25; i++ {
		history = AppendHistory(history, HistoryEntry{Prompt: "p", Timestamp: time.Now()})
	}

	assert.Len(t, history, 10)
}
