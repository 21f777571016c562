package agent

import (
	"time"

	"github.com/google/uuid"
)

// Role categorizes what an agent is specialized for. The role selects the
// preamble prepended to every task prompt of a specialized agent.
type Role string

const (
	// RoleCoder writes and modifies code.
	RoleCoder Role = "coder"
	// RoleReviewer reviews code for defects and style.
	RoleReviewer Role = "reviewer"
	// RoleTester writes and runs tests.
	RoleTester Role = "tester"
	// RoleArchitect designs system structure.
	RoleArchitect Role = "architect"
	// RoleDebugger locates and fixes faults.
	RoleDebugger Role = "debugger"
	// RoleDocumenter writes documentation.
	RoleDocumenter Role = "documenter"
	// RoleAnalyst analyzes code and data.
	RoleAnalyst Role = "analyst"
	// RoleGeneral is the default, unspecialized role.
	RoleGeneral Role = "general"
	// RoleAssistant is the fallback role the orchestrator assigns when a
	// pipeline step references an agent that was never declared with a role.
	RoleAssistant Role = "assistant"
)

// Identity carries the immutable identifying details of an agent. It is
// created once at construction and never mutated afterwards.
type Identity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	Version   string    `json:"version"`
	Tags      []string  `json:"tags,omitempty"`
}

// NewIdentity creates an Identity with a globally unique id.
func NewIdentity(name string, role Role) Identity {
	if role == "" {
		role = RoleGeneral
	}
	return Identity{
		ID:        uuid.NewString(),
		Name:      name,
		Role:      role,
		CreatedAt: time.Now(),
		Version:   "1.0.0",
	}
}

// Capabilities declares an agent's permission surface. It is attached at
// construction and read-only during execution; the core uses it for
// validation gating only and performs no sandboxing itself.
type Capabilities struct {
	ExecuteCode      bool          `json:"can_execute_code"`
	FileAccess       bool          `json:"can_access_files"`
	NetworkAccess    bool          `json:"can_make_network_calls"`
	SpawnAgents      bool          `json:"can_spawn_agents"`
	ModifySystem     bool          `json:"can_modify_system"`
	MaxExecutionTime time.Duration `json:"max_execution_time"`
	AllowedLanguages []string      `json:"allowed_languages"`
}

// DefaultCapabilities returns the baseline permission surface: code
// execution and file access allowed, everything else denied.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		ExecuteCode:      true,
		FileAccess:       true,
		MaxExecutionTime: 5 * time.Minute,
		AllowedLanguages: []string{"python"},
	}
}

// AllowsLanguage reports whether language is in the allowed set. An empty
// set allows nothing.
func (c Capabilities) AllowsLanguage(language string) bool {
	for _, l := range c.AllowedLanguages {
		if l == language {
			return true
		}
	}
	return false
}
