// Package core contains the shared leaf types of AgentPipe: the ordered
// Context mapping that is merged into task prompts, and the error taxonomy
// used to classify execution failures.
//
// The package deliberately has no dependencies on the interpreter, agent or
// pipeline packages so every layer can import it without cycles.
package core
