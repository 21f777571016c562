package agent

import (
	"fmt"

	"github.com/hupe1980/agentpipe/core"
)

// EventKind enumerates the lifecycle points an observer can hook. The set is
// closed: registration through a kind value that is not one of the constants
// below is a configuration error, rejected up front rather than silently
// ignored at dispatch.
type EventKind string

const (
	// EventStart fires when a task transitions the agent to busy.
	EventStart EventKind = "start"
	// EventComplete fires after a task produced a success record.
	EventComplete EventKind = "complete"
	// EventError fires after a task ended in a failure record.
	EventError EventKind = "error"
)

// ParseEventKind converts a free-form event name (as found in configuration
// input) into an EventKind, rejecting unknown names.
func ParseEventKind(name string) (EventKind, error) {
	switch EventKind(name) {
	case EventStart, EventComplete, EventError:
		return EventKind(name), nil
	default:
		return "", &core.ValidationError{Reason: fmt.Sprintf("unknown event kind: %q", name)}
	}
}

// StartFunc observes the start of a task execution.
type StartFunc func(a *Agent, task string, extra *core.Context)

// CompleteFunc observes a successful task outcome.
type CompleteFunc func(a *Agent, record ExecutionRecord)

// ErrorFunc observes a failed task outcome.
type ErrorFunc func(a *Agent, err error, task string)

// callbacks holds one typed handler list per event kind. The tagged layout
// makes an unknown kind unrepresentable: each kind has its own registration
// method with its own handler signature.
type callbacks struct {
	start    []StartFunc
	complete []CompleteFunc
	errs     []ErrorFunc
}

// OnStart registers a handler invoked when a task begins.
func (a *Agent) OnStart(fn StartFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cbs.start = append(a.cbs.start, fn)
}

// OnComplete registers a handler invoked after a successful task.
func (a *Agent) OnComplete(fn CompleteFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cbs.complete = append(a.cbs.complete, fn)
}

// OnError registers a handler invoked after a failed task.
func (a *Agent) OnError(fn ErrorFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cbs.errs = append(a.cbs.errs, fn)
}

// runStart dispatches start handlers. Handler panics are logged and
// swallowed: a misbehaving observer must not break task execution.
func (a *Agent) runStart(task string, extra *core.Context) {
	a.mu.Lock()
	handlers := make([]StartFunc, len(a.cbs.start))
	copy(handlers, a.cbs.start)
	a.mu.Unlock()
	for _, fn := range handlers {
		a.safely(func() { fn(a, task, extra) })
	}
}

func (a *Agent) runComplete(record ExecutionRecord) {
	a.mu.Lock()
	handlers := make([]CompleteFunc, len(a.cbs.complete))
	copy(handlers, a.cbs.complete)
	a.mu.Unlock()
	for _, fn := range handlers {
		a.safely(func() { fn(a, record) })
	}
}

func (a *Agent) runError(err error, task string) {
	a.mu.Lock()
	handlers := make([]ErrorFunc, len(a.cbs.errs))
	copy(handlers, a.cbs.errs)
	a.mu.Unlock()
	for _, fn := range handlers {
		a.safely(func() { fn(a, err, task) })
	}
}

func (a *Agent) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("callback panicked", "agent", a.identity.Name, "panic", fmt.Sprintf("%v", r))
		}
	}()
	fn()
}
