package dag

import "errors"

var (
	// ErrNoTasks is returned when a graph specification carries an
	// empty task list.
	ErrNoTasks = errors.New("graph has no tasks")
	// ErrUnknownExecutor marks a task whose agent tag has no
	// registered executor.
	ErrUnknownExecutor = errors.New("unknown executor")
	// ErrUnresolvedReference marks a task input expression that does
	// not resolve against the shared context.
	ErrUnresolvedReference = errors.New("unresolved reference")
)
