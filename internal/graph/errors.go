package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrCyclicDependency  = errors.New("cyclic dependency")
	ErrInvalidDuration   = errors.New("invalid duration")
	ErrDuplicateTask     = errors.New("duplicate task id")
	ErrEmptyID           = errors.New("empty task id")
)

// Error describes why a task list was rejected. Kind is one of the Err*
// sentinels above and is what errors.Is matches against.
type Error struct {
	Kind       error
	TaskID     string
	Dependency string   // set for ErrUnknownDependency
	Cycle      []string // set for ErrCyclicDependency, first id repeated at the end
	Msg        string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case len(e.Cycle) > 0:
		return fmt.Sprintf("%s: %s", e.Kind, strings.Join(e.Cycle, " -> "))
	case e.Dependency != "":
		return fmt.Sprintf("%s: task %s depends on %s", e.Kind, e.TaskID, e.Dependency)
	case e.Msg != "" && e.TaskID != "":
		return fmt.Sprintf("%s: task %s: %s", e.Kind, e.TaskID, e.Msg)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.TaskID != "":
		return fmt.Sprintf("%s: task %s", e.Kind, e.TaskID)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

func invalidDuration(taskID, format string, args ...any) error {
	return &Error{Kind: ErrInvalidDuration, TaskID: taskID, Msg: fmt.Sprintf(format, args...)}
}
