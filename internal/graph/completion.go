package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joshharrison/ganttloom/internal/telemetry"
)

// ErrBlocked is matched by a BlockedError.
var ErrBlocked = errors.New("task is blocked")

// BlockedError rejects completing a task whose dependencies are pending.
type BlockedError struct {
	TaskID  string
	Pending []string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("task %s is blocked by %s", e.TaskID, strings.Join(e.Pending, ", "))
}

func (e *BlockedError) Is(target error) bool { return target == ErrBlocked }

// Toggle flips the completed flag of a task. Un-completing is always
// allowed; completing requires every dependency to be completed, otherwise
// the task is left untouched and a *BlockedError is returned.
func (g *Graph) Toggle(id string) (Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("toggle %s: %w", id, ErrTaskNotFound)
	}

	if t.Completed {
		t.Completed = false
		return t.clone(), nil
	}

	if pending := g.pending(t); len(pending) > 0 {
		telemetry.Add(context.Background(), telemetry.TogglesRejected, 1)
		return t.clone(), &BlockedError{TaskID: id, Pending: pending}
	}

	t.Completed = true
	return t.clone(), nil
}

// UpdateComment replaces the comment of a task.
func (g *Graph) UpdateComment(id, text string) (Task, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, ok := g.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("update comment %s: %w", id, ErrTaskNotFound)
	}
	t.Comments = text
	return t.clone(), nil
}
