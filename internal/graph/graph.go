// Package graph holds the task dependency graph: the single owner of task
// records, their readiness rules and the guarded completion toggle.
package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/joshharrison/ganttloom/internal/telemetry"
)

// ErrTaskNotFound is returned when an id does not name a task in the graph.
var ErrTaskNotFound = errors.New("task not found")

// Graph owns a set of tasks. Consumers receive copies; the only mutations
// are Toggle and UpdateComment.
type Graph struct {
	mu       sync.RWMutex
	order    []string
	tasks    map[string]*Task
	dangling int // edges dropped at construction
}

// New copies tasks into a graph and drops dangling dependency edges. Tasks
// with an empty id or a non-positive duration are rejected. A repeated id
// replaces the earlier task in place.
func New(tasks []Task) (*Graph, error) {
	g := &Graph{tasks: make(map[string]*Task, len(tasks))}
	for i := range tasks {
		t := tasks[i].clone()
		if t.ID == "" {
			return nil, fmt.Errorf("task %d: empty id", i)
		}
		if t.Duration <= 0 {
			return nil, fmt.Errorf("task %s: duration must be positive, got %d", t.ID, t.Duration)
		}
		if _, dup := g.tasks[t.ID]; dup {
			slog.Warn("duplicate task id, keeping the later one", "id", t.ID)
		} else {
			g.order = append(g.order, t.ID)
		}
		g.tasks[t.ID] = &t
	}

	g.dangling = g.FilterDanglingDependencies()
	return g, nil
}

// Len returns the number of tasks.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}

// DanglingRemoved returns the number of dependency edges New dropped.
func (g *Graph) DanglingRemoved() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.dangling
}

// FindByID returns a copy of the task with the given id.
func (g *Graph) FindByID(id string) (Task, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t, ok := g.tasks[id]
	if !ok {
		return Task{}, false
	}
	return t.clone(), true
}

// Tasks returns copies of all tasks in insertion order.
func (g *Graph) Tasks() []Task {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id].clone())
	}
	return out
}

// FilterDanglingDependencies removes every dependency that names a task
// outside the graph, along with self references. It returns the number of
// edges removed; a second call always returns 0.
func (g *Graph) FilterDanglingDependencies() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for _, id := range g.order {
		t := g.tasks[id]
		if len(t.Dependencies) == 0 {
			continue
		}
		kept := t.Dependencies[:0]
		for _, dep := range t.Dependencies {
			if _, ok := g.tasks[dep]; !ok || dep == id {
				slog.Warn("dropping dangling dependency", "task", id, "dependency", dep)
				removed++
				continue
			}
			kept = append(kept, dep)
		}
		t.Dependencies = kept
	}

	telemetry.Add(context.Background(), telemetry.DanglingRemoved, int64(removed))
	return removed
}

// IsReady reports whether every dependency of id is completed. It is false
// for an unknown task or an unknown dependency.
func (g *Graph) IsReady(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.isReady(id)
}

func (g *Graph) isReady(id string) bool {
	t, ok := g.tasks[id]
	if !ok {
		return false
	}
	return len(g.pending(t)) == 0
}

// pending lists the dependencies of t that are not completed. Unknown
// targets count as pending.
func (g *Graph) pending(t *Task) []string {
	var out []string
	for _, dep := range t.Dependencies {
		d, ok := g.tasks[dep]
		if !ok || !d.Completed {
			out = append(out, dep)
		}
	}
	return out
}

// Status returns the derived state of a task.
func (g *Graph) Status(id string) (Status, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	t, ok := g.tasks[id]
	if !ok {
		return Blocked, false
	}
	return g.status(t), true
}

func (g *Graph) status(t *Task) Status {
	switch {
	case t.Completed:
		return Completed
	case len(g.pending(t)) == 0:
		return Ready
	default:
		return Blocked
	}
}

// DetectCycle returns the ids along a dependency cycle, or nil if there is
// none. Readiness never consults it: tasks on a cycle simply stay blocked.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
func (g *Graph) DetectCycle() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.tasks[node].Dependencies {
			if _, ok := g.tasks[next]; !ok {
				continue
			}
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				// Reverse so the path follows dependency direction from next.
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	ids := append([]string(nil), g.order...)
	sort.Strings(ids)

	for _, id := range ids {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
