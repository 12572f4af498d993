package graph

import (
	"time"

	"github.com/joshharrison/ganttloom/internal/daterange"
)

// Conflict is a task planned to start before one of its dependencies ends.
type Conflict struct {
	TaskID        string    `json:"taskId"`
	DependsOn     string    `json:"dependsOn"`
	Start         time.Time `json:"start"`
	DependencyEnd time.Time `json:"dependencyEnd"`
	OverlapDays   int       `json:"overlapDays"`
}

// DateConflicts lists every dependency edge whose dependent starts before
// the dependency's last day has passed, in task order. Completion state is
// not considered.
func (g *Graph) DateConflicts() []Conflict {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []Conflict
	for _, id := range g.order {
		t := g.tasks[id]
		for _, depID := range t.Dependencies {
			dep, ok := g.tasks[depID]
			if !ok {
				continue
			}
			if end := dep.End(); t.StartDate.Before(end) {
				out = append(out, Conflict{
					TaskID:        t.ID,
					DependsOn:     dep.ID,
					Start:         t.StartDate,
					DependencyEnd: end,
					OverlapDays:   daterange.DaysBetween(t.StartDate, end),
				})
			}
		}
	}
	return out
}
