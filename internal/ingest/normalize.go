package ingest

import (
	"log/slog"
	"time"

	"github.com/joshharrison/ganttloom/internal/daterange"
	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/sheet"
)

// FallbackDuration is the duration, in days, of a task whose date range
// could not be parsed.
const FallbackDuration = 20

// Normalizer turns one country row into tasks.
type Normalizer struct {
	Mappings   []Mapping
	NameColumn int
	Now        func() time.Time
}

// NormalizeRow returns the tasks produced by row. A row without a country
// name yields nothing.
func (n Normalizer) NormalizeRow(row sheet.Row) []graph.Task {
	tasks, _ := n.normalize(row)
	return tasks
}

func (n Normalizer) normalize(row sheet.Row) ([]graph.Task, int) {
	name := row.At(n.NameColumn).ScopeName()
	if name == "" {
		return nil, 0
	}
	scope := ScopeKey(name)

	var (
		tasks     []graph.Task
		fallbacks int
	)
	for _, mp := range n.Mappings {
		if mp.Column == NotFound || mp.Column >= len(row) {
			continue
		}

		t := graph.Task{
			ID:       scope + "-" + mp.Suffix,
			Name:     mp.Name,
			Section:  mp.Section,
			GroupKey: name,
		}

		raw := row[mp.Column].DateRangeText()
		if r, ok := daterange.Parse(raw); ok {
			t.StartDate = r.Start
			t.Duration = r.Duration
			t.Dependencies = make([]string, 0, len(mp.Dependencies))
			for _, dep := range mp.Dependencies {
				t.Dependencies = append(t.Dependencies, scope+"-"+dep)
			}
			t.Comments = name + ": " + raw
		} else {
			t.StartDate = daterange.Truncate(n.now())
			t.Duration = FallbackDuration
			t.Dependencies = []string{}
			t.Comments = name + ": Default (20d)"
			fallbacks++
			slog.Debug("date range not parsed, using default", "task", t.ID, "cell", raw)
		}
		tasks = append(tasks, t)
	}
	return tasks, fallbacks
}

func (n Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}
