// Package ingest converts a spreadsheet matrix into campaign tasks: it
// finds the header rows, resolves task columns and normalizes every
// country row. Ingestion is all-or-nothing.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/sheet"
	"github.com/joshharrison/ganttloom/internal/telemetry"
)

// Options configures Ingest. Zero values use DefaultMappings and time.Now.
type Options struct {
	Mappings []Mapping
	Now      func() time.Time
}

// Result is the outcome of one ingestion.
type Result struct {
	Graph           *graph.Graph
	Tasks           []graph.Task
	Rows            int // country rows that produced tasks
	SkippedRows     int // data rows without a country name
	ReplacedRows    int // rows whose country appeared earlier
	Fallbacks       int
	DanglingRemoved int
	Cycle           []string
}

// Ingest builds a graph from m. Missing headers or an empty matrix fail the
// whole call; malformed cells become fallback tasks.
func Ingest(m sheet.Matrix, opts Options) (*Result, error) {
	h, err := LocateHeaders(m)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	mappings := opts.Mappings
	if mappings == nil {
		mappings = DefaultMappings()
	}
	norm := Normalizer{
		Mappings:   ResolveColumns(m[h.Task], mappings),
		NameColumn: h.NameColumn,
		Now:        opts.Now,
	}
	for _, mp := range norm.Mappings {
		if mp.Column == NotFound {
			slog.Warn("task column not found, skipping", "sentinel", mp.Sentinel, "task", mp.Suffix)
		}
	}

	res := &Result{}
	byScope := make(map[string][]graph.Task)
	fallbacksByScope := make(map[string]int)
	for _, row := range m[h.Task+1:] {
		if len(row) == 0 {
			continue
		}
		name := row.At(h.NameColumn).ScopeName()
		if name == "" {
			res.SkippedRows++
			continue
		}

		scope := ScopeKey(name)
		if _, seen := byScope[scope]; seen {
			slog.Info("country listed again, later row replaces earlier", "country", name)
			res.ReplacedRows++
		}
		tasks, fallbacks := norm.normalize(row)
		byScope[scope] = tasks
		fallbacksByScope[scope] = fallbacks
	}

	var tasks []graph.Task
	for scope, st := range byScope {
		if len(st) == 0 {
			slog.Debug("no tasks for country", "scope", scope)
			continue
		}
		res.Rows++
		res.Fallbacks += fallbacksByScope[scope]
		tasks = append(tasks, st...)
	}
	sortTasks(tasks)

	g, err := graph.New(tasks)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	res.Graph = g
	res.Tasks = g.Tasks()
	res.DanglingRemoved = g.DanglingRemoved()

	if cycle := g.DetectCycle(); cycle != nil {
		slog.Warn("dependency cycle, tasks on it can never become ready", "cycle", cycle)
		res.Cycle = cycle
	}

	ctx := context.Background()
	telemetry.Add(ctx, telemetry.TasksIngested, int64(len(res.Tasks)))
	telemetry.Add(ctx, telemetry.FallbackTasks, int64(res.Fallbacks))

	slog.Info("ingestion complete",
		"tasks", len(res.Tasks),
		"countries", res.Rows,
		"fallbacks", res.Fallbacks,
		"dangling_removed", res.DanglingRemoved)
	return res, nil
}

// sortTasks orders tasks by country, then section, then id.
func sortTasks(tasks []graph.Task) {
	coll := collate.New(language.English)
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if c := coll.CompareString(a.Group(), b.Group()); c != 0 {
			return c < 0
		}
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.ID < b.ID
	})
}
