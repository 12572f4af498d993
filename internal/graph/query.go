package graph

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// StatusFilter restricts a task list by completion.
type StatusFilter string

const (
	StatusAll     StatusFilter = "all"
	StatusDone    StatusFilter = "completed"
	StatusPending StatusFilter = "pending"
)

// SortKey selects the task list ordering.
type SortKey string

const (
	SortCountry   SortKey = "country"
	SortStartDate SortKey = "startDate"
	SortDuration  SortKey = "duration"
	SortStatus    SortKey = "status"
)

// ParseStatusFilter accepts "", "all", "completed" or "pending".
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusDone, StatusPending:
		return StatusFilter(s), nil
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

// ParseSortKey accepts "", "country", "startDate", "duration" or "status".
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortCountry, nil
	case SortCountry, SortStartDate, SortDuration, SortStatus:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Filter narrows a task list. Zero values match everything.
type Filter struct {
	Section string       // exact section id; "" or "all" for every section
	Search  string       // case-insensitive substring of name, comments or id
	Status  StatusFilter // all, completed or pending
	Group   string       // exact group key
}

// SortSpec orders a task list.
type SortSpec struct {
	Key  SortKey
	Desc bool
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Task) bool {
	if f.Section != "" && f.Section != "all" && t.Section != f.Section {
		return false
	}
	if f.Group != "" && t.Group() != f.Group {
		return false
	}
	switch f.Status {
	case StatusDone:
		if !t.Completed {
			return false
		}
	case StatusPending:
		if t.Completed {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(t.Name), q) &&
			!strings.Contains(strings.ToLower(t.Comments), q) &&
			!strings.Contains(strings.ToLower(t.ID), q) {
			return false
		}
	}
	return true
}

// Query returns the tasks matching f, ordered by s. Ties keep insertion order.
func (g *Graph) Query(f Filter, s SortSpec) []Task {
	var out []Task
	for _, t := range g.Tasks() {
		if f.Match(t) {
			out = append(out, t)
		}
	}

	var cmp func(a, b Task) int
	switch s.Key {
	case SortStartDate:
		cmp = func(a, b Task) int { return a.StartDate.Compare(b.StartDate) }
	case SortDuration:
		cmp = func(a, b Task) int { return a.Duration - b.Duration }
	case SortStatus:
		cmp = func(a, b Task) int { return boolInt(a.Completed) - boolInt(b.Completed) }
	default:
		// Collated for display; grouped views and the chart use byte order.
		coll := collate.New(language.English)
		cmp = func(a, b Task) int { return coll.CompareString(a.Group(), b.Group()) }
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Stats summarises completion across the graph.
type Stats struct {
	Total                int `json:"total"`
	Completed            int `json:"completed"`
	Ready                int `json:"ready"`
	Blocked              int `json:"blocked"`
	CompletionPercentage int `json:"completionPercentage"`
}

// Stats counts tasks by status.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var s Stats
	for _, id := range g.order {
		s.Total++
		switch g.status(g.tasks[id]) {
		case Completed:
			s.Completed++
		case Ready:
			s.Ready++
		default:
			s.Blocked++
		}
	}
	if s.Total > 0 {
		s.CompletionPercentage = int(math.Floor(float64(s.Completed)*100/float64(s.Total) + 0.5))
	}
	return s
}
