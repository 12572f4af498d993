// Package timeline computes Gantt chart geometry from a task graph: the
// visible window and its zoom transforms, axis buckets, task rows and
// bars, dependency connectors and the today marker.
package timeline

import (
	"fmt"
	"math"
	"time"

	"github.com/joshharrison/ganttloom/internal/daterange"
	"github.com/joshharrison/ganttloom/internal/graph"
)

const (
	// MinWindowDays is the smallest window ZoomIn produces.
	MinWindowDays = 30
	// QuarterThresholdDays is the window size above which ZoomOut
	// switches the axis to quarters.
	QuarterThresholdDays = 180
)

// Granularity is the time-bucket unit of the axis.
type Granularity string

const (
	Quarters Granularity = "quarters"
	Months   Granularity = "months"
	Weeks    Granularity = "weeks"
)

// ParseGranularity accepts "quarters", "months" or "weeks"; "" means quarters.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case "":
		return Quarters, nil
	case Quarters, Months, Weeks:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// Window is the visible time range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the ceiling of the window length in days.
func (w Window) Days() int {
	return daterange.DaysBetween(w.Start, w.End)
}

func (w Window) center() time.Time {
	return daterange.Truncate(w.Start.Add(w.End.Sub(w.Start) / 2))
}

// recenter returns a window of n days around the current center.
func (w Window) recenter(n float64) Window {
	c := w.center()
	return Window{
		Start: c.AddDate(0, 0, -int(math.Floor(n/2))),
		End:   c.AddDate(0, 0, int(math.Ceil(n/2))),
	}
}

// DefaultWindow spans one month before the earliest start to two months
// after the latest end. ok is false when tasks is empty.
func DefaultWindow(tasks []graph.Task) (w Window, ok bool) {
	if len(tasks) == 0 {
		return Window{}, false
	}
	minStart, maxEnd := tasks[0].StartDate, tasks[0].End()
	for _, t := range tasks[1:] {
		if t.StartDate.Before(minStart) {
			minStart = t.StartDate
		}
		if end := t.End(); end.After(maxEnd) {
			maxEnd = end
		}
	}
	return Window{Start: minStart.AddDate(0, -1, 0), End: maxEnd.AddDate(0, 2, 0)}, true
}

// View is the window and granularity a chart is drawn with.
type View struct {
	Window      Window      `json:"window"`
	Granularity Granularity `json:"granularity"`
}

// ZoomIn halves the window around its center, never below MinWindowDays,
// and switches to weeks.
func (v View) ZoomIn() View {
	n := math.Max(float64(v.Window.Days())/2, MinWindowDays)
	return View{Window: v.Window.recenter(n), Granularity: Weeks}
}

// ZoomOut doubles the window around its center. Windows larger than
// QuarterThresholdDays switch to quarters; otherwise granularity is kept.
func (v View) ZoomOut() View {
	n := float64(v.Window.Days() * 2)
	out := View{Window: v.Window.recenter(n), Granularity: v.Granularity}
	if n > QuarterThresholdDays {
		out.Granularity = Quarters
	}
	return out
}
