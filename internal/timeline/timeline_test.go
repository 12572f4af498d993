package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshharrison/ganttloom/internal/graph"
)

func date(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, Quarters, g)

	g, err = ParseGranularity("weeks")
	require.NoError(t, err)
	assert.Equal(t, Weeks, g)

	_, err = ParseGranularity("days")
	assert.Error(t, err)
}

func TestZoomOut_SwitchesToQuartersPastThreshold(t *testing.T) {
	v := View{Window: Window{Start: date(time.January, 1), End: date(time.March, 2)}, Granularity: Months}
	require.Equal(t, 60, v.Window.Days())

	v = v.ZoomOut()
	assert.Equal(t, 120, v.Window.Days())
	assert.Equal(t, Months, v.Granularity, "120 days is under the threshold")
	assert.Equal(t, time.Date(2024, time.December, 2, 0, 0, 0, 0, time.UTC), v.Window.Start)

	v = v.ZoomOut()
	assert.Equal(t, 240, v.Window.Days())
	assert.Equal(t, Quarters, v.Granularity)
}

func TestZoomIn(t *testing.T) {
	v := View{Window: Window{Start: date(time.January, 1), End: date(time.May, 1)}, Granularity: Quarters}
	in := v.ZoomIn()
	assert.Equal(t, 60, in.Window.Days())
	assert.Equal(t, Weeks, in.Granularity)

	small := View{Window: Window{Start: date(time.January, 1), End: date(time.February, 15)}}
	assert.Equal(t, MinWindowDays, small.ZoomIn().Window.Days())

	// Zooming is a pure transform.
	assert.Equal(t, v.ZoomIn(), v.ZoomIn())
}

func TestDefaultWindow(t *testing.T) {
	_, ok := DefaultWindow(nil)
	assert.False(t, ok)

	w, ok := DefaultWindow([]graph.Task{
		{ID: "a", StartDate: date(time.March, 10), Duration: 5},
		{ID: "b", StartDate: date(time.April, 1), Duration: 19},
	})
	require.True(t, ok)
	assert.Equal(t, date(time.February, 10), w.Start)
	assert.Equal(t, date(time.June, 20), w.End)
}

func TestBuckets(t *testing.T) {
	s := scale{window: Window{Start: date(time.January, 15), End: date(time.March, 10)}, left: 200, dayWidth: 10, width: 1000}

	months := s.buckets(Months)
	require.Len(t, months, 3)
	assert.Equal(t, "Jan 2025", months[0].Label)
	assert.Equal(t, date(time.January, 1), months[0].Start)
	assert.InDelta(t, 200-14*10, months[0].X, 1e-9)
	assert.True(t, months[0].Shaded)
	assert.False(t, months[1].Shaded)
	assert.Equal(t, 28, months[1].NominalDays)

	narrow := s
	narrow.width = 500
	quarters := narrow.buckets(Quarters)
	require.Len(t, quarters, 1)
	assert.Equal(t, "Q1 2025", quarters[0].Label)
	assert.InDelta(t, 500-quarters[0].X, quarters[0].Width, 1e-9, "last bucket is clipped to the chart width")

	weeks := scale{window: Window{Start: date(time.June, 4), End: date(time.June, 16)}, left: 200, dayWidth: 10, width: 1000}.buckets(Weeks)
	require.Len(t, weeks, 3)
	assert.Equal(t, date(time.June, 1), weeks[0].Start, "weeks start on Sunday")
	assert.Equal(t, []string{"Week 1", "Week 2", "Week 3"}, []string{weeks[0].Label, weeks[1].Label, weeks[2].Label})
}

func TestCompute_Placeholder(t *testing.T) {
	g, err := graph.New(nil)
	require.NoError(t, err)

	l := Compute(g, nil, View{}, Options{Width: 800})
	assert.True(t, l.Placeholder)
	assert.Equal(t, NoDataMessage, l.Message)
	assert.Equal(t, 200.0, l.Height)
	assert.Empty(t, l.Rows)
}

func TestCompute_NarrowWidth(t *testing.T) {
	g := layoutGraph(t)
	view := View{Window: Window{Start: date(time.January, 1), End: date(time.February, 1)}, Granularity: Weeks}

	for _, width := range []float64{0, 100, 200} {
		l := Compute(g, nil, view, Options{Width: width})
		assert.True(t, l.Placeholder, "width %v", width)
		assert.Equal(t, NarrowMessage, l.Message)
		assert.Empty(t, l.Rows)
	}

	l := Compute(g, nil, view, Options{Width: 510})
	require.False(t, l.Placeholder)
	assert.InDelta(t, 10.0, l.DayWidth, 1e-9)
}

func layoutGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New([]graph.Task{
		{ID: "kenya-smc-1", GroupKey: "Kenya", Section: "smc", Name: "Macro planning", StartDate: date(time.January, 6), Duration: 4},
		{ID: "kenya-gc8-1", GroupKey: "Kenya", Section: "gc8", Name: "Malaria Program Review", StartDate: date(time.January, 1), Duration: 5},
		{ID: "kenya-gc8-2", GroupKey: "Kenya", Section: "gc8", Name: "NSP at Mid-Level completed?", StartDate: date(time.January, 11), Duration: 10,
			Dependencies: []string{"kenya-smc-1", "kenya-gc8-1"}},
		{ID: "kenya-x-1", GroupKey: "Kenya", Section: "custom", Name: "Other", StartDate: date(time.January, 2), Duration: 2},
		{ID: "angola-gc8-1", GroupKey: "Angola", Section: "gc8", Name: "Malaria Program Review", StartDate: date(time.January, 3), Duration: 3},
	})
	require.NoError(t, err)
	return g
}

func TestCompute_Rows(t *testing.T) {
	g := layoutGraph(t)
	sections := []graph.Section{{ID: "gc8", Name: "GC8"}, {ID: "smc", Name: "SMC Campaign"}}
	view := View{Window: Window{Start: date(time.January, 1), End: date(time.January, 31)}, Granularity: Weeks}

	l := Compute(g, sections, view, Options{Width: 500})
	require.False(t, l.Placeholder)
	assert.InDelta(t, 10, l.DayWidth, 1e-9)

	var kinds []RowKind
	var labels []string
	for _, r := range l.Rows {
		kinds = append(kinds, r.Kind)
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []RowKind{
		RowEntity, RowSection, RowTask,
		RowEntity, RowSection, RowTask, RowTask, RowSection, RowTask, RowSection, RowTask,
	}, kinds)
	assert.Equal(t, []string{
		"Angola", "GC8", "Malaria Program Review",
		"Kenya", "GC8", "Malaria Program Review", "NSP at Mid-Level completed?", "SMC Campaign", "Macro planning", "custom", "Other",
	}, labels)

	// header 70 + (entity 40 + section 40 + task 40 + pad 20) + (entity 40 + 3 sections * (40 + pad 20) + 4 tasks * 40)
	assert.Equal(t, 70.0+140+40+180+160, l.Height)

	gc82 := l.Rows[6]
	require.NotNil(t, gc82.Bar)
	assert.InDelta(t, 300, gc82.Bar.X, 1e-9)
	assert.InDelta(t, 100, gc82.Bar.Width, 1e-9)
	assert.Equal(t, "10d", gc82.Bar.Label)
	assert.Equal(t, graph.Blocked, gc82.Bar.Status)
	assert.Equal(t, ColorBlocked, gc82.Bar.Color)
	assert.Equal(t, gc82.Y+8, gc82.Bar.Y)
	assert.Equal(t, 24.0, gc82.Bar.Height)
	assert.True(t, gc82.Striped)

	gc81 := l.Rows[5]
	assert.Empty(t, gc81.Bar.Label, "50px bar is too narrow for a label")
	assert.Equal(t, ColorReady, gc81.Bar.Color)
}

func TestCompute_Connectors(t *testing.T) {
	g := layoutGraph(t)
	_, err := g.Toggle("kenya-gc8-1")
	require.NoError(t, err)

	view := View{Window: Window{Start: date(time.January, 1), End: date(time.January, 31)}}
	l := Compute(g, nil, view, Options{Width: 500})

	require.Len(t, l.Connectors, 2)
	first, second := l.Connectors[0], l.Connectors[1]

	// gc8 ranks before smc, so the gc8 dependency is numbered first.
	assert.Equal(t, "kenya-gc8-1", first.From)
	assert.Equal(t, 1, first.Number)
	assert.False(t, first.Dashed)
	assert.Equal(t, ColorCompleted, first.Color)

	assert.Equal(t, "kenya-smc-1", second.From)
	assert.Equal(t, 2, second.Number)
	assert.True(t, second.Dashed)
	assert.Equal(t, ColorPending, second.Color)

	target := l.Rows[6]
	assert.Equal(t, target.Y+20, first.End.Y)
	assert.Equal(t, target.Y+20-3, second.End.Y)
	assert.InDelta(t, 300, second.End.X, 1e-9)

	// The smc row is placed below its dependent; its final position is used.
	smcRow := l.Rows[8]
	assert.Equal(t, smcRow.Y+20, second.Start.Y)
	assert.InDelta(t, 200+5*10+40, second.Start.X, 1e-9)
	assert.Equal(t, Point{X: second.End.X - 5, Y: second.End.Y - 5}, second.Arrow[1])
}

func TestCompute_TodayAndDefaults(t *testing.T) {
	g := layoutGraph(t)
	window := Window{Start: date(time.January, 1), End: date(time.January, 31)}

	l := Compute(g, nil, View{Window: window}, Options{Width: 500, Today: date(time.January, 21)})
	require.NotNil(t, l.Today)
	assert.InDelta(t, 400, *l.Today, 1e-9)
	assert.Equal(t, Quarters, l.View.Granularity)

	l = Compute(g, nil, View{Window: window}, Options{Width: 500, Today: date(time.March, 1)})
	assert.Nil(t, l.Today)

	def := Compute(g, nil, View{}, Options{Width: 500})
	w, _ := DefaultWindow(g.Tasks())
	assert.Equal(t, w, def.View.Window)

	assert.Equal(t, def, Compute(g, nil, View{}, Options{Width: 500}), "layout is repeatable")
}

func TestTaskAt(t *testing.T) {
	g := layoutGraph(t)
	view := View{Window: Window{Start: date(time.January, 1), End: date(time.January, 31)}}
	l := Compute(g, nil, view, Options{Width: 500})

	row := l.Rows[6]
	id, ok := l.TaskAt(350, row.Y+1)
	require.True(t, ok)
	assert.Equal(t, "kenya-gc8-2", id)

	_, ok = l.TaskAt(250, row.Y+1)
	assert.False(t, ok)
	_, ok = l.TaskAt(350, 10)
	assert.False(t, ok)
}
