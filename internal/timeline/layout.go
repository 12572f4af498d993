package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/joshharrison/ganttloom/internal/graph"
)

// Bar colors by status.
const (
	ColorCompleted = "#4caf50"
	ColorReady     = "#2196f3"
	ColorBlocked   = "#9e9e9e"
	ColorPending   = "#ea4335" // connector from an incomplete dependency
)

// NoDataMessage is shown by the placeholder layout.
const NoDataMessage = "No Data"

// NarrowMessage is shown when the chart leaves no room right of the label column.
const NarrowMessage = "Chart too narrow"

// Metrics are the fixed dimensions of the chart, in pixels.
type Metrics struct {
	RowHeight          float64
	HeaderHeight       float64
	SectionPadding     float64
	EntityHeaderHeight float64
	LeftColumn         float64
	BarInset           float64
	CornerRadius       float64
	LabelMinWidth      float64 // bars narrower than this carry no duration label
	ConnectorStagger   float64
	ArrowSize          float64
	PlaceholderHeight  float64
}

// DefaultMetrics returns the standard chart dimensions.
func DefaultMetrics() Metrics {
	return Metrics{
		RowHeight:          40,
		HeaderHeight:       70,
		SectionPadding:     20,
		EntityHeaderHeight: 40,
		LeftColumn:         200,
		BarInset:           8,
		CornerRadius:       4,
		LabelMinWidth:      80,
		ConnectorStagger:   3,
		ArrowSize:          5,
		PlaceholderHeight:  200,
	}
}

// Options are the rendering inputs that are not part of the view.
type Options struct {
	Width   float64   // total chart width including the left column
	Today   time.Time // zero hides the today marker
	Metrics Metrics   // zero value uses DefaultMetrics
}

// RowKind distinguishes layout rows.
type RowKind string

const (
	RowEntity  RowKind = "entity"
	RowSection RowKind = "section"
	RowTask    RowKind = "task"
)

// Row is one horizontal band of the chart.
type Row struct {
	Kind    RowKind `json:"kind"`
	Label   string  `json:"label"`
	Y       float64 `json:"y"`
	Height  float64 `json:"height"`
	TaskID  string  `json:"taskId,omitempty"`
	Striped bool    `json:"striped,omitempty"`
	Bar     *Bar    `json:"bar,omitempty"`
}

// Bar is the rectangle drawn for a task.
type Bar struct {
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Radius float64      `json:"radius"`
	Status graph.Status `json:"status"`
	Color  string       `json:"color"`
	Label  string       `json:"label,omitempty"`
}

// Point is a chart coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Connector is an arrow from the end of a dependency's bar to the start
// of the dependent task's bar.
type Connector struct {
	From    string   `json:"from"` // dependency id
	To      string   `json:"to"`   // dependent task id
	Start   Point    `json:"start"`
	End     Point    `json:"end"`
	Dashed  bool     `json:"dashed"`
	Color   string   `json:"color"`
	Number  int      `json:"number"`
	LabelAt Point    `json:"labelAt"`
	Arrow   [3]Point `json:"arrow"`
}

// Layout is the complete geometry of one chart.
type Layout struct {
	Placeholder bool        `json:"placeholder"`
	Message     string      `json:"message,omitempty"`
	View        View        `json:"view"`
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	DayWidth    float64     `json:"dayWidth"`
	Buckets     []Bucket    `json:"buckets,omitempty"`
	Today       *float64    `json:"today,omitempty"`
	Rows        []Row       `json:"rows,omitempty"`
	Connectors  []Connector `json:"connectors,omitempty"`
}

// scale maps dates to x positions.
type scale struct {
	window   Window
	left     float64
	dayWidth float64
	width    float64
}

func (s scale) x(t time.Time) float64 {
	return s.left + t.Sub(s.window.Start).Hours()/24*s.dayWidth
}

// Compute lays out every task of r. A zero window falls back to
// DefaultWindow; an empty graph yields a placeholder. Compute only reads
// from r and may be called any number of times.
func Compute(r graph.Reader, sections []graph.Section, view View, opts Options) Layout {
	m := opts.Metrics
	if m == (Metrics{}) {
		m = DefaultMetrics()
	}

	tasks := r.Tasks()
	if len(tasks) == 0 {
		return Layout{Placeholder: true, Message: NoDataMessage, View: view, Width: opts.Width, Height: m.PlaceholderHeight}
	}
	if opts.Width <= m.LeftColumn {
		return Layout{Placeholder: true, Message: NarrowMessage, View: view, Width: opts.Width, Height: m.PlaceholderHeight}
	}

	if view.Window.Days() <= 0 {
		view.Window, _ = DefaultWindow(tasks)
	}
	if view.Granularity == "" {
		view.Granularity = Quarters
	}

	s := scale{
		window:   view.Window,
		left:     m.LeftColumn,
		dayWidth: (opts.Width - m.LeftColumn) / float64(view.Window.Days()),
		width:    opts.Width,
	}
	out := Layout{
		View:     view,
		Width:    opts.Width,
		DayWidth: s.dayWidth,
		Buckets:  s.buckets(view.Granularity),
	}

	if !opts.Today.IsZero() && !opts.Today.Before(view.Window.Start) && !opts.Today.After(view.Window.End) {
		x := s.x(opts.Today)
		out.Today = &x
	}

	names := make(map[string]string, len(sections))
	for _, sec := range sections {
		names[sec.ID] = sec.Name
	}

	byGroup := make(map[string][]graph.Task)
	for _, t := range tasks {
		byGroup[t.Group()] = append(byGroup[t.Group()], t)
	}
	groups := make([]string, 0, len(byGroup))
	for k := range byGroup {
		groups = append(groups, k)
	}
	// Byte order, like graph.GroupByEntity.
	sort.Strings(groups)

	y := m.HeaderHeight
	for _, group := range groups {
		out.Rows = append(out.Rows, Row{Kind: RowEntity, Label: group, Y: y, Height: m.EntityHeaderHeight})
		y += m.EntityHeaderHeight

		for _, sec := range graph.SplitSections(byGroup[group]) {
			label, ok := names[sec.Section]
			if !ok {
				label = sec.Section
			}
			out.Rows = append(out.Rows, Row{Kind: RowSection, Label: label, Y: y, Height: m.RowHeight})
			y += m.RowHeight

			for i, t := range sec.Tasks {
				out.Rows = append(out.Rows, taskRow(r, s, m, t, y, i%2 == 1))
				y += m.RowHeight
			}
			y += m.SectionPadding
		}
	}
	out.Height = y
	out.Connectors = connectors(r, m, out.Rows)
	return out
}

func taskRow(r graph.Reader, s scale, m Metrics, t graph.Task, y float64, striped bool) Row {
	status, _ := r.Status(t.ID)
	bar := &Bar{
		X:      s.x(t.StartDate),
		Y:      y + m.BarInset,
		Width:  float64(t.Duration) * s.dayWidth,
		Height: m.RowHeight - 2*m.BarInset,
		Radius: m.CornerRadius,
		Status: status,
		Color:  StatusColor(status),
	}
	if bar.Width > m.LabelMinWidth {
		bar.Label = fmt.Sprintf("%dd", t.Duration)
	}
	return Row{Kind: RowTask, Label: t.Name, Y: y, Height: m.RowHeight, TaskID: t.ID, Striped: striped, Bar: bar}
}

// StatusColor returns the bar color for a status.
func StatusColor(s graph.Status) string {
	switch s {
	case graph.Completed:
		return ColorCompleted
	case graph.Ready:
		return ColorReady
	default:
		return ColorBlocked
	}
}

// connectors runs after every row is placed so that a dependency drawn
// below its dependent still gets its final position.
func connectors(r graph.Reader, m Metrics, rows []Row) []Connector {
	placed := make(map[string]Row)
	for _, row := range rows {
		if row.Kind == RowTask {
			placed[row.TaskID] = row
		}
	}

	var out []Connector
	for _, row := range rows {
		if row.Kind != RowTask {
			continue
		}
		t, ok := r.FindByID(row.TaskID)
		if !ok || len(t.Dependencies) == 0 {
			continue
		}

		var deps []graph.Task
		for _, id := range t.Dependencies {
			if _, ok := placed[id]; !ok {
				continue
			}
			if dep, ok := r.FindByID(id); ok {
				deps = append(deps, dep)
			}
		}
		graph.SortDependencies(deps)

		for i, dep := range deps {
			from := placed[dep.ID]
			start := Point{X: from.Bar.X + from.Bar.Width, Y: from.Y + from.Height/2}
			end := Point{X: row.Bar.X, Y: row.Y + row.Height/2 - m.ConnectorStagger*float64(i)}

			color := ColorCompleted
			if !dep.Completed {
				color = ColorPending
			}
			out = append(out, Connector{
				From:    dep.ID,
				To:      t.ID,
				Start:   start,
				End:     end,
				Dashed:  !dep.Completed,
				Color:   color,
				Number:  i + 1,
				LabelAt: Point{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2},
				Arrow: [3]Point{
					end,
					{X: end.X - m.ArrowSize, Y: end.Y - m.ArrowSize},
					{X: end.X - m.ArrowSize, Y: end.Y + m.ArrowSize},
				},
			})
		}
	}
	return out
}

// TaskAt returns the id of the task whose bar spans x within a task row
// containing y.
func (l Layout) TaskAt(x, y float64) (string, bool) {
	for _, row := range l.Rows {
		if row.Kind != RowTask || row.Bar == nil {
			continue
		}
		if x >= row.Bar.X && x <= row.Bar.X+row.Bar.Width && y >= row.Y && y <= row.Y+row.Height {
			return row.TaskID, true
		}
	}
	return "", false
}
