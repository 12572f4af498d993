// Package reporter renders campaign state for the terminal and as JSON.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/ingest"
	"github.com/joshharrison/ganttloom/internal/timeline"
	"github.com/joshharrison/ganttloom/internal/ui"
)

const (
	nameWidth    = 40
	defaultCols  = 72
	rule         = "═══════════════════════════════════════════════════"
	dateLayout   = "2006-01-02"
	shortDateFmt = "Jan 2"
)

// GanttLabelWidth is the width of the task name column of PrintGantt. The
// chart itself starts two characters later.
const GanttLabelWidth = 28

// Reporter provides status display for a loaded campaign.
type Reporter struct {
	Graph    *graph.Graph
	Sections []graph.Section
	Source   string
}

// New creates a new Reporter.
func New(g *graph.Graph, sections []graph.Section, source string) *Reporter {
	return &Reporter{Graph: g, Sections: sections, Source: source}
}

// sectionName resolves a section id through the lookup table, falling back
// to the id itself.
func (r *Reporter) sectionName(id string) string {
	for _, s := range r.Sections {
		if s.ID == id {
			return s.Name
		}
	}
	return id
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-3]) + "..."
}

func (r *Reporter) status(id string) string {
	st, ok := r.Graph.Status(id)
	if !ok {
		return graph.Blocked.String()
	}
	return st.String()
}

// PrintTasks writes one line per task: status icon, group, id, name and dates.
func (r *Reporter) PrintTasks(w io.Writer, tasks []graph.Task) {
	if len(tasks) == 0 {
		fmt.Fprintf(w, "  %s\n", ui.Dim("no tasks match"))
		return
	}
	for _, t := range tasks {
		icon := ui.StatusIcon(r.status(t.ID))
		dates := ui.Dim(fmt.Sprintf("%s → %s (%dd)",
			t.StartDate.Format(dateLayout), t.End().AddDate(0, 0, -1).Format(dateLayout), t.Duration))
		fmt.Fprintf(w, "  %s %s %-10s %-*s %s\n",
			icon, ui.GroupPrefix(t.Group()), ui.BoldMagenta(t.ID), nameWidth, truncate(t.Name, nameWidth), dates)
		if pending := r.pending(t); len(pending) > 0 {
			fmt.Fprintf(w, "      %s %s\n", ui.Dim("waiting on"), ui.Yellow(strings.Join(pending, ", ")))
		}
	}
}

func (r *Reporter) pending(t graph.Task) []string {
	if t.Completed {
		return nil
	}
	var out []string
	for _, dep := range t.Dependencies {
		if d, ok := r.Graph.FindByID(dep); ok && !d.Completed {
			out = append(out, dep)
		}
	}
	return out
}

// PrintTask writes the detail view of a single task.
func (r *Reporter) PrintTask(w io.Writer, t graph.Task) {
	fmt.Fprintf(w, "%s %s\n", ui.BoldMagenta(t.ID), ui.Bold(t.Name))
	fmt.Fprintf(w, "  %-13s %s\n", "Status:", ui.StatusText(r.status(t.ID)))
	fmt.Fprintf(w, "  %-13s %s\n", "Country:", ui.GroupLabel(t.Group()))
	fmt.Fprintf(w, "  %-13s %s\n", "Section:", r.sectionName(t.Section))
	fmt.Fprintf(w, "  %-13s %s\n", "Start:", t.StartDate.Format(dateLayout))
	fmt.Fprintf(w, "  %-13s %d days\n", "Duration:", t.Duration)
	if len(t.Dependencies) > 0 {
		fmt.Fprintf(w, "  %-13s %s\n", "Depends on:", strings.Join(t.Dependencies, ", "))
	}
	if t.Comments != "" {
		fmt.Fprintf(w, "  %-13s %s\n", "Comments:", t.Comments)
	}
}

// PrintStats writes the completion summary.
func (r *Reporter) PrintStats(w io.Writer) {
	s := r.Graph.Stats()
	fmt.Fprintf(w, "%s %s\n", ui.BoldCyan("📊 Campaign progress"), ui.Dim(r.Source))
	fmt.Fprintln(w, ui.Dim(rule))
	fmt.Fprintf(w, "  %-12s %d\n", "Total:", s.Total)
	fmt.Fprintf(w, "  %-12s %s\n", "Completed:", ui.Green(fmt.Sprint(s.Completed)))
	fmt.Fprintf(w, "  %-12s %s\n", "Ready:", ui.Blue(fmt.Sprint(s.Ready)))
	fmt.Fprintf(w, "  %-12s %s\n", "Blocked:", ui.Dim(fmt.Sprint(s.Blocked)))
	fmt.Fprintf(w, "  %-12s %s %s\n", "Progress:", progressBar(s.CompletionPercentage, 30), ui.Bold(fmt.Sprintf("%d%%", s.CompletionPercentage)))
}

func progressBar(pct, width int) string {
	filled := pct * width / 100
	if filled > width {
		filled = width
	}
	return ui.Green(strings.Repeat("█", filled)) + ui.Dim(strings.Repeat("░", width-filled))
}

// PrintGroups writes entity groups with task counts. Groups carrying
// sections are broken down by section.
func (r *Reporter) PrintGroups(w io.Writer, groups []graph.EntityGroup) {
	for _, eg := range groups {
		done, total := countDone(eg.Tasks)
		for _, sg := range eg.Sections {
			d, n := countDone(sg.Tasks)
			done, total = done+d, total+n
		}
		fmt.Fprintf(w, "🌍 %s %s\n", ui.GroupLabel(eg.Key), ui.Dim(fmt.Sprintf("(%d/%d done)", done, total)))
		if len(eg.Sections) == 0 {
			for _, t := range eg.Tasks {
				fmt.Fprintf(w, "   %s %-10s %s\n", ui.StatusIcon(r.status(t.ID)), t.ID, truncate(t.Name, nameWidth))
			}
		}
		for _, sg := range eg.Sections {
			fmt.Fprintf(w, "   %s %s\n", ui.Bold(r.sectionName(sg.Section)), ui.Dim(fmt.Sprintf("[%d]", len(sg.Tasks))))
			for _, t := range sg.Tasks {
				fmt.Fprintf(w, "     %s %-10s %s\n", ui.StatusIcon(r.status(t.ID)), t.ID, truncate(t.Name, nameWidth))
			}
		}
		fmt.Fprintln(w)
	}
}

func countDone(tasks []graph.Task) (done, total int) {
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return done, len(tasks)
}

// PrintGantt draws l as a character chart cols characters wide.
func (r *Reporter) PrintGantt(w io.Writer, l timeline.Layout, cols int) {
	if cols <= 0 {
		cols = defaultCols
	}
	if l.Placeholder {
		fmt.Fprintf(w, "%s\n", ui.Dim(l.Message))
		return
	}

	win := l.View.Window
	fmt.Fprintf(w, "%s %s → %s %s\n", ui.BoldCyan("🗓  Timeline"),
		win.Start.Format(shortDateFmt+", 2006"), win.End.Format(shortDateFmt+", 2006"),
		ui.Dim(fmt.Sprintf("[%s]", l.View.Granularity)))

	left := l.Width - float64(win.Days())*l.DayWidth
	span := l.Width - left
	col := func(x float64) int {
		return int(math.Round((x - left) / span * float64(cols)))
	}

	axis := []rune(strings.Repeat(" ", cols))
	for _, b := range l.Buckets {
		placeLabel(axis, max(col(b.X), 0), []rune(b.Label))
	}
	fmt.Fprintf(w, "%-*s │%s\n", GanttLabelWidth, "", ui.Dim(string(axis)))
	fmt.Fprintf(w, "%s┼%s\n", strings.Repeat("─", GanttLabelWidth+1), strings.Repeat("─", cols))

	todayCol := -1
	if l.Today != nil {
		todayCol = min(col(*l.Today), cols-1)
	}

	for _, row := range l.Rows {
		switch row.Kind {
		case timeline.RowEntity:
			fmt.Fprintf(w, "%s\n", ui.BoldWhite(row.Label))
		case timeline.RowSection:
			fmt.Fprintf(w, " %s\n", ui.Dim(row.Label))
		case timeline.RowTask:
			fmt.Fprintf(w, "%-*s │%s\n", GanttLabelWidth, "  "+truncate(row.Label, GanttLabelWidth-2), ganttLine(row.Bar, col, cols, todayCol))
		}
	}
}

// placeLabel writes label into axis at c when it fits and keeps a blank
// cell before it. Labels that would overlap are skipped whole.
func placeLabel(axis []rune, c int, label []rune) {
	if c+len(label) > len(axis) {
		return
	}
	if c > 0 && axis[c-1] != ' ' {
		return
	}
	for _, ch := range axis[c : c+len(label)] {
		if ch != ' ' {
			return
		}
	}
	copy(axis[c:], label)
}

// ganttLine renders one bar. Bars outside the window leave the line
// empty; bars narrower than a character still get one cell.
func ganttLine(bar *timeline.Bar, col func(float64) int, cols, todayCol int) string {
	from, to := cols, cols
	fill := ""
	if bar != nil {
		from, to = col(bar.X), col(bar.X+bar.Width)
		if to == from {
			to++
		}
		from, to = max(from, 0), min(to, cols)
		fill = ui.BarFill(bar.Status.String())
	}

	var b strings.Builder
	for i := 0; i < cols; i++ {
		switch {
		case i >= from && i < to:
			b.WriteString(fill)
		case i == todayCol:
			b.WriteString(ui.Red("┆"))
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// PrintCheck writes the outcome of an ingestion.
func PrintCheck(w io.Writer, res *ingest.Result) {
	fmt.Fprintln(w, ui.BoldCyan("🔎 Sheet check"))
	fmt.Fprintln(w, ui.Dim(rule))
	fmt.Fprintf(w, "  %-18s %d\n", "Countries:", res.Rows)
	fmt.Fprintf(w, "  %-18s %d\n", "Tasks:", len(res.Tasks))

	warn := func(label string, n int) {
		v := fmt.Sprint(n)
		if n > 0 {
			v = ui.Yellow(v)
		}
		fmt.Fprintf(w, "  %-18s %s\n", label, v)
	}
	warn("Default dates:", res.Fallbacks)
	warn("Rows skipped:", res.SkippedRows)
	warn("Rows replaced:", res.ReplacedRows)
	warn("Dangling deps:", res.DanglingRemoved)

	if len(res.Cycle) > 0 {
		fmt.Fprintf(w, "  %s %s\n", ui.BoldRed("✗ dependency cycle:"), strings.Join(res.Cycle, " → "))
		return
	}
	fmt.Fprintf(w, "  %s\n", ui.BoldGreen("✓ no dependency cycles"))
}

// PrintConflicts writes tasks whose planned start falls before a
// dependency ends.
func PrintConflicts(w io.Writer, conflicts []graph.Conflict) {
	if len(conflicts) == 0 {
		fmt.Fprintf(w, "  %s\n", ui.BoldGreen("✓ planned dates respect every dependency"))
		return
	}
	fmt.Fprintf(w, "  %s\n", ui.BoldYellow(fmt.Sprintf("⚠ %d date conflicts", len(conflicts))))
	for _, c := range conflicts {
		fmt.Fprintf(w, "    %s starts %s, %d days before %s ends (%s)\n",
			ui.BoldMagenta(c.TaskID), c.Start.Format(dateLayout), c.OverlapDays,
			c.DependsOn, c.DependencyEnd.AddDate(0, 0, -1).Format(dateLayout))
	}
}

type taskStatus struct {
	graph.Task
	Status graph.Status `json:"status"`
}

// JSON returns machine-readable state: stats plus every task with its status.
func (r *Reporter) JSON() ([]byte, error) {
	type output struct {
		Source string       `json:"source,omitempty"`
		Stats  graph.Stats  `json:"stats"`
		Tasks  []taskStatus `json:"tasks"`
	}

	o := output{Source: r.Source, Stats: r.Graph.Stats()}
	for _, t := range r.Graph.Tasks() {
		st, _ := r.Graph.Status(t.ID)
		o.Tasks = append(o.Tasks, taskStatus{Task: t, Status: st})
	}
	return json.MarshalIndent(o, "", "  ")
}

// Export renders tasks as the pretty-printed JSON array written by the
// export operation.
func Export(tasks []graph.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []graph.Task{}
	}
	return json.MarshalIndent(tasks, "", "  ")
}
