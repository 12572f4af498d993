package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Blue        = color.New(color.FgBlue).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the colored ganttloom banner to w.
func PrintLogo(w io.Writer) {
	frame := color.New(color.FgCyan)
	done := color.New(color.FgGreen)
	ready := color.New(color.FgBlue)
	blocked := color.New(color.Faint)
	brand := color.New(color.Bold, color.FgMagenta)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +----------------------------+")
	done.Fprintln(w, "   |  ██████                    |")
	ready.Fprintln(w, "   |        ███████             |")
	blocked.Fprintln(w, "   |               ░░░░░░░░     |")
	frame.Fprintln(w, "   |============================|")
	brand.Fprintln(w, "   |  G  A  N  T  T  L  O  O  M |")
	frame.Fprintln(w, "   +----------------------------+")
	fmt.Fprintln(w)
}

// groupColors is a palette of distinct bold colors for differentiating groups.
var groupColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// groupColorIndex hashes a group key to a palette index.
func groupColorIndex(key string) int {
	var h uint32
	for _, c := range key {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(groupColors)))
}

// GroupLabel returns key colored with its palette color. The same key
// always gets the same color.
func GroupLabel(key string) string {
	return groupColors[groupColorIndex(key)](key)
}

// GroupPrefix returns a colored [key] prefix string.
func GroupPrefix(key string) string {
	return Dim("[") + GroupLabel(key) + Dim("]")
}

// StatusIcon returns a colored status icon for compact table display.
func StatusIcon(status string) string {
	switch status {
	case "completed":
		return Green("✓")
	case "ready":
		return Blue("●")
	default:
		return Dim("◌")
	}
}

// StatusText returns a colored status word.
func StatusText(status string) string {
	switch status {
	case "completed":
		return Green(status)
	case "ready":
		return BoldCyan(status)
	default:
		return Dim(status)
	}
}

// BarFill returns the block character used to draw a status in a
// terminal Gantt chart.
func BarFill(status string) string {
	switch status {
	case "completed":
		return Green("█")
	case "ready":
		return Blue("▓")
	default:
		return Dim("░")
	}
}
