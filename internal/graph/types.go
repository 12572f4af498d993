package graph

import (
	"strings"
	"time"
)

// Task is one scheduled unit of campaign work.
type Task struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Section      string    `json:"section"`
	StartDate    time.Time `json:"startDate"`
	Duration     int       `json:"duration"` // days
	Dependencies []string  `json:"dependencies"`
	Completed    bool      `json:"completed"`
	Comments     string    `json:"comments,omitempty"`
	GroupKey     string    `json:"groupKey,omitempty"`
}

// End returns the day after the task's last day.
func (t Task) End() time.Time {
	return t.StartDate.AddDate(0, 0, t.Duration)
}

// Group returns the display group (country) of the task. Tasks without an
// explicit GroupKey fall back to the leading token of their id.
func (t Task) Group() string {
	if t.GroupKey != "" {
		return t.GroupKey
	}
	if head, _, _ := strings.Cut(t.ID, "-"); head != "" {
		return head
	}
	return "Unknown"
}

func (t Task) clone() Task {
	c := t
	if t.Dependencies != nil {
		c.Dependencies = append([]string(nil), t.Dependencies...)
	}
	return c
}

// Section is an entry of the static section lookup table.
type Section struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Status is the derived completion state of a task.
type Status int

const (
	Blocked Status = iota
	Ready
	Completed
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Completed:
		return "completed"
	default:
		return "blocked"
	}
}

// MarshalText renders the status by name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reader is the read-only view of a graph handed to renderers.
type Reader interface {
	Tasks() []Task
	FindByID(id string) (Task, bool)
	Status(id string) (Status, bool)
}
