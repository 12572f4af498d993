package graph

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 0, 0, 0, 0, time.UTC)
}

func task(id, name, section string, deps ...string) Task {
	return Task{ID: id, Name: name, Section: section, StartDate: day(time.March, 1), Duration: 10, Dependencies: deps}
}

func mustNew(t *testing.T, tasks ...Task) *Graph {
	t.Helper()
	g, err := New(tasks)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestNew_RejectsInvalidTasks(t *testing.T) {
	if _, err := New([]Task{{ID: "", Duration: 3}}); err == nil {
		t.Error("expected error for empty id")
	}
	if _, err := New([]Task{{ID: "a", Duration: 0}}); err == nil {
		t.Error("expected error for zero duration")
	}
}

func TestNew_DuplicateIDKeepsLater(t *testing.T) {
	first := task("a", "first", "gc8")
	second := task("a", "second", "gc8")
	g := mustNew(t, first, task("b", "other", "gc8"), second)

	if g.Len() != 2 {
		t.Fatalf("expected 2 tasks, got %d", g.Len())
	}
	got, _ := g.FindByID("a")
	if got.Name != "second" {
		t.Errorf("expected later duplicate to win, got %q", got.Name)
	}
	if ids := taskIDs(g.Tasks()); !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Errorf("expected original position kept, got %v", ids)
	}
}

func TestNew_FiltersDanglingAndSelfReferences(t *testing.T) {
	g := mustNew(t,
		task("a", "A", "gc8"),
		task("b", "B", "gc8", "a", "ghost", "b"),
	)
	b, _ := g.FindByID("b")
	if !reflect.DeepEqual(b.Dependencies, []string{"a"}) {
		t.Errorf("expected deps [a], got %v", b.Dependencies)
	}
}

func TestFilterDanglingDependencies_Idempotent(t *testing.T) {
	g := mustNew(t, task("a", "A", "gc8", "missing"))
	before := g.Tasks()
	if n := g.FilterDanglingDependencies(); n != 0 {
		t.Errorf("second filter removed %d edges, want 0", n)
	}
	if !reflect.DeepEqual(before, g.Tasks()) {
		t.Error("second filter changed the task list")
	}
}

func TestNew_CopiesInput(t *testing.T) {
	in := []Task{task("a", "A", "gc8"), task("b", "B", "gc8", "a")}
	g := mustNew(t, in...)

	in[1].Dependencies[0] = "mutated"
	b, _ := g.FindByID("b")
	if b.Dependencies[0] != "a" {
		t.Error("graph shares dependency slice with caller")
	}

	b.Dependencies[0] = "also mutated"
	again, _ := g.FindByID("b")
	if again.Dependencies[0] != "a" {
		t.Error("FindByID leaks internal state")
	}
}

func TestIsReady(t *testing.T) {
	g := mustNew(t,
		task("a", "A", "gc8"),
		task("b", "B", "gc8", "a"),
	)

	if !g.IsReady("a") {
		t.Error("task with no deps should be ready")
	}
	if g.IsReady("b") {
		t.Error("b should not be ready while a is pending")
	}
	if g.IsReady("nope") {
		t.Error("unknown task must not be ready")
	}

	if _, err := g.Toggle("a"); err != nil {
		t.Fatalf("toggle a: %v", err)
	}
	if !g.IsReady("b") {
		t.Error("b should become ready once a is completed")
	}
}

func TestToggle(t *testing.T) {
	g := mustNew(t,
		task("a", "A", "gc8"),
		task("b", "B", "gc8", "a"),
	)

	_, err := g.Toggle("b")
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	var be *BlockedError
	if !errors.As(err, &be) || !reflect.DeepEqual(be.Pending, []string{"a"}) {
		t.Errorf("expected pending [a], got %+v", be)
	}
	if b, _ := g.FindByID("b"); b.Completed {
		t.Error("rejected toggle mutated the task")
	}

	a, err := g.Toggle("a")
	if err != nil || !a.Completed {
		t.Fatalf("toggle a: completed=%v err=%v", a.Completed, err)
	}
	b, err := g.Toggle("b")
	if err != nil || !b.Completed {
		t.Fatalf("toggle b: completed=%v err=%v", b.Completed, err)
	}

	// Un-completing a leaves b completed; there is no cascade.
	a, err = g.Toggle("a")
	if err != nil || a.Completed {
		t.Fatalf("untoggle a: completed=%v err=%v", a.Completed, err)
	}
	if b, _ := g.FindByID("b"); !b.Completed {
		t.Error("un-completing a dependency must not cascade")
	}

	if _, err := g.Toggle("missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestUpdateComment(t *testing.T) {
	g := mustNew(t, task("a", "A", "gc8"))
	got, err := g.UpdateComment("a", "Kenya: moved to Q3")
	if err != nil {
		t.Fatal(err)
	}
	if got.Comments != "Kenya: moved to Q3" {
		t.Errorf("comment = %q", got.Comments)
	}
	if _, err := g.UpdateComment("x", ""); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	g := mustNew(t,
		task("a", "A", "gc8"),
		task("b", "B", "gc8", "a"),
	)
	if s, _ := g.Status("a"); s != Ready {
		t.Errorf("a = %s, want ready", s)
	}
	if s, _ := g.Status("b"); s != Blocked {
		t.Errorf("b = %s, want blocked", s)
	}
	g.Toggle("a")
	if s, _ := g.Status("a"); s != Completed {
		t.Errorf("a = %s, want completed", s)
	}
	if _, ok := g.Status("zzz"); ok {
		t.Error("unknown task should report ok=false")
	}
}

func TestDetectCycle(t *testing.T) {
	g := mustNew(t,
		task("a", "A", "gc8", "c"),
		task("b", "B", "gc8", "a"),
		task("c", "C", "gc8", "b"),
		task("d", "D", "gc8"),
	)

	cycle := g.DetectCycle()
	if len(cycle) != 4 || cycle[0] != cycle[len(cycle)-1] {
		t.Fatalf("expected closed 3-cycle path, got %v", cycle)
	}
	for _, id := range []string{"a", "b", "c"} {
		if g.IsReady(id) {
			t.Errorf("%s is on a cycle and must stay blocked", id)
		}
	}

	acyclic := mustNew(t, task("a", "A", "gc8"), task("b", "B", "gc8", "a"))
	if c := acyclic.DetectCycle(); c != nil {
		t.Errorf("expected no cycle, got %v", c)
	}
}

func TestGroup(t *testing.T) {
	if g := (Task{ID: "kenya-gc8-1", GroupKey: "Kenya"}).Group(); g != "Kenya" {
		t.Errorf("Group() = %q", g)
	}
	if g := (Task{ID: "gc8-1"}).Group(); g != "gc8" {
		t.Errorf("Group() = %q", g)
	}
	if g := (Task{}).Group(); g != "Unknown" {
		t.Errorf("Group() = %q", g)
	}
}

func taskIDs(tasks []Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func TestDateConflicts(t *testing.T) {
	a := Task{ID: "a", Name: "A", Section: "s", StartDate: day(time.March, 1), Duration: 10}
	b := Task{ID: "b", Name: "B", Section: "s", StartDate: day(time.March, 11), Duration: 5, Dependencies: []string{"a"}}
	c := Task{ID: "c", Name: "C", Section: "s", StartDate: day(time.March, 13), Duration: 5, Dependencies: []string{"a", "b"}}
	g := mustNew(t, a, b, c)

	got := g.DateConflicts()
	if len(got) != 1 {
		t.Fatalf("conflicts = %+v, want one", got)
	}
	want := Conflict{TaskID: "c", DependsOn: "b", Start: day(time.March, 13), DependencyEnd: day(time.March, 16), OverlapDays: 3}
	if !reflect.DeepEqual(got[0], want) {
		t.Errorf("conflict = %+v, want %+v", got[0], want)
	}
}
