package graph

import (
	"reflect"
	"testing"
	"time"
)

func queryGraph(t *testing.T) *Graph {
	return mustNew(t,
		Task{ID: "uganda-gc8-1", GroupKey: "Uganda", Section: "gc8", Name: "Malaria Program Review", StartDate: day(time.March, 1), Duration: 30},
		Task{ID: "kenya-gc8-1", GroupKey: "Kenya", Section: "gc8", Name: "Malaria Program Review", StartDate: day(time.February, 1), Duration: 10, Comments: "Kenya: Default (20d)"},
		Task{ID: "kenya-nsp-1", GroupKey: "Kenya", Section: "nsp", Name: "Research", StartDate: day(time.January, 1), Duration: 20},
		Task{ID: "angola-nsp-1", GroupKey: "angola", Section: "nsp", Name: "Research", StartDate: day(time.April, 1), Duration: 5},
	)
}

func TestQuery_Filters(t *testing.T) {
	g := queryGraph(t)
	g.Toggle("kenya-nsp-1")

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"section", Filter{Section: "nsp"}, []string{"angola-nsp-1", "kenya-nsp-1"}},
		{"all sections", Filter{Section: "all"}, []string{"angola-nsp-1", "kenya-gc8-1", "kenya-nsp-1", "uganda-gc8-1"}},
		{"search comments", Filter{Search: "DEFAULT"}, []string{"kenya-gc8-1"}},
		{"search id", Filter{Search: "uganda"}, []string{"uganda-gc8-1"}},
		{"completed", Filter{Status: StatusDone}, []string{"kenya-nsp-1"}},
		{"pending", Filter{Status: StatusPending, Group: "Kenya"}, []string{"kenya-gc8-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := taskIDs(g.Query(tt.filter, SortSpec{Key: SortCountry}))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuery_Sorts(t *testing.T) {
	g := queryGraph(t)

	byStart := taskIDs(g.Query(Filter{}, SortSpec{Key: SortStartDate}))
	if want := []string{"kenya-nsp-1", "kenya-gc8-1", "uganda-gc8-1", "angola-nsp-1"}; !reflect.DeepEqual(byStart, want) {
		t.Errorf("startDate asc = %v", byStart)
	}

	byDur := taskIDs(g.Query(Filter{}, SortSpec{Key: SortDuration, Desc: true}))
	if want := []string{"uganda-gc8-1", "kenya-nsp-1", "kenya-gc8-1", "angola-nsp-1"}; !reflect.DeepEqual(byDur, want) {
		t.Errorf("duration desc = %v", byDur)
	}

	// Collation puts lower-case "angola" first, unlike a byte compare.
	byCountry := taskIDs(g.Query(Filter{}, SortSpec{Key: SortCountry}))
	if byCountry[0] != "angola-nsp-1" {
		t.Errorf("country asc = %v", byCountry)
	}

	g.Toggle("uganda-gc8-1")
	byStatus := taskIDs(g.Query(Filter{}, SortSpec{Key: SortStatus, Desc: true}))
	if byStatus[0] != "uganda-gc8-1" {
		t.Errorf("status desc = %v", byStatus)
	}
}

func TestStats(t *testing.T) {
	empty := mustNew(t)
	if s := empty.Stats(); s != (Stats{}) {
		t.Errorf("empty stats = %+v", s)
	}

	g := mustNew(t,
		task("a", "A", "gc8"),
		task("b", "B", "gc8", "a"),
		task("c", "C", "gc8"),
	)
	g.Toggle("a")

	want := Stats{Total: 3, Completed: 1, Ready: 2, Blocked: 0, CompletionPercentage: 33}
	if s := g.Stats(); s != want {
		t.Errorf("stats = %+v, want %+v", s, want)
	}
}

func TestParseFilterAndSort(t *testing.T) {
	if s, err := ParseStatusFilter(""); err != nil || s != StatusAll {
		t.Errorf("ParseStatusFilter(\"\") = %q, %v", s, err)
	}
	if _, err := ParseStatusFilter("done"); err == nil {
		t.Error("expected error for unknown status")
	}
	if k, err := ParseSortKey("duration"); err != nil || k != SortDuration {
		t.Errorf("ParseSortKey = %q, %v", k, err)
	}
	if _, err := ParseSortKey("name"); err == nil {
		t.Error("expected error for unknown sort key")
	}
}
