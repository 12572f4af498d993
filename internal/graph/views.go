package graph

import "sort"

// SectionGroup is the tasks of one section within an entity.
type SectionGroup struct {
	Section string `json:"section"`
	Tasks   []Task `json:"tasks"`
}

// EntityGroup is the tasks of one display group (country).
type EntityGroup struct {
	Key      string         `json:"key"`
	Tasks    []Task         `json:"tasks,omitempty"`
	Sections []SectionGroup `json:"sections,omitempty"`
}

// GroupByEntity partitions tasks by group key. Keys are sorted; tasks are
// ordered by row keyword, then start date.
func (g *Graph) GroupByEntity() []EntityGroup {
	keys, byKey := partition(g.Tasks())

	out := make([]EntityGroup, 0, len(keys))
	for _, k := range keys {
		tasks := byKey[k]
		SortTasks(tasks)
		out = append(out, EntityGroup{Key: k, Tasks: tasks})
	}
	return out
}

// GroupBySectionWithinEntity partitions tasks by group key and then by
// section. Sections follow the campaign order; unmatched sections keep the
// order in which they first appear.
func (g *Graph) GroupBySectionWithinEntity() []EntityGroup {
	keys, byKey := partition(g.Tasks())

	out := make([]EntityGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, EntityGroup{Key: k, Sections: SplitSections(byKey[k])})
	}
	return out
}

// SplitSections groups tasks by section in campaign order, sorting each
// section's tasks with SortTasks.
func SplitSections(tasks []Task) []SectionGroup {
	var ids []string
	bySection := make(map[string][]Task)
	for _, t := range tasks {
		if _, seen := bySection[t.Section]; !seen {
			ids = append(ids, t.Section)
		}
		bySection[t.Section] = append(bySection[t.Section], t)
	}
	SortSectionIDs(ids)

	out := make([]SectionGroup, 0, len(ids))
	for _, id := range ids {
		st := bySection[id]
		SortTasks(st)
		out = append(out, SectionGroup{Section: id, Tasks: st})
	}
	return out
}

// Groups returns the distinct group keys, sorted.
func (g *Graph) Groups() []string {
	keys, _ := partition(g.Tasks())
	return keys
}

func partition(tasks []Task) ([]string, map[string][]Task) {
	byKey := make(map[string][]Task)
	for _, t := range tasks {
		k := t.Group()
		byKey[k] = append(byKey[k], t)
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	// Byte order, matching the chart. Query's country sort is collated.
	sort.Strings(keys)
	return keys, byKey
}
