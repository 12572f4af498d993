package graph

import (
	"sort"
	"strings"
)

// Unranked is the rank of a section or task name that matches no table entry.
const Unranked = 999

// campaignOrder ranks sections by substring of their id.
var campaignOrder = []string{"gc8", "nsp", "smc", "itn", "irs", "mtr"}

// rowKeywords orders task rows within a section. First match wins, so
// "procurement and supply chain" is shadowed by "procurement".
var rowKeywords = []string{
	"program review",
	"mid-level",
	"tailoring",
	"matchbox",
	"research",
	"costing",
	"operation plan",
	"monitoring and evaluation",
	"procurement",
	"supply management",
	"macro planning",
	"procurement and supply chain",
	"micro planning",
	"digitalization",
	"monitoring",
	"case management",
	"vector control",
	"community rights",
}

// connectorKeywords orders a task's dependency connectors.
var connectorKeywords = []string{
	"program review",
	"mid-level",
	"tailoring",
	"matchbox",
	"research",
	"costing",
	"operation",
	"monitoring",
	"procurement",
	"supply",
	"macro",
	"micro",
	"digital",
	"case",
	"vector",
	"community",
}

func rank(table []string, s string) int {
	s = strings.ToLower(s)
	for i, k := range table {
		if strings.Contains(s, k) {
			return i
		}
	}
	return Unranked
}

// CampaignRank returns the position of a section id in the campaign order.
func CampaignRank(section string) int { return rank(campaignOrder, section) }

// RowRank returns the position of a task name in the row keyword table.
func RowRank(name string) int { return rank(rowKeywords, name) }

// ConnectorRank returns the position of a task name in the connector
// keyword table.
func ConnectorRank(name string) int { return rank(connectorKeywords, name) }

// SortTasks orders tasks by row keyword, then start date. Equal keys keep
// their relative order.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := RowRank(tasks[i].Name), RowRank(tasks[j].Name)
		if ri != rj {
			return ri < rj
		}
		return tasks[i].StartDate.Before(tasks[j].StartDate)
	})
}

// SortSectionIDs orders section ids by campaign rank; unmatched ids keep
// their relative order after all matched ones.
func SortSectionIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return CampaignRank(ids[i]) < CampaignRank(ids[j])
	})
}

// SortDependencies orders dependency tasks by the campaign rank of their
// section, then by connector keyword.
func SortDependencies(deps []Task) {
	sort.SliceStable(deps, func(i, j int) bool {
		ci, cj := CampaignRank(deps[i].Section), CampaignRank(deps[j].Section)
		if ci != cj {
			return ci < cj
		}
		return ConnectorRank(deps[i].Name) < ConnectorRank(deps[j].Name)
	})
}
