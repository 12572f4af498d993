// Package fixtures holds the built-in campaign plan used when no
// spreadsheet source is configured.
package fixtures

import (
	"time"

	"github.com/joshharrison/ganttloom/internal/daterange"
	"github.com/joshharrison/ganttloom/internal/graph"
)

// CampaignSections is the section table of the campaign plan.
func CampaignSections() []graph.Section {
	return []graph.Section{
		{ID: "gc8", Name: "GC8"},
		{ID: "nsp", Name: "NSP"},
		{ID: "smc", Name: "SMC Campaign"},
		{ID: "itn", Name: "ITN Campaign"},
		{ID: "irs", Name: "IRS Campaign"},
		{ID: "mtr", Name: "MTR"},
	}
}

// SheetSections is the section table of the country support sheet.
func SheetSections() []graph.Section {
	return []graph.Section{
		{ID: "gc8", Name: "GC8"},
		{ID: "nsp", Name: "NSP"},
		{ID: "mtr", Name: "MTR"},
	}
}

func on(m time.Month, d int) time.Time { return daterange.Date(2025, m, d) }

func deps(ids ...string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// Tasks returns a fresh copy of the 28-task campaign plan.
func Tasks() []graph.Task {
	return []graph.Task{
		{ID: "gc8-1", Name: "Malaria Program Review", Section: "gc8", StartDate: on(time.April, 1), Duration: 60, Dependencies: deps()},
		{ID: "gc8-2", Name: "NSP at Mid-Level completed?", Section: "gc8", StartDate: on(time.May, 31), Duration: 45, Dependencies: deps("gc8-1")},
		{ID: "gc8-3", Name: "Sub National Tailoring", Section: "gc8", StartDate: on(time.July, 15), Duration: 30, Dependencies: deps("gc8-2")},
		{ID: "gc8-4", Name: "Malaria Matchbox – if priority country", Section: "gc8", StartDate: on(time.July, 15), Duration: 45, Dependencies: deps("gc8-2")},

		{ID: "nsp-1", Name: "Research", Section: "nsp", StartDate: on(time.April, 15), Duration: 90, Dependencies: deps(),
			Comments: "Change to NSP can be proposed based on account of research result"},
		{ID: "nsp-2", Name: "Costing", Section: "nsp", StartDate: on(time.July, 14), Duration: 30, Dependencies: deps("nsp-1")},
		{ID: "nsp-3", Name: "Operation Plan", Section: "nsp", StartDate: on(time.August, 14), Duration: 45, Dependencies: deps("nsp-2")},
		{ID: "nsp-4", Name: "Monitoring and Evaluation", Section: "nsp", StartDate: on(time.September, 28), Duration: 30, Dependencies: deps("nsp-3")},
		{ID: "nsp-5", Name: "Procurement", Section: "nsp", StartDate: on(time.September, 28), Duration: 60, Dependencies: deps("nsp-3")},
		{ID: "nsp-6", Name: "Supply Management", Section: "nsp", StartDate: on(time.November, 27), Duration: 45, Dependencies: deps("nsp-5")},

		{ID: "smc-1", Name: "Macro Planning", Section: "smc", StartDate: on(time.June, 1), Duration: 45, Dependencies: deps()},
		{ID: "smc-2", Name: "Procurement and Supply Chain Management", Section: "smc", StartDate: on(time.July, 16), Duration: 60, Dependencies: deps("smc-1")},
		{ID: "smc-3", Name: "Micro Planning", Section: "smc", StartDate: on(time.July, 16), Duration: 30, Dependencies: deps("smc-1")},
		{ID: "smc-4", Name: "Digitalization", Section: "smc", StartDate: on(time.August, 16), Duration: 30, Dependencies: deps("smc-3")},
		{ID: "smc-5", Name: "Monitoring and Evaluation", Section: "smc", StartDate: on(time.September, 15), Duration: 45, Dependencies: deps("smc-4")},

		{ID: "itn-1", Name: "Macro Planning", Section: "itn", StartDate: on(time.July, 15), Duration: 45, Dependencies: deps()},
		{ID: "itn-2", Name: "Procurement and Supply Chain Management", Section: "itn", StartDate: on(time.August, 29), Duration: 60, Dependencies: deps("itn-1")},
		{ID: "itn-3", Name: "Micro Planning", Section: "itn", StartDate: on(time.August, 29), Duration: 30, Dependencies: deps("itn-1")},
		{ID: "itn-4", Name: "Digitalization", Section: "itn", StartDate: on(time.September, 28), Duration: 30, Dependencies: deps("itn-3")},
		{ID: "itn-5", Name: "Monitoring and Evaluation", Section: "itn", StartDate: on(time.October, 28), Duration: 45, Dependencies: deps("itn-4")},

		{ID: "irs-1", Name: "Macro Planning", Section: "irs", StartDate: on(time.September, 1), Duration: 45, Dependencies: deps()},
		{ID: "irs-2", Name: "Procurement and Supply Chain Management", Section: "irs", StartDate: on(time.October, 16), Duration: 60, Dependencies: deps("irs-1")},
		{ID: "irs-3", Name: "Micro Planning", Section: "irs", StartDate: on(time.October, 16), Duration: 30, Dependencies: deps("irs-1")},
		{ID: "irs-4", Name: "Digitalization", Section: "irs", StartDate: on(time.November, 16), Duration: 30, Dependencies: deps("irs-3")},
		{ID: "irs-5", Name: "Monitoring and Evaluation", Section: "irs", StartDate: on(time.December, 16), Duration: 45, Dependencies: deps("irs-4")},

		{ID: "mtr-1", Name: "Case Management Assessment", Section: "mtr", StartDate: on(time.November, 1), Duration: 30, Dependencies: deps()},
		{ID: "mtr-2", Name: "Vector Control Management Assessment", Section: "mtr", StartDate: on(time.December, 1), Duration: 30, Dependencies: deps("mtr-1")},
		// Dated January 2025 although it follows mtr-2.
		{ID: "mtr-3", Name: "Community Rights Gender Assessment", Section: "mtr", StartDate: on(time.January, 1), Duration: 30, Dependencies: deps("mtr-2")},
	}
}

// Graph builds a graph from Tasks.
func Graph() *graph.Graph {
	g, err := graph.New(Tasks())
	if err != nil {
		panic("fixtures: " + err.Error())
	}
	return g
}
