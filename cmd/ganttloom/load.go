package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joshharrison/ganttloom/internal/config"
	"github.com/joshharrison/ganttloom/internal/fixtures"
	"github.com/joshharrison/ganttloom/internal/ingest"
	"github.com/joshharrison/ganttloom/internal/session"
	"github.com/joshharrison/ganttloom/internal/sheet"
)

const sourceFixtures = "fixtures"

// source turns the configured source into a sheet source.
func source(cfg config.SourceConfig) sheet.Source {
	return sheet.Source{
		Kind:   sheet.SourceKind(cfg.Kind),
		Path:   cfg.Path,
		URL:    cfg.URL,
		Format: sheet.Format(cfg.Format),
	}
}

// sourceLabel names a source for display.
func sourceLabel(cfg config.SourceConfig) string {
	switch cfg.Kind {
	case "file":
		return cfg.Path
	case "url":
		return cfg.URL
	default:
		return sourceFixtures
	}
}

// ingestSource fetches the configured sheet and ingests it. The fixture
// source yields a Result built from the built-in plan.
func ingestSource(ctx context.Context, cfg config.SourceConfig, client *sheet.Client, now func() time.Time) (*ingest.Result, error) {
	if cfg.Kind == sourceFixtures {
		g := fixtures.Graph()
		return &ingest.Result{
			Graph:           g,
			Tasks:           g.Tasks(),
			Rows:            len(g.Groups()),
			DanglingRemoved: g.DanglingRemoved(),
			Cycle:           g.DetectCycle(),
		}, nil
	}

	m, err := client.Load(ctx, source(cfg))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", sourceLabel(cfg), err)
	}
	return ingest.Ingest(m, ingest.Options{Now: now})
}

// newLoader returns the session loader for cfg.
func newLoader(cfg config.SourceConfig, client *sheet.Client, now func() time.Time) session.Loader {
	return func(ctx context.Context) (session.Snapshot, error) {
		res, err := ingestSource(ctx, cfg, client, now)
		if err != nil {
			return session.Snapshot{}, err
		}
		sections := fixtures.SheetSections()
		if cfg.Kind == sourceFixtures {
			sections = fixtures.CampaignSections()
		}
		return session.Snapshot{Graph: res.Graph, Sections: sections, Source: sourceLabel(cfg)}, nil
	}
}
