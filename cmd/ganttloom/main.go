package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/joshharrison/ganttloom/internal/config"
	"github.com/joshharrison/ganttloom/internal/graph"
	"github.com/joshharrison/ganttloom/internal/reporter"
	"github.com/joshharrison/ganttloom/internal/session"
	"github.com/joshharrison/ganttloom/internal/sheet"
	"github.com/joshharrison/ganttloom/internal/telemetry"
	"github.com/joshharrison/ganttloom/internal/timeline"
	"github.com/joshharrison/ganttloom/internal/ui"
	"github.com/joshharrison/ganttloom/internal/viewer"
)

var (
	flagConfig string
	flagSource string
	flagPath   string
	flagURL    string
	flagFormat string
	flagJSON   bool
	flagOutput string
)

var (
	cfg               *config.Config
	shutdownTelemetry func(context.Context) error
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ganttloom",
		Short: "Malaria campaign task graph and timeline",
		Long: `Ganttloom ingests a country support spreadsheet (or the built-in campaign
plan), tracks task completion against dependencies and lays the tasks out on
a Gantt timeline, in the terminal or over an HTTP API.`,
		SilenceUsage:       true,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ./.ganttloom.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "", "Task source: fixtures, file or url")
	rootCmd.PersistentFlags().StringVar(&flagPath, "path", "", "Sheet export path for --source file")
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "Sheet export URL for --source url")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "Export format: csv or json (default inferred)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(groupsCmd())
	rootCmd.AddCommand(ganttCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads .env and the config file, applies flag overrides and
// installs logging.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	c, err := config.Load(config.Options{File: flagConfig})
	if err != nil {
		return err
	}
	if flagSource != "" {
		c.Source.Kind = flagSource
	}
	if flagPath != "" {
		c.Source.Path = flagPath
		if flagSource == "" {
			c.Source.Kind = "file"
		}
	}
	if flagURL != "" {
		c.Source.URL = flagURL
		if flagSource == "" {
			c.Source.Kind = "url"
		}
	}
	if flagFormat != "" {
		c.Source.Format = flagFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	telemetry.UseText(os.Stderr, level)

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(cmd.Context(), os.Stderr, cfg.Telemetry.Interval)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		shutdownTelemetry = shutdown
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if shutdownTelemetry == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return shutdownTelemetry(ctx)
}

// loadSnapshot runs one load of the configured source.
func loadSnapshot(ctx context.Context) (session.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Source.Timeout)
	defer cancel()
	return newLoader(cfg.Source, sheet.NewClient(cfg.Source.Timeout), time.Now)(ctx)
}

func loadReporter(ctx context.Context) (*reporter.Reporter, error) {
	snap, err := loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return reporter.New(snap.Graph, snap.Sections, snap.Source), nil
}

func tasksCmd() *cobra.Command {
	var (
		f          graph.Filter
		flagStatus string
		flagSort   string
		flagDesc   bool
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks with their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if f.Status, err = graph.ParseStatusFilter(flagStatus); err != nil {
				return err
			}
			key, err := graph.ParseSortKey(flagSort)
			if err != nil {
				return err
			}

			rpt, err := loadReporter(cmd.Context())
			if err != nil {
				return err
			}
			tasks := rpt.Graph.Query(f, graph.SortSpec{Key: key, Desc: flagDesc})

			if flagJSON {
				return outputJSON(tasks)
			}
			rpt.PrintTasks(os.Stdout, tasks)
			fmt.Printf("\n%s\n", ui.Dim(fmt.Sprintf("%d of %d tasks", len(tasks), rpt.Graph.Len())))
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Section, "section", "", "Only tasks in this section id")
	cmd.Flags().StringVar(&f.Search, "search", "", "Case-insensitive search over name, id and comments")
	cmd.Flags().StringVar(&f.Group, "group", "", "Only tasks of this country")
	cmd.Flags().StringVar(&flagStatus, "status", "all", "all, completed or pending")
	cmd.Flags().StringVar(&flagSort, "sort", "country", "country, startDate, duration or status")
	cmd.Flags().BoolVar(&flagDesc, "desc", false, "Sort descending")

	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rpt, err := loadReporter(cmd.Context())
			if err != nil {
				return err
			}
			t, ok := rpt.Graph.FindByID(args[0])
			if !ok {
				return fmt.Errorf("%s: %w", args[0], graph.ErrTaskNotFound)
			}
			if flagJSON {
				return outputJSON(t)
			}
			rpt.PrintTask(os.Stdout, t)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			rpt, err := loadReporter(cmd.Context())
			if err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(rpt.Graph.Stats())
			}
			rpt.PrintStats(os.Stdout)
			return nil
		},
	}
}

func groupsCmd() *cobra.Command {
	var flagBy string

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Show tasks grouped by country",
		RunE: func(cmd *cobra.Command, args []string) error {
			rpt, err := loadReporter(cmd.Context())
			if err != nil {
				return err
			}

			var groups []graph.EntityGroup
			switch flagBy {
			case "entity":
				groups = rpt.Graph.GroupByEntity()
			case "section":
				groups = rpt.Graph.GroupBySectionWithinEntity()
			default:
				return fmt.Errorf("--by must be entity or section, got %q", flagBy)
			}

			if flagJSON {
				return outputJSON(groups)
			}
			rpt.PrintGroups(os.Stdout, groups)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagBy, "by", "entity", "entity or section")
	return cmd
}

func ganttCmd() *cobra.Command {
	var (
		flagGranularity string
		flagZoomIn      int
		flagZoomOut     int
		flagWidth       int
		flagComplete    []string
	)

	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Draw the task timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagGranularity == "" {
				flagGranularity = cfg.Chart.Granularity
			}
			gran, err := timeline.ParseGranularity(flagGranularity)
			if err != nil {
				return err
			}

			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range flagComplete {
				if _, err := snap.Graph.Toggle(id); err != nil {
					return fmt.Errorf("complete %s: %w", id, err)
				}
			}

			v := timeline.View{Granularity: gran}
			if w, ok := timeline.DefaultWindow(snap.Graph.Tasks()); ok {
				v.Window = w
			}
			for i := 0; i < flagZoomIn; i++ {
				v = v.ZoomIn()
			}
			for i := 0; i < flagZoomOut; i++ {
				v = v.ZoomOut()
			}

			l := timeline.Compute(snap.Graph, snap.Sections, v, timeline.Options{
				Width: cfg.Chart.Width,
				Today: time.Now(),
			})
			if flagJSON {
				return outputJSON(l)
			}
			if !cmd.Flags().Changed("width") {
				flagWidth = chartColumns(flagWidth)
			}
			reporter.New(snap.Graph, snap.Sections, snap.Source).PrintGantt(os.Stdout, l, flagWidth)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagGranularity, "granularity", "", "quarters, months or weeks (default from config)")
	cmd.Flags().IntVar(&flagZoomIn, "zoom-in", 0, "Zoom in N steps")
	cmd.Flags().IntVar(&flagZoomOut, "zoom-out", 0, "Zoom out N steps")
	cmd.Flags().IntVar(&flagWidth, "width", 72, "Chart width in characters")
	cmd.Flags().StringSliceVar(&flagComplete, "complete", nil, "Mark task ids completed before drawing")

	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Ingest the configured source and report diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Source.Timeout)
			defer cancel()

			res, err := ingestSource(ctx, cfg.Source, sheet.NewClient(cfg.Source.Timeout), time.Now)
			if err != nil {
				return err
			}
			conflicts := res.Graph.DateConflicts()
			if flagJSON {
				return outputJSON(map[string]interface{}{
					"countries":        res.Rows,
					"tasks":            len(res.Tasks),
					"fallbacks":        res.Fallbacks,
					"skipped_rows":     res.SkippedRows,
					"replaced_rows":    res.ReplacedRows,
					"dangling_removed": res.DanglingRemoved,
					"cycle":            res.Cycle,
					"conflicts":        conflicts,
				})
			}
			reporter.PrintCheck(os.Stdout, res)
			reporter.PrintConflicts(os.Stdout, conflicts)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every task as a JSON array",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			data, err := reporter.Export(snap.Graph.Tasks())
			if err != nil {
				return err
			}
			if flagOutput == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(flagOutput, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", flagOutput, err)
			}
			fmt.Printf("✅ Exported %s tasks to %s\n", ui.Bold(snap.Graph.Len()), flagOutput)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagOutput, "output", "", "Write to file instead of stdout")
	return cmd
}

func serveCmd() *cobra.Command {
	var flagAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := cfg.Server.Addr
			if flagAddr != "" {
				addr = flagAddr
			}
			if viewer.IsPortOpen(dialAddr(addr)) {
				return fmt.Errorf("%s is already in use", addr)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			loader := newLoader(cfg.Source, sheet.NewClient(cfg.Source.Timeout), time.Now)
			store := session.New()

			loadCtx, cancel := context.WithTimeout(ctx, cfg.Source.Timeout)
			if err := store.Reload(loadCtx, loader); err != nil {
				slog.Warn("initial load failed, serving 503 until refresh", "err", err)
			}
			cancel()

			srv := viewer.NewServer(store, viewer.Options{
				Loader:         loader,
				RefreshTimeout: cfg.Source.Timeout,
				Width:          cfg.Chart.Width,
			})
			hs := &http.Server{Addr: addr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}

			errCh := make(chan error, 1)
			go func() { errCh <- hs.ListenAndServe() }()

			if !flagJSON {
				ui.PrintLogo(os.Stdout)
			}
			fmt.Printf("🌐 %s serving %s on %s\n", ui.BoldCyan("Ganttloom:"), sourceLabel(cfg.Source), ui.Bold(addr))

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				fmt.Fprintf(os.Stderr, "\n🛑 %s\n", ui.Yellow("Received interrupt, shutting down..."))
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return hs.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config)")
	return cmd
}

// chartColumns sizes the chart to the terminal, keeping room for the
// task label column. Non-terminals get def.
func chartColumns(def int) int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return def
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w-reporter.GanttLabelWidth-2 < 20 {
		return def
	}
	return w - reporter.GanttLabelWidth - 2
}

// dialAddr turns a listen address such as ":8080" into one that can be dialed.
func dialAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var flagForce bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default " + config.DefaultFile,
		// The file being written may be the one that fails to load.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if flagConfig != "" {
				path = flagConfig
			}
			if err := config.WriteDefault(afero.NewOsFs(), path, flagForce); err != nil {
				return err
			}
			fmt.Printf("✅ Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
