package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pfrederiksen/du-scraper/internal/athletics"
	"github.com/pfrederiksen/du-scraper/internal/bulletin"
	"github.com/pfrederiksen/du-scraper/internal/calendar"
	"github.com/pfrederiksen/du-scraper/internal/config"
	"github.com/pfrederiksen/du-scraper/internal/fetch"
	"github.com/pfrederiksen/du-scraper/internal/logger"
	"github.com/pfrederiksen/du-scraper/internal/runner"
	"github.com/pfrederiksen/du-scraper/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess     = 0
	ExitError       = 1
	ExitTasksFailed = 2
)

var (
	flagConfig    string
	flagOutputDir string
	flagTasks     string
	flagYear      int
	flagICS       bool
	flagFormat    string
	flagVerbose   bool
)

// exitError carries the process exit code for an error
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "du-scraper",
		Short: "Scrape University of Denver course, athletics and calendar data",
		Long: `A CLI tool that collects University of Denver public web data.

It writes bulletin.json (upper-division COMP courses without prerequisite links),
athletic_events.json (the featured scoreboard event) and calendar_events.json
(a year of campus events, one month at a time) to the output directory.`,
		Args:          cobra.NoArgs,
		RunE:          runScrape,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&flagConfig, "config", config.DefaultPath, "Config file (JSON5); a .local variant is merged on top")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Directory for result files (overrides config)")
	cmd.Flags().StringVar(&flagTasks, "tasks", "", "Comma-separated tasks to run: bulletin, athletics, calendar")
	cmd.Flags().IntVar(&flagYear, "year", 0, "Calendar year to scrape (overrides config)")
	cmd.Flags().BoolVar(&flagICS, "ics", false, "Also write calendar_events.ics")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Summary format: text or json")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
	logger.ResetMetrics()

	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	r, err := buildRunner(cfg, store)
	if err != nil {
		return err
	}

	logger.Info("Starting run", logger.Fields{
		"tasks":      strings.Join(cfg.Tasks, ","),
		"output_dir": store.Dir(),
	})

	report := r.Run(cmd.Context(), cfg.Tasks)
	snapshot := logger.GetMetricsSnapshot()

	if err := WriteOutput(cmd.OutOrStdout(), NewSummary(report, snapshot), format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if failed := report.Failed(); failed > 0 {
		return &exitError{
			code: ExitTasksFailed,
			err:  fmt.Errorf("%d of %d tasks did not succeed", failed, len(report.Tasks)),
		}
	}
	return nil
}

// applyFlags copies explicitly set flags over the loaded config
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = flagOutputDir
	}
	if flags.Changed("tasks") {
		tasks := splitTasks(flagTasks)
		if len(tasks) == 0 {
			return fmt.Errorf("--tasks names no task (must be one of %s)", strings.Join(config.KnownTasks, ", "))
		}
		cfg.Tasks = tasks
	}
	if flags.Changed("year") {
		cfg.CalendarYear = flagYear
	}
	if flags.Changed("ics") {
		cfg.ICS = flagICS
	}
	return nil
}

func splitTasks(s string) []string {
	var tasks []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			tasks = append(tasks, part)
		}
	}
	return tasks
}

// buildRunner wires every task to one fetch client and output directory
func buildRunner(cfg config.Config, store *storage.Storage) (*runner.Runner, error) {
	client := fetch.New(fetch.Options{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout(),
	})

	locators, err := cfg.Locators()
	if err != nil {
		return nil, err
	}

	cal, err := calendar.NewTask(client, store, cfg.CalendarOptions())
	if err != nil {
		return nil, fmt.Errorf("creating calendar task: %w", err)
	}

	return runner.New(
		bulletin.NewTask(client, store, cfg.BulletinURL),
		athletics.NewTask(client, store, cfg.AthleticsURL, locators),
		cal,
	), nil
}

// Run executes the command with args and returns the process exit code
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}

// Execute runs the CLI. Interrupt and SIGTERM cancel the run.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
