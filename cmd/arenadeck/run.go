package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arenadeck/arenadeck-go/internal/config"
	"github.com/arenadeck/arenadeck-go/internal/cursor"
	"github.com/arenadeck/arenadeck-go/internal/daemon"
	"github.com/arenadeck/arenadeck-go/internal/dedup"
	"github.com/arenadeck/arenadeck-go/internal/export"
	"github.com/arenadeck/arenadeck-go/internal/lockfile"
	"github.com/arenadeck/arenadeck-go/internal/store"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch Player.log and export new decks",
	Long: `Watch the MTG Arena Player.log and export every new deck state.

Settings come from the config file; flags override them. The processed
position is kept in the state directory so a restart continues where the
previous run stopped without exporting anything twice.

Examples:
  # Auto-detect the log and export into ./exports
  arenadeck run

  # Explicit log file, JSON only, polling every 5 seconds
  arenadeck run --log-file ~/Player.log --formats json --mode poll --poll-interval 5s

  # Ignore what is already in the log
  arenadeck run --no-backfill`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	addRunFlags(runCmd.Flags())
	runCmd.MarkFlagsMutuallyExclusive("backfill", "no-backfill")
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(f *pflag.FlagSet) {
	f.String("log-file", "", "Player.log path (auto-detected if not specified)")
	f.String("export-dir", "", "Directory for exported deck files")
	f.String("state-dir", "", "Directory for the cursor, history and lock files")
	f.String("formats", "", "Export formats (comma-separated: json,text,mtga)")
	f.String("mode", "", "Watch mode: auto, notify, poll")
	f.Duration("poll-interval", 0, "Poll interval (e.g. 2s)")
	f.Bool("backfill", false, "Parse existing log content on first start")
	f.Bool("no-backfill", false, "Start at the end of the log on first start")
}

// applyRunFlags copies explicitly set flags over cfg.
func applyRunFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("log-file") {
		cfg.LogFilePath, _ = flags.GetString("log-file")
	}
	if flags.Changed("export-dir") {
		cfg.ExportDirectory, _ = flags.GetString("export-dir")
	}
	if flags.Changed("state-dir") {
		cfg.StateDirectory, _ = flags.GetString("state-dir")
	}
	if flags.Changed("formats") {
		s, _ := flags.GetString("formats")
		formats, err := export.ParseFormats(s)
		if err != nil {
			return fmt.Errorf("--formats: %w", err)
		}
		cfg.SetFormats(formats)
	}
	if flags.Changed("mode") {
		cfg.Monitor.Mode, _ = flags.GetString("mode")
		cfg.Monitor.WatchEnabled = nil
	}
	if flags.Changed("poll-interval") {
		d, _ := flags.GetDuration("poll-interval")
		cfg.Monitor.PollInterval = config.Duration(d)
	}
	if flags.Changed("backfill") {
		cfg.Monitor.ParseOnStartup, _ = flags.GetBool("backfill")
	}
	if flags.Changed("no-backfill") {
		off, _ := flags.GetBool("no-backfill")
		cfg.Monitor.ParseOnStartup = !off
	}
	return cfg.Validate()
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := config.Resolve(configPath)
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd.Flags(), cfg); err != nil {
		return err
	}

	base, closeLog, err := newLogger(cfg.Logging, verbose, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closeLog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := newRunID()
	log := base.With("run_id", runID)
	if cfgPath == "" {
		log.Info("no config file found, using defaults")
	} else {
		log.Info("loaded config", "path", cfgPath)
	}

	lock, err := lockfile.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	d, cleanup, err := buildDaemon(ctx, cfg, base, runID)
	if err != nil {
		return err
	}
	defer cleanup()

	return d.Run(ctx)
}

// buildDaemon assembles a daemon from cfg. cleanup releases the history
// database and must be called after Run returns.
func buildDaemon(ctx context.Context, cfg *config.Config, base *slog.Logger, runID string) (*daemon.Daemon, func(), error) {
	log := base.With("run_id", runID)
	cleanup := func() {}

	var history dedup.History = dedup.NopHistory{}
	if cfg.DeckExport.PersistHistory {
		db, err := store.Open(cfg.HistoryPath())
		if err != nil {
			return nil, cleanup, fmt.Errorf("opening export history: %w", err)
		}
		history = db
		cleanup = func() { db.Close() }
	}
	dd := dedup.New(ctx, history, log, dedup.WithRunID(runID))

	var exp daemon.Exporter
	if cfg.DeckExport.AutoExport {
		layout, err := cfg.TimestampLayout()
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		e, err := export.New(export.Options{
			Dir:             cfg.ExportDirectory,
			Formats:         cfg.Formats(),
			TimestampLayout: layout,
			Logger:          log,
		})
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		exp = e
	}

	parser, err := buildParser(cfg.Parser.ShapeFiles)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	mode, err := cfg.WatchMode()
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	d, err := daemon.New(daemon.Config{
		Backfill:   cfg.Monitor.ParseOnStartup,
		AutoExport: cfg.DeckExport.AutoExport,
	}, daemon.Deps{
		Cursor:   cursor.NewStore(cfg.CursorPath(), log),
		Dedup:    dd,
		Exporter: exp,
		Parser:   parser,
		Logger:   base,
		RunID:    runID,
		WatcherOptions: []arenadeck.WatchOption{
			arenadeck.WithLogFile(cfg.LogFilePath),
			arenadeck.WithMode(mode),
			arenadeck.WithPollInterval(time.Duration(cfg.Monitor.PollInterval)),
			arenadeck.WithMaxChunkBytes(cfg.Monitor.MaxChunkBytes),
		},
	})
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return d, cleanup, nil
}
