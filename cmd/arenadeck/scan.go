package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arenadeck/arenadeck-go/internal/dedup"
	"github.com/arenadeck/arenadeck-go/internal/export"
	"github.com/arenadeck/arenadeck-go/pkg/arenadeck"
)

var (
	// scan flags
	scanFormat    string
	scanExportDir string
	scanFormats   string
	scanShapes    []string
)

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Parse a log file once and print or export its decks",
	Long: `Parse a Player.log (or a saved copy) once.

Decks are printed as JSON Lines by default. With --export-dir each distinct
deck state is exported instead, as the daemon would.

Examples:
  arenadeck scan Player.log
  arenadeck scan Player-prev.log --format pretty
  arenadeck scan Player.log --export-dir ./exports --formats json,mtga
  arenadeck scan Player.log | jq 'select(.format == "Standard")'`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	scanCmd.Flags().StringVarP(&scanExportDir, "export-dir", "o", "",
		"Export decks into this directory instead of printing them")
	scanCmd.Flags().StringVar(&scanFormats, "formats", "json,text,mtga",
		"Export formats used with --export-dir")
	scanCmd.Flags().StringSliceVar(&scanShapes, "shapes", nil,
		"Additional shape files (comma-separated)")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if !validFormats[scanFormat] {
		return fmt.Errorf("unknown format: %s", scanFormat)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	parser, err := buildParser(scanShapes)
	if err != nil {
		return err
	}

	var exp *export.Exporter
	if scanExportDir != "" {
		formats, err := export.ParseFormats(scanFormats)
		if err != nil {
			return fmt.Errorf("--formats: %w", err)
		}
		exp, err = export.New(export.Options{Dir: scanExportDir, Formats: formats, Logger: log})
		if err != nil {
			return err
		}
	}

	return scanFile(ctx, args[0], parser, exp, scanFormat, cmd.OutOrStdout(), log)
}

// scanFile parses path and prints each deck, or exports each distinct deck
// state when exp is non-nil. Blocks that fail to parse are logged and
// skipped.
func scanFile(ctx context.Context, path string, parser arenadeck.Parser, exp *export.Exporter, format string, out io.Writer, log *slog.Logger) error {
	var seen *dedup.Deduplicator
	if exp != nil {
		seen = dedup.New(ctx, nil, log)
	}

	var decks, exported int
	for d, err := range arenadeck.ParseFile(ctx, path,
		arenadeck.WithParseParser(parser),
		arenadeck.WithParseLogger(log),
	) {
		if err != nil {
			return err
		}
		decks++

		if exp == nil {
			if err := OutputDeck(format, d, out); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			continue
		}

		if !seen.ShouldExport(&d) {
			continue
		}
		arts, err := exp.Export(ctx, &d)
		for _, a := range arts {
			fmt.Fprintln(out, a.Path)
		}
		if err != nil {
			log.Warn("export failed", "deck_id", d.ID, "err", err)
			continue
		}
		paths := make([]string, len(arts))
		for i, a := range arts {
			paths[i] = a.Path
		}
		seen.MarkExported(ctx, &d, paths)
		exported++
	}

	log.Info("scan complete", "path", path, "decks", decks, "exported", exported)
	return nil
}
