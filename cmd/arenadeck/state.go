package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arenadeck/arenadeck-go/internal/config"
	"github.com/arenadeck/arenadeck-go/internal/cursor"
	"github.com/arenadeck/arenadeck-go/internal/store"
)

var stateLimit int

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the saved log position and recent exports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.Resolve(configPath)
		if err != nil {
			return err
		}
		return printState(cmd.Context(), cfg, stateLimit, cmd.OutOrStdout())
	},
}

func init() {
	stateCmd.Flags().IntVarP(&stateLimit, "limit", "n", 20, "Number of recent exports to list")
	rootCmd.AddCommand(stateCmd)
}

func printState(ctx context.Context, cfg *config.Config, limit int, out io.Writer) error {
	c := cursor.NewStore(cfg.CursorPath(), nil).Load()
	if c.IsZero() {
		fmt.Fprintln(out, "Cursor:   none")
	} else {
		fmt.Fprintf(out, "Log file: %s\n", c.Path)
		fmt.Fprintf(out, "Offset:   %d\n", c.Offset)
		fmt.Fprintf(out, "Updated:  %s\n", c.UpdatedAt.Local().Format(time.DateTime))
	}

	if _, err := os.Stat(cfg.HistoryPath()); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(out, "History:  none")
		return nil
	}
	db, err := store.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("opening export history: %w", err)
	}
	defer db.Close()

	n, err := db.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported: %d deck states\n", n)
	if n == 0 || limit <= 0 {
		return nil
	}

	exports, err := db.List(ctx, limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EXPORTED\tDECK\tNAME\tFORMAT\tCARDS\tFILES")
	for _, e := range exports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.ExportedAt.Local().Format(time.DateTime), e.DeckID, e.Name, e.Format, e.CardCount,
			strings.Join(e.Artifacts, ","))
	}
	return tw.Flush()
}
