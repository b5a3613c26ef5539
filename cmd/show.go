package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/resource-board/internal/board"
	"github.com/Tiliavir/resource-board/internal/model"
	"github.com/Tiliavir/resource-board/internal/storage"
	"github.com/Tiliavir/resource-board/internal/timecalc"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	var showDays bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the events of a period, grouped by resource row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, opts, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if showDays {
				if err := printDays(out, s.board); err != nil {
					return err
				}
			}
			printBoard(out, s.board)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showDays, "days", false, "Also print the day grid of the month")
	return cmd
}

func newPeriodsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "List the periods that have stored data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			dir, err := cfg.ResolveDataDir()
			if err != nil {
				return err
			}
			store, err := storage.Open(cmd.Context(), cfg.Storage, dir, cfg.Container, logger)
			if err != nil {
				return storageFailure(err)
			}
			defer store.Close()

			keys, err := store.Periods(cmd.Context())
			if err != nil {
				return storageFailure(err)
			}
			out := cmd.OutOrStdout()
			if len(keys) == 0 {
				fmt.Fprintln(out, "No periods stored.")
				return nil
			}
			for _, k := range keys {
				rec, _, err := store.Load(cmd.Context(), k)
				if err != nil {
					return storageFailure(err)
				}
				fmt.Fprintf(out, "%s  %d events, %d resources\n", k, len(rec.Events), rec.ResourceCount)
			}
			return nil
		},
	}
}

// printBoard lists the committed events of the active period row by row.
func printBoard(w io.Writer, b *board.Board) {
	fmt.Fprintf(w, "Period %s – %d resources\n", b.Period(), b.ResourceCount())
	if len(b.Events()) == 0 {
		fmt.Fprintln(w, "No events.")
		return
	}
	for row := 0; row < b.ResourceCount(); row++ {
		first := true
		for ev := range b.RowEvents(row) {
			if first {
				fmt.Fprintf(w, "Resource %d\n", row+1)
				first = false
			}
			printEvent(w, ev)
		}
	}
}

func printEvent(w io.Writer, ev model.Event) {
	dur := timecalc.FormatDuration(int64(timecalc.PixelsToOffset(ev.Width).Seconds()))
	fmt.Fprintf(w, "  #%-4d %s  (%s)  left=%g width=%g  %s\n",
		ev.ID, timecalc.RangeLabel(ev.LeftOffset, ev.Width), dur, ev.LeftOffset, ev.Width, ev.Color)
}

func printDays(w io.Writer, b *board.Board) error {
	days, err := timecalc.MonthDays(b.Reference())
	if err != nil {
		return err
	}
	today := time.Now()
	for i, d := range days {
		mark := " "
		if timecalc.SameDay(d.Date, today) {
			mark = "*"
		}
		fmt.Fprintf(w, "%s%2d %s", mark, d.Number, d.Weekday)
		if (i+1)%7 == 0 || i == len(days)-1 {
			fmt.Fprintln(w)
		} else {
			fmt.Fprint(w, "  ")
		}
	}
	return nil
}
