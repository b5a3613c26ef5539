package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/resource-board/internal/export"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format   string
		outPath  string
		timezone string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the events of a period as JSON, iCalendar or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(export.Formats, format) {
				return fmt.Errorf("unknown format %q (want %s)", format, strings.Join(export.Formats, ", "))
			}
			s, err := openSession(cmd.Context(), cmd, opts, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("timezone") {
				timezone = s.cfg.Outlook.Timezone
			}
			loc := time.Local
			if timezone != "" {
				if loc, err = time.LoadLocation(timezone); err != nil {
					return fmt.Errorf("timezone %q: %w", timezone, err)
				}
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := export.Write(w, format, s.board.Period(), s.board.Snapshot(), export.Options{Location: loc}); err != nil {
				return err
			}
			if outPath != "" && outPath != "-" {
				s.logger.Info("exported period", "period", s.board.Period(), "format", format, "file", outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatJSON, "Output format: json, ics or pdf")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone of the board (default: outlook.timezone, else local time)")
	return cmd
}
