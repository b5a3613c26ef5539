package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Tiliavir/resource-board/internal/board"
	"github.com/Tiliavir/resource-board/internal/config"
	"github.com/Tiliavir/resource-board/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive board in the terminal",
		Long: `Open the board in the terminal. Drag on an empty part of a row to create an
event, drag an event to move it, drag its last column to resize it and
right-click it to delete it. Escape cancels a drag in progress.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, opts, sessionOptions{
				geometry: func(cfg config.Config, g board.Geometry) board.Geometry {
					return tui.SurfaceGeometry(g, cfg.TUI.CellWidthPx, cfg.TUI.LabelWidth)
				},
			})
			if err != nil {
				return err
			}
			defer s.Close()

			return tui.Run(cmd.Context(), s.board, tui.Options{
				CellWidth:  s.cfg.TUI.CellWidthPx,
				LabelWidth: s.cfg.TUI.LabelWidth,
				Logger:     s.logger,
			})
		},
	}
}
