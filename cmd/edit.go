package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/resource-board/internal/board"
	"github.com/Tiliavir/resource-board/internal/model"
	"github.com/Tiliavir/resource-board/internal/timecalc"
)

// reportOutcome prints what a programmatic drag did.
func reportOutcome(w io.Writer, out board.Outcome) error {
	switch out.Kind {
	case board.OutcomeCreated, board.OutcomeMoved, board.OutcomeResized:
		fmt.Fprintf(w, "%s event #%d on resource %d: %s\n",
			strings.ToUpper(out.Kind.String()[:1])+out.Kind.String()[1:],
			out.Event.ID, out.Event.ResourceIndex+1, timecalc.RangeLabel(out.Event.LeftOffset, out.Event.Width))
		return nil
	case board.OutcomeDiscarded:
		return errors.New("nothing changed: the drag was discarded")
	}
	return errors.New("nothing changed")
}

// boardErr maps board errors to exit codes: input errors stay usage errors,
// anything else came from storage.
func boardErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, board.ErrUnknownEvent), errors.Is(err, board.ErrNoSuchRow),
		errors.Is(err, board.ErrBusy), errors.Is(err, board.ErrNotHydrated):
		return err
	}
	return storageFailure(err)
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		row         int
		left, width float64
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event, as if dragged across a row",
		Long: `Create an event on a resource row. --left and --width are in board pixels;
one pixel is 20 minutes and offsets count from midnight on the first day of the
period. Drags of 4 pixels or less are discarded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, opts, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.board.CreateEvent(cmd.Context(), row-1, left, width)
			if err != nil {
				return boardErr(err)
			}
			return reportOutcome(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVar(&row, "resource", 1, "Resource row (1-based)")
	cmd.Flags().Float64Var(&left, "left", 0, "Left offset in pixels")
	cmd.Flags().Float64Var(&width, "width", 0, "Width in pixels")
	cmd.MarkFlagRequired("width")
	return cmd
}

func newMoveCmd(opts *rootOptions) *cobra.Command {
	var (
		id   int64
		row  int
		left float64
	)
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move an event to another offset or resource row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, opts, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			ev, ok := s.board.Event(id)
			if !ok {
				return fmt.Errorf("event %d: %w", id, board.ErrUnknownEvent)
			}
			targetLeft, targetRow := ev.LeftOffset, ev.ResourceIndex
			if cmd.Flags().Changed("left") {
				targetLeft = left
			}
			if cmd.Flags().Changed("resource") {
				targetRow = row - 1
			}
			out, err := s.board.MoveEvent(cmd.Context(), id, targetLeft, targetRow)
			if err != nil {
				return boardErr(err)
			}
			return reportOutcome(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Event id")
	cmd.Flags().IntVar(&row, "resource", 1, "Target resource row (1-based); clamped to the board")
	cmd.Flags().Float64Var(&left, "left", 0, "Target left offset in pixels")
	cmd.MarkFlagRequired("id")
	return cmd
}

func newResizeCmd(opts *rootOptions) *cobra.Command {
	var (
		id    int64
		width float64
	)
	cmd := &cobra.Command{
		Use:   "resize",
		Short: "Change the width of an event (minimum 10 pixels)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, opts, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.board.ResizeEvent(cmd.Context(), id, width)
			if err != nil {
				return boardErr(err)
			}
			return reportOutcome(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Event id")
	cmd.Flags().Float64Var(&width, "width", 0, "New width in pixels")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("width")
	return cmd
}

// promptConfirmer asks on the command's stdin before deleting.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
	yes bool
}

func (p *promptConfirmer) ConfirmDelete(ev model.Event) bool {
	if p.yes {
		return true
	}
	fmt.Fprintf(p.out, "Delete event #%d on resource %d (%s)? [y/N] ",
		ev.ID, ev.ResourceIndex+1, timecalc.RangeLabel(ev.LeftOffset, ev.Width))
	line, _ := p.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var (
		id  int64
		yes bool
	)
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an event after confirmation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := &promptConfirmer{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout(), yes: yes}
			s, err := openSession(cmd.Context(), cmd, opts, sessionOptions{confirm: confirm})
			if err != nil {
				return err
			}
			defer s.Close()

			if _, ok := s.board.Event(id); !ok {
				return fmt.Errorf("event %d: %w", id, board.ErrUnknownEvent)
			}
			removed, err := s.board.RequestDelete(cmd.Context(), id)
			if err != nil {
				return boardErr(err)
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted event #%d.\n", id)
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Event id")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.MarkFlagRequired("id")
	return cmd
}

func newAddRowCmd(opts *rootOptions) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "add-row",
		Short: "Append a resource row to the period",
		Long: `Append a resource row. --target names the period the command was issued
for; a command whose target is not the active period is ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, opts, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			if target == "" {
				target = s.board.Period()
			}
			applied, err := s.board.AddRow(cmd.Context(), board.AddRowCommand{TargetPeriodKey: target})
			if err != nil {
				return boardErr(err)
			}
			if !applied {
				fmt.Fprintf(cmd.OutOrStdout(), "Ignored: add-row for %s while %s is active.\n", target, s.board.Period())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Period %s now has %d resources.\n", s.board.Period(), s.board.ResourceCount())
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Period the command is addressed to (default: the active period)")
	return cmd
}
