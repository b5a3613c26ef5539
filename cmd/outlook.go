package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/resource-board/internal/msgraph"
)

func newOutlookCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outlook",
		Short: "Outlook calendar integration",
	}
	cmd.AddCommand(newOutlookPublishCmd(opts))
	return cmd
}

func newOutlookPublishCmd(opts *rootOptions) *cobra.Command {
	var (
		dryRun     bool
		calendarID string
		timezone   string
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the events of a period to an Outlook calendar",
		Long: `Publish every event of the period as an Outlook calendar event.

Events that were published before are recognised by their stable id and
skipped, so running publish again only adds what is new. The first run signs
in with the device code flow; tokens are cached in the data directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), cmd, opts, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			if !cmd.Flags().Changed("calendar") {
				calendarID = s.cfg.Outlook.CalendarID
			}
			if !cmd.Flags().Changed("timezone") {
				timezone = s.cfg.Outlook.Timezone
			}
			dir, err := s.cfg.ResolveDataDir()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			auth := msgraph.Authenticator{
				DataDir:  dir,
				TenantID: s.cfg.Outlook.TenantID,
				ClientID: s.cfg.Outlook.ClientID,
				Out:      out,
				Logger:   s.logger,
			}
			httpClient, err := auth.HTTPClient(cmd.Context())
			if err != nil {
				return fmt.Errorf("authentication: %w", err)
			}

			if dryRun {
				fmt.Fprintf(out, "Dry run: publishing %s (no events are created)\n", s.board.Period())
			} else {
				fmt.Fprintf(out, "Publishing %s\n", s.board.Period())
			}
			res, err := msgraph.Publish(cmd.Context(), msgraph.NewClient(httpClient, ""), s.board.Snapshot(), msgraph.PublishOptions{
				PeriodKey:  s.board.Period(),
				CalendarID: calendarID,
				Timezone:   timezone,
				DryRun:     dryRun,
				Out:        out,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nSummary: %d published, %d skipped, %d errors\n", res.Created, res.Skipped, res.Errors)
			if res.Errors > 0 {
				return &exitError{code: 2, err: errors.New("some events could not be published")}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be published without creating events")
	cmd.Flags().StringVar(&calendarID, "calendar", "", "Target calendar id (default: outlook.calendar_id, else the default calendar)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone of the board (default: outlook.timezone, else UTC)")
	return cmd
}
