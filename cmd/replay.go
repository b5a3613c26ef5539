package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/resource-board/internal/script"
)

func newReplayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Feed a recorded pointer script into the board",
		Long: `Replay a YAML script of pointer input (down, move, up, leave, cancel,
focus-lost), period navigation (switch, prev, next) and commands (add-row,
delete). Each step is printed with what the board did. Pass - to read the
script from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			sc, err := script.Parse(in)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			answers := &script.Answers{}
			s, err := openSession(cmd.Context(), cmd, opts, sessionOptions{confirm: answers})
			if err != nil {
				return err
			}
			defer s.Close()

			results, err := script.NewRunner(s.board, answers, s.logger).Run(cmd.Context(), sc)
			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintln(out, r)
			}
			if err != nil {
				return boardErr(err)
			}
			fmt.Fprintln(out)
			printBoard(out, s.board)
			return nil
		},
	}
}
