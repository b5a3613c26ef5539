package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/resource-board/internal/board"
	"github.com/Tiliavir/resource-board/internal/config"
	"github.com/Tiliavir/resource-board/internal/logging"
	"github.com/Tiliavir/resource-board/internal/storage"
	"github.com/Tiliavir/resource-board/internal/timecalc"
)

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// storageFailure marks err as a storage error (exit code 2).
func storageFailure(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: 2, err: err}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	period     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "rboard",
		Short: "Resource board – schedule blocks of time on resource rows, one month at a time",
		Long: `rboard keeps a month-by-month board of resource rows (rooms, people, machines)
with time blocks placed on them. Data is stored in ~/.rboard/ as a single JSON
container (or SQLite database) holding every month.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $RBOARD_CONFIG or ~/.rboard/config.json)")
	root.PersistentFlags().StringVar(&opts.period, "period", "", "Period to work on (YYYY-MM); defaults to the current month")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newShowCmd(opts),
		newPeriodsCmd(opts),
		newCreateCmd(opts),
		newMoveCmd(opts),
		newResizeCmd(opts),
		newDeleteCmd(opts),
		newAddRowCmd(opts),
		newReplayCmd(opts),
		newExportCmd(opts),
		newOutlookCmd(opts),
		newTUICmd(opts),
	)
	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// session is an opened store with a board hydrated for the requested period.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	store  *storage.Store
	board  *board.Board
}

// sessionOptions tweak how openSession builds the board.
type sessionOptions struct {
	confirm  board.Confirmer
	geometry func(config.Config, board.Geometry) board.Geometry
}

func loadConfig(opts *rootOptions, stderr io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath, nil)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := logging.New(stderr, cfg.LogLevel, opts.verbose)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

func boardGeometry(c config.BoardConfig) board.Geometry {
	return board.Geometry{
		RowHeight:         c.RowHeight,
		EventHeight:       c.EventHeight,
		ResizeHandleWidth: c.ResizeHandleWidth,
		DeleteControlSize: c.DeleteControlSize,
		MinCreateWidth:    c.MinCreateWidth,
		MinResizeWidth:    c.MinResizeWidth,
	}
}

func openSession(ctx context.Context, cmd *cobra.Command, opts *rootOptions, so sessionOptions) (*session, error) {
	if opts.period != "" {
		if _, err := timecalc.ParsePeriodKey(opts.period, nil); err != nil {
			return nil, err
		}
	}
	cfg, logger, err := loadConfig(opts, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	dir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(ctx, cfg.Storage, dir, cfg.Container, logger)
	if err != nil {
		return nil, storageFailure(err)
	}

	geom := boardGeometry(cfg.Board)
	if so.geometry != nil {
		geom = so.geometry(cfg, geom)
	}
	b := board.New(store, board.Options{
		Geometry:         geom,
		Confirm:          so.confirm,
		DefaultResources: cfg.Board.DefaultResources,
		Logger:           logger,
	})

	if opts.period != "" {
		err = b.SwitchPeriodKey(ctx, opts.period)
	} else {
		err = b.CurrentPeriod(ctx)
	}
	if err != nil {
		store.Close()
		return nil, storageFailure(err)
	}
	return &session{cfg: cfg, logger: logger, store: store, board: b}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}
