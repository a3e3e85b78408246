package cli

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tweetwall/pkg/wall"
)

type runOptions struct {
	config  string
	addr    string
	logFile string
}

// runCommand creates the run command, which presents the wall in the terminal.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Present the configured steps in the terminal",
		Long: `Present the configured steps in the terminal.

The run command loads the configuration, starts every provider the steps
need and cycles through the steps full-screen until you press q. Press s
to skip the current step.

When an HTTP address is configured (or given with --addr), the control API
accepts tweets, skip requests and property changes while the wall runs.
Log output goes to --log-file, since the terminal is taken by the wall.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWall(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "configuration file (default tweetwall.toml if present)")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "control API address, overrides http.addr")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file while the wall runs")

	return cmd
}

func (c *CLI) runWall(ctx context.Context, opts runOptions) error {
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.HTTP.Addr = opts.addr
	}

	var logOut io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}

	term := newTerminal(cfg.Canvas.Width, cfg.Canvas.Height)

	var w *wall.Wall
	err = spin(ctx, "Starting providers...", "Wall failed to start", func() error {
		var err error
		w, err = wall.Build(ctx, cfg, wall.Deps{Surface: term, Executor: term, Logger: c.Logger})
		return err
	})
	if err != nil {
		return err
	}
	defer w.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(newWallModel(term), tea.WithAltScreen(), tea.WithContext(runCtx))
	term.attach(program, w.Scheduler().RequestSkip)
	c.Logger.SetOutput(logOut)
	defer c.Logger.SetOutput(os.Stderr)

	if err := w.Start(runCtx); err != nil {
		return err
	}
	if cfg.HTTP.Addr != "" {
		go func() {
			if err := w.Serve(runCtx, cfg.HTTP.Addr); err != nil {
				c.Logger.Error("control API stopped", "err", err)
			}
		}()
	}

	_, runErr := program.Run()
	cancel()
	<-w.Done()

	if runErr != nil {
		if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return runErr
	}
	stats := w.Scheduler().Stats()
	printSuccess("Wall stopped after %d steps", stats.Executed)
	printDetail("skipped %d · timed out %d · failed %d", stats.Skipped, stats.TimedOut, stats.Failed)
	return nil
}
