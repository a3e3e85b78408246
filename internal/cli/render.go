package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tweetwall/pkg/content"
	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/render"
	"github.com/matzehuels/tweetwall/pkg/scheduler"
	"github.com/matzehuels/tweetwall/pkg/surface"
	"github.com/matzehuels/tweetwall/pkg/wall"
)

const (
	formatSVG  = "svg"
	formatJSON = "json"
)

type renderOptions struct {
	config   string
	output   string
	formats  []string
	duration time.Duration
	tweets   string
}

// renderCommand creates the render command, which runs the wall headlessly.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts       renderOptions
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Run the wall headlessly and write every scene to disk",
		Long: `Run the wall headlessly and write every scene to disk.

The render command builds the wall from the configuration with an offscreen
surface, runs the step loop for --duration and writes each scene shown as
SVG and/or JSON into the output directory, numbered in presentation order.

Tweets can be injected before the loop starts with --tweets, a file of
JSON tweets, one per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "configuration file (default tweetwall.toml if present)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "scenes", "output directory")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json (comma-separated)")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 30*time.Second, "how long to run the step loop")
	cmd.Flags().StringVar(&opts.tweets, "tweets", "", "JSON lines file of tweets to publish before starting")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts renderOptions) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(opts.config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	rec := surface.NewRecorder(cfg.Canvas.Width, cfg.Canvas.Height)
	defer rec.Stop()
	scenes := rec.Notify(256)

	exec := scheduler.NewLoopExecutor()
	defer exec.Close()

	w, err := wall.Build(ctx, cfg, wall.Deps{Surface: rec, Executor: exec, Logger: logger})
	if err != nil {
		return err
	}
	defer w.Close()

	if opts.tweets != "" {
		n, err := publishTweets(ctx, w.Publisher(), opts.tweets)
		if err != nil {
			return err
		}
		logger.Info("published tweets", "count", n, "file", opts.tweets)
	}

	runCtx, cancel := context.WithTimeout(ctx, opts.duration)
	defer cancel()

	prog := newProgress(logger)
	if err := w.Start(runCtx); err != nil {
		return err
	}

	var (
		files []string
		count int
	)
	write := func(s surface.Scene) error {
		count++
		written, err := writeScene(opts.output, count, s, opts.formats, cfg.Canvas.Width, cfg.Canvas.Height)
		files = append(files, written...)
		return err
	}

loop:
	for {
		select {
		case s := <-scenes:
			if err := write(s); err != nil {
				return err
			}
		case <-w.Done():
			break loop
		}
	}
	for len(scenes) > 0 {
		if err := write(<-scenes); err != nil {
			return err
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Rendered %d scenes", count))

	stats := w.Scheduler().Stats()
	printSuccess("Rendered %d scenes in %s", count, opts.duration)
	printDetail("executed %d · skipped %d · timed out %d · failed %d",
		stats.Executed, stats.Skipped, stats.TimedOut, stats.Failed)
	for _, f := range files {
		printFile(f)
	}
	return nil
}

// publishTweets reads JSON lines from path and publishes each tweet. Tweets
// without an id get a random one; tweets without a timestamp get now.
func publishTweets(ctx context.Context, pub content.Publisher, path string) (int, error) {
	if pub == nil {
		return 0, errors.New(errors.ErrCodeUnsupported, "the configured feed does not accept tweets")
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var t content.Tweet
		if err := json.Unmarshal([]byte(text), &t); err != nil {
			return n, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s:%d", path, line)
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		if err := pub.Publish(ctx, t); err != nil {
			return n, err
		}
		n++
	}
	return n, sc.Err()
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// writeScene writes scene n in each format and returns the written paths.
func writeScene(dir string, n int, s surface.Scene, formats []string, width, height float64) ([]string, error) {
	name := string(s.Kind)
	if s.Step != "" {
		name = unsafeName.ReplaceAllString(s.Step, "_")
	}
	base := filepath.Join(dir, fmt.Sprintf("%03d-%s", n, name))

	var out []string
	for _, format := range formats {
		var data []byte
		switch format {
		case formatSVG:
			data = render.SceneSVG(s, width, height)
		case formatJSON:
			var err error
			if data, err = json.MarshalIndent(s, "", "  "); err != nil {
				return out, err
			}
		}
		path := base + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return out, err
		}
		out = append(out, path)
	}
	return out, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains([]string{formatSVG, formatJSON}, f) {
			return errors.New(errors.ErrCodeUnsupported, "unknown format %q (want svg or json)", f)
		}
	}
	return nil
}
