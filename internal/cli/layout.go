package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tweetwall/pkg/cache"
	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/layout"
)

const layoutCacheTTL = 7 * 24 * time.Hour

type layoutOptions struct {
	output  string
	prev    string
	save    string
	blocked []string
	noCache bool
	layout  layout.Options
}

// layoutCommand creates the layout command for placing words from a file.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOptions{layout: layout.DefaultOptions(1280, 720)}
	var seed uint64

	cmd := &cobra.Command{
		Use:   "layout [words.txt|words.json]",
		Short: "Place words from a file and write the cloud as SVG",
		Long: `Place words from a file and write the cloud as SVG.

The input is either a JSON array of {"text", "weight"} objects or a text
file with one word per line, optionally followed by its weight:

  golang 12
  gopher 7
  wall

Words keep the bounds they had in the previous solution (--prev, or the
cached solution for the same input and canvas) so repeated runs with
changing weights move as little as possible. The new solution is cached
and, with --save, written to a file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.layout.Seed = seed
			return c.runLayout(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.svg)")
	cmd.Flags().StringVar(&opts.prev, "prev", "", "previous solution to keep stable")
	cmd.Flags().StringVar(&opts.save, "save", "", "write the new solution to this file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	cmd.Flags().Float64Var(&opts.layout.Width, "width", opts.layout.Width, "canvas width")
	cmd.Flags().Float64Var(&opts.layout.Height, "height", opts.layout.Height, "canvas height")
	cmd.Flags().Float64Var(&opts.layout.MinFontSize, "min-font", opts.layout.MinFontSize, "font size of the lightest word")
	cmd.Flags().Float64Var(&opts.layout.MaxFontSize, "max-font", opts.layout.MaxFontSize, "font size of the heaviest word")
	cmd.Flags().StringSliceVar(&opts.blocked, "block", nil, "region to keep free as x,y,width,height (repeatable)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")

	return cmd
}

// runLayout loads the words, computes the placement, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts layoutOptions) error {
	logger := loggerFromContext(ctx)

	words, err := readWords(input)
	if err != nil {
		return err
	}
	for _, b := range opts.blocked {
		r, err := parseRect(b)
		if err != nil {
			return err
		}
		opts.layout.Blocked = append(opts.layout.Blocked, r)
	}

	store := newCache(opts.noCache)
	defer store.Close()
	key := layoutCacheKey(input, opts.layout)

	var (
		prev   layout.Solution
		cached bool
	)
	switch {
	case opts.prev != "":
		data, err := os.ReadFile(opts.prev)
		if err != nil {
			return fmt.Errorf("read previous solution: %w", err)
		}
		if prev, err = layout.UnmarshalSolution(data); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "previous solution %s", opts.prev)
		}
	default:
		if cached, err = cache.GetJSON(ctx, store, cache.KeyTypeLayout, key, &prev); err != nil {
			logger.Warn("failed to read cached solution", "error", err)
		}
	}

	prog := newProgress(logger)
	res := layout.NewEngine(opts.layout, logger).Layout(ctx, words, prev)
	prog.done(fmt.Sprintf("Placed %d words", len(res.Placements)))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := cache.SetJSON(ctx, store, cache.KeyTypeLayout, key, res.Solution(), layoutCacheTTL); err != nil {
		logger.Warn("failed to cache solution", "error", err)
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
	}
	if err := os.WriteFile(outputPath, layout.RenderSVG(res, opts.layout), 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	if opts.save != "" {
		data, err := layout.MarshalSolution(res.Solution())
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.save, data, 0o644); err != nil {
			return fmt.Errorf("write solution %s: %w", opts.save, err)
		}
		printFile(opts.save)
	}
	printStats(len(res.Placements), res.Reused(), cached)
	for _, text := range droppedWords(prev, res) {
		printDetail("dropped: %s", text)
	}

	if res.Finishing {
		printWarning("Canvas too small: some words were placed without checking for overlaps")
	}
	for _, o := range layout.Overlaps(res, opts.layout.Blocked) {
		printDetail("overlap: %s / %s", o.Item, o.Other)
	}
	return nil
}

// droppedWords lists the words of prev that res no longer places, sorted.
func droppedWords(prev layout.Solution, res layout.Result) []string {
	current := res.Solution()
	var out []string
	for _, text := range prev.Texts() {
		if _, ok := current[text]; !ok {
			out = append(out, text)
		}
	}
	return out
}

// layoutCacheKey identifies a solution by input file and canvas.
func layoutCacheKey(input string, opts layout.Options) string {
	abs, err := filepath.Abs(input)
	if err != nil {
		abs = input
	}
	ko := cache.LayoutKeyOpts{Step: "cli:" + abs, Width: opts.Width, Height: opts.Height}
	for _, b := range opts.Blocked {
		ko.Blocked = append(ko.Blocked, [4]float64{b.X, b.Y, b.W, b.H})
	}
	return cache.NewDefaultKeyer().LayoutKey(ko)
}

// readWords reads a JSON word list or a "word [weight]" text file.
func readWords(path string) ([]layout.Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read words: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var words []layout.Word
		if err := json.Unmarshal(data, &words); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
		}
		return words, nil
	}

	var words []layout.Word
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		w := layout.Word{Text: fields[0], Weight: 1}
		if len(fields) > 1 {
			if w.Weight, err = strconv.ParseFloat(fields[1], 64); err != nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "%s:%d: bad weight %q", path, line, fields[1])
			}
		}
		words = append(words, w)
	}
	return words, sc.Err()
}

// parseRect parses "x,y,width,height" where x,y is the region's centre.
func parseRect(s string) (layout.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return layout.Rect{}, errors.New(errors.ErrCodeInvalidInput, "region %q: want x,y,width,height", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return layout.Rect{}, errors.New(errors.ErrCodeInvalidInput, "region %q: bad number %q", s, p)
		}
		v[i] = f
	}
	if v[2] <= 0 || v[3] <= 0 {
		return layout.Rect{}, errors.New(errors.ErrCodeInvalidInput, "region %q: size must be positive", s)
	}
	return layout.CenteredAt(v[0], v[1], v[2], v[3]), nil
}
