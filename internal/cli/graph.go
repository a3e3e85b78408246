package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tweetwall/pkg/render"
)

// graphCommand creates the graph command for drawing step/provider wiring.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		configPath string
		output     string
		format     string
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw which providers each configured step reads from",
		Long: `Draw which providers each configured step reads from.

Steps are drawn in presentation order along the top row with an edge to
every provider kind they require. Providers that are configured but read
by no step are drawn dashed. The output is SVG rendered in-process with
Graphviz, or the DOT source with --format dot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), configPath, output, format, detailed)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (default tweetwall.toml if present)")
	cmd.Flags().StringVarP(&output, "output", "o", "tweetwall.svg", "output file, - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, dot")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show step type ids")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, configPath, output, format string, detailed bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	built, err := buildSteps(cfg, c.Logger)
	if err != nil {
		return err
	}

	nodes := make([]render.StepNode, len(built))
	for i, s := range built {
		nodes[i] = render.StepNode{Name: s.Name(), ID: cfg.Steps[i].ID}
		for _, k := range s.Requires() {
			nodes[i].Requires = append(nodes[i].Requires, string(k))
		}
	}
	opts := render.Options{Detailed: detailed}
	for _, p := range cfg.Providers {
		opts.Loaded = append(opts.Loaded, p.Kind)
	}
	dot := render.ToDOT(nodes, opts)

	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		err = spin(ctx, "Rendering graph...", "Rendering failed", func() error {
			var err error
			data, err = render.RenderSVG(ctx, dot)
			return err
		})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want svg or dot)", format)
	}

	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	printSuccess("Graph of %d steps", len(nodes))
	printFile(output)
	return nil
}
