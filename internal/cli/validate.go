package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tweetwall/pkg/cache"
	"github.com/matzehuels/tweetwall/pkg/config"
	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/provider"
	"github.com/matzehuels/tweetwall/pkg/scheduler"
	"github.com/matzehuels/tweetwall/pkg/steps"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

// validateCommand creates the validate command for checking a configuration.
func (c *CLI) validateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate [config]",
		Short: "Check a configuration file without starting the wall",
		Long: `Check a configuration file without starting the wall.

The validate command parses the file, constructs every step from its
configuration and checks that a provider is registered for each kind the
steps read. No connections to Redis, MongoDB or HTTP sources are made.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				configPath = args[0]
			}
			return c.runValidate(configPath)
		},
	}
	return cmd
}

func (c *CLI) runValidate(path string) error {
	cfg, err := loadConfig(path)
	if err != nil {
		printError("Invalid configuration")
		return err
	}
	built, err := buildSteps(cfg, c.Logger)
	if err != nil {
		printError("Invalid step configuration")
		return err
	}
	kinds, err := checkProviders(cfg, built)
	if err != nil {
		printError("Missing provider")
		return err
	}

	printSuccess("Configuration is valid")
	names := make([]string, len(built))
	for i, s := range built {
		names[i] = s.Name()
	}
	printKeyValue("Steps", strings.Join(names, ", "))
	printKeyValue("Providers", joinKinds(kinds))
	printKeyValue("Canvas", fmt.Sprintf("%.0f×%.0f", cfg.Canvas.Width, cfg.Canvas.Height))
	printKeyValue("Timeout", time.Duration(cfg.Scheduler.ProceedTimeout).String())
	for _, w := range sourceWarnings(cfg, kinds) {
		printWarning("%s", w)
	}
	printNewline()
	cmd := appName + " run"
	if path != "" {
		cmd += " -c " + path
	}
	printNextStep("Start the wall", cmd)
	return nil
}

// buildSteps constructs the configured steps against an offscreen surface,
// which surfaces every step configuration error Build would report.
func buildSteps(cfg *config.Config, logger *log.Logger) ([]scheduler.Step, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	env := scheduler.Env{
		Surface: surface.NewRecorder(cfg.Canvas.Width, cfg.Canvas.Height),
		Cache:   cache.NewNullCache(),
		Keyer:   cache.NewDefaultKeyer(),
		Logger:  logger,
		Width:   cfg.Canvas.Width,
		Height:  cfg.Canvas.Height,
	}
	entries := make([]scheduler.Entry, len(cfg.Steps))
	for i, s := range cfg.Steps {
		entries[i] = scheduler.Entry{ID: s.ID, Name: s.Name, Config: s.Config}
	}
	return steps.NewRegistry().Build(env, entries)
}

// checkProviders returns the provider kinds the wall would load and fails
// if one of them has no registered factory.
func checkProviders(cfg *config.Config, built []scheduler.Step) ([]provider.Kind, error) {
	reg := provider.BuiltinRegistry(provider.Sources{})
	kinds := scheduler.KindsOf(built)
	for _, p := range cfg.Providers {
		if k := provider.Kind(p.Kind); !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		if _, ok := reg.Lookup(k); !ok {
			return nil, errors.New(errors.ErrCodeMissingFactory, "no provider registered for kind %q", k)
		}
	}
	return kinds, nil
}

// sourceWarnings names required providers whose source is not configured.
func sourceWarnings(cfg *config.Config, kinds []provider.Kind) []string {
	src := cfg.Sources
	var out []string
	if slices.Contains(kinds, provider.KindAgenda) && src.SessionsFile == "" && src.SessionsURL == "" {
		out = append(out, "agenda provider has no sessions_file or sessions_url")
	}
	if slices.Contains(kinds, provider.KindVotes) && src.VotesURL == "" {
		out = append(out, "votes provider has no votes_url")
	}
	return out
}

func joinKinds(kinds []provider.Kind) string {
	if len(kinds) == 0 {
		return "none"
	}
	s := make([]string, len(kinds))
	for i, k := range kinds {
		s[i] = string(k)
	}
	return strings.Join(s, ", ")
}
