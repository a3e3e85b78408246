package steps

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/provider"
	"github.com/matzehuels/tweetwall/pkg/scheduler"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

// Defaults are the per-type values of the common keys.
type Defaults struct {
	MinDuration time.Duration
	Animation   time.Duration
	UIThread    bool
}

// Base holds the configuration shared by all steps and implements the
// parts of scheduler.Step that depend only on it.
type Base struct {
	name        string
	requires    []provider.Kind
	minDuration time.Duration
	animation   time.Duration
	uiThread    bool
	skipIf      *scheduler.Predicate

	surface surface.Surface
	logger  *log.Logger
	now     func() time.Time
}

// NewBase reads the common keys from cfg. requires lists the kinds the step
// type always reads; the "requires" key may add more.
func NewBase(env scheduler.Env, name string, cfg scheduler.Config, requires []provider.Kind, def Defaults) (Base, error) {
	b := Base{
		name:     name,
		requires: append([]provider.Kind(nil), requires...),
		surface:  env.Surface,
		logger:   env.Logger,
		now:      env.Clock(),
	}
	if b.surface == nil {
		return Base{}, errors.New(errors.ErrCodeInvalidConfig, "step %q: no surface", name)
	}
	if b.logger == nil {
		b.logger = log.Default()
	}

	var err error
	if b.minDuration, err = cfg.Duration("min_duration", def.MinDuration); err != nil {
		return Base{}, err
	}
	if b.animation, err = cfg.Duration("animation", def.Animation); err != nil {
		return Base{}, err
	}
	if b.minDuration < 0 || b.animation < 0 {
		return Base{}, errors.New(errors.ErrCodeInvalidConfig, "step %q: negative duration", name)
	}
	if b.uiThread, err = cfg.Bool("ui_thread", def.UIThread); err != nil {
		return Base{}, err
	}

	extra, err := cfg.Strings("requires")
	if err != nil {
		return Base{}, err
	}
	for _, k := range extra {
		if err := errors.ValidateIdentifier("provider kind", k); err != nil {
			return Base{}, err
		}
		b.requires = append(b.requires, provider.Kind(k))
	}

	src, err := cfg.String("skip_if", "")
	if err != nil {
		return Base{}, err
	}
	if src != "" {
		if b.skipIf, err = scheduler.CompilePredicate(src); err != nil {
			return Base{}, err
		}
	}
	return b, nil
}

// Name implements scheduler.Step.
func (b *Base) Name() string { return b.name }

// Requires implements scheduler.Step.
func (b *Base) Requires() []provider.Kind { return b.requires }

// MinDuration implements scheduler.Step.
func (b *Base) MinDuration() time.Duration { return b.minDuration }

// UIThread implements scheduler.Step.
func (b *Base) UIThread() bool { return b.uiThread }

// scripted evaluates skip_if. Script errors are logged and mean "run".
func (b *Base) scripted(mc *scheduler.MachineContext) bool {
	if b.skipIf == nil {
		return false
	}
	skip, err := b.skipIf.Eval(mc, b.name, b.now())
	if err != nil {
		b.logger.Warn("skip_if failed", "step", b.name, "error", err)
		return false
	}
	return skip
}

// present shows scene and signals proceed, after the animation when one is
// configured.
func (b *Base) present(scene surface.Scene, proceed scheduler.Proceed) {
	scene.Step = b.name
	if b.animation > 0 {
		b.surface.Transition(scene, b.animation, proceed)
		return
	}
	b.surface.Show(scene)
	proceed()
}

func positive(cfg scheduler.Config, key string, def int) (int, error) {
	n, err := cfg.Int(key, def)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %d", key, n)
	}
	return n, nil
}
