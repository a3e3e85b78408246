package steps

import (
	"time"

	"github.com/matzehuels/tweetwall/pkg/cache"
	"github.com/matzehuels/tweetwall/pkg/layout"
	"github.com/matzehuels/tweetwall/pkg/provider"
	"github.com/matzehuels/tweetwall/pkg/scheduler"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

// WordCloud lays out the most frequent words. Each run starts from the
// previous solution so words that stay in the cloud do not move. The
// solution is also persisted in the cache to survive restarts.
type WordCloud struct {
	Base
	engine   *layout.Engine
	maxWords int
	minWords int
	title    string

	cache cache.Cache
	key   string
	ttl   time.Duration

	// prev is only touched from Run, which the scheduler never overlaps.
	prev   layout.Solution
	loaded bool
}

func newWordCloud(env scheduler.Env, name string, cfg scheduler.Config) (scheduler.Step, error) {
	base, err := NewBase(env, name, cfg, []provider.Kind{provider.KindWords}, Defaults{
		MinDuration: 15 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	s := &WordCloud{Base: base, cache: env.Cache}
	if s.maxWords, err = positive(cfg, "max_words", 40); err != nil {
		return nil, err
	}
	if s.minWords, err = positive(cfg, "min_words", 3); err != nil {
		return nil, err
	}
	if s.title, err = cfg.String("title", ""); err != nil {
		return nil, err
	}
	if s.ttl, err = cfg.Duration("cache_ttl", 24*time.Hour); err != nil {
		return nil, err
	}

	w, h := env.Width, env.Height
	if w <= 0 || h <= 0 {
		w, h = env.Surface.Size()
	}
	opts := layout.DefaultOptions(w, h)
	if opts.MinFontSize, err = cfg.Float("min_font", opts.MinFontSize); err != nil {
		return nil, err
	}
	if opts.MaxFontSize, err = cfg.Float("max_font", opts.MaxFontSize); err != nil {
		return nil, err
	}
	seed, err := cfg.Int("seed", 0)
	if err != nil {
		return nil, err
	}
	opts.Seed = uint64(seed)

	logo, err := cfg.Section("logo")
	if err != nil {
		return nil, err
	}
	if logo != nil {
		r, err := blockedRect(logo)
		if err != nil {
			return nil, err
		}
		opts.Blocked = append(opts.Blocked, r)
	}
	s.engine = layout.NewEngine(opts, base.logger)

	if s.cache != nil {
		keyer := env.Keyer
		if keyer == nil {
			keyer = cache.NewDefaultKeyer()
		}
		ko := cache.LayoutKeyOpts{Step: name, Width: w, Height: h}
		for _, b := range opts.Blocked {
			ko.Blocked = append(ko.Blocked, [4]float64{b.X, b.Y, b.W, b.H})
		}
		s.key = keyer.LayoutKey(ko)
	}
	return s, nil
}

// blockedRect reads a region given by its size and optional center.
func blockedRect(cfg scheduler.Config) (layout.Rect, error) {
	var vals [4]float64
	keys := [4]string{"x", "y", "width", "height"}
	for i, k := range keys {
		v, err := cfg.Float(k, 0)
		if err != nil {
			return layout.Rect{}, err
		}
		vals[i] = v
	}
	return layout.CenteredAt(vals[0], vals[1], vals[2], vals[3]), nil
}

// ShouldSkip skips until enough distinct words have been seen.
func (s *WordCloud) ShouldSkip(mc *scheduler.MachineContext) bool {
	if s.scripted(mc) {
		return true
	}
	f, err := scheduler.Lookup[*provider.WordFrequency](mc, provider.KindWords)
	return err != nil || len(f.Top(s.minWords)) < s.minWords
}

// Run computes the layout and shows it.
func (s *WordCloud) Run(mc *scheduler.MachineContext, proceed scheduler.Proceed) error {
	f, err := scheduler.Lookup[*provider.WordFrequency](mc, provider.KindWords)
	if err != nil {
		return err
	}
	ctx := mc.Context()
	if !s.loaded {
		s.loaded = true
		s.restore(mc)
	}

	res := s.engine.Layout(ctx, f.Top(s.maxWords), s.prev)
	s.prev = res.Solution()

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, cache.KeyTypeLayout, s.key, s.prev, s.ttl); err != nil {
			s.logger.Warn("failed to persist layout", "step", s.name, "error", err)
		}
	}

	s.present(surface.Scene{Kind: surface.KindWordCloud, Title: s.title, Words: res.Placements}, proceed)
	return nil
}

func (s *WordCloud) restore(mc *scheduler.MachineContext) {
	if s.cache == nil {
		return
	}
	var sol layout.Solution
	hit, err := cache.GetJSON(mc.Context(), s.cache, cache.KeyTypeLayout, s.key, &sol)
	if err != nil {
		s.logger.Warn("failed to load layout", "step", s.name, "error", err)
		return
	}
	if hit {
		s.logger.Debug("restored layout", "step", s.name, "words", len(sol))
		s.prev = sol
	}
}

// Solution returns the solution of the last run.
func (s *WordCloud) Solution() layout.Solution { return s.prev }
