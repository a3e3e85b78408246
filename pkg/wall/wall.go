// Package wall assembles a running tweet wall from its configuration: the
// content adapters, the data providers, the presentation steps and the
// scheduler, plus a small HTTP API to control it.
//
// Every configuration error surfaces from [Build]; once Build returns, the
// wall only logs runtime failures.
package wall

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/tweetwall/pkg/cache"
	"github.com/matzehuels/tweetwall/pkg/config"
	"github.com/matzehuels/tweetwall/pkg/content"
	"github.com/matzehuels/tweetwall/pkg/errors"
	"github.com/matzehuels/tweetwall/pkg/httputil"
	"github.com/matzehuels/tweetwall/pkg/provider"
	"github.com/matzehuels/tweetwall/pkg/scheduler"
	"github.com/matzehuels/tweetwall/pkg/steps"
	"github.com/matzehuels/tweetwall/pkg/surface"
)

// Deps are the collaborators Build does not construct from the
// configuration. Only Surface is required; every other field overrides
// what the configuration would otherwise create.
type Deps struct {
	Surface  surface.Surface
	Executor scheduler.Executor
	Logger   *log.Logger
	Now      func() time.Time

	Cache     cache.Cache
	Feed      content.Feed
	Publisher content.Publisher
	Archive   content.Archive
	Sessions  content.SessionSource
	Votes     content.VoteSource

	// Steps resolves step ids (default steps.NewRegistry()).
	Steps *scheduler.Registry
}

// Wall is an assembled wall.
type Wall struct {
	cfg    *config.Config
	logger *log.Logger
	runID  string
	now    func() time.Time

	scheduler *scheduler.Scheduler
	manager   *provider.Manager
	providers *provider.Set
	publisher content.Publisher
	cache     cache.Cache

	closers []func() error
}

// Build validates cfg and constructs the wall. It blocks until every
// provider that needs an initial refresh has completed one, or ctx ends.
func Build(ctx context.Context, cfg *config.Config, deps Deps) (_ *Wall, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Surface == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no surface")
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Steps == nil {
		deps.Steps = steps.NewRegistry()
	}

	w := &Wall{
		cfg:    cfg,
		logger: deps.Logger,
		runID:  uuid.NewString(),
		now:    deps.Now,
	}
	defer func() {
		if err != nil {
			w.Close()
		}
	}()

	var rdb *redis.Client
	if cfg.Sources.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Sources.RedisAddr})
		w.onClose(rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", cfg.Sources.RedisAddr)
		}
	}

	if w.cache, err = w.openCache(deps.Cache, rdb); err != nil {
		return nil, err
	}
	feed, err := w.openFeed(deps, rdb)
	if err != nil {
		return nil, err
	}
	archive, err := w.openArchive(ctx, deps.Archive)
	if err != nil {
		return nil, err
	}
	archiving := content.NewArchivingFeed(feed, archive, w.logger)
	w.onClose(archiving.Close)

	fetcher := httputil.NewClient(w.cache, time.Duration(cfg.Cache.TTL), nil)
	sources := provider.Sources{Sessions: deps.Sessions, Votes: deps.Votes}
	if sources.Sessions == nil {
		sources.Sessions = sessionSource(cfg.Sources, fetcher)
	}
	if sources.Votes == nil && cfg.Sources.VotesURL != "" {
		sources.Votes = content.HTTPVotes{URL: cfg.Sources.VotesURL, Fetcher: fetcher}
	}

	env := scheduler.Env{
		Surface: deps.Surface,
		Cache:   w.cache,
		Keyer:   cache.NewDefaultKeyer(),
		Logger:  w.logger,
		Now:     deps.Now,
		Width:   cfg.Canvas.Width,
		Height:  cfg.Canvas.Height,
	}
	stepList, err := deps.Steps.Build(env, stepEntries(cfg.Steps))
	if err != nil {
		return nil, err
	}
	required := scheduler.KindsOf(stepList)
	w.logger.Debug("resolved steps", "steps", len(stepList), "providers", required)

	w.manager = provider.NewManager(provider.BuiltinRegistry(sources), provider.Options{
		Feed:         archiving,
		Archive:      archive,
		HistoryLimit: cfg.Sources.HistoryLimit,
		Logger:       w.logger,
	})
	w.onClose(w.manager.Close)
	if w.providers, err = w.manager.Initialize(ctx, required, providerEntries(cfg.Providers)); err != nil {
		return nil, err
	}

	w.scheduler, err = scheduler.New(stepList, w.providers, scheduler.Options{
		ProceedTimeout: time.Duration(cfg.Scheduler.ProceedTimeout),
		Executor:       deps.Executor,
		Logger:         w.logger,
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func stepEntries(cfg []config.Step) []scheduler.Entry {
	out := make([]scheduler.Entry, len(cfg))
	for i, s := range cfg {
		out[i] = scheduler.Entry{ID: s.ID, Name: s.Name, Config: s.Config}
	}
	return out
}

func providerEntries(cfg []config.Provider) []provider.Entry {
	out := make([]provider.Entry, len(cfg))
	for i, p := range cfg {
		out[i] = provider.Entry{Kind: provider.Kind(p.Kind), Config: p.Config}
	}
	return out
}

func (w *Wall) onClose(fn func() error) { w.closers = append(w.closers, fn) }

func (w *Wall) openCache(override cache.Cache, rdb *redis.Client) (cache.Cache, error) {
	if override != nil {
		return override, nil
	}
	switch w.cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(rdb, ""), nil
	}
	fc, err := cache.NewFileCache(w.cfg.Cache.Dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open cache")
	}
	w.onClose(fc.Close)
	return fc, nil
}

func (w *Wall) openFeed(deps Deps, rdb *redis.Client) (content.Feed, error) {
	switch {
	case deps.Feed != nil:
		w.publisher = deps.Publisher
		if w.publisher == nil {
			w.publisher, _ = deps.Feed.(content.Publisher)
		}
		return deps.Feed, nil
	case rdb != nil:
		f := content.NewRedisFeed(rdb, w.cfg.Sources.RedisChannel, w.logger)
		w.onClose(f.Close)
		w.publisher = f
		return f, nil
	}
	hub := content.NewHub()
	w.publisher = hub
	return hub, nil
}

func (w *Wall) openArchive(ctx context.Context, override content.Archive) (content.Archive, error) {
	src := w.cfg.Sources
	switch {
	case override != nil:
		return override, nil
	case src.MongoURI != "":
		client, err := content.ConnectMongo(ctx, src.MongoURI)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
		}
		w.onClose(func() error { return client.Disconnect(context.Background()) })
		return content.NewMongoArchive(client, src.MongoDatabase, src.MongoCollection), nil
	case src.SQLitePath != "":
		a, err := content.OpenSQLiteArchive(src.SQLitePath)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open tweet archive")
		}
		w.onClose(a.Close)
		return a, nil
	}
	return content.NewMemoryArchive(max(src.HistoryLimit, provider.DefaultHistoryLimit)), nil
}

func sessionSource(src config.Sources, fetcher content.JSONFetcher) content.SessionSource {
	switch {
	case src.SessionsFile != "":
		return content.SessionFile{Path: src.SessionsFile}
	case src.SessionsURL != "":
		return content.HTTPSessions{URL: src.SessionsURL, Fetcher: fetcher}
	}
	return nil
}

// Start launches the scheduler loop.
func (w *Wall) Start(ctx context.Context) error {
	w.logger.Info("starting wall", "run", w.runID, "providers", w.providers.Kinds())
	return w.scheduler.Start(ctx)
}

// Done is closed when the scheduler loop has exited.
func (w *Wall) Done() <-chan struct{} { return w.scheduler.Done() }

// Scheduler returns the step scheduler.
func (w *Wall) Scheduler() *scheduler.Scheduler { return w.scheduler }

// Providers returns the initialized providers.
func (w *Wall) Providers() *provider.Set { return w.providers }

// Publisher injects tweets into the wall's live feed. It is nil when the
// feed was supplied without one.
func (w *Wall) Publisher() content.Publisher { return w.publisher }

// RunID identifies this process in logs and status output.
func (w *Wall) RunID() string { return w.runID }

// Close releases every resource Build opened, newest first.
func (w *Wall) Close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	w.closers = nil
	return stderrors.Join(errs...)
}
