package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pacstage/pkg/cache"
	"github.com/matzehuels/pacstage/pkg/deps"
	"github.com/matzehuels/pacstage/pkg/errors"
	"github.com/matzehuels/pacstage/pkg/history"
	"github.com/matzehuels/pacstage/pkg/render/nodelink"
	"github.com/matzehuels/pacstage/pkg/stage"
)

// Runner encapsulates pipeline execution with caching and history.
// Both CLI and API use this to avoid duplicating orchestration logic.
//
// The Runner stores no pipeline results. Multiple goroutines can safely
// use the same Runner with different options.
type Runner struct {
	Source  deps.Source   // Package database (pacman commands or a pkgdir)
	Cache   cache.Cache   // Query and closure cache
	Keyer   cache.Keyer   // Cache key derivation
	History history.Store // Run records
	Stager  *stage.Stager // Installer invocation
	Logger  *log.Logger
	TTL     time.Duration // Query answer TTL (default: deps.DefaultCacheTTL)
}

// NewRunner creates a runner over src.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// History and Stager default to a NullStore and a Stager without a runner,
// which only supports dry runs.
func NewRunner(src deps.Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source:  src,
		Cache:   c,
		Keyer:   keyer,
		History: history.NewNullStore(),
		Stager:  &stage.Stager{},
		Logger:  logger,
	}
}

// Execute runs the complete resolve → providers → stage pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForStage(); err != nil {
		return nil, err
	}

	run := history.NewRun(opts.commandOr("stage"), opts.Seeds)
	defer func() {
		if result != nil && result.Plan != nil {
			run.PlanID = result.Plan.ID
		}
		r.record(ctx, run, result.installables(), err, opts.Logger)
	}()

	result = &Result{}

	// Stage 1: Resolve
	if err := r.resolveInto(ctx, result, opts); err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	// Stage 2: Providers
	if err := r.providersInto(ctx, result, result.Resolution.SortedUnique(), opts); err != nil {
		return nil, fmt.Errorf("providers: %w", err)
	}

	// Stage 3: Stage
	stageStart := time.Now()
	plan, err := stage.NewPlan(opts.Root, opts.Seeds, result.Resolution.SortedUnique(), result.Providers, result.Installables)
	if err != nil {
		return nil, err
	}
	result.Plan = plan

	st := r.stager(opts)
	argv, err := st.Stage(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	result.Command = argv
	result.Stats.StageTime = time.Since(stageStart)

	opts.Logger.Info("staged packages",
		"root", plan.Root,
		"packages", len(plan.Packages),
		"dry_run", st.DryRun,
		"duration", result.Stats.StageTime)

	return result, nil
}

// Resolve computes the dependency closure of opts.Seeds and records the run.
func (r *Runner) Resolve(ctx context.Context, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForResolve(); err != nil {
		return nil, err
	}

	run := history.NewRun(opts.commandOr("resolve"), opts.Seeds)
	defer func() { r.record(ctx, run, result.packages(), err, opts.Logger) }()

	result = &Result{}
	if err := r.resolveInto(ctx, result, opts); err != nil {
		return nil, err
	}
	return result, nil
}

// Providers maps each dependency to a concrete package and records the run.
// The dependencies are taken as given; no resolution happens.
func (r *Runner) Providers(ctx context.Context, dependencies []string, opts Options) (result *Result, err error) {
	opts.Seeds = dependencies
	r.applyLogger(&opts)
	if err := opts.ValidateForResolve(); err != nil {
		return nil, err
	}

	run := history.NewRun(opts.commandOr("providers"), dependencies)
	defer func() { r.record(ctx, run, result.installables(), err, opts.Logger) }()

	result = &Result{}
	if err := r.providersInto(ctx, result, dependencies, opts); err != nil {
		return nil, err
	}
	return result, nil
}

// Graph resolves opts.Seeds and renders the dependency graph in
// opts.GraphFormat.
func (r *Runner) Graph(ctx context.Context, opts Options) (*Result, []byte, error) {
	if err := opts.ValidateForGraph(); err != nil {
		return nil, nil, err
	}
	opts.Command = opts.commandOr("graph")

	result, err := r.Resolve(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	dot := nodelink.ToDOT(result.Resolution, nodelink.Options{Detailed: opts.Detailed})
	data, err := nodelink.Render(dot, opts.GraphFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("render: %w", err)
	}
	return result, data, nil
}

// ResolveWithCacheInfo resolves dependencies with closure caching and
// reports whether the result came from the cache. No history is recorded.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, opts Options) (*deps.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForResolve(); err != nil {
		return nil, false, err
	}

	if r.Source == nil {
		return nil, false, errors.New(errors.ErrCodeInternal, "runner has no package source")
	}

	cacheKey := r.Keyer.ClosureKey(opts.Seeds, cache.ClosureKeyOpts{
		MaxDepth: opts.MaxDepth,
		Sentinel: opts.Sentinel,
	})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var res deps.Result
			if err := json.Unmarshal(data, &res); err == nil {
				return &res, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}

	res, err := deps.Resolve(ctx, r.source(opts), opts.Seeds, opts.DepsOptions())
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, DefaultClosureTTL); err != nil {
			opts.Logger.Warn("closure not cached", "err", err)
		}
	}
	return res, false, nil // Cache miss
}

// Close releases resources held by the runner (cache and history store).
func (r *Runner) Close() error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.History != nil {
		if err := r.History.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (r *Runner) resolveInto(ctx context.Context, result *Result, opts Options) error {
	start := time.Now()
	res, hit, err := r.ResolveWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}

	result.Resolution = res
	if opts.Unique {
		result.Packages = res.SortedUnique()
	} else {
		result.Packages = res.Names()
	}
	result.Stats.ResolveTime = time.Since(start)
	result.Stats.VisitCount = res.Len()
	result.Stats.EdgeCount = len(res.Edges)
	result.CacheInfo.ResolveHit = hit

	opts.Logger.Info("resolved dependencies",
		"packages", res.Len(),
		"edges", len(res.Edges),
		"cached", hit,
		"duration", result.Stats.ResolveTime)
	return nil
}

func (r *Runner) providersInto(ctx context.Context, result *Result, dependencies []string, opts Options) error {
	if r.Source == nil {
		return errors.New(errors.ErrCodeInternal, "runner has no package source")
	}

	start := time.Now()
	pr := deps.NewProviderResolver(r.source(opts), deps.ProviderOptions{
		Choose: opts.Choose,
		Logger: opts.Logger.Debugf,
	})
	mapping, pkgs, err := pr.Providers(ctx, dependencies)
	if err != nil {
		return err
	}

	result.Providers = mapping
	result.Installables = pkgs
	result.Stats.ProvidersTime = time.Since(start)

	opts.Logger.Info("resolved providers",
		"dependencies", len(mapping),
		"packages", len(pkgs),
		"duration", result.Stats.ProvidersTime)
	return nil
}

// source wraps the runner's source with the query cache for one run, so that
// opts.Refresh applies per call.
func (r *Runner) source(opts Options) *deps.CachedSource {
	return deps.NewCachedSource(r.Source, r.Cache, r.Keyer, deps.CacheOptions{
		TTL:     r.TTL,
		Refresh: opts.Refresh,
		Logger:  opts.Logger.Warnf,
	})
}

func (r *Runner) stager(opts Options) *stage.Stager {
	st := stage.Stager{}
	if r.Stager != nil {
		st = *r.Stager
	}
	st.DryRun = st.DryRun || opts.DryRun
	if st.Logger == nil {
		st.Logger = opts.Logger.Infof
	}
	return &st
}

// record stores run. A failing history store never fails the pipeline.
func (r *Runner) record(ctx context.Context, run *history.Run, packages []string, err error, logger *log.Logger) {
	if r.History == nil {
		return
	}
	run.Finish(packages, err)
	if serr := r.History.Save(context.WithoutCancel(ctx), run); serr != nil {
		logger.Warn("run not recorded", "id", run.ID, "err", serr)
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (o *Options) commandOr(name string) string {
	if o.Command != "" {
		return o.Command
	}
	return name
}

func (r *Result) packages() []string {
	if r == nil {
		return nil
	}
	return r.Packages
}

func (r *Result) installables() []string {
	if r == nil {
		return nil
	}
	return r.Installables
}
