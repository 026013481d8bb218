// Package pipeline provides the resolve → providers → stage pipeline for
// pacstage.
//
// This package implements the complete flow that is used by both the CLI and
// the HTTP API. By centralizing this logic, both entry points cache, record
// history and report progress the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Resolve: compute the dependency closure of the seed packages
//  2. Providers: map every dependency to a concrete installable package
//  3. Stage: write a plan into an isolated root and run the installer
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(source, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Seeds: []string{"base", "vim"},
//	    Root:  "/var/tmp/stage",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Plan.Packages)
//
// Run individual stages:
//
//	res, err := runner.Resolve(ctx, opts)
//	mapping, pkgs, err := runner.Providers(ctx, res.SortedUnique(), opts)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pacstage/pkg/deps"
	"github.com/matzehuels/pacstage/pkg/errors"
	"github.com/matzehuels/pacstage/pkg/render/nodelink"
	"github.com/matzehuels/pacstage/pkg/stage"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultClosureTTL is how long complete resolution results are cached.
	// Query answers use deps.DefaultCacheTTL.
	DefaultClosureTTL = 15 * time.Minute

	// MaxSeeds bounds the number of seeds per request.
	MaxSeeds = 256
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Resolve options
	Seeds    []string `json:"seeds"`
	MaxDepth int      `json:"max_depth,omitempty"`
	Sentinel string   `json:"sentinel,omitempty"`
	Unique   bool     `json:"unique,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"`

	// Stage options
	Root   string `json:"root,omitempty"`
	DryRun bool   `json:"dry_run,omitempty"`

	// Graph options
	GraphFormat string `json:"graph_format,omitempty"`
	Detailed    bool   `json:"detailed,omitempty"`

	// Logger receives progress output (default: the runner's logger).
	Logger *log.Logger `json:"-"`

	// Choose picks among several provider candidates. When nil the first
	// candidate wins.
	Choose func(dep string, candidates []string) (string, error) `json:"-"`

	// Command names the run in history (default: the stage that was run).
	Command string `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Resolution is the full traversal: visits and edges.
	Resolution *deps.Result

	// Packages is the emitted name list, in discovery order or sorted and
	// deduplicated when Options.Unique is set.
	Packages []string

	// Providers maps each dependency to its concrete package.
	Providers map[string]string

	// Installables is the sorted, deduplicated provider list.
	Installables []string

	// Plan is the staging plan, nil until the stage step ran.
	Plan *stage.Plan

	// Command is the installer argv that was (or in dry-run mode would be)
	// executed.
	Command []string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	VisitCount    int
	EdgeCount     int
	ResolveTime   time.Duration
	ProvidersTime time.Duration
	StageTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ResolveHit bool // Whether the resolution came from the closure cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateSeeds rejects seeds that are unsafe to hand to a package
// database (path traversal, control characters). Seed names are not
// otherwise checked: an empty list or blank seeds resolve to nothing.
func ValidateSeeds(seeds []string) error {
	if len(seeds) > MaxSeeds {
		return errors.New(errors.ErrCodeInvalidInput, "too many packages: %d (max %d)", len(seeds), MaxSeeds)
	}
	for _, s := range seeds {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if err := errors.ValidatePackageName(s); err != nil {
			return err
		}
	}
	return nil
}

// ValidateGraphFormat checks that a graph format is supported.
func ValidateGraphFormat(format string) error {
	for _, f := range nodelink.Formats {
		if f == format {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid graph format: %q (must be one of: dot, svg, pdf, png)", format)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForResolve checks seeds and applies resolve defaults.
func (o *Options) ValidateForResolve() error {
	if err := ValidateSeeds(o.Seeds); err != nil {
		return err
	}
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max depth cannot be negative")
	}
	if o.Sentinel == "" {
		o.Sentinel = deps.DefaultSentinel
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForStage checks the stage root on top of the resolve options.
func (o *Options) ValidateForStage() error {
	if err := o.ValidateForResolve(); err != nil {
		return err
	}
	return errors.ValidateStageRoot(o.Root)
}

// ValidateForGraph applies the graph format default and checks it.
func (o *Options) ValidateForGraph() error {
	if o.GraphFormat == "" {
		o.GraphFormat = nodelink.FormatDOT
	}
	return ValidateGraphFormat(o.GraphFormat)
}

// DepsOptions returns the resolver options.
func (o *Options) DepsOptions() deps.Options {
	logger := o.Logger
	return deps.Options{
		Sentinel: o.Sentinel,
		MaxDepth: o.MaxDepth,
		Logger: func(format string, args ...any) {
			if logger != nil {
				logger.Debugf(format, args...)
			}
		},
	}
}
