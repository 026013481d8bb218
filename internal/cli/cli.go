// Package cli implements the pacstage command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pacstage/pkg/buildinfo"
	"github.com/matzehuels/pacstage/pkg/cache"
	"github.com/matzehuels/pacstage/pkg/config"
	"github.com/matzehuels/pacstage/pkg/deps"
	"github.com/matzehuels/pacstage/pkg/errors"
	"github.com/matzehuels/pacstage/pkg/history"
	"github.com/matzehuels/pacstage/pkg/pacman"
	"github.com/matzehuels/pacstage/pkg/pipeline"
	"github.com/matzehuels/pacstage/pkg/pkginfo"
	"github.com/matzehuels/pacstage/pkg/stage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Runner executes external commands. Tests replace it.
	Runner pacman.Runner

	configPath string
	backend    string
	pkgDir     string
	noCache    bool

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Runner: pacman.ExecRunner{},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pacstage resolves and stages package dependency closures",
		Long:         `Pacstage computes the transitive dependency closure of packages from a pacman package database or a directory of unpacked packages, maps virtual dependencies to concrete providers and stages the result into an isolated root.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			registerDebugHooks(c.Logger)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $"+config.EnvConfig+" or ~/.config/pacstage/config.toml)")
	flags.StringVar(&c.backend, "backend", "", "package database: pacman or pkgdir")
	flags.StringVar(&c.pkgDir, "pkgdir", "", "directory of unpacked packages (implies --backend pkgdir)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the query cache")

	// Register all subcommands
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.providersCommand())
	root.AddCommand(c.stageCommand())
	root.AddCommand(c.pkginfoCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the configuration file once and applies flag overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}

	if c.pkgDir != "" {
		cfg.PkgDir = c.pkgDir
		if c.backend == "" {
			cfg.Backend = config.BackendPkgDir
		}
	}
	if c.backend != "" {
		cfg.Backend = c.backend
	}
	if c.noCache {
		cfg.Cache.Backend = config.StoreNone
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The caller must Close it.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	src, keyer, err := c.newSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := c.newHistory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cc, err := c.newCache(ctx, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	runner := pipeline.NewRunner(src, cc, keyer, c.Logger)
	runner.TTL = cfg.Cache.TTL.Duration
	runner.History = store
	runner.Stager = &stage.Stager{
		Runner:  c.Runner,
		Install: cfg.Stage.Install,
	}
	return runner, nil
}

// newSource opens the configured package database. The returned keyer
// scopes cache entries to that database.
func (c *CLI) newSource(ctx context.Context, cfg *config.Config) (deps.Source, cache.Keyer, error) {
	switch cfg.Backend {
	case config.BackendPkgDir:
		prog := newProgress(c.Logger)
		db, err := pkginfo.OpenDB(ctx, cfg.PkgDir)
		if err != nil {
			return nil, nil, err
		}
		for _, s := range db.Skipped() {
			c.Logger.Warn("skipped package", "dir", s.Dir, "reason", errors.UserMessage(s.Reason))
		}
		prog.done(pluralize(db.Len(), "package") + " loaded from " + cfg.PkgDir)
		keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "pkgdir:"+cache.Hash([]byte(db.Root()))[:12]+":")
		return db, keyer, nil
	default:
		client := pacman.NewClient(c.Runner, cfg.Commands)
		return client, cache.NewScopedKeyer(cache.NewDefaultKeyer(), pacmanScope(cfg.Commands)), nil
	}
}

// pacmanScope keys cached closures by the command templates that produced
// them, so editing the templates never serves results from the old ones.
func pacmanScope(cmds pacman.Commands) string {
	cmds = cmds.WithDefaults()
	templates := strings.Join([]string{
		strings.Join(cmds.Depends, "\x00"),
		strings.Join(cmds.Search, "\x00"),
		strings.Join(cmds.Known, "\x00"),
	}, "\x01")
	return "pacman:" + cache.Hash([]byte(templates))[:12] + ":"
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.StoreNone:
		return cache.NewNullCache(), nil
	case config.StoreRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   appName + ":",
		})
	default:
		dir, err := cfg.CacheDirOrDefault()
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

func (c *CLI) newHistory(ctx context.Context, cfg *config.Config) (history.Store, error) {
	switch cfg.History.Backend {
	case config.StoreNone:
		return history.NewNullStore(), nil
	case config.StoreMongo:
		return history.NewMongoStore(ctx, history.MongoConfig{
			URI:        cfg.History.MongoURI,
			Database:   cfg.History.MongoDatabase,
			Collection: cfg.History.MongoCollection,
		})
	default:
		dir, err := cfg.HistoryDirOrDefault()
		if err != nil {
			return nil, err
		}
		return history.NewFileStore(dir)
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// resolveFlags holds the flags shared by resolve and stage.
type resolveFlags struct {
	maxDepth int
	refresh  bool
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 0, "stop expanding below this depth (0 = unlimited)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached answers and query the database again")
}

// options builds pipeline options from the shared flags and configuration.
func (c *CLI) options(ctx context.Context, seeds []string, f resolveFlags) (pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Seeds:    seeds,
		MaxDepth: f.maxDepth,
		Sentinel: cfg.Sentinel,
		Refresh:  f.refresh,
		Logger:   loggerFromContext(ctx),
	}, nil
}
