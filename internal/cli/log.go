// Package cli implements the pacstage command-line interface.
//
// This package provides commands for resolving dependency closures from a
// pacman database or a directory of unpacked packages, mapping virtual
// dependencies to providers, staging packages into an isolated root and
// inspecting package metadata. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - resolve: Print the dependency closure of packages
//   - providers: Map dependencies to concrete packages
//   - stage: Resolve, pick providers and install into a root
//   - pkginfo: Show and validate unpacked package directories
//   - history: List recorded runs
//   - cache: Manage the query cache
//   - serve: Run the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/pacstage/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pacstage/pkg/observability"
)

// newLogger writes "15:04:05.00"-stamped records to w at level and above.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long a step took, e.g. "4 packages loaded from ./pkgs (12ms)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the attached logger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// debugHooks logs every package database query and cache lookup at debug
// level, so -v shows what a resolution actually asked for.
type debugHooks struct {
	observability.NoopCacheHooks
	logger *log.Logger
}

func (h debugHooks) OnQuery(_ context.Context, kind, name string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("query", "kind", kind, "name", name, "took", d.Round(time.Microsecond), "err", err)
		return
	}
	h.logger.Debug("query", "kind", kind, "name", name, "took", d.Round(time.Microsecond))
}

func (h debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

// registerDebugHooks routes query and cache events to l.
func registerDebugHooks(l *log.Logger) {
	h := debugHooks{logger: l}
	observability.SetQueryHooks(h)
	observability.SetCacheHooks(h)
}
