// Package pkg provides the core libraries for pacstage.
//
// # Overview
//
// Pacstage computes the transitive dependency closure of pacman packages,
// maps virtual dependencies to the packages that provide them and stages the
// result into an isolated root. The pkg directory is organized into:
//
//  1. Domain logic: [deps], [pkginfo], [pacman], [stage]
//  2. Infrastructure: [cache], [history], [config], [observability]
//  3. Output: [render] and [render/nodelink]
//  4. Orchestration: [pipeline] and the HTTP surface in [api]
//
// # Architecture
//
// The typical data flow:
//
//	pacman/expac commands        directory of unpacked packages
//	   [pacman.Client]              [pkginfo.DB]
//	          \                        /
//	           [deps.CachedSource] (cache)
//	                    ↓
//	           [deps.Resolve] (breadth-first closure)
//	                    ↓
//	           [deps.ProviderResolver] (virtual → concrete)
//	                ↓                ↓
//	        [stage.Stager]     [nodelink.ToDOT]
//	                ↓                ↓
//	        staged root        DOT/SVG/PDF/PNG
//
// [pipeline.Runner] ties these together and records every run in a
// [history.Store].
//
// # Quick Start
//
//	db, _ := pkginfo.OpenDB(ctx, "/srv/packages")
//	res, _ := deps.Resolve(ctx, db, []string{"bash"}, deps.Options{})
//	for _, name := range res.Names() {
//	    fmt.Println(name)
//	}
//
// # Errors
//
// Every package returns [errors.Error] values carrying a stable code
// (PACKAGE_NOT_FOUND, INVALID_PKGINFO, ...) so callers can branch with
// [errors.Is] and the HTTP API can map codes to status codes.
//
// [deps]: github.com/matzehuels/pacstage/pkg/deps
// [pkginfo]: github.com/matzehuels/pacstage/pkg/pkginfo
// [pacman]: github.com/matzehuels/pacstage/pkg/pacman
// [stage]: github.com/matzehuels/pacstage/pkg/stage
// [cache]: github.com/matzehuels/pacstage/pkg/cache
// [history]: github.com/matzehuels/pacstage/pkg/history
// [config]: github.com/matzehuels/pacstage/pkg/config
// [observability]: github.com/matzehuels/pacstage/pkg/observability
// [render]: github.com/matzehuels/pacstage/pkg/render
// [render/nodelink]: github.com/matzehuels/pacstage/pkg/render/nodelink
// [pipeline]: github.com/matzehuels/pacstage/pkg/pipeline
// [api]: github.com/matzehuels/pacstage/pkg/api
// [pacman.Client]: github.com/matzehuels/pacstage/pkg/pacman#Client
// [pkginfo.DB]: github.com/matzehuels/pacstage/pkg/pkginfo#DB
// [deps.CachedSource]: github.com/matzehuels/pacstage/pkg/deps#CachedSource
// [deps.Resolve]: github.com/matzehuels/pacstage/pkg/deps#Resolve
// [deps.ProviderResolver]: github.com/matzehuels/pacstage/pkg/deps#ProviderResolver
// [stage.Stager]: github.com/matzehuels/pacstage/pkg/stage#Stager
// [nodelink.ToDOT]: github.com/matzehuels/pacstage/pkg/render/nodelink#ToDOT
// [pipeline.Runner]: github.com/matzehuels/pacstage/pkg/pipeline#Runner
// [history.Store]: github.com/matzehuels/pacstage/pkg/history#Store
// [errors.Error]: github.com/matzehuels/pacstage/pkg/errors#Error
// [errors.Is]: github.com/matzehuels/pacstage/pkg/errors#Is
package pkg
