// Package deps computes the transitive dependency closure of packages and
// maps dependencies to the concrete packages that provide them.
//
// # Overview
//
// Resolution consumes two things: a list of seed package names and a
// [Source] that answers "what are the direct dependencies of X". It produces
// every package reachable from the seeds, in breadth-first discovery order,
// with version constraints stripped.
//
// Sources live in other packages:
//
//   - [pacman]: external commands (expac, pacman) against the host databases
//   - [pkginfo]: a directory of unpacked packages with .PKGINFO files
//
// and may be wrapped by [CachedSource] to reuse answers between runs.
//
// # Traversal
//
// The traversal keeps a FIFO frontier of raw dependency tokens and a set of
// tokens already expanded:
//
//  1. The frontier starts with the seeds, in order
//  2. The head token is popped; if it was expanded before it is skipped
//  3. Otherwise its name (constraint stripped) is emitted, the raw token is
//     marked visited, and the tokens the source reports are appended
//  4. The sentinel ("None") and blank tokens are dropped
//
// The visited check compares raw tokens, so "foo" and "foo>=2" are expanded
// and emitted separately. [Result.SortedUnique] gives the deduplicated view.
//
// [Walk] exposes the traversal as a lazy iterator; [Resolve] runs it to
// completion and also records every reported [Edge].
//
// # Failures
//
// A source error carrying [errors.ErrCodePackageNotFound] means the package
// is unknown; it is treated as having no dependencies and reported through
// Options.Logger. Every other error aborts the traversal, and no partial
// result is returned.
//
// # Providers
//
// [ProviderResolver] turns a dependency into an installable package using a
// [Catalog]: packages the catalog knows provide themselves, anything else is
// searched for and the first hit wins, unless ProviderOptions.Choose is set.
//
// [pacman]: github.com/matzehuels/pacstage/pkg/pacman
// [pkginfo]: github.com/matzehuels/pacstage/pkg/pkginfo
// [errors.ErrCodePackageNotFound]: github.com/matzehuels/pacstage/pkg/errors.ErrCodePackageNotFound
package deps
