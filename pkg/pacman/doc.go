// Package pacman queries the host package databases through external
// commands and exposes them as a [deps.Source] and [deps.Catalog].
//
// Three queries are needed, each an argv template in [Commands]:
//
//   - Depends: direct dependencies of a package (expac by default)
//   - Search: packages matching a list of terms (pacman -Ssq)
//   - Known: whether a name is a concrete package (pacman -Si)
//
// Commands are executed through a [Runner] so tests and alternative hosts
// can substitute their own. A command that starts and exits non-zero means
// the package is unknown; a command that cannot start at all is fatal.
//
// [deps.Source]: github.com/matzehuels/pacstage/pkg/deps.Source
// [deps.Catalog]: github.com/matzehuels/pacstage/pkg/deps.Catalog
package pacman
