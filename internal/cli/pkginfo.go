package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pacstage/pkg/errors"
	"github.com/matzehuels/pacstage/pkg/pkginfo"
)

// pkginfoCommand creates the pkginfo command group.
func (c *CLI) pkginfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pkginfo",
		Short: "Inspect unpacked package directories",
	}

	cmd.AddCommand(c.pkginfoShowCommand())
	cmd.AddCommand(c.pkginfoValidateCommand())

	return cmd
}

// pkginfoShowCommand creates the "pkginfo show" subcommand.
func (c *CLI) pkginfoShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <.PKGINFO|.BUILDINFO|package-dir>",
		Short: "Print the metadata of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "stat %s", path)
			}

			out := cmd.OutOrStdout()
			if info.IsDir() {
				pkg, err := pkginfo.FromDir(path)
				if err != nil {
					return err
				}
				writePkgInfo(out, pkg.PkgInfo)
				if pkg.BuildInfo != nil {
					fmt.Fprintln(out)
					writeBuildInfo(out, pkg.BuildInfo)
				}
				if pkg.MTree != nil {
					fmt.Fprintf(out, "\n%-14s %d\n", "files", len(pkg.MTree.Files()))
				}
				return nil
			}

			if filepath.Base(path) == pkginfo.BuildInfoFile {
				bi, err := pkginfo.ReadBuildInfo(path)
				if err != nil {
					return err
				}
				writeBuildInfo(out, bi)
				return nil
			}
			pi, err := pkginfo.ReadPkgInfo(path)
			if err != nil {
				return err
			}
			writePkgInfo(out, pi)
			return nil
		},
	}
}

// pkginfoValidateCommand creates the "pkginfo validate" subcommand.
func (c *CLI) pkginfoValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <package-dir>...",
		Short: "Check that directories are complete unpacked packages",
		Long: `Validate checks that every directory contains a .PKGINFO and a .MTREE and
that both parse. The command fails if any directory is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, dir := range args {
				pkg, err := pkginfo.FromDir(dir)
				if err != nil {
					failed++
					printError("%s: %s", dir, errors.UserMessage(err))
					continue
				}
				printSuccess("%s: %s %s", dir, pkg.Name(), pkg.PkgInfo.PkgVer)
			}
			if failed > 0 {
				return errors.New(errors.ErrCodeInvalidPkgInfo, "%d of %d packages failed to validate", failed, len(args))
			}
			return nil
		},
	}
}

func writePkgInfo(w io.Writer, p *pkginfo.PkgInfo) {
	field := func(k, v string) {
		if v != "" {
			fmt.Fprintf(w, "%-14s %s\n", k, v)
		}
	}
	list := func(k string, v []string) {
		if len(v) > 0 {
			field(k, strings.Join(v, " "))
		}
	}

	field("pkgname", p.PkgName)
	field("pkgbase", p.PkgBase)
	field("pkgver", p.PkgVer)
	field("pkgdesc", p.PkgDesc)
	field("url", p.URL)
	if p.BuildDate > 0 {
		field("builddate", time.Unix(p.BuildDate, 0).UTC().Format(time.RFC3339))
	}
	field("packager", p.Packager)
	if p.Size > 0 {
		field("size", strconv.FormatInt(p.Size, 10))
	}
	list("arch", p.Arch)
	list("license", p.License)
	list("group", p.Group)
	list("replaces", p.Replaces)
	list("conflict", p.Conflict)
	list("provides", p.Provides)
	list("backup", p.Backup)
	list("depend", p.Depend)
	list("optdepend", p.OptDepend)
	list("makedepend", p.MakeDepend)
	list("checkdepend", p.CheckDepend)
	list("xdata", p.XData)
}

func writeBuildInfo(w io.Writer, b *pkginfo.BuildInfo) {
	field := func(k, v string) {
		if v != "" {
			fmt.Fprintf(w, "%-14s %s\n", k, v)
		}
	}

	field("format", strconv.FormatInt(b.Format, 10))
	field("pkgname", b.PkgName)
	field("pkgbase", b.PkgBase)
	field("pkgver", b.PkgVer)
	field("pkgarch", strings.Join(b.PkgArch, " "))
	field("packager", b.Packager)
	if b.BuildDate > 0 {
		field("builddate", time.Unix(b.BuildDate, 0).UTC().Format(time.RFC3339))
	}
	field("builddir", b.BuildDir)
	field("buildtool", strings.TrimSpace(b.BuildTool+" "+b.BuildToolVersion))
	field("buildenv", strings.Join(b.BuildEnv, " "))
	field("options", strings.Join(b.Options, " "))
	if len(b.Installed) > 0 {
		field("installed", strconv.Itoa(len(b.Installed))+" packages")
	}
}
