package pkginfo

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/pacstage/pkg/errors"
)

// Metadata file names inside a package directory.
const (
	PkgInfoFile   = ".PKGINFO"
	BuildInfoFile = ".BUILDINFO"
	MTreeFile     = ".MTREE"
)

// Package is an unpacked package directory.
type Package struct {
	Dir       string     `json:"dir"`
	Files     []string   `json:"files"`
	PkgInfo   *PkgInfo   `json:"pkginfo"`
	BuildInfo *BuildInfo `json:"buildinfo,omitempty"`
	MTree     *MTree     `json:"mtree,omitempty"`
}

// Name returns the package name from .PKGINFO.
func (p *Package) Name() string { return p.PkgInfo.PkgName }

// ValidateDir reports whether dir looks like an unpacked package: it must be
// a readable, non-empty directory containing .MTREE and .PKGINFO.
func ValidateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "unable to read directory: %s", dir)
	}
	if len(entries) == 0 {
		return errors.New(errors.ErrCodeInvalidPath, "%s: package contains no data", dir)
	}

	for _, name := range []string{MTreeFile, PkgInfoFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return errors.New(errors.ErrCodeFileNotFound, "%s: package is missing %s", dir, name)
		}
	}
	return nil
}

// FromDir validates and loads a package directory. A missing or malformed
// .BUILDINFO is tolerated and leaves BuildInfo nil.
func FromDir(dir string) (*Package, error) {
	if err := ValidateDir(dir); err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "package failed to validate: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "unable to read directory: %s", dir)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		files = append(files, filepath.Join(dir, e.Name()))
	}

	mtree, err := ReadMTree(filepath.Join(dir, MTreeFile))
	if err != nil {
		return nil, err
	}
	info, err := ReadPkgInfo(filepath.Join(dir, PkgInfoFile))
	if err != nil {
		return nil, err
	}
	if info.PkgName == "" {
		return nil, errors.New(errors.ErrCodeInvalidPkgInfo, "%s: .PKGINFO has no pkgname", dir)
	}
	build, _ := ReadBuildInfo(filepath.Join(dir, BuildInfoFile))

	return &Package{
		Dir:       dir,
		Files:     files,
		PkgInfo:   info,
		BuildInfo: build,
		MTree:     mtree,
	}, nil
}
