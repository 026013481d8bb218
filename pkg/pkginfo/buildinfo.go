package pkginfo

import (
	"io"
	"os"

	"github.com/matzehuels/pacstage/pkg/errors"
)

// BuildInfo holds the contents of a .BUILDINFO file.
type BuildInfo struct {
	Format           int64    `json:"format"`
	PkgName          string   `json:"pkgname"`
	PkgBase          string   `json:"pkgbase,omitempty"`
	PkgVer           string   `json:"pkgver"`
	PkgArch          []string `json:"pkgarch,omitempty"`
	PkgbuildSHA256   string   `json:"pkgbuild_sha256sum,omitempty"`
	PkgbuildMD5      string   `json:"pkgbuild_md5sum,omitempty"`
	PkgbuildSHA1     string   `json:"pkgbuild_sha1sum,omitempty"`
	Packager         string   `json:"packager,omitempty"`
	BuildDate        int64    `json:"builddate,omitempty"`
	BuildDir         string   `json:"builddir,omitempty"`
	StartDir         string   `json:"startdir,omitempty"`
	BuildTool        string   `json:"buildtool,omitempty"`
	BuildToolVersion string   `json:"buildtoolver,omitempty"`
	BuildEnv         []string `json:"buildenv,omitempty"`
	Options          []string `json:"options,omitempty"`
	Installed        []string `json:"installed,omitempty"`
}

// ParseBuildInfo parses .BUILDINFO content.
func ParseBuildInfo(r io.Reader) (*BuildInfo, error) {
	b := &BuildInfo{}
	err := scanFields(r, "BuildInfo", func(key, value string) error {
		var err error
		switch key {
		case "format":
			b.Format, err = parseInt(key, value)
		case "pkgname":
			b.PkgName = value
		case "pkgbase":
			b.PkgBase = value
		case "pkgver":
			b.PkgVer = value
		case "pkgarch":
			b.PkgArch = append(b.PkgArch, value)
		case "pkgbuild_sha256sum":
			b.PkgbuildSHA256 = value
		case "pkgbuild_md5sum":
			b.PkgbuildMD5 = value
		case "pkgbuild_sha1sum":
			b.PkgbuildSHA1 = value
		case "packager":
			b.Packager = value
		case "builddate":
			b.BuildDate, err = parseInt(key, value)
		case "builddir":
			b.BuildDir = value
		case "startdir":
			b.StartDir = value
		case "buildtool":
			b.BuildTool = value
		case "buildtoolver":
			b.BuildToolVersion = value
		case "buildenv":
			b.BuildEnv = append(b.BuildEnv, value)
		case "options":
			b.Options = append(b.Options, value)
		case "installed":
			b.Installed = append(b.Installed, value)
		default:
			return unknownKey("BuildInfo", key)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ReadBuildInfo parses the .BUILDINFO file at path.
func ReadBuildInfo(path string) (*BuildInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "unable to read file: %s", path)
	}
	defer f.Close()

	b, err := ParseBuildInfo(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPkgInfo, err, "parse %s", path)
	}
	return b, nil
}
