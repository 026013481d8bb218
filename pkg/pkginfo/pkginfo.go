package pkginfo

import (
	"io"
	"os"

	"github.com/matzehuels/pacstage/pkg/errors"
)

// PkgInfo holds the contents of a .PKGINFO file.
type PkgInfo struct {
	PkgName     string   `json:"pkgname"`
	PkgBase     string   `json:"pkgbase,omitempty"`
	PkgVer      string   `json:"pkgver"`
	PkgDesc     string   `json:"pkgdesc,omitempty"`
	URL         string   `json:"url,omitempty"`
	BuildDate   int64    `json:"builddate,omitempty"`
	Packager    string   `json:"packager,omitempty"`
	Size        int64    `json:"size,omitempty"`
	Arch        []string `json:"arch,omitempty"`
	License     []string `json:"license,omitempty"`
	Group       []string `json:"group,omitempty"`
	Replaces    []string `json:"replaces,omitempty"`
	Conflict    []string `json:"conflict,omitempty"`
	Provides    []string `json:"provides,omitempty"`
	Backup      []string `json:"backup,omitempty"`
	Depend      []string `json:"depend,omitempty"`
	OptDepend   []string `json:"optdepend,omitempty"`
	MakeDepend  []string `json:"makedepend,omitempty"`
	CheckDepend []string `json:"checkdepend,omitempty"`
	XData       []string `json:"xdata,omitempty"`
}

// ParsePkgInfo parses .PKGINFO content.
func ParsePkgInfo(r io.Reader) (*PkgInfo, error) {
	p := &PkgInfo{}
	err := scanFields(r, "PkgInfo", func(key, value string) error {
		var err error
		switch key {
		case "pkgname":
			p.PkgName = value
		case "pkgbase":
			p.PkgBase = value
		case "pkgver":
			p.PkgVer = value
		case "pkgdesc":
			p.PkgDesc = value
		case "url":
			p.URL = value
		case "builddate":
			p.BuildDate, err = parseInt(key, value)
		case "packager":
			p.Packager = value
		case "size":
			p.Size, err = parseInt(key, value)
		case "arch":
			p.Arch = append(p.Arch, value)
		case "license":
			p.License = append(p.License, value)
		case "group":
			p.Group = append(p.Group, value)
		case "replaces":
			p.Replaces = append(p.Replaces, value)
		case "conflict":
			p.Conflict = append(p.Conflict, value)
		case "provides":
			p.Provides = append(p.Provides, value)
		case "backup":
			p.Backup = append(p.Backup, value)
		case "depend":
			p.Depend = append(p.Depend, value)
		case "optdepend":
			p.OptDepend = append(p.OptDepend, value)
		case "makedepend":
			p.MakeDepend = append(p.MakeDepend, value)
		case "checkdepend":
			p.CheckDepend = append(p.CheckDepend, value)
		case "xdata":
			p.XData = append(p.XData, value)
		default:
			return unknownKey("PkgInfo", key)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ReadPkgInfo parses the .PKGINFO file at path.
func ReadPkgInfo(path string) (*PkgInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "unable to read file: %s", path)
	}
	defer f.Close()

	p, err := ParsePkgInfo(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPkgInfo, err, "parse %s", path)
	}
	return p, nil
}
