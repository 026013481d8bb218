package pkginfo

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/pacstage/pkg/errors"
)

const bashPkgInfo = `# Generated by makepkg 6.1.0
# using fakeroot version 1.36
pkgname = bash
pkgbase = bash
xdata = pkgtype=pkg
pkgver = 5.2.037-1
pkgdesc = The GNU Bourne Again shell
url = https://www.gnu.org/software/bash/bash.html
builddate = 1736000000
packager = Some Packager <packager@example.org>
size = 9424175
arch = x86_64
license = GPL-3.0-or-later
provides = sh
backup = etc/bash.bashrc
backup = etc/bash.bash_logout
depend = readline>=7.0
depend = libreadline.so=8-64
depend = glibc
depend = ncurses
optdepend = bash-completion: for tab completion
`

func TestParsePkgInfo(t *testing.T) {
	p, err := ParsePkgInfo(strings.NewReader(bashPkgInfo))
	if err != nil {
		t.Fatalf("ParsePkgInfo() error: %v", err)
	}

	if p.PkgName != "bash" || p.PkgVer != "5.2.037-1" {
		t.Errorf("name/version = %s %s", p.PkgName, p.PkgVer)
	}
	if p.BuildDate != 1736000000 || p.Size != 9424175 {
		t.Errorf("builddate/size = %d %d", p.BuildDate, p.Size)
	}
	if want := []string{"readline>=7.0", "libreadline.so=8-64", "glibc", "ncurses"}; !slices.Equal(p.Depend, want) {
		t.Errorf("Depend = %v, want %v", p.Depend, want)
	}
	if !slices.Equal(p.Provides, []string{"sh"}) {
		t.Errorf("Provides = %v", p.Provides)
	}
	if len(p.Backup) != 2 {
		t.Errorf("Backup = %v", p.Backup)
	}
	if p.OptDepend[0] != "bash-completion: for tab completion" {
		t.Errorf("OptDepend = %v", p.OptDepend)
	}
}

func TestParsePkgInfoValueWithSeparator(t *testing.T) {
	p, err := ParsePkgInfo(strings.NewReader("pkgdesc = a = b\n"))
	if err != nil {
		t.Fatalf("ParsePkgInfo() error: %v", err)
	}
	if p.PkgDesc != "a = b" {
		t.Errorf("PkgDesc = %q, want %q", p.PkgDesc, "a = b")
	}
}

func TestParsePkgInfoEmptyValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"trailing space", "pkgname = x\npkgdesc = \n"},
		{"trimmed", "pkgname = x\npkgdesc =\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePkgInfo(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParsePkgInfo() error: %v", err)
			}
			if p.PkgName != "x" || p.PkgDesc != "" {
				t.Errorf("PkgName/PkgDesc = %q/%q, want x/empty", p.PkgName, p.PkgDesc)
			}
		})
	}
}

func TestParsePkgInfoErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown key", "pkgname = x\nflavour = mint\n", "flavour"},
		{"missing separator", "pkgname=x\n", "line 1"},
		{"bad size", "size = big\n", "size"},
		{"bad builddate", "builddate = yesterday\n", "builddate"},
		{"invalid utf-8", "pkgdesc = \xff\xfe\n", "utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePkgInfo(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("ParsePkgInfo() should fail")
			}
			if !errors.Is(err, errors.ErrCodeInvalidPkgInfo) {
				t.Errorf("error code = %q, want INVALID_PKGINFO", errors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParsePkgInfoSkipsCommentsAndBlankLines(t *testing.T) {
	p, err := ParsePkgInfo(strings.NewReader("# comment\n\npkgname = zlib\r\n\n"))
	if err != nil {
		t.Fatalf("ParsePkgInfo() error: %v", err)
	}
	if p.PkgName != "zlib" {
		t.Errorf("PkgName = %q, want zlib", p.PkgName)
	}
}

func TestReadPkgInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), PkgInfoFile)
	if err := os.WriteFile(path, []byte(bashPkgInfo), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := ReadPkgInfo(path)
	if err != nil {
		t.Fatalf("ReadPkgInfo() error: %v", err)
	}
	if p.PkgName != "bash" {
		t.Errorf("PkgName = %q", p.PkgName)
	}

	_, err = ReadPkgInfo(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}
