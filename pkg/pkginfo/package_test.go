package pkginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pacstage/pkg/errors"
)

// testPkg describes a package directory for writePackage.
type testPkg struct {
	name      string
	depends   []string
	provides  []string
	buildinfo string
}

// writePackage creates an unpacked package directory under root.
func writePackage(t *testing.T, root string, p testPkg) string {
	t.Helper()
	dir := filepath.Join(root, p.name+"-1.0-1")
	if err := os.MkdirAll(filepath.Join(dir, "usr"), 0o755); err != nil {
		t.Fatal(err)
	}

	var info strings.Builder
	fmt.Fprintf(&info, "pkgname = %s\npkgver = 1.0-1\narch = x86_64\n", p.name)
	for _, d := range p.depends {
		fmt.Fprintf(&info, "depend = %s\n", d)
	}
	for _, prov := range p.provides {
		fmt.Fprintf(&info, "provides = %s\n", prov)
	}

	files := map[string][]byte{
		PkgInfoFile: []byte(info.String()),
		MTreeFile:   gzipBytes(t, "#mtree\n./.PKGINFO type=file size=10\n./usr type=dir\n"),
	}
	if p.buildinfo != "" {
		files[BuildInfoFile] = []byte(p.buildinfo)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestValidateDir(t *testing.T) {
	root := t.TempDir()
	valid := writePackage(t, root, testPkg{name: "bash"})

	empty := filepath.Join(root, "empty")
	if err := os.Mkdir(empty, 0o755); err != nil {
		t.Fatal(err)
	}

	noMTree := filepath.Join(root, "nomtree")
	if err := os.Mkdir(noMTree, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(noMTree, PkgInfoFile), []byte("pkgname = x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	noPkgInfo := filepath.Join(root, "nopkginfo")
	if err := os.Mkdir(noPkgInfo, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(noPkgInfo, MTreeFile), []byte("#mtree\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		dir      string
		wantCode errors.Code
		wantMsg  string
	}{
		{"valid", valid, "", ""},
		{"missing", filepath.Join(root, "missing"), errors.ErrCodeFileNotFound, "unable to read"},
		{"empty", empty, errors.ErrCodeInvalidPath, "no data"},
		{"no mtree", noMTree, errors.ErrCodeFileNotFound, ".MTREE"},
		{"no pkginfo", noPkgInfo, errors.ErrCodeFileNotFound, ".PKGINFO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDir(tt.dir)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("ValidateDir() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("ValidateDir() error = %v, want %s", err, tt.wantCode)
			}
			if err != nil && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestFromDir(t *testing.T) {
	root := t.TempDir()
	dir := writePackage(t, root, testPkg{
		name:      "bash",
		depends:   []string{"glibc", "readline>=7.0"},
		buildinfo: "format = 2\npkgname = bash\n",
	})

	p, err := FromDir(dir)
	if err != nil {
		t.Fatalf("FromDir() error: %v", err)
	}
	if p.Name() != "bash" {
		t.Errorf("Name() = %q", p.Name())
	}
	if len(p.Files) != 4 {
		t.Errorf("Files = %v, want 4 entries", p.Files)
	}
	if p.BuildInfo == nil || p.BuildInfo.Format != 2 {
		t.Errorf("BuildInfo = %+v", p.BuildInfo)
	}
	if p.MTree == nil || len(p.MTree.Entries) != 2 {
		t.Errorf("MTree = %+v", p.MTree)
	}
}

func TestFromDirToleratesBadBuildInfo(t *testing.T) {
	dir := writePackage(t, t.TempDir(), testPkg{name: "zlib", buildinfo: "garbage\n"})

	p, err := FromDir(dir)
	if err != nil {
		t.Fatalf("FromDir() error: %v", err)
	}
	if p.BuildInfo != nil {
		t.Errorf("BuildInfo = %+v, want nil", p.BuildInfo)
	}
}

func TestFromDirRejectsBadPkgInfo(t *testing.T) {
	dir := writePackage(t, t.TempDir(), testPkg{name: "zlib"})
	if err := os.WriteFile(filepath.Join(dir, PkgInfoFile), []byte("nonsense\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := FromDir(dir)
	if !errors.Is(err, errors.ErrCodeInvalidPkgInfo) {
		t.Errorf("FromDir() error = %v, want INVALID_PKGINFO", err)
	}
}

func TestFromDirInvalid(t *testing.T) {
	_, err := FromDir(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("FromDir() error = %v, want FILE_NOT_FOUND", err)
	}
	if !strings.Contains(err.Error(), "package failed to validate") {
		t.Errorf("error %q lacks context", err)
	}
}
