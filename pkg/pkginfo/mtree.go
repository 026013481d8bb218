package pkginfo

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/vbatts/go-mtree"

	"github.com/matzehuels/pacstage/pkg/errors"
)

// MTreeEntry is one file record of a .MTREE file. Keywords include the
// values inherited from /set lines.
type MTreeEntry struct {
	Path     string            `json:"path"`
	Keywords map[string]string `json:"keywords,omitempty"`
}

// Type returns the entry type keyword ("file", "dir", "link").
func (e MTreeEntry) Type() string { return e.Keywords["type"] }

// Size returns the size keyword, or 0 when absent.
func (e MTreeEntry) Size() int64 {
	n, _ := strconv.ParseInt(e.Keywords["size"], 10, 64)
	return n
}

// MTree is the parsed file list of a package.
type MTree struct {
	Entries []MTreeEntry `json:"entries"`
}

// Files returns the paths of entries with type=file.
func (m *MTree) Files() []string {
	var out []string
	for _, e := range m.Entries {
		if e.Type() == "file" {
			out = append(out, e.Path)
		}
	}
	return out
}

// ReadMTree parses the .MTREE file at path. The file is gzip-compressed, as
// written by makepkg; uncompressed files are accepted too.
func ReadMTree(path string) (*MTree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "unable to read %s", path)
	}

	var r io.Reader = bytes.NewReader(data)
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPkgInfo, err, "decompress %s", path)
		}
		defer zr.Close()
		r = zr
	}

	m, err := ParseMTree(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPkgInfo, err, "parse %s", path)
	}
	return m, nil
}

// ParseMTree parses uncompressed mtree content. Paths are vis-decoded and
// normalized to the "./" form makepkg writes.
func ParseMTree(r io.Reader) (*MTree, error) {
	dh, err := mtree.ParseSpec(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPkgInfo, err, "read mtree")
	}

	defaults := map[string]string{}
	m := &MTree{}
	for _, e := range dh.Entries {
		switch e.Type {
		case mtree.SpecialType:
			applySpecial(defaults, e)
			continue
		case mtree.FullType, mtree.RelativeType:
		default:
			continue
		}

		path, err := e.Path()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPkgInfo, err, "bad path %q", e.Name)
		}
		kw := make(map[string]string, len(defaults)+len(e.Keywords))
		for k, v := range defaults {
			kw[k] = v
		}
		for _, kv := range e.Keywords {
			kw[string(kv.Keyword())] = kv.Value()
		}
		m.Entries = append(m.Entries, MTreeEntry{Path: dotPath(path), Keywords: kw})
	}
	return m, nil
}

// applySpecial folds a /set or /unset line into the running defaults.
func applySpecial(defaults map[string]string, e mtree.Entry) {
	switch e.Name {
	case "/set":
		for _, kv := range e.Keywords {
			defaults[string(kv.Keyword())] = kv.Value()
		}
	case "/unset":
		for _, kv := range e.Keywords {
			if k := string(kv.Keyword()); k == "all" {
				clear(defaults)
			} else {
				delete(defaults, k)
			}
		}
	}
}

func dotPath(p string) string {
	p = strings.TrimPrefix(p, "./")
	if p == "." || p == "" {
		return "."
	}
	return "./" + p
}
