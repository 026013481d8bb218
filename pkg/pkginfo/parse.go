package pkginfo

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/pacstage/pkg/errors"
)

// separator splits keys from values in metadata files. makepkg writes
// "key = value"; the space after it may be trimmed when the value is empty.
const separator = " ="

// scanFields calls fn for every key/value line of a metadata file.
func scanFields(r io.Reader, kind string, fn func(key, value string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if !utf8.ValidString(line) {
			return errors.New(errors.ErrCodeInvalidPkgInfo, "%s line %d: invalid utf-8", kind, n)
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, separator)
		if !ok {
			return errors.New(errors.ErrCodeInvalidPkgInfo, "%s line %d: missing %q in %q", kind, n, separator, line)
		}
		value = strings.TrimPrefix(value, " ")
		if err := fn(key, value); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPkgInfo, err, "%s line %d", kind, n)
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPkgInfo, err, "read %s", kind)
	}
	return nil
}

func parseInt(key, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidPkgInfo, err, "%s: not an integer: %q", key, value)
	}
	return v, nil
}

func unknownKey(kind, key string) error {
	return errors.New(errors.ErrCodeInvalidPkgInfo, "%s: unrecognized key name for %s", key, kind)
}
