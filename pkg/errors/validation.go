package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
//
// Version constraint suffixes ("glibc>=2.38") are allowed; they are part of
// the raw dependency tokens reported by package databases.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// alpmNameRegex matches package and provides names: alphanumerics and @._+-
// with no leading hyphen or dot. Provides such as libGL.so may be mixed case.
var alpmNameRegex = regexp.MustCompile(`^[a-zA-Z0-9@_+][a-zA-Z0-9@._+-]*$`)

// ValidateAlpmPackageName validates a bare (constraint-free) pacman package name.
func ValidateAlpmPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !alpmNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid pacman package name: %q", name)
	}

	return nil
}

// ValidateStageRoot validates the directory packages are staged into.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Must not resolve to the filesystem root, which would install into the host
func ValidateStageRoot(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "stage root cannot be empty")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "stage root contains invalid characters")
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return Wrap(ErrCodeInvalidPath, err, "resolve stage root %q", path)
	}
	if abs == string(filepath.Separator) {
		return New(ErrCodeInvalidPath, "stage root cannot be the filesystem root")
	}

	return nil
}
