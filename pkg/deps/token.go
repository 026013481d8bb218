package deps

import "strings"

// constraintOps are the characters that start a version constraint suffix.
const constraintOps = "<>="

// StripConstraint returns the package name part of a dependency token by
// cutting it at the first '<', '>' or '='.
//
//	StripConstraint("glibc>=2.38") == "glibc"
//	StripConstraint("sh")          == "sh"
//	StripConstraint("java-runtime=21") == "java-runtime"
//
// Tokens without a constraint pass through unchanged.
func StripConstraint(token string) string {
	if i := strings.IndexAny(token, constraintOps); i >= 0 {
		return token[:i]
	}
	return token
}

// HasConstraint reports whether token carries a version constraint suffix.
func HasConstraint(token string) bool {
	return strings.ContainsAny(token, constraintOps)
}
