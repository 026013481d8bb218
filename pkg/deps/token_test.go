package deps

import "testing"

func TestStripConstraint(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"glibc", "glibc"},
		{"glibc>=2.38", "glibc"},
		{"glibc<=2.38", "glibc"},
		{"glibc>2", "glibc"},
		{"glibc<3", "glibc"},
		{"java-runtime=21", "java-runtime"},
		{"python>=3.11<3.13", "python"},
		{"libfoo.so=1-64", "libfoo.so"},
		{"", ""},
		{">=1", ""},
	}

	for _, tt := range tests {
		if got := StripConstraint(tt.token); got != tt.want {
			t.Errorf("StripConstraint(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestStripConstraintIdempotent(t *testing.T) {
	for _, tok := range []string{"a>=1", "b", "c<2=3", "d=1"} {
		once := StripConstraint(tok)
		if twice := StripConstraint(once); twice != once {
			t.Errorf("StripConstraint not idempotent for %q: %q then %q", tok, once, twice)
		}
		if HasConstraint(once) {
			t.Errorf("HasConstraint(%q) = true after stripping", once)
		}
	}
}

func TestHasConstraint(t *testing.T) {
	if !HasConstraint("foo>=2") {
		t.Error("HasConstraint(foo>=2) = false")
	}
	if HasConstraint("foo-bar_2.0") {
		t.Error("HasConstraint(foo-bar_2.0) = true")
	}
}
