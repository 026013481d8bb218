package pacman

import (
	"strings"

	"github.com/matzehuels/pacstage/pkg/errors"
)

// Placeholder is replaced by the package name (or search terms) in argv
// templates.
const Placeholder = "{}"

// Commands holds the argv templates for each query.
type Commands struct {
	Depends []string `toml:"depends"`
	Search  []string `toml:"search"`
	Known   []string `toml:"known"`
}

// DefaultCommands returns the expac/pacman templates.
func DefaultCommands() Commands {
	return Commands{
		Depends: []string{"expac", "-S", "-l", `\n`, "%D", Placeholder},
		Search:  []string{"pacman", "-Ssq", Placeholder},
		Known:   []string{"pacman", "-Si", Placeholder},
	}
}

// WithDefaults fills empty templates from DefaultCommands.
func (c Commands) WithDefaults() Commands {
	def := DefaultCommands()
	if len(c.Depends) == 0 {
		c.Depends = def.Depends
	}
	if len(c.Search) == 0 {
		c.Search = def.Search
	}
	if len(c.Known) == 0 {
		c.Known = def.Known
	}
	return c
}

// Validate checks that every template names a program and has a
// placeholder.
func (c Commands) Validate() error {
	for _, t := range []struct {
		name string
		argv []string
	}{
		{"depends", c.Depends},
		{"search", c.Search},
		{"known", c.Known},
	} {
		if len(t.argv) == 0 || strings.TrimSpace(t.argv[0]) == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "%s command is empty", t.name)
		}
		if !containsPlaceholder(t.argv[1:]) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s command has no %s placeholder", t.name, Placeholder)
		}
	}
	return nil
}

func containsPlaceholder(args []string) bool {
	for _, a := range args {
		if strings.Contains(a, Placeholder) {
			return true
		}
	}
	return false
}

// Expand substitutes values into an argv template. An argument that is
// exactly the placeholder expands to all values; an argument that embeds it
// gets the values joined by spaces.
func Expand(template []string, values ...string) (string, []string) {
	args := make([]string, 0, len(template)+len(values))
	for _, a := range template[1:] {
		switch {
		case a == Placeholder:
			args = append(args, values...)
		case strings.Contains(a, Placeholder):
			args = append(args, strings.ReplaceAll(a, Placeholder, strings.Join(values, " ")))
		default:
			args = append(args, a)
		}
	}
	return template[0], args
}
