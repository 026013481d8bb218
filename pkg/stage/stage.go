// Package stage populates an isolated root directory with a resolved set of
// packages for offline or sandboxed installation.
//
// A [Plan] records what will be installed and why: the seeds, the resolved
// dependency closure and the provider chosen for each dependency. [Stager]
// prepares the root layout, writes the plan into the root and runs the
// installer command against it.
package stage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pacstage/pkg/errors"
)

// Installer template placeholders.
const (
	PlaceholderRoot = "{root}"
	PlaceholderPkgs = "{pkgs}"
)

// PlanDir is the directory inside the staged root that holds the plan.
const PlanDir = ".pacstage"

// PlanFile is the plan's file name inside PlanDir.
const PlanFile = "plan.json"

// Layout lists the directories Prepare creates below the root.
var Layout = []string{
	"var/lib/pacman",
	"var/cache/pacman/pkg",
	"etc",
	"tmp",
	PlanDir,
}

// DefaultInstall returns the pacman invocation that installs into {root}.
func DefaultInstall() []string {
	return []string{
		"pacman",
		"--root", PlaceholderRoot,
		"--dbpath", PlaceholderRoot + "/var/lib/pacman",
		"--cachedir", PlaceholderRoot + "/var/cache/pacman/pkg",
		"-Sy", "--noconfirm", "--needed",
		PlaceholderPkgs,
	}
}

// ValidateInstall checks that an installer template names a program and
// references {pkgs}.
func ValidateInstall(argv []string) error {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "stage.install is empty")
	}
	for _, a := range argv[1:] {
		if a == PlaceholderPkgs {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidConfig, "stage.install must contain %s as a separate argument", PlaceholderPkgs)
}

// Plan is a staging decision: what gets installed into Root and why.
type Plan struct {
	ID           string            `json:"id"`
	Root         string            `json:"root"`
	Seeds        []string          `json:"seeds"`
	Dependencies []string          `json:"dependencies"`
	Providers    map[string]string `json:"providers"`
	Packages     []string          `json:"packages"`
	CreatedAt    time.Time         `json:"created_at"`
}

// NewPlan creates a plan with a fresh ID. Root is made absolute.
func NewPlan(root string, seeds, dependencies []string, providers map[string]string, packages []string) (*Plan, error) {
	if err := errors.ValidateStageRoot(root); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve stage root %q", root)
	}
	return &Plan{
		ID:           uuid.NewString(),
		Root:         abs,
		Seeds:        seeds,
		Dependencies: dependencies,
		Providers:    providers,
		Packages:     packages,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Path returns where the plan is written inside its root.
func (p *Plan) Path() string {
	return filepath.Join(p.Root, PlanDir, PlanFile)
}

// ReadPlan loads the plan stored in a staged root.
func ReadPlan(root string) (*Plan, error) {
	path := filepath.Join(root, PlanDir, PlanFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read plan")
	}
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse plan %s", path)
	}
	return &p, nil
}

// Runner executes the installer. pacman.ExecRunner satisfies it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Stager installs plans into their roots.
type Stager struct {
	Runner  Runner
	Install []string             // Installer template (default: DefaultInstall)
	DryRun  bool                 // Prepare and write the plan, skip the installer
	Logger  func(string, ...any) // Progress callback (optional)
}

// Prepare creates the root layout.
func (s *Stager) Prepare(root string) error {
	if err := errors.ValidateStageRoot(root); err != nil {
		return err
	}
	for _, dir := range Layout {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	return nil
}

// Stage prepares the plan's root, writes the plan and runs the installer.
// It returns the installer argv that was (or, in dry-run mode, would have
// been) executed.
func (s *Stager) Stage(ctx context.Context, plan *Plan) ([]string, error) {
	if len(plan.Packages) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to stage")
	}
	if err := s.Prepare(plan.Root); err != nil {
		return nil, err
	}
	if err := writePlan(plan); err != nil {
		return nil, err
	}
	s.logf("wrote plan %s", plan.Path())

	argv, err := s.Command(plan)
	if err != nil {
		return nil, err
	}
	if s.DryRun {
		s.logf("dry run: %s", strings.Join(argv, " "))
		return argv, nil
	}
	if s.Runner == nil {
		return nil, errors.New(errors.ErrCodeInternal, "stager has no runner")
	}

	s.logf("installing %d packages into %s", len(plan.Packages), plan.Root)
	if _, err := s.Runner.Run(ctx, argv[0], argv[1:]...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Wrap(errors.ErrCodeCommandFailed, err, "install into %s", plan.Root)
	}
	return argv, nil
}

// Command expands the installer template for plan.
func (s *Stager) Command(plan *Plan) ([]string, error) {
	tmpl := s.Install
	if len(tmpl) == 0 {
		tmpl = DefaultInstall()
	}
	if err := ValidateInstall(tmpl); err != nil {
		return nil, err
	}

	argv := make([]string, 0, len(tmpl)+len(plan.Packages))
	for _, a := range tmpl {
		if a == PlaceholderPkgs {
			argv = append(argv, plan.Packages...)
			continue
		}
		argv = append(argv, strings.ReplaceAll(a, PlaceholderRoot, plan.Root))
	}
	return argv, nil
}

func (s *Stager) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger(format, args...)
	}
}

func writePlan(plan *Plan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal plan")
	}
	if err := os.WriteFile(plan.Path(), data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write plan")
	}
	return nil
}
