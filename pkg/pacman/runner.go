package pacman

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its standard output.
//
// A command that ran and exited non-zero must be reported as an *ExitError;
// any other error means the command could not be run.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExitError reports a command that started but exited with a non-zero status.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with status %d: %s", e.Name, e.Code, e.Stderr)
	}
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

// IsExit reports whether err is, or wraps, an *ExitError.
func IsExit(err error) bool {
	var e *ExitError
	return stderrors.As(err, &e)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Env []string // Extra environment entries appended to the process environment
}

// Run executes name with args. Cancelling ctx kills the process.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	err := cmd.Run()
	if err == nil {
		return out.Bytes(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return out.Bytes(), &ExitError{
			Name:   name,
			Code:   exitErr.ExitCode(),
			Stderr: strings.TrimSpace(errBuf.String()),
		}
	}
	return nil, err
}

var _ Runner = ExecRunner{}
