// Package git wraps invocations of the git binary behind a Runner
// interface so every component can be tested against a fake without a
// real remote. No retries and no timeouts: failures propagate as-is and
// git's own diagnostics are surfaced unmodified.
package git

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	tserrors "github.com/arthur-debert/tidesync/pkg/errors"
	"github.com/arthur-debert/tidesync/pkg/logging"
)

// Result captures the outcome of one git invocation
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the invocation exited zero
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes git operations. Run returns an error only when the
// process could not be started at all; a non-zero exit is reported
// through Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (Result, error)
}

// ShellRunner implements Runner by shelling out to the git command
type ShellRunner struct {
	// Echo mirrors git's output to the user's terminal while it is
	// being captured
	Echo bool
}

// NewShellRunner creates a runner that echoes git output to the terminal
func NewShellRunner() *ShellRunner {
	return &ShellRunner{Echo: true}
}

// Run executes git with the given arguments in dir
func (s *ShellRunner) Run(ctx context.Context, dir string, args ...string) (Result, error) {
	logging.LogCommand("git", args)

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	if s.Echo {
		cmd.Stdout = io.MultiWriter(&stdout, os.Stdout)
		cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := Result{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, tserrors.Wrap(err, tserrors.ErrGitNotFound, "failed to execute git")
	}
	return res, nil
}
