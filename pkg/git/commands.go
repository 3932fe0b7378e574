package git

import (
	"context"
	"strings"
)

// Commands provides the fixed set of git operations tidesync performs,
// all funneled through a Runner
type Commands struct {
	runner Runner
}

// NewCommands wraps a Runner
func NewCommands(runner Runner) *Commands {
	return &Commands{runner: runner}
}

// LsRemoteHeads lists the remote's branch heads without cloning. An empty
// listing with a zero exit means the remote has no commits yet.
func (c *Commands) LsRemoteHeads(ctx context.Context, dir, url string) (Result, error) {
	return c.runner.Run(ctx, dir, "ls-remote", "--heads", url)
}

// Clone clones url's branch into dir
func (c *Commands) Clone(ctx context.Context, dir, url, branch string) (Result, error) {
	return c.runner.Run(ctx, dir, "clone", "--branch", branch, url, ".")
}

// HasCommits reports whether the repository in dir has at least one commit
func (c *Commands) HasCommits(ctx context.Context, dir string) (bool, error) {
	res, err := c.runner.Run(ctx, dir, "rev-parse", "--verify", "--quiet", "HEAD")
	if err != nil {
		return false, err
	}
	return res.Success(), nil
}

// HeadCommit returns the commit hash of HEAD
func (c *Commands) HeadCommit(ctx context.Context, dir string) (string, Result, error) {
	res, err := c.runner.Run(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", res, err
	}
	return strings.TrimSpace(res.Stdout), res, nil
}

// StatusPorcelain returns the machine-readable worktree status
func (c *Commands) StatusPorcelain(ctx context.Context, dir string) (string, Result, error) {
	res, err := c.runner.Run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return "", res, err
	}
	return res.Stdout, res, nil
}

// AddAll stages every change in the worktree
func (c *Commands) AddAll(ctx context.Context, dir string) (Result, error) {
	return c.runner.Run(ctx, dir, "add", ".")
}

// Commit records staged changes with the given message
func (c *Commands) Commit(ctx context.Context, dir, message string) (Result, error) {
	return c.runner.Run(ctx, dir, "commit", "-m", message)
}

// PullRebase fetches the remote branch and replays local commits on top
func (c *Commands) PullRebase(ctx context.Context, dir, url, branch string) (Result, error) {
	return c.runner.Run(ctx, dir, "pull", "--rebase", url, branch)
}

// Push publishes local commits to the remote branch
func (c *Commands) Push(ctx context.Context, dir, url, branch string) (Result, error) {
	return c.runner.Run(ctx, dir, "push", url, "HEAD:"+branch)
}

// GC repacks and prunes the metadata so the snapshot stays small
func (c *Commands) GC(ctx context.Context, dir string) (Result, error) {
	return c.runner.Run(ctx, dir, "gc", "--aggressive", "--prune=now")
}
