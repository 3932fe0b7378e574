// Package testutil provides shared test helpers: a scriptable fake git
// runner and working-tree builders.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/arthur-debert/tidesync/pkg/git"
)

// Call records one invocation against the fake runner
type Call struct {
	Dir  string
	Args []string
}

// Subcommand returns the git subcommand of the call
func (c Call) Subcommand() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// FakeRunner implements git.Runner with scripted results. Responses are
// looked up first by the full argument line, then by subcommand; unmatched
// calls succeed with an empty result.
type FakeRunner struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]git.Result
	queued    map[string][]git.Result
	errors    map[string]error
	onRun     map[string]func(dir string)
}

// NewFakeRunner creates an empty fake where every call succeeds
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		responses: make(map[string]git.Result),
		queued:    make(map[string][]git.Result),
		errors:    make(map[string]error),
		onRun:     make(map[string]func(dir string)),
	}
}

// Respond scripts the result for a subcommand or full argument line
// (e.g. "push" or "rev-parse --verify --quiet HEAD")
func (f *FakeRunner) Respond(key string, res git.Result) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[key] = res
	return f
}

// RespondQueue scripts a sequence of results for a key, consumed one per
// matching call; once drained the static Respond mapping applies again
func (f *FakeRunner) RespondQueue(key string, results ...git.Result) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued[key] = append(f.queued[key], results...)
	return f
}

// Fail scripts a process-level error (git missing, not a non-zero exit)
func (f *FakeRunner) Fail(key string, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[key] = err
	return f
}

// OnRun registers a side effect executed when the key matches, useful for
// simulating git mutating the filesystem
func (f *FakeRunner) OnRun(key string, fn func(dir string)) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onRun[key] = fn
	return f
}

// Run implements git.Runner
func (f *FakeRunner) Run(ctx context.Context, dir string, args ...string) (git.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Dir: dir, Args: append([]string(nil), args...)})

	full := strings.Join(args, " ")
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}

	for _, key := range []string{full, sub} {
		if fn, ok := f.onRun[key]; ok {
			fn(dir)
			break
		}
	}
	for _, key := range []string{full, sub} {
		if err, ok := f.errors[key]; ok {
			return git.Result{ExitCode: -1}, err
		}
	}
	for _, key := range []string{full, sub} {
		if queue, ok := f.queued[key]; ok && len(queue) > 0 {
			f.queued[key] = queue[1:]
			return queue[0], nil
		}
	}
	for _, key := range []string{full, sub} {
		if res, ok := f.responses[key]; ok {
			return res, nil
		}
	}
	return git.Result{}, nil
}

// Calls returns a copy of the recorded invocations
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Subcommands returns the sequence of git subcommands invoked
func (f *FakeRunner) Subcommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		subs = append(subs, c.Subcommand())
	}
	return subs
}

// CallCount returns how many times a subcommand was invoked
func (f *FakeRunner) CallCount(subcommand string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Subcommand() == subcommand {
			n++
		}
	}
	return n
}
