package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records one command invocation seen by a StubRunner
type Call struct {
	Name string
	Args []string
}

// String renders the call the way it would appear on a shell command line
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// StubRunner implements run.Runner, recording every invocation instead of
// executing it. Responses are keyed by command prefix so tests can script
// package-manager queries and assert install call counts.
type StubRunner struct {
	mu      sync.Mutex
	calls   []Call
	errors  map[string]error
	outputs map[string][]byte
}

// NewStubRunner creates an empty stub runner. Every command succeeds with
// no output until scripted otherwise.
func NewStubRunner() *StubRunner {
	return &StubRunner{
		errors:  make(map[string]error),
		outputs: make(map[string][]byte),
	}
}

// FailOn makes any command whose line starts with prefix return err
func (r *StubRunner) FailOn(prefix string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[prefix] = err
}

// OutputFor makes any Output call whose line starts with prefix return out
func (r *StubRunner) OutputFor(prefix string, out []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[prefix] = out
}

func (r *StubRunner) Run(ctx context.Context, name string, args ...string) error {
	r.record(name, args)
	return r.scriptedError(name, args)
}

func (r *StubRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.record(name, args)
	if err := r.scriptedError(name, args); err != nil {
		return nil, err
	}

	line := Call{Name: name, Args: args}.String()
	r.mu.Lock()
	defer r.mu.Unlock()
	for prefix, out := range r.outputs {
		if strings.HasPrefix(line, prefix) {
			return out, nil
		}
	}
	return nil, nil
}

// Calls returns a copy of all recorded invocations in order
func (r *StubRunner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallCount returns how many recorded invocations start with prefix
func (r *StubRunner) CallCount(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, c := range r.calls {
		if strings.HasPrefix(c.String(), prefix) {
			count++
		}
	}
	return count
}

func (r *StubRunner) record(name string, args []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make([]string, len(args))
	copy(copied, args)
	r.calls = append(r.calls, Call{Name: name, Args: copied})
}

func (r *StubRunner) scriptedError(name string, args []string) error {
	line := Call{Name: name, Args: args}.String()
	r.mu.Lock()
	defer r.mu.Unlock()
	for prefix, err := range r.errors {
		if strings.HasPrefix(line, prefix) {
			return fmt.Errorf("%s: %w", line, err)
		}
	}
	return nil
}
