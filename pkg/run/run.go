// Package run abstracts external command execution behind an interface
// so every package-manager and editor invocation can be stubbed in tests.
package run

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/arthur-debert/devup/pkg/logging"
)

// ErrDryRunQuery is returned by DryRunner.Output. Query commands go
// through Output, so consult-then-act callers uniformly read the
// queried state as "absent" and the dry run previews every action.
var ErrDryRunQuery = errors.New("dry run: query not executed")

// Runner executes external commands. All provisioning side effects that
// shell out go through a Runner. Mutating commands use Run; read-only
// queries use Output, which is what lets the dry runner tell them apart.
type Runner interface {
	// Run executes a command, streaming its output to the operator.
	// A non-zero exit is returned as an error.
	Run(ctx context.Context, name string, args ...string) error

	// Output executes a command and returns its stdout.
	// A non-zero exit is returned as an error.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands via os/exec
type ExecRunner struct{}

// NewExecRunner creates the real command runner
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	logging.LogCommand(name, args)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	logging.LogCommand(name, args)

	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

// DryRunner logs commands without executing them, backing the --dry-run flag
type DryRunner struct{}

// NewDryRunner creates a runner that only logs
func NewDryRunner() *DryRunner {
	return &DryRunner{}
}

func (r *DryRunner) Run(ctx context.Context, name string, args ...string) error {
	logger := logging.GetLogger("run.dry")
	logger.Info().Str("command", name).Strs("args", args).Msg("Would execute")
	return nil
}

func (r *DryRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	logger := logging.GetLogger("run.dry")
	logger.Info().Str("command", name).Strs("args", args).Msg("Would query")
	return nil, ErrDryRunQuery
}
