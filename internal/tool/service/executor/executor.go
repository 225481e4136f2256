package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/Cyclone1070/secondbrain/internal/config"
)

// binarySampleSize is how many leading bytes of each stream are checked for binary content.
const binarySampleSize = 8000

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// OSCommandExecutor implements command execution using os/exec for real system commands.
// Commands are started directly from an argument vector; no shell is involved.
type OSCommandExecutor struct {
	config *config.Config
}

// NewOSCommandExecutor creates a new OSCommandExecutor with injected config.
func NewOSCommandExecutor(cfg *config.Config) *OSCommandExecutor {
	if cfg == nil {
		panic("cfg is required")
	}
	return &OSCommandExecutor{config: cfg}
}

// RunWithTimeout executes command in dir, buffering stdout and stderr separately.
//
// When timeout elapses the whole process group is killed and ErrTimeout is
// returned together with whatever output was captured. Cancelling ctx kills
// the process the same way and returns ctx.Err(). A non-zero exit is not an
// error: it is reported through Result.ExitCode. env nil inherits the
// current environment. Stdin is always closed.
func (f *OSCommandExecutor) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	maxBytes := int(f.config.Tools.MaxCommandOutputSize)
	stdout := newCollector(maxBytes, binarySampleSize)
	stderr := newCollector(maxBytes, binarySampleSize)

	cmd := exec.CommandContext(runCtx, command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Grandchildren may hold the pipes open after the kill; stop waiting for them after the grace period.
	cmd.WaitDelay = time.Duration(f.config.Tools.ProcessKillGraceMs) * time.Millisecond
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }

	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: command[0], Cause: err, Stage: "start"}
	}

	waitErr := cmd.Wait()

	res := &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}

	switch {
	case ctx.Err() != nil:
		res.ExitCode = -1
		return res, ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.ExitCode = -1
		return res, ErrTimeout
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if errors.Is(waitErr, exec.ErrWaitDelay) {
			return res, nil
		}
		res.ExitCode = -1
		return res, &CommandError{Cmd: command[0], Cause: waitErr, Stage: "execution"}
	}

	return res, nil
}
