package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Result captures the outcome of one subprocess invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external tools with a bounded wait. The single production
// implementation shells out; tests substitute a scripted fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// SystemRunner runs commands via os/exec with a per-invocation timeout.
type SystemRunner struct {
	Timeout time.Duration
}

// NewRunner returns a SystemRunner with the given timeout. A zero timeout
// falls back to 30 seconds; every subprocess wait must be bounded.
func NewRunner(timeout time.Duration) *SystemRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SystemRunner{Timeout: timeout}
}

// Run executes name with args, capturing output and exit status. A non-zero
// exit is reported through Result.ExitCode with a nil error; err is reserved
// for failures to run at all (not found, timeout, cancelled).
func (r *SystemRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		if ctx.Err() != nil {
			result.ExitCode = -1
			return result, ctx.Err()
		}
		result.ExitCode = -1
		return result, err
	}

	return result, nil
}

// Succeeded reports whether the invocation ran and exited zero.
func (res Result) Succeeded() bool {
	return res.ExitCode == 0
}
