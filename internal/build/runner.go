package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// ErrToolNotFound indicates a required external executable is absent.
var ErrToolNotFound = errors.New("required tool not found")

// ErrBuildFailed indicates the build tool exited non-zero or produced no
// usable output artifact.
var ErrBuildFailed = errors.New("build failed")

// Runner abstracts subprocess execution for testability. Output is the
// combined stdout and stderr of the command.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (output string, exitCode int, err error)
}

// ExecRunner implements Runner by executing commands. If Stream is set,
// command output is additionally written there as it is produced.
type ExecRunner struct {
	Stream io.Writer
}

func (e *ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var buf bytes.Buffer
	var out io.Writer = &buf
	if e.Stream != nil {
		out = io.MultiWriter(&buf, e.Stream)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return buf.String(), -1, fmt.Errorf("exec %s: %w", name, err)
		}
	}
	return buf.String(), exitCode, nil
}
