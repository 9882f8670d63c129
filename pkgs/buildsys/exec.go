package buildsys

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/goplus/extbuild/internal/env"
)

// Outcome is what a finished tool invocation left behind.
type Outcome struct {
	// ExitCode is the tool's exit status, or -1 if it could not be started.
	ExitCode int
	// Output is the combined stdout and stderr, verbatim.
	Output []byte
}

// Runner executes tool invocations in the current working directory.
// Run blocks until the tool exits. It returns a non-nil error when the tool
// could not be started or exited non-zero; the Outcome is set either way.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Outcome, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	// Stdout receives tool output as it is produced, in addition to the
	// captured copy. Nil only captures.
	Stdout io.Writer
	// Env is overlaid on the process environment.
	Env map[string]string
}

// Run starts c and waits for it. ctx is consulted before the start only:
// once launched a tool always runs to completion.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return &Outcome{ExitCode: -1}, err
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if r.Stdout != nil {
		w = io.MultiWriter(&buf, r.Stdout)
	}
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Stdout = w
	cmd.Stderr = w
	if len(r.Env) > 0 {
		cmd.Env = env.Merge(os.Environ(), r.Env)
	}

	err := cmd.Run()
	out := &Outcome{Output: buf.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
		} else {
			out.ExitCode = -1
		}
		return out, err
	}
	return out, nil
}

// StepError reports a failed tool invocation together with the tool's own
// output, unmodified.
type StepError struct {
	Step     string
	// Kind classifies the failure for errors.Is; it may be nil.
	Kind     error
	Command  Command
	ExitCode int
	Output   []byte
	Err      error
}

func (e *StepError) Error() string {
	var msg string
	if e.ExitCode >= 0 {
		msg = fmt.Sprintf("%s step failed: %s exited with code %d", e.Step, e.Command.Name, e.ExitCode)
	} else {
		msg = fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
	}
	if len(e.Output) > 0 {
		return msg + "\n\nBuild output:\n" + string(e.Output)
	}
	return msg
}

func (e *StepError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}
