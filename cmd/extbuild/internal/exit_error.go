package internal

import (
	"errors"
	"fmt"

	"github.com/goplus/extbuild/pkgs/buildsys"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// withExitCode makes a failed tool step exit with the tool's own code.
func withExitCode(err error) error {
	var stepErr *buildsys.StepError
	if errors.As(err, &stepErr) && stepErr.ExitCode > 0 {
		return &ExitError{Code: stepErr.ExitCode, Err: err}
	}
	return err
}
