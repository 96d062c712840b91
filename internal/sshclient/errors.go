package sshclient

import (
	"errors"
	"fmt"
	"os/exec"
)

// SpawnError means the ssh or scp program could not be found or started.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	if errors.Is(e.Err, exec.ErrNotFound) {
		return fmt.Sprintf("%s not found in PATH", e.Program)
	}
	return fmt.Sprintf("start %s: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError carries a child's non-zero exit status up to main, which exits
// with the same code.
type ExitError struct {
	Program string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with %s", e.Program, exitStatusString(e.Code))
}
