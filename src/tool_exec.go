package main

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// runTool runs an external binary to completion and turns a failure into
// an *ExternalProcessError carrying the captured stderr.
func runTool(ctx context.Context, name, bin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	procErr := &ExternalProcessError{
		Tool:     name,
		ExitCode: -1,
		Stderr:   stderr.String(),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		procErr.ExitCode = exitErr.ExitCode()
	}
	return stdout.String(), procErr
}
