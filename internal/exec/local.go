// Package exec runs local shell commands for the resolution pipeline.
// Every call blocks until the child exits; there is no timeout.
package exec

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/ssup/ssup/internal/errors"
)

// Shell is the interpreter used for every command line.
var Shell = "/bin/sh"

// Result is the captured outcome of a local command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the command exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Options tune a single Capture call.
type Options struct {
	// Env entries (KEY=VALUE) appended to the inherited process environment.
	Env []string

	// Stderr receives the child's standard error. Defaults to os.Stderr.
	Stderr io.Writer
}

// Capture runs cmd through the shell and collects its standard output.
// A non-zero exit is reported in Result.ExitCode, not as an error; err is
// only returned when the child could not be started.
func Capture(cmd string, opts Options) (Result, error) {
	command := exec.Command(Shell, "-c", cmd)

	if len(opts.Env) > 0 {
		command.Env = append(os.Environ(), opts.Env...)
	}

	// Stderr is passed through and also kept for failure diagnostics.
	var stdout, stderr bytes.Buffer
	passthrough := opts.Stderr
	if passthrough == nil {
		passthrough = os.Stderr
	}
	command.Stdout = &stdout
	command.Stderr = io.MultiWriter(passthrough, &stderr)

	runErr := command.Run()
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			return Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), ExitCode: exitErr.ExitCode()}, nil
		}
		return Result{ExitCode: -1}, errors.WrapWithCode(runErr, errors.ErrSubprocess,
			fmt.Sprintf("Couldn't start %q", cmd),
			"Make sure "+Shell+" exists and the command is executable.")
	}

	return Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}
