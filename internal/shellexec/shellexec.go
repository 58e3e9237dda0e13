package shellexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	simerrors "github.com/montysim/simdeploy/pkg/errors"
)

// Command describes one external provisioning command invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Stdin string
	Env   map[string]string
}

// Display returns the command line used in logs and error messages.
func (c Command) Display() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result captures stdout/stderr and the exit status of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout and stderr joined, for conflict classification
// against output that providers emit on either stream.
func (r Result) Combined() string {
	switch {
	case r.Stdout == "":
		return r.Stderr
	case r.Stderr == "":
		return r.Stdout
	default:
		return r.Stdout + "\n" + r.Stderr
	}
}

// Primary returns stderr if present, otherwise stdout.
func (r Result) Primary() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Runner executes external commands. Implementations must populate the
// Result even when the command fails so diagnostic output is never lost.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Local runs commands as child processes of the CLI.
type Local struct {
	// Stream mirrors command output to the parent's stdout/stderr while
	// still capturing it for classification.
	Stream bool
}

var _ Runner = (*Local)(nil)

// Run executes cmd and blocks until it returns. A non-zero exit yields a
// *errors.CommandError alongside the populated Result.
func (l *Local) Run(ctx context.Context, cmd Command) (Result, error) {
	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	proc.Dir = cmd.Dir
	proc.Env = buildEnv(cmd.Env)
	if cmd.Stdin != "" {
		proc.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	if l != nil && l.Stream {
		proc.Stdout = io.MultiWriter(os.Stdout, &stdoutBuf)
		proc.Stderr = io.MultiWriter(os.Stderr, &stderrBuf)
	} else {
		proc.Stdout = &stdoutBuf
		proc.Stderr = &stderrBuf
	}

	err := proc.Run()

	result := Result{
		Stdout: strings.TrimSpace(stdoutBuf.String()),
		Stderr: strings.TrimSpace(stderrBuf.String()),
	}

	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, simerrors.NewCommandError(cmd.Display(), result.ExitCode, result.Combined(), err)
	}

	// The command never started (binary missing, context cancelled).
	result.ExitCode = -1
	return result, simerrors.NewCommandError(cmd.Display(), result.ExitCode, result.Combined(), err)
}

// Shell wraps a script in the best available POSIX shell so callers can
// express pipelines (registry login) as a single command.
func Shell(script string) Command {
	name, args := determineShell()
	return Command{Name: name, Args: append(args, script)}
}

func determineShell() (string, []string) {
	if path, err := exec.LookPath("bash"); err == nil {
		return path, []string{"-c"}
	}
	return "sh", []string{"-c"}
}

func buildEnv(custom map[string]string) []string {
	env := os.Environ()
	for k, v := range custom {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	return env
}
