// Package executor runs external collaborator commands and reports their
// outcome. It is the single point where relay shells out: verification tools,
// the container build tool, and the registry client are all invoked through
// it and judged by exit status alone.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Result holds the output and status of a completed command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Runner is the interface the orchestration core depends on. The concrete
// CommandRunner shells out; tests substitute function-field fakes.
type Runner interface {
	// Run executes program with args and the given options.
	Run(ctx context.Context, program string, args []string, opts ...Option) (*Result, error)

	// RunWithInput executes program with args, feeding input on stdin.
	// Used for commands that must receive sensitive values without
	// exposing them in the argument list.
	RunWithInput(ctx context.Context, input string, program string, args []string, opts ...Option) (*Result, error)
}

// Options configures a single command invocation.
type Options struct {
	// WorkingDir is the directory the command runs in. Empty means the
	// current process directory.
	WorkingDir string

	// Env holds variables appended to the current process environment.
	Env map[string]string

	// StdoutWriter and StderrWriter receive a live copy of the command's
	// output in addition to the captured buffers.
	StdoutWriter io.Writer
	StderrWriter io.Writer
}

// Option mutates Options.
type Option func(*Options)

// WithWorkingDir sets the directory the command runs in.
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnv appends environment variables to the command's environment.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}
		for k, v := range env {
			o.Env[k] = v
		}
	}
}

// WithEnvVar appends a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, 1)
		}
		o.Env[key] = value
	}
}

// WithStdoutWriter mirrors the command's stdout to w.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StdoutWriter = w
	}
}

// WithStderrWriter mirrors the command's stderr to w.
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StderrWriter = w
	}
}

// CommandRunner executes commands with os/exec.
type CommandRunner struct{}

// NewCommandRunner returns a Runner backed by os/exec.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

// Run implements Runner.
func (r *CommandRunner) Run(
	ctx context.Context,
	program string,
	args []string,
	opts ...Option,
) (*Result, error) {
	return r.RunWithInput(ctx, "", program, args, opts...)
}

// RunWithInput implements Runner.
func (r *CommandRunner) RunWithInput(
	ctx context.Context,
	input string,
	program string,
	args []string,
	opts ...Option,
) (*Result, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	cmd := exec.CommandContext(ctx, program, args...)
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}
	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = outputWriter(&stdoutBuf, options.StdoutWriter)
	cmd.Stderr = outputWriter(&stderrBuf, options.StderrWriter)

	err := cmd.Run()
	result := &Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
		Err:    err,
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		// Command never started (not found, bad workdir, cancelled).
		result.ExitCode = -1
	}

	if err != nil {
		return result, fmt.Errorf("command %s failed: %w", program, err)
	}
	return result, nil
}

func outputWriter(buf *bytes.Buffer, mirror io.Writer) io.Writer {
	if mirror == nil {
		return buf
	}
	return io.MultiWriter(buf, mirror)
}
