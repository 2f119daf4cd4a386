// Package process spawns external toolchain commands (compilers, interpreters, compiled
// programs) and turns whatever happens into a pair of text streams.
//
// NO SHELL:
// Commands are started with exec.CommandContext(argv[0], argv[1:]...). Nothing is ever
// passed through /bin/sh, so nothing inside user source code or file names can change
// how the command line is parsed.
//
// FAILURE SHAPES:
// Run never returns a Go error. It distinguishes three failures and reports each with
// its own message in the stderr slot:
//
//	timeout    → "Execution timed out after <N> seconds"
//	not found  → "Command not found: <argv[0]>. Please ensure it is installed and in your PATH."
//	other      → "An unexpected error occurred: <message>"
//
// A nonzero exit code is NOT a failure here: the program's own stderr is returned as-is.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strconv"
	"time"
)

// Runner runs one command and returns its captured output.
type Runner interface {
	Run(ctx context.Context, argv []string) (stdout, stderr string)
}

// CommandRunner implements Runner on top of os/exec.
type CommandRunner struct {
	config Config
	logger *slog.Logger
}

var _ Runner = (*CommandRunner)(nil)

// New creates a CommandRunner. Zero values in cfg fall back to DefaultConfig.
func New(cfg Config, logger *slog.Logger) *CommandRunner {
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.WaitDelay <= 0 {
		cfg.WaitDelay = defaults.WaitDelay
	}
	return &CommandRunner{config: cfg, logger: logger}
}

// Timeout returns the per-process wall-clock limit.
func (r *CommandRunner) Timeout() time.Duration {
	return r.config.Timeout
}

// Run executes argv with the configured timeout.
func (r *CommandRunner) Run(ctx context.Context, argv []string) (string, string) {
	if len(argv) == 0 || argv[0] == "" {
		return "", UnexpectedMessage(errors.New("empty command"))
	}

	runCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	// Orphaned grandchildren can hold the pipes open after the kill; don't wait on them forever.
	cmd.WaitDelay = r.config.WaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		r.logger.Debug("command finished",
			slog.String("command", argv[0]),
			slog.Duration("duration", elapsed),
		)
		return stdout.String(), stderr.String()
	}

	// Order matters: a killed process also reports an *exec.ExitError.
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		r.logger.Warn("command timed out",
			slog.String("command", argv[0]),
			slog.Duration("timeout", r.config.Timeout),
		)
		return "", TimeoutMessage(r.config.Timeout)
	}

	if isNotFound(err) {
		r.logger.Warn("command not found", slog.String("command", argv[0]))
		return "", NotFoundMessage(argv[0])
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		r.logger.Debug("command exited with nonzero status",
			slog.String("command", argv[0]),
			slog.Int("exitCode", exitErr.ExitCode()),
			slog.Duration("duration", elapsed),
		)
		return stdout.String(), stderr.String()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	r.logger.Error("command failed",
		slog.String("command", argv[0]),
		slog.String("error", err.Error()),
	)
	return "", UnexpectedMessage(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// TimeoutMessage is the stderr text reported when a process exceeds its limit.
func TimeoutMessage(timeout time.Duration) string {
	return fmt.Sprintf("Execution timed out after %s seconds", FormatSeconds(timeout))
}

// NotFoundMessage is the stderr text reported when the executable can't be located.
func NotFoundMessage(name string) string {
	return fmt.Sprintf("Command not found: %s. Please ensure it is installed and in your PATH.", name)
}

// UnexpectedMessage is the stderr text for every other fault.
func UnexpectedMessage(err error) string {
	return fmt.Sprintf("An unexpected error occurred: %s", err.Error())
}

// FormatSeconds renders d in the shortest decimal form: 10s → "10", 2500ms → "2.5".
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
