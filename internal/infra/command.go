// Package infra implements infrastructure concerns (processes, pickers, prompts, paths).
package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

// ExecRunner implements domain.CommandRunner with os/exec.
type ExecRunner struct {
	env []string // appended to the inherited environment
}

// NewCommandRunner creates a runner for parsing tool output; it forces the C locale
// so that text formats are stable.
func NewCommandRunner() *ExecRunner {
	return &ExecRunner{env: []string{"LC_ALL=C"}}
}

// NewInteractiveRunner creates a runner that keeps the user's locale, for pickers,
// prompts and user-configured commands that render glyphs.
func NewInteractiveRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) (domain.CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := domain.CommandResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if err == nil {
		return result, nil
	}

	result.ExitCode = -1
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, fmt.Errorf("%s: %w", name, err)
}

// LookPath reports whether name resolves on PATH.
func (r *ExecRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Ensure ExecRunner implements domain.CommandRunner.
var _ domain.CommandRunner = (*ExecRunner)(nil)
