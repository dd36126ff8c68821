package domain

import (
	"context"
	"io"
)

// Backend is a driver for one external connectivity subsystem.
// Implementations: tailscale exit nodes, tailscale control, NetworkManager, iwd,
// bluetoothctl, rfkill.
type Backend interface {
	// ID uniquely identifies the driver instance; recipes route back through it.
	ID() string

	// Source is the tag attached to every Action built from this driver.
	Source() Source

	// ListOptions queries the external tool once for its current options.
	// Fails with ErrBackendUnavailable when the tool is missing or unreachable.
	ListOptions(ctx context.Context) ([]BackendOption, error)

	// Apply makes the option with the given identifier current.
	// Fails with *ApplyFailedError, or ErrWrongCredentials for rejected secrets.
	Apply(ctx context.Context, id string) error

	// CurrentActive returns the identifier currently in effect, if any.
	CurrentActive(ctx context.Context) (string, bool, error)
}

// ActionSource supplies already-uniform static actions.
type ActionSource interface {
	// Actions returns the configured actions in configuration order.
	Actions() []Action
}

// Picker presents an ordered list and returns the chosen index.
type Picker interface {
	// Choose returns the selected index, or ErrCancelled.
	Choose(ctx context.Context, entries []string) (int, error)
}

// Executor is the execution sink for recipes.
type Executor interface {
	// Run executes the recipe to completion and returns captured output.
	Run(ctx context.Context, recipe Recipe) (string, error)
}

// CommandResult is the captured result of a finished process.
type CommandResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports a zero exit status.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CommandRunner runs external programs.
// Implementation: os/exec with LC_ALL=C.
type CommandRunner interface {
	// Run executes name with args, feeding stdin when non-nil.
	// A non-zero exit is reported in the result, not as an error; err is only set
	// when the process could not be started or was killed by ctx.
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) (CommandResult, error)

	// LookPath reports whether name is installed on PATH.
	LookPath(name string) bool
}

// SecretPrompter asks the user for a secret (Wi-Fi passphrase).
type SecretPrompter interface {
	// Prompt returns the secret, or ErrCancelled.
	Prompt(ctx context.Context, description string) (string, error)
}

// Notifier shows a desktop notification. Best effort.
type Notifier interface {
	Notify(summary, body string) error
}

// ProcessManager answers questions about running processes.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// FindByName returns PIDs of processes matching the pattern.
	FindByName(pattern string) ([]int, error)

	// IsRunning reports whether any process matches the pattern.
	IsRunning(pattern string) bool
}
