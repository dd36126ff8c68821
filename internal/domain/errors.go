package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBackendUnavailable means the backend tool is missing, not running, or timed out.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrWrongCredentials means the backend rejected the supplied secret.
	ErrWrongCredentials = errors.New("wrong credentials")

	// ErrCancelled is returned by pickers and prompts when the user backs out.
	ErrCancelled = errors.New("cancelled")

	// ErrUnknownBackend means a recipe references a backend id nobody registered.
	ErrUnknownBackend = errors.New("unknown backend")
)

// Unavailable wraps reason as ErrBackendUnavailable for the given backend.
func Unavailable(backend, reason string) error {
	return fmt.Errorf("%s: %w: %s", backend, ErrBackendUnavailable, reason)
}

// ApplyFailedError reports that a backend could not apply an option.
type ApplyFailedError struct {
	Backend string
	Target  string
	Reason  string
	Err     error
}

func (e *ApplyFailedError) Error() string {
	msg := fmt.Sprintf("%s: apply %q failed", e.Backend, e.Target)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ApplyFailedError) Unwrap() error {
	return e.Err
}

// ExecutionError carries the exit status and stderr of a failed process.
type ExecutionError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	} else if e.Err != nil && e.ExitCode < 0 {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ConfigError is fatal: it pre-empts the whole run.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
