package infra

import (
	"context"
	"fmt"

	"github.com/twpayne/go-pinentry"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

// DefaultPinentry is the program used to ask for Wi-Fi passphrases.
const DefaultPinentry = "pinentry-gnome3"

// pinClient is the part of a pinentry session netmenu uses.
type pinClient interface {
	GetPIN() (pin string, fromCache bool, err error)
	Close() error
}

type pinClientFunc func(program, description string) (pinClient, error)

// PinentryPrompter implements domain.SecretPrompter with a pinentry program.
type PinentryPrompter struct {
	runner      domain.CommandRunner
	program     string
	open        pinClientFunc
	isCancelled func(error) bool
}

// NewPinentryPrompter creates a prompter using program (DefaultPinentry when empty).
func NewPinentryPrompter(runner domain.CommandRunner, program string) *PinentryPrompter {
	return newPinentryPrompterWithClient(runner, program, openPinentry)
}

func newPinentryPrompterWithClient(runner domain.CommandRunner, program string, open pinClientFunc) *PinentryPrompter {
	if program == "" {
		program = DefaultPinentry
	}
	return &PinentryPrompter{
		runner:      runner,
		program:     program,
		open:        open,
		isCancelled: pinentry.IsCancelled,
	}
}

func openPinentry(program, description string) (pinClient, error) {
	client, err := pinentry.NewClient(
		pinentry.WithBinaryName(program),
		pinentry.WithTitle("netmenu"),
		pinentry.WithDesc(description),
		pinentry.WithPrompt("Passphrase:"),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Available reports whether the pinentry program is installed.
func (p *PinentryPrompter) Available() bool {
	return p.runner.LookPath(p.program)
}

// Prompt asks for a secret; an empty answer or a dismissed dialog is ErrCancelled.
// When ctx ends first the dialog is left to close on its own.
func (p *PinentryPrompter) Prompt(ctx context.Context, description string) (string, error) {
	client, err := p.open(p.program, description)
	if err != nil {
		return "", fmt.Errorf("start %s: %w", p.program, err)
	}

	type answer struct {
		pin string
		err error
	}
	done := make(chan answer, 1)
	go func() {
		defer func() { _ = client.Close() }()
		pin, _, err := client.GetPIN()
		done <- answer{pin: pin, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-done:
		switch {
		case a.err != nil && p.isCancelled(a.err):
			return "", domain.ErrCancelled
		case a.err != nil:
			return "", fmt.Errorf("%s: %w", p.program, a.err)
		case a.pin == "":
			return "", domain.ErrCancelled
		}
		return a.pin, nil
	}
}

// Ensure PinentryPrompter implements domain.SecretPrompter.
var _ domain.SecretPrompter = (*PinentryPrompter)(nil)
