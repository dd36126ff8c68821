package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

// SecretPrompt asks for a passphrase on the terminal with echo disabled.
type SecretPrompt struct{}

// NewSecretPrompt creates the terminal secret prompt.
func NewSecretPrompt() *SecretPrompt {
	return &SecretPrompt{}
}

// Prompt returns the entered secret. Aborting or submitting nothing is ErrCancelled.
func (s *SecretPrompt) Prompt(ctx context.Context, description string) (string, error) {
	var secret string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(description).
			EchoMode(huh.EchoModePassword).
			Value(&secret),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
			return "", domain.ErrCancelled
		}
		return "", err
	}
	if secret == "" {
		return "", domain.ErrCancelled
	}
	return secret, nil
}

// Ensure SecretPrompt implements domain.SecretPrompter.
var _ domain.SecretPrompter = (*SecretPrompt)(nil)
