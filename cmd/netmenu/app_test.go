package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/netmenu/internal/config"
	"github.com/eliteGoblin/netmenu/internal/domain"
	"github.com/eliteGoblin/netmenu/internal/infra"
	"github.com/eliteGoblin/netmenu/internal/tui"
)

// scriptedCycles returns the given outcomes in order
type scriptedCycles struct {
	outcomes []*domain.Outcome
	calls    int
}

func (s *scriptedCycles) Run(context.Context) *domain.Outcome {
	o := s.outcomes[s.calls]
	if s.calls < len(s.outcomes)-1 {
		s.calls++
	}
	return o
}

func wrongCredentials() *domain.Outcome {
	return &domain.Outcome{State: domain.StateFailed, Err: errors.Join(errors.New("networkmanager"), domain.ErrWrongCredentials)}
}

func TestRunCycles_RetriesOnWrongCredentials(t *testing.T) {
	s := &scriptedCycles{outcomes: []*domain.Outcome{
		wrongCredentials(),
		{State: domain.StateSucceeded},
	}}

	outcome := runCycles(context.Background(), s, maxCredentialAttempts, zap.NewNop())

	assert.Equal(t, domain.StateSucceeded, outcome.State)
	assert.Equal(t, 1, s.calls)
}

func TestRunCycles_GivesUpAfterMax(t *testing.T) {
	counter := &countingCycles{outcome: wrongCredentials()}

	outcome := runCycles(context.Background(), counter, 3, zap.NewNop())

	assert.Equal(t, domain.StateFailed, outcome.State)
	assert.Equal(t, 3, counter.calls)
}

func TestRunCycles_OtherFailureIsFinal(t *testing.T) {
	counter := &countingCycles{outcome: &domain.Outcome{State: domain.StateFailed, Err: errors.New("boom")}}

	runCycles(context.Background(), counter, 3, zap.NewNop())

	assert.Equal(t, 1, counter.calls)
}

type countingCycles struct {
	outcome *domain.Outcome
	calls   int
}

func (c *countingCycles) Run(context.Context) *domain.Outcome {
	c.calls++
	return c.outcome
}

type stubRunner struct {
	installed map[string]bool
}

func (r stubRunner) Run(context.Context, io.Reader, string, ...string) (domain.CommandResult, error) {
	return domain.CommandResult{}, nil
}

func (r stubRunner) LookPath(name string) bool { return r.installed[name] }

func TestNewPicker(t *testing.T) {
	cfg := config.Default()
	withDmenu := stubRunner{installed: map[string]bool{"dmenu": true}}
	without := stubRunner{}

	p, err := newPicker(cfg, withDmenu, true, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &infra.ExternalPicker{}, p)

	p, err = newPicker(cfg, without, true, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &tui.Picker{}, p)

	p, err = newPicker(cfg, without, false, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &infra.ExternalPicker{}, p)

	cfg.Picker = config.PickerTerminal
	p, err = newPicker(cfg, withDmenu, false, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &tui.Picker{}, p)

	cfg.Picker = config.PickerExternal
	cfg.DmenuArgs = `-p "unterminated`
	_, err = newPicker(cfg, withDmenu, false, zap.NewNop())
	assert.Error(t, err)
}

func TestNewSecretPrompter(t *testing.T) {
	pin := stubRunner{installed: map[string]bool{infra.DefaultPinentry: true}}

	assert.IsType(t, &infra.PinentryPrompter{}, newSecretPrompter(pin, false))
	assert.IsType(t, &tui.SecretPrompt{}, newSecretPrompter(stubRunner{}, true))
	assert.Nil(t, newSecretPrompter(stubRunner{}, false))
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(summary, body string) error {
	n.messages = append(n.messages, summary+": "+body)
	return nil
}

type sourceOnly struct {
	source domain.Source
}

func (s sourceOnly) ID() string            { return string(s.source) }
func (s sourceOnly) Source() domain.Source { return s.source }
func (s sourceOnly) ListOptions(context.Context) ([]domain.BackendOption, error) {
	return nil, nil
}
func (s sourceOnly) Apply(context.Context, string) error { return nil }
func (s sourceOnly) CurrentActive(context.Context) (string, bool, error) {
	return "", false, nil
}

func TestMullvadHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("You are connected to Mullvad (server se-got-wg-001).\n"))
	}))
	defer srv.Close()

	notifier := &recordingNotifier{}
	hook := mullvadHook(infra.NewMullvadCheckerWithURL(srv.URL), notifier, zap.NewNop())

	hook(context.Background(), sourceOnly{domain.SourceBluetooth}, "AA", nil)
	hook(context.Background(), sourceOnly{domain.SourceExitNode}, "se", errors.New("failed"))
	assert.Empty(t, notifier.messages)

	hook(context.Background(), sourceOnly{domain.SourceExitNode}, "se", nil)
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "Mullvad: You are connected to Mullvad (server se-got-wg-001).", notifier.messages[0])
}

func TestReport(t *testing.T) {
	var stdout, stderr bytes.Buffer
	notifier := &recordingNotifier{}

	report(&domain.Outcome{State: domain.StateSucceeded, Output: "hello\n"}, notifier, &stdout, &stderr)
	assert.Equal(t, "hello\n", stdout.String())
	assert.Empty(t, notifier.messages)

	action := &domain.Action{Display: "Disable tailscale"}
	report(&domain.Outcome{
		State:  domain.StateFailed,
		Action: action,
		Err:    &domain.ExecutionError{Command: "tailscale down", ExitCode: 1, Stderr: "permission denied"},
	}, notifier, &stdout, &stderr)
	assert.Contains(t, stderr.String(), "netmenu: Disable tailscale: tailscale down: exit status 1: permission denied")
	require.Len(t, notifier.messages, 1)

	stderr.Reset()
	report(&domain.Outcome{State: domain.StateCancelled}, notifier, &stdout, &stderr)
	assert.Empty(t, stderr.String())
}

func TestExitErrorUnwraps(t *testing.T) {
	cfgErr := &domain.ConfigError{Path: "/x", Err: errors.New("bad")}
	err := error(&exitError{code: 2, err: cfgErr})

	var target *domain.ConfigError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "exit status 3", (&exitError{code: 3}).Error())
}
