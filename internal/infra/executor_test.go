package infra

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

func TestExecutor_ShellSuccess(t *testing.T) {
	runner := &scriptedRunner{result: domain.CommandResult{Stdout: []byte("done\n")}}
	e := NewExecutor(runner, backendMap{}, zap.NewNop())

	out, err := e.Run(context.Background(), domain.ShellRecipe("tailscale down"))
	require.NoError(t, err)
	assert.Equal(t, "done\n", out)
	assert.Equal(t, []string{"sh -c tailscale down"}, runner.calls)
}

func TestExecutor_ShellFailureCarriesExitCode(t *testing.T) {
	runner := &scriptedRunner{result: domain.CommandResult{Stderr: []byte("permission denied\n"), ExitCode: 4}}
	e := NewExecutor(runner, backendMap{}, zap.NewNop())

	_, err := e.Run(context.Background(), domain.ShellRecipe("tailscale down"))

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 4, execErr.ExitCode)
	assert.Equal(t, "tailscale down", execErr.Command)
	assert.Equal(t, "tailscale down: exit status 4: permission denied", err.Error())
}

func TestExecutor_ShellStartFailure(t *testing.T) {
	runner := &scriptedRunner{result: domain.CommandResult{ExitCode: -1}, err: errors.New("sh: not found")}
	e := NewExecutor(runner, backendMap{}, zap.NewNop())

	_, err := e.Run(context.Background(), domain.ShellRecipe("true"))

	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, -1, execErr.ExitCode)
	assert.Contains(t, err.Error(), "sh: not found")
}

func TestExecutor_EmptyCommand(t *testing.T) {
	runner := &scriptedRunner{}
	e := NewExecutor(runner, backendMap{}, zap.NewNop())

	_, err := e.Run(context.Background(), domain.ShellRecipe("  "))
	assert.Error(t, err)
	assert.Empty(t, runner.calls)
}

func TestExecutor_ApplyRoutesToBackend(t *testing.T) {
	wifi := &stubBackend{id: "networkmanager", source: domain.SourceWifi}
	e := NewExecutor(&scriptedRunner{}, backendMap{"networkmanager": wifi}, zap.NewNop())

	var hooked []string
	e.OnApply(func(_ context.Context, b domain.Backend, target string, err error) {
		hooked = append(hooked, b.ID()+"/"+target)
		assert.NoError(t, err)
	})

	_, err := e.Run(context.Background(), domain.ApplyRecipe("networkmanager", "Cafe"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cafe"}, wifi.applied)
	assert.Equal(t, []string{"networkmanager/Cafe"}, hooked)
}

func TestExecutor_ApplyErrorIsReturnedAndObserved(t *testing.T) {
	applyErr := &domain.ApplyFailedError{Backend: "bluetooth", Target: "AA", Reason: "Failed to connect"}
	bt := &stubBackend{id: "bluetooth", source: domain.SourceBluetooth, applyErr: applyErr}
	e := NewExecutor(&scriptedRunner{}, backendMap{"bluetooth": bt}, zap.NewNop())

	var observed error
	e.OnApply(func(_ context.Context, _ domain.Backend, _ string, err error) { observed = err })

	_, err := e.Run(context.Background(), domain.ApplyRecipe("bluetooth", "AA"))
	assert.Same(t, applyErr, err)
	assert.Same(t, applyErr, observed)
}

func TestExecutor_UnknownBackend(t *testing.T) {
	e := NewExecutor(&scriptedRunner{}, backendMap{}, zap.NewNop())

	_, err := e.Run(context.Background(), domain.ApplyRecipe("ghost", "x"))
	assert.True(t, errors.Is(err, domain.ErrUnknownBackend))
}

func TestExecutor_UnsupportedKind(t *testing.T) {
	e := NewExecutor(&scriptedRunner{}, backendMap{}, zap.NewNop())

	_, err := e.Run(context.Background(), domain.Recipe{Kind: domain.RecipeKind(42)})
	assert.Error(t, err)
}
