package infra

import (
	"context"
	"io"
	"strings"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

// scriptedRunner returns one canned result and records what it was asked to run
type scriptedRunner struct {
	installed map[string]bool
	result    domain.CommandResult
	err       error

	calls []string
	stdin []string
}

func (r *scriptedRunner) Run(_ context.Context, stdin io.Reader, name string, args ...string) (domain.CommandResult, error) {
	r.calls = append(r.calls, strings.Join(append([]string{name}, args...), " "))
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		r.stdin = append(r.stdin, string(data))
	}
	return r.result, r.err
}

func (r *scriptedRunner) LookPath(name string) bool {
	return r.installed[name]
}

// stubBackend records applies
type stubBackend struct {
	id       string
	source   domain.Source
	applyErr error
	applied  []string
}

func (b *stubBackend) ID() string            { return b.id }
func (b *stubBackend) Source() domain.Source { return b.source }
func (b *stubBackend) ListOptions(context.Context) ([]domain.BackendOption, error) {
	return nil, nil
}
func (b *stubBackend) Apply(_ context.Context, id string) error {
	b.applied = append(b.applied, id)
	return b.applyErr
}
func (b *stubBackend) CurrentActive(context.Context) (string, bool, error) {
	return "", false, nil
}

// backendMap implements BackendLookup
type backendMap map[string]domain.Backend

func (m backendMap) Get(id string) (domain.Backend, bool) {
	b, ok := m[id]
	return b, ok
}
