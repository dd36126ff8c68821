package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

// mockBackend implements domain.Backend for testing
type mockBackend struct {
	id      string
	source  domain.Source
	options []domain.BackendOption
	listErr error
	delay   time.Duration
	panics  bool

	mu      sync.Mutex
	applied []string
}

func (m *mockBackend) ID() string            { return m.id }
func (m *mockBackend) Source() domain.Source { return m.source }

func (m *mockBackend) ListOptions(ctx context.Context) ([]domain.BackendOption, error) {
	if m.panics {
		panic("driver bug")
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.options, m.listErr
}

func (m *mockBackend) Apply(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied = append(m.applied, id)
	return nil
}

func (m *mockBackend) CurrentActive(context.Context) (string, bool, error) {
	for _, o := range m.options {
		if o.Active {
			return o.ID, true, nil
		}
	}
	return "", false, nil
}

// mockBackendSet implements BackendSet for testing
type mockBackendSet []domain.Backend

func (s mockBackendSet) GetAll() []domain.Backend { return s }

// mockStatic implements domain.ActionSource for testing
type mockStatic []domain.Action

func (s mockStatic) Actions() []domain.Action { return s }

// mockPicker records what it was shown and returns a scripted choice
type mockPicker struct {
	choose  func(entries []string) (int, error)
	entries []string
	calls   int
}

func (p *mockPicker) Choose(_ context.Context, entries []string) (int, error) {
	p.calls++
	p.entries = entries
	return p.choose(entries)
}

// mockExecutor counts recipe executions
type mockExecutor struct {
	output string
	err    error
	ran    []domain.Recipe
}

func (e *mockExecutor) Run(_ context.Context, recipe domain.Recipe) (string, error) {
	e.ran = append(e.ran, recipe)
	return e.output, e.err
}

func pickIndex(i int) func([]string) (int, error) {
	return func([]string) (int, error) { return i, nil }
}

func pickCancel() func([]string) (int, error) {
	return func([]string) (int, error) { return -1, domain.ErrCancelled }
}

func staticAction(display, cmd string) domain.Action {
	return domain.Action{Display: display, Source: domain.SourceStatic, Recipe: domain.ShellRecipe(cmd)}
}
