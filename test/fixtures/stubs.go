// Package fixtures provides call-counting collaborators for integration tests.
package fixtures

import (
	"context"
	"strings"
	"sync"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

// StubBackend is a scripted domain.Backend. Apply is idempotent: applying the active
// option succeeds without counting as a change.
type StubBackend struct {
	BackendID string
	Src       domain.Source
	Options   []domain.BackendOption
	ListErr   error

	mu      sync.Mutex
	applied []string
	changes int
}

// NewStubBackend creates a backend that lists opts.
func NewStubBackend(id string, source domain.Source, opts ...domain.BackendOption) *StubBackend {
	return &StubBackend{BackendID: id, Src: source, Options: opts}
}

// Unavailable makes ListOptions fail like a missing tool.
func (b *StubBackend) Unavailable() *StubBackend {
	b.ListErr = domain.Unavailable(b.BackendID, "not installed")
	return b
}

func (b *StubBackend) ID() string            { return b.BackendID }
func (b *StubBackend) Source() domain.Source { return b.Src }

func (b *StubBackend) ListOptions(context.Context) ([]domain.BackendOption, error) {
	if b.ListErr != nil {
		return nil, b.ListErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.BackendOption, len(b.Options))
	copy(out, b.Options)
	return out, nil
}

func (b *StubBackend) Apply(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.applied = append(b.applied, id)
	for i := range b.Options {
		if b.Options[i].ID == id {
			if !b.Options[i].Active {
				b.changes++
			}
			for j := range b.Options {
				b.Options[j].Active = j == i
			}
			return nil
		}
	}
	return &domain.ApplyFailedError{Backend: b.BackendID, Target: id, Reason: "no such option"}
}

func (b *StubBackend) CurrentActive(context.Context) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.Options {
		if o.Active {
			return o.ID, true, nil
		}
	}
	return "", false, nil
}

// Applied returns every id passed to Apply.
func (b *StubBackend) Applied() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.applied...)
}

// Changes counts applies that changed the active option.
func (b *StubBackend) Changes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changes
}

// StubPicker chooses the first entry containing Want; an empty Want cancels.
type StubPicker struct {
	Want  string
	Shown [][]string
}

func (p *StubPicker) Choose(_ context.Context, entries []string) (int, error) {
	p.Shown = append(p.Shown, append([]string(nil), entries...))
	if p.Want == "" {
		return -1, domain.ErrCancelled
	}
	for i, e := range entries {
		if strings.Contains(e, p.Want) {
			return i, nil
		}
	}
	return -1, domain.ErrCancelled
}

// Last returns the most recently shown list.
func (p *StubPicker) Last() []string {
	if len(p.Shown) == 0 {
		return nil
	}
	return p.Shown[len(p.Shown)-1]
}

// CountingExecutor wraps an executor and records every recipe it runs.
type CountingExecutor struct {
	Next domain.Executor
	Ran  []domain.Recipe
}

func (e *CountingExecutor) Run(ctx context.Context, recipe domain.Recipe) (string, error) {
	e.Ran = append(e.Ran, recipe)
	if e.Next == nil {
		return "", nil
	}
	return e.Next.Run(ctx, recipe)
}

// Calls is the number of executed recipes.
func (e *CountingExecutor) Calls() int {
	return len(e.Ran)
}

var (
	_ domain.Backend  = (*StubBackend)(nil)
	_ domain.Picker   = (*StubPicker)(nil)
	_ domain.Executor = (*CountingExecutor)(nil)
)
