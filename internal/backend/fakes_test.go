package backend

import (
	"context"
	"io"
	"strings"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

// fakeRunner returns canned results keyed by the full command line.
type fakeRunner struct {
	installed map[string]bool
	results   map[string][]domain.CommandResult // consumed in order; the last one repeats
	errs      map[string]error
	calls     []string
}

func newFakeRunner(installed ...string) *fakeRunner {
	r := &fakeRunner{
		installed: make(map[string]bool),
		results:   make(map[string][]domain.CommandResult),
		errs:      make(map[string]error),
	}
	for _, name := range installed {
		r.installed[name] = true
	}
	return r
}

func (r *fakeRunner) on(cmdline string, stdout string, exit int) *fakeRunner {
	r.results[cmdline] = append(r.results[cmdline], domain.CommandResult{Stdout: []byte(stdout), ExitCode: exit})
	return r
}

func (r *fakeRunner) onErr(cmdline string, stderr string, exit int) *fakeRunner {
	r.results[cmdline] = append(r.results[cmdline], domain.CommandResult{Stderr: []byte(stderr), ExitCode: exit})
	return r
}

func (r *fakeRunner) Run(_ context.Context, _ io.Reader, name string, args ...string) (domain.CommandResult, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, cmdline)
	if err, ok := r.errs[cmdline]; ok {
		return domain.CommandResult{ExitCode: -1}, err
	}
	queue, ok := r.results[cmdline]
	if !ok || len(queue) == 0 {
		return domain.CommandResult{Stderr: []byte("unexpected command: " + cmdline), ExitCode: 127}, nil
	}
	res := queue[0]
	if len(queue) > 1 {
		r.results[cmdline] = queue[1:]
	}
	return res, nil
}

func (r *fakeRunner) LookPath(name string) bool {
	return r.installed[name]
}

func (r *fakeRunner) called(cmdline string) bool {
	for _, c := range r.calls {
		if c == cmdline {
			return true
		}
	}
	return false
}

// fakeProcs reports the named processes as running.
type fakeProcs struct {
	running map[string]bool
}

func newFakeProcs(names ...string) *fakeProcs {
	p := &fakeProcs{running: make(map[string]bool)}
	for _, n := range names {
		p.running[n] = true
	}
	return p
}

func (p *fakeProcs) FindByName(pattern string) ([]int, error) {
	if p.running[pattern] {
		return []int{42}, nil
	}
	return nil, nil
}

func (p *fakeProcs) IsRunning(pattern string) bool {
	return p.running[pattern]
}

type fakePrompter struct {
	secret  string
	err     error
	prompts []string
}

func (p *fakePrompter) Prompt(_ context.Context, description string) (string, error) {
	p.prompts = append(p.prompts, description)
	return p.secret, p.err
}

type fakeNotifier struct {
	bodies []string
}

func (n *fakeNotifier) Notify(_, body string) error {
	n.bodies = append(n.bodies, body)
	return nil
}

var (
	_ domain.CommandRunner  = (*fakeRunner)(nil)
	_ domain.ProcessManager = (*fakeProcs)(nil)
	_ domain.SecretPrompter = (*fakePrompter)(nil)
	_ domain.Notifier       = (*fakeNotifier)(nil)
)
