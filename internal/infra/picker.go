package infra

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/shlex"
	"go.uber.org/zap"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

// ExternalPicker hands the entries to a dmenu-compatible program on stdin and reads
// the chosen line back from stdout.
type ExternalPicker struct {
	runner  domain.CommandRunner
	program string
	args    []string
	logger  *zap.Logger
}

// NewExternalPicker creates a picker for program; argline is split shell-style.
func NewExternalPicker(runner domain.CommandRunner, program, argline string, logger *zap.Logger) (*ExternalPicker, error) {
	if program == "" {
		return nil, fmt.Errorf("picker program is empty")
	}
	args, err := shlex.Split(argline)
	if err != nil {
		return nil, fmt.Errorf("parse picker args %q: %w", argline, err)
	}
	return &ExternalPicker{
		runner:  runner,
		program: program,
		args:    args,
		logger:  logger,
	}, nil
}

// Program returns the configured picker program.
func (p *ExternalPicker) Program() string {
	return p.program
}

// Args returns the parsed picker arguments.
func (p *ExternalPicker) Args() []string {
	return p.args
}

// Choose returns the index of the chosen entry. A nonzero exit or a line that matches
// no entry is ErrCancelled.
func (p *ExternalPicker) Choose(ctx context.Context, entries []string) (int, error) {
	for i, e := range entries {
		if strings.ContainsAny(e, "\r\n") {
			return -1, fmt.Errorf("picker entry %d %q spans several lines", i, e)
		}
	}
	input := strings.NewReader(strings.Join(entries, "\n"))
	res, err := p.runner.Run(ctx, input, p.program, p.args...)
	if err != nil {
		return -1, fmt.Errorf("run picker: %w", err)
	}
	if !res.Success() {
		p.logger.Debug("picker exited nonzero", zap.Int("exit_code", res.ExitCode))
		return -1, domain.ErrCancelled
	}

	selected := strings.TrimRight(string(res.Stdout), "\r\n")
	if idx := indexOf(entries, selected); idx >= 0 {
		return idx, nil
	}

	// Some pickers strip surrounding whitespace from the echoed line.
	trimmed := strings.TrimSpace(selected)
	if trimmed == "" {
		return -1, domain.ErrCancelled
	}
	for i, e := range entries {
		if strings.TrimSpace(e) == trimmed {
			return i, nil
		}
	}

	p.logger.Debug("picker returned unknown entry", zap.String("line", selected))
	return -1, domain.ErrCancelled
}

func indexOf(entries []string, s string) int {
	for i, e := range entries {
		if e == s {
			return i
		}
	}
	return -1
}

// Ensure ExternalPicker implements domain.Picker.
var _ domain.Picker = (*ExternalPicker)(nil)
