package backend

import (
	"context"
	"strings"

	"github.com/eliteGoblin/netmenu/internal/domain"
	"github.com/eliteGoblin/netmenu/internal/glyph"
)

const (
	rfkillBin     = "rfkill"
	connEditorBin = "nm-connection-editor"

	// SystemBackendID identifies the rfkill / connection editor driver.
	SystemBackendID = "system"
)

// Option ids understood by System.Apply.
const (
	SystemRfkillBlock     = "rfkill-block"
	SystemRfkillUnblock   = "rfkill-unblock"
	SystemEditConnections = "edit-connections"
)

// System exposes radio kill switches and the NetworkManager connection editor.
type System struct {
	runner domain.CommandRunner
}

// NewSystem creates the system driver.
func NewSystem(runner domain.CommandRunner) *System {
	return &System{runner: runner}
}

func (s *System) ID() string {
	return SystemBackendID
}

func (s *System) Source() domain.Source {
	return domain.SourceSystem
}

// ListOptions offers whatever of rfkill and nm-connection-editor is installed.
func (s *System) ListOptions(ctx context.Context) ([]domain.BackendOption, error) {
	hasRfkill := s.runner.LookPath(rfkillBin)
	hasEditor := s.runner.LookPath(connEditorBin)
	if !hasRfkill && !hasEditor {
		return nil, domain.Unavailable(s.ID(), "neither rfkill nor nm-connection-editor installed")
	}

	var opts []domain.BackendOption
	if hasRfkill {
		opts = append(opts,
			domain.BackendOption{ID: SystemRfkillBlock, Label: "Radio wifi rfkill block", Class: glyph.ClassDisable},
			domain.BackendOption{ID: SystemRfkillUnblock, Label: "Radio wifi rfkill unblock", Class: glyph.ClassRadio},
		)
		if active, ok, err := s.CurrentActive(ctx); err == nil && ok {
			markActive(opts, active)
		}
	}
	if hasEditor {
		opts = append(opts, domain.BackendOption{ID: SystemEditConnections, Label: "Edit connections", Class: glyph.ClassRadio})
	}
	return opts, nil
}

// CurrentActive reports which rfkill state the wlan radio is in.
func (s *System) CurrentActive(ctx context.Context) (string, bool, error) {
	if !s.runner.LookPath(rfkillBin) {
		return "", false, nil
	}
	res, err := s.runner.Run(ctx, nil, rfkillBin, "list", "wlan")
	if err != nil {
		return "", false, domain.Unavailable(s.ID(), err.Error())
	}
	if !res.Success() {
		return "", false, domain.Unavailable(s.ID(), reason(res))
	}
	out := string(res.Stdout)
	if !strings.Contains(out, "Soft blocked") {
		return "", false, nil
	}
	if strings.Contains(out, "Soft blocked: yes") {
		return SystemRfkillBlock, true, nil
	}
	return SystemRfkillUnblock, true, nil
}

// Apply runs the selected system command. rfkill is idempotent.
func (s *System) Apply(ctx context.Context, id string) error {
	var name string
	var args []string
	switch id {
	case SystemRfkillBlock:
		name, args = rfkillBin, []string{"block", "wlan"}
	case SystemRfkillUnblock:
		name, args = rfkillBin, []string{"unblock", "wlan"}
	case SystemEditConnections:
		name = connEditorBin
	default:
		return &domain.ApplyFailedError{Backend: s.ID(), Target: id, Reason: "unknown option"}
	}

	res, err := s.runner.Run(ctx, nil, name, args...)
	if err != nil {
		return &domain.ApplyFailedError{Backend: s.ID(), Target: id, Err: err}
	}
	if !res.Success() {
		return &domain.ApplyFailedError{Backend: s.ID(), Target: id, Reason: reason(res)}
	}
	return nil
}

// Ensure System implements domain.Backend.
var _ domain.Backend = (*System)(nil)
