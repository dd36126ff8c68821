package backend

import (
	"context"

	"github.com/eliteGoblin/netmenu/internal/domain"
	"github.com/eliteGoblin/netmenu/internal/glyph"
)

// ControlBackendID identifies the tailscale up/down/shields driver.
const ControlBackendID = "tailscale-control"

// Option ids understood by TailscaleControl.Apply.
const (
	ControlUp          = "up"
	ControlDown        = "down"
	ControlShieldsUp   = "shields-up"
	ControlShieldsDown = "shields-down"
)

var controlArgs = map[string][]string{
	ControlUp:          {"up"},
	ControlDown:        {"down"},
	ControlShieldsUp:   {"set", "--shields-up=true"},
	ControlShieldsDown: {"set", "--shields-up=false"},
}

// TailscaleControl toggles tailscale itself and its shields.
type TailscaleControl struct {
	runner domain.CommandRunner
}

// NewTailscaleControl creates the control driver.
func NewTailscaleControl(runner domain.CommandRunner) *TailscaleControl {
	return &TailscaleControl{runner: runner}
}

func (c *TailscaleControl) ID() string {
	return ControlBackendID
}

func (c *TailscaleControl) Source() domain.Source {
	return domain.SourceVPNControl
}

// ListOptions offers whichever of enable/disable flips the current state, plus shields.
func (c *TailscaleControl) ListOptions(ctx context.Context) ([]domain.BackendOption, error) {
	if !c.runner.LookPath(tailscaleBin) {
		return nil, domain.Unavailable(c.ID(), "tailscale not installed")
	}
	st, err := readTailscaleStatus(ctx, c.runner, c.ID())
	if err != nil {
		return nil, err
	}

	toggle := domain.BackendOption{ID: ControlUp, Label: "Enable tailscale", Class: glyph.ClassEnable}
	if st.Running() {
		toggle = domain.BackendOption{ID: ControlDown, Label: "Disable tailscale", Class: glyph.ClassDisable}
	}
	return []domain.BackendOption{
		toggle,
		{ID: ControlShieldsUp, Label: "Shields up", Class: glyph.ClassShield},
		{ID: ControlShieldsDown, Label: "Shields down", Class: glyph.ClassShield},
	}, nil
}

// CurrentActive reports "up" or "down".
func (c *TailscaleControl) CurrentActive(ctx context.Context) (string, bool, error) {
	st, err := readTailscaleStatus(ctx, c.runner, c.ID())
	if err != nil {
		return "", false, err
	}
	if st.Running() {
		return ControlUp, true, nil
	}
	return ControlDown, true, nil
}

// Apply runs the tailscale subcommand for id. All of them are idempotent on the
// tailscale side.
func (c *TailscaleControl) Apply(ctx context.Context, id string) error {
	args, ok := controlArgs[id]
	if !ok {
		return &domain.ApplyFailedError{Backend: c.ID(), Target: id, Reason: "unknown option"}
	}
	res, err := c.runner.Run(ctx, nil, tailscaleBin, args...)
	if err != nil {
		return &domain.ApplyFailedError{Backend: c.ID(), Target: id, Err: err}
	}
	if !res.Success() {
		return &domain.ApplyFailedError{Backend: c.ID(), Target: id, Reason: reason(res)}
	}
	return nil
}

// Ensure TailscaleControl implements domain.Backend.
var _ domain.Backend = (*TailscaleControl)(nil)
