package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/netmenu/internal/domain"
	"github.com/eliteGoblin/netmenu/internal/glyph"
)

const (
	tailscaleBin = "tailscale"

	// ExitNodeBackendID identifies the tailscale exit-node driver.
	ExitNodeBackendID = "tailscale-exit-node"

	// NoExitNode is the option id that clears the exit node.
	NoExitNode = ""

	mullvadDomain = "mullvad.ts.net"
)

var columnSep = regexp.MustCompile(`\s{2,}`)

// tailscaleStatus is the subset of `tailscale status --json` we read.
type tailscaleStatus struct {
	BackendState string                   `json:"BackendState"`
	Peer         map[string]tailscalePeer `json:"Peer"`
}

type tailscalePeer struct {
	DNSName  string `json:"DNSName"`
	HostName string `json:"HostName"`
	Active   bool   `json:"Active"`
	ExitNode bool   `json:"ExitNode"`
}

// Running reports whether tailscaled is logged in and up.
func (s *tailscaleStatus) Running() bool {
	return s.BackendState == "Running"
}

// ExitNode returns the DNS name of the peer currently used as exit node.
func (s *tailscaleStatus) ExitNode() (string, bool) {
	for _, p := range s.Peer {
		if p.ExitNode {
			return strings.TrimSuffix(p.DNSName, "."), true
		}
	}
	return "", false
}

// readTailscaleStatus runs `tailscale status --json`. The command exits nonzero when
// tailscale is stopped but still prints valid JSON, so the exit code is ignored when
// the output parses.
func readTailscaleStatus(ctx context.Context, runner domain.CommandRunner, backendID string) (*tailscaleStatus, error) {
	res, err := runner.Run(ctx, nil, tailscaleBin, "status", "--json")
	if err != nil {
		return nil, domain.Unavailable(backendID, err.Error())
	}
	var st tailscaleStatus
	if jerr := json.Unmarshal(res.Stdout, &st); jerr != nil {
		if !res.Success() {
			return nil, domain.Unavailable(backendID, reason(res))
		}
		return nil, domain.Unavailable(backendID, "parse status: "+jerr.Error())
	}
	return &st, nil
}

// exitNode is one row of `tailscale exit-node list`.
type exitNode struct {
	IP      string
	Name    string
	Country string
	City    string
}

func (n exitNode) mullvad() bool {
	return strings.HasSuffix(n.Name, mullvadDomain)
}

func (n exitNode) shortName() string {
	if i := strings.Index(n.Name, "."); i > 0 {
		return n.Name[:i]
	}
	return n.Name
}

// parseExitNodes reads the table printed by `tailscale exit-node list`.
// Tailnet nodes come first, then Mullvad nodes, each in the tool's order.
func parseExitNodes(out []byte) []exitNode {
	var plain, mullvad []exitNode
	for _, line := range lines(out) {
		if !strings.Contains(line, "ts.net") {
			continue
		}
		parts := columnSep.Split(strings.TrimSpace(line), -1)
		if len(parts) < 2 {
			continue
		}
		n := exitNode{IP: parts[0], Name: strings.TrimSuffix(parts[1], ".")}
		if len(parts) > 2 && parts[2] != "-" {
			n.Country = parts[2]
		}
		if len(parts) > 3 && parts[3] != "-" {
			n.City = parts[3]
		}
		if n.mullvad() {
			mullvad = append(mullvad, n)
		} else {
			plain = append(plain, n)
		}
	}
	return append(plain, mullvad...)
}

// TailscaleExitNodes is the VPN exit-node provider.
type TailscaleExitNodes struct {
	runner   domain.CommandRunner
	allowLAN bool
	logger   *zap.Logger
}

// NewTailscaleExitNodes creates the exit-node driver.
func NewTailscaleExitNodes(runner domain.CommandRunner, allowLAN bool, logger *zap.Logger) *TailscaleExitNodes {
	return &TailscaleExitNodes{runner: runner, allowLAN: allowLAN, logger: logger}
}

func (t *TailscaleExitNodes) ID() string {
	return ExitNodeBackendID
}

func (t *TailscaleExitNodes) Source() domain.Source {
	return domain.SourceExitNode
}

// ListOptions returns the "no exit node" option followed by every exit node.
func (t *TailscaleExitNodes) ListOptions(ctx context.Context) ([]domain.BackendOption, error) {
	if !t.runner.LookPath(tailscaleBin) {
		return nil, domain.Unavailable(t.ID(), "tailscale not installed")
	}

	res, err := t.runner.Run(ctx, nil, tailscaleBin, "exit-node", "list")
	if err != nil {
		return nil, domain.Unavailable(t.ID(), err.Error())
	}
	if !res.Success() {
		return nil, domain.Unavailable(t.ID(), reason(res))
	}

	active, _, err := t.CurrentActive(ctx)
	if err != nil {
		t.logger.Debug("exit node status unknown", zap.Error(err))
	}

	nodes := parseExitNodes(res.Stdout)
	opts := make([]domain.BackendOption, 0, len(nodes)+1)
	opts = append(opts, domain.BackendOption{
		ID:    NoExitNode,
		Label: "Disable exit node",
		Class: glyph.ClassNone,
	})
	for _, n := range nodes {
		opt := domain.BackendOption{ID: n.Name}
		if n.mullvad() {
			opt.Class = n.Country
			opt.Label = fmt.Sprintf("%s - %s %s", pad(n.Country, 15), pad(n.IP, 16), n.Name)
		} else {
			opt.Label = fmt.Sprintf("%s - %s %s", pad(n.shortName(), 15), pad(n.IP, 16), n.Name)
		}
		opts = append(opts, opt)
	}

	markActive(opts[1:], active)
	opts[0].Active = active == NoExitNode && err == nil
	return opts, nil
}

// CurrentActive returns the DNS name of the exit node in use; NoExitNode with ok=true
// when none is set.
func (t *TailscaleExitNodes) CurrentActive(ctx context.Context) (string, bool, error) {
	st, err := readTailscaleStatus(ctx, t.runner, t.ID())
	if err != nil {
		return "", false, err
	}
	if node, ok := st.ExitNode(); ok {
		return node, true, nil
	}
	return NoExitNode, true, nil
}

// Apply switches the exit node. Re-applying the current node is a no-op.
func (t *TailscaleExitNodes) Apply(ctx context.Context, id string) error {
	st, err := readTailscaleStatus(ctx, t.runner, t.ID())
	if err != nil {
		return &domain.ApplyFailedError{Backend: t.ID(), Target: id, Err: err}
	}
	current, hasExitNode := st.ExitNode()

	if id == NoExitNode {
		if !hasExitNode {
			return nil
		}
		return t.run(ctx, id, "set", "--exit-node=")
	}

	if hasExitNode && current == id && st.Running() {
		return nil
	}

	if !st.Running() {
		if err := t.run(ctx, id, "up"); err != nil {
			return err
		}
	}

	args := []string{"set", "--exit-node", id}
	if t.allowLAN {
		args = append(args, "--exit-node-allow-lan-access=true")
	}
	return t.run(ctx, id, args...)
}

func (t *TailscaleExitNodes) run(ctx context.Context, target string, args ...string) error {
	res, err := t.runner.Run(ctx, nil, tailscaleBin, args...)
	if err != nil {
		return &domain.ApplyFailedError{Backend: t.ID(), Target: target, Err: err}
	}
	if !res.Success() {
		return &domain.ApplyFailedError{Backend: t.ID(), Target: target, Reason: reason(res)}
	}
	return nil
}

// Ensure TailscaleExitNodes implements domain.Backend.
var _ domain.Backend = (*TailscaleExitNodes)(nil)
