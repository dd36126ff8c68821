package backend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

const (
	nmcliBin = "nmcli"

	// NetworkManagerBackendID identifies the NetworkManager Wi-Fi driver.
	NetworkManagerBackendID = "networkmanager"
)

// NetworkManager is the Wi-Fi manager backed by nmcli.
type NetworkManager struct {
	runner   domain.CommandRunner
	procs    domain.ProcessManager
	prompter domain.SecretPrompter
	notifier domain.Notifier
	iface    string
	logger   *zap.Logger
}

// NewNetworkManager creates the nmcli driver. iface may be empty to let
// NetworkManager pick the device.
func NewNetworkManager(
	runner domain.CommandRunner,
	procs domain.ProcessManager,
	prompter domain.SecretPrompter,
	notifier domain.Notifier,
	iface string,
	logger *zap.Logger,
) *NetworkManager {
	return &NetworkManager{
		runner:   runner,
		procs:    procs,
		prompter: prompter,
		notifier: notifier,
		iface:    iface,
		logger:   logger,
	}
}

func (n *NetworkManager) ID() string {
	return NetworkManagerBackendID
}

func (n *NetworkManager) Source() domain.Source {
	return domain.SourceWifi
}

// Available reports whether nmcli is installed and NetworkManager is running.
func (n *NetworkManager) Available() bool {
	return n.runner.LookPath(nmcliBin) && n.procs.IsRunning("NetworkManager")
}

// nmNetwork is one row of `nmcli -t -f IN-USE,SSID,BARS,SECURITY device wifi list`.
type nmNetwork struct {
	InUse    bool
	SSID     string
	Bars     string
	Security string
}

// splitTerse splits an nmcli terse line on ':' honoring the `\:` and `\\` escapes.
func splitTerse(line string) []string {
	var fields []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, cur.String())
}

// parseNMNetworks parses terse nmcli output, folding duplicate SSIDs (one per BSSID)
// into a single network that is in use if any of its BSSIDs is.
func parseNMNetworks(out []byte) []nmNetwork {
	var result []nmNetwork
	index := make(map[string]int)
	for _, line := range lines(out) {
		fields := splitTerse(line)
		if len(fields) < 3 {
			continue
		}
		nw := nmNetwork{
			InUse: strings.TrimSpace(fields[0]) == "*",
			SSID:  strings.TrimSpace(fields[1]),
			Bars:  strings.TrimSpace(fields[2]),
		}
		if len(fields) > 3 {
			nw.Security = strings.TrimSpace(fields[3])
		}
		if nw.SSID == "" {
			continue
		}
		if i, seen := index[nw.SSID]; seen {
			if nw.InUse {
				result[i].InUse = true
			}
			continue
		}
		index[nw.SSID] = len(result)
		result = append(result, nw)
	}
	return result
}

func (n *NetworkManager) scan(ctx context.Context, rescan string) ([]nmNetwork, error) {
	if !n.Available() {
		return nil, domain.Unavailable(n.ID(), "nmcli not installed or NetworkManager not running")
	}
	args := []string{"-t", "-f", "IN-USE,SSID,BARS,SECURITY", "device", "wifi", "list", "--rescan", rescan}
	if n.iface != "" {
		args = append(args, "ifname", n.iface)
	}
	res, err := n.runner.Run(ctx, nil, nmcliBin, args...)
	if err != nil {
		return nil, domain.Unavailable(n.ID(), err.Error())
	}
	if !res.Success() {
		return nil, domain.Unavailable(n.ID(), reason(res))
	}
	return parseNMNetworks(res.Stdout), nil
}

// ListOptions lists visible networks; nmcli rescans only if its cache is stale.
// With a known interface the list ends with Disconnect or Connect for the device.
func (n *NetworkManager) ListOptions(ctx context.Context) ([]domain.BackendOption, error) {
	networks, err := n.scan(ctx, "auto")
	if err != nil {
		return nil, err
	}
	opts := make([]domain.BackendOption, 0, len(networks)+1)
	connected := false
	for _, nw := range networks {
		connected = connected || nw.InUse
		opts = append(opts, domain.BackendOption{
			ID:     nw.SSID,
			Label:  fmt.Sprintf("%s - %s", nw.SSID, nw.Bars),
			Class:  nw.Security,
			Active: nw.InUse,
		})
	}
	if n.iface != "" {
		opts = append(opts, stationOption(connected))
	}
	return opts, nil
}

// CurrentActive returns the SSID in use.
func (n *NetworkManager) CurrentActive(ctx context.Context) (string, bool, error) {
	networks, err := n.scan(ctx, "no")
	if err != nil {
		return "", false, err
	}
	for _, nw := range networks {
		if nw.InUse {
			return nw.SSID, true, nil
		}
	}
	return "", false, nil
}

// Apply connects to ssid: saved profile first, then a plain connect, then once more
// with a passphrase from the prompt.
func (n *NetworkManager) Apply(ctx context.Context, ssid string) error {
	if ssid == "" {
		return &domain.ApplyFailedError{Backend: n.ID(), Target: ssid, Reason: "empty ssid"}
	}
	if isStationID(ssid) {
		return n.applyStation(ctx, ssid)
	}
	if current, ok, err := n.CurrentActive(ctx); err == nil && ok && current == ssid {
		return nil
	}

	if res, err := n.runner.Run(ctx, nil, nmcliBin, "connection", "up", "id", ssid); err == nil && res.Success() {
		notifyConnected(n.notifier, ssid)
		return nil
	}

	res, err := n.runner.Run(ctx, nil, nmcliBin, n.connectArgs(ssid, "")...)
	if err != nil {
		return &domain.ApplyFailedError{Backend: n.ID(), Target: ssid, Err: err}
	}
	if res.Success() {
		notifyConnected(n.notifier, ssid)
		return nil
	}
	if !needsSecret(reason(res)) {
		return &domain.ApplyFailedError{Backend: n.ID(), Target: ssid, Reason: reason(res)}
	}

	secret, err := promptPassphrase(ctx, n.prompter, n.ID(), ssid)
	if err != nil {
		return err
	}

	res, err = n.runner.Run(ctx, nil, nmcliBin, n.connectArgs(ssid, secret)...)
	if err != nil {
		return &domain.ApplyFailedError{Backend: n.ID(), Target: ssid, Err: err}
	}
	if !res.Success() {
		if needsSecret(reason(res)) {
			n.logger.Info("passphrase rejected", zap.String("ssid", ssid))
			return fmt.Errorf("%s: %q: %w", n.ID(), ssid, domain.ErrWrongCredentials)
		}
		return &domain.ApplyFailedError{Backend: n.ID(), Target: ssid, Reason: reason(res)}
	}
	notifyConnected(n.notifier, ssid)
	return nil
}

// applyStation disconnects or reconnects the Wi-Fi device. Asking for the state the
// device is already in succeeds without running nmcli.
func (n *NetworkManager) applyStation(ctx context.Context, id string) error {
	if n.iface == "" {
		return &domain.ApplyFailedError{Backend: n.ID(), Target: id, Reason: "no wifi interface"}
	}
	want := id == WifiConnect
	if _, connected, err := n.CurrentActive(ctx); err == nil && connected == want {
		return nil
	}

	verb := "disconnect"
	if want {
		verb = "connect"
	}
	res, err := n.runner.Run(ctx, nil, nmcliBin, "device", verb, n.iface)
	if err != nil {
		return &domain.ApplyFailedError{Backend: n.ID(), Target: id, Err: err}
	}
	if !res.Success() {
		return &domain.ApplyFailedError{Backend: n.ID(), Target: id, Reason: reason(res)}
	}
	n.logger.Info("wifi device "+verb+"ed", zap.String("interface", n.iface))
	return nil
}

func (n *NetworkManager) connectArgs(ssid, secret string) []string {
	args := []string{"device", "wifi", "connect", ssid}
	if secret != "" {
		args = append(args, "password", secret)
	}
	if n.iface != "" {
		args = append(args, "ifname", n.iface)
	}
	return args
}

// needsSecret recognizes nmcli's missing or rejected secret errors.
func needsSecret(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "secrets were required") ||
		strings.Contains(msg, "802-11-wireless-security") ||
		strings.Contains(msg, "no secrets") ||
		strings.Contains(msg, "password")
}

// Ensure NetworkManager implements WifiDriver.
var _ WifiDriver = (*NetworkManager)(nil)
