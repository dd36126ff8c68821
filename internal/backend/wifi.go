package backend

import (
	"context"
	"fmt"

	"github.com/eliteGoblin/netmenu/internal/domain"
	"github.com/eliteGoblin/netmenu/internal/glyph"
)

// Station option ids. Both are longer than the 32-byte SSID limit, so no scanned
// network can carry the same id.
const (
	WifiDisconnect = "netmenu/wifi-station/disconnect-interface"
	WifiConnect    = "netmenu/wifi-station/connect-interface"
)

// WifiDriver is a Wi-Fi manager that can tell whether its daemon is usable.
type WifiDriver interface {
	domain.Backend

	// Available reports whether the CLI is installed and the daemon is running.
	Available() bool
}

// SelectWifi returns the first available driver, or the first driver when none is
// available so that the menu still reports why Wi-Fi is missing.
func SelectWifi(drivers ...WifiDriver) domain.Backend {
	for _, d := range drivers {
		if d.Available() {
			return d
		}
	}
	if len(drivers) == 0 {
		return nil
	}
	return drivers[0]
}

// stationOption is the Disconnect entry while a network is in use and the Connect
// entry otherwise.
func stationOption(connected bool) domain.BackendOption {
	if connected {
		return domain.BackendOption{ID: WifiDisconnect, Label: "Disconnect", Class: glyph.ClassDisable}
	}
	return domain.BackendOption{ID: WifiConnect, Label: "Connect", Class: glyph.ClassRadio}
}

func isStationID(id string) bool {
	return id == WifiDisconnect || id == WifiConnect
}

// passphraseDescription is shown by the secret prompt.
func passphraseDescription(ssid string) string {
	return fmt.Sprintf("Enter %s password", ssid)
}

// promptPassphrase asks for the network secret, mapping a dismissed prompt to
// an ApplyFailedError.
func promptPassphrase(ctx context.Context, prompter domain.SecretPrompter, backendID, ssid string) (string, error) {
	if prompter == nil {
		return "", &domain.ApplyFailedError{Backend: backendID, Target: ssid, Reason: "passphrase required but no prompt available"}
	}
	secret, err := prompter.Prompt(ctx, passphraseDescription(ssid))
	if err != nil {
		return "", &domain.ApplyFailedError{Backend: backendID, Target: ssid, Reason: "passphrase prompt", Err: err}
	}
	return secret, nil
}

func notifyConnected(n domain.Notifier, ssid string) {
	if n == nil {
		return
	}
	_ = n.Notify("Wi-Fi", "Connected to "+ssid)
}
