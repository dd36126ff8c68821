package backend

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

const (
	bluetoothctlBin = "bluetoothctl"

	// BluetoothBackendID identifies the bluetoothctl driver.
	BluetoothBackendID = "bluetooth"
)

var (
	deviceLine = regexp.MustCompile(`([0-9A-Fa-f]{2}(?::[0-9A-Fa-f]{2}){5})\s+(.*)`)
	macAddress = regexp.MustCompile(`^[0-9A-Fa-f]{2}(?::[0-9A-Fa-f]{2}){5}$`)
)

// Bluetooth toggles the connection of paired devices.
type Bluetooth struct {
	runner domain.CommandRunner
	procs  domain.ProcessManager
}

// NewBluetooth creates the bluetoothctl driver.
func NewBluetooth(runner domain.CommandRunner, procs domain.ProcessManager) *Bluetooth {
	return &Bluetooth{runner: runner, procs: procs}
}

func (b *Bluetooth) ID() string {
	return BluetoothBackendID
}

func (b *Bluetooth) Source() domain.Source {
	return domain.SourceBluetooth
}

type btDevice struct {
	MAC  string
	Name string
}

func parseDevices(out []byte) []btDevice {
	var result []btDevice
	for _, line := range lines(out) {
		m := deviceLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		result = append(result, btDevice{MAC: strings.ToUpper(m[1]), Name: strings.TrimSpace(m[2])})
	}
	return result
}

// parseConnected reads the "Device <MAC>" headers printed by `bluetoothctl info`.
func parseConnected(out []byte) []string {
	var macs []string
	for _, line := range lines(out) {
		if !strings.HasPrefix(line, "Device ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			macs = append(macs, strings.ToUpper(fields[1]))
		}
	}
	return macs
}

func (b *Bluetooth) check() error {
	if !b.runner.LookPath(bluetoothctlBin) {
		return domain.Unavailable(b.ID(), "bluetoothctl not installed")
	}
	if !b.procs.IsRunning("bluetoothd") {
		return domain.Unavailable(b.ID(), "bluetoothd not running")
	}
	return nil
}

// connected returns the MACs of connected devices. bluetoothctl exits nonzero when
// nothing is connected, which is not an error here.
func (b *Bluetooth) connected(ctx context.Context) ([]string, error) {
	res, err := b.runner.Run(ctx, nil, bluetoothctlBin, "info")
	if err != nil {
		return nil, domain.Unavailable(b.ID(), err.Error())
	}
	return parseConnected(res.Stdout), nil
}

// ListOptions lists paired devices, marking connected ones active.
func (b *Bluetooth) ListOptions(ctx context.Context) ([]domain.BackendOption, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	res, err := b.runner.Run(ctx, nil, bluetoothctlBin, "devices")
	if err != nil {
		return nil, domain.Unavailable(b.ID(), err.Error())
	}
	if !res.Success() {
		return nil, domain.Unavailable(b.ID(), reason(res))
	}
	connected, err := b.connected(ctx)
	if err != nil {
		return nil, err
	}

	devices := parseDevices(res.Stdout)
	opts := make([]domain.BackendOption, 0, len(devices))
	for _, d := range devices {
		opts = append(opts, domain.BackendOption{
			ID:     d.MAC,
			Label:  fmt.Sprintf("%s - %s", pad(d.Name, 25), d.MAC),
			Active: contains(connected, d.MAC),
		})
	}
	return opts, nil
}

// CurrentActive returns the first connected device.
func (b *Bluetooth) CurrentActive(ctx context.Context) (string, bool, error) {
	if err := b.check(); err != nil {
		return "", false, err
	}
	connected, err := b.connected(ctx)
	if err != nil || len(connected) == 0 {
		return "", false, err
	}
	return connected[0], true, nil
}

// Apply disconnects the device when it is connected and connects it otherwise.
func (b *Bluetooth) Apply(ctx context.Context, mac string) error {
	mac = strings.ToUpper(mac)
	if !macAddress.MatchString(mac) {
		return &domain.ApplyFailedError{Backend: b.ID(), Target: mac, Reason: "invalid device address"}
	}
	connected, err := b.connected(ctx)
	if err != nil {
		return &domain.ApplyFailedError{Backend: b.ID(), Target: mac, Err: err}
	}

	verb := "connect"
	if contains(connected, mac) {
		verb = "disconnect"
	}
	res, err := b.runner.Run(ctx, nil, bluetoothctlBin, verb, mac)
	if err != nil {
		return &domain.ApplyFailedError{Backend: b.ID(), Target: mac, Err: err}
	}
	// bluetoothctl reports some failures with exit status 0.
	if !res.Success() || strings.Contains(string(res.Stdout), "Failed to "+verb) {
		return &domain.ApplyFailedError{Backend: b.ID(), Target: mac, Reason: reason(res)}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Ensure Bluetooth implements domain.Backend.
var _ domain.Backend = (*Bluetooth)(nil)
