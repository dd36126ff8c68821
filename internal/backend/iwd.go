package backend

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

const (
	iwctlBin = "iwctl"

	// IWDBackendID identifies the iwd Wi-Fi driver.
	IWDBackendID = "iwd"
)

// iwctl prints unlit signal stars in dark gray.
var dimStars = regexp.MustCompile(`\x1b\[1;90m(\*+)`)

// IWD is the Wi-Fi manager backed by iwctl.
type IWD struct {
	runner   domain.CommandRunner
	procs    domain.ProcessManager
	prompter domain.SecretPrompter
	notifier domain.Notifier
	iface    string
	logger   *zap.Logger
}

// NewIWD creates the iwctl driver for the given station interface.
func NewIWD(
	runner domain.CommandRunner,
	procs domain.ProcessManager,
	prompter domain.SecretPrompter,
	notifier domain.Notifier,
	iface string,
	logger *zap.Logger,
) *IWD {
	return &IWD{
		runner:   runner,
		procs:    procs,
		prompter: prompter,
		notifier: notifier,
		iface:    iface,
		logger:   logger,
	}
}

func (w *IWD) ID() string {
	return IWDBackendID
}

func (w *IWD) Source() domain.Source {
	return domain.SourceWifi
}

// Available reports whether iwctl is installed and iwd is running.
func (w *IWD) Available() bool {
	return w.runner.LookPath(iwctlBin) && w.procs.IsRunning("iwd")
}

type iwdNetwork struct {
	Connected bool
	SSID      string
	Security  string
	Stars     int
}

// iwdColumns holds the rune offsets of the get-networks columns, taken from the
// table header.
type iwdColumns struct {
	name, security, signal int
}

func headerColumns(header string) (iwdColumns, bool) {
	c := iwdColumns{
		name:     runeIndex(header, "Network name"),
		security: runeIndex(header, "Security"),
		signal:   runeIndex(header, "Signal"),
	}
	if c.name < 0 || c.security <= c.name || c.signal <= c.security {
		return iwdColumns{}, false
	}
	return c, true
}

func runeIndex(s, sub string) int {
	i := strings.Index(s, sub)
	if i < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:i])
}

// parse cuts a row at the header offsets so that spaces inside an SSID survive.
// It fails when the row does not line up with the header.
func (c iwdColumns) parse(row string) (iwdNetwork, bool) {
	r := []rune(row)
	if len(r) <= c.signal || r[c.security-1] != ' ' || r[c.signal-1] != ' ' {
		return iwdNetwork{}, false
	}
	ssid := strings.TrimRight(string(r[c.name:c.security]), " ")
	security := strings.TrimSpace(string(r[c.security:c.signal]))
	if strings.TrimSpace(ssid) == "" || security == "" || strings.Contains(security, " ") {
		return iwdNetwork{}, false
	}
	return iwdNetwork{
		Connected: strings.TrimSpace(string(r[:c.name])) == ">",
		SSID:      ssid,
		Security:  security,
		Stars:     strings.Count(string(r[c.signal:]), "*"),
	}, true
}

// parseIWDFields splits a row on whitespace. Used when no header was seen.
func parseIWDFields(line string) (iwdNetwork, bool) {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return iwdNetwork{}, false
	}
	connected := parts[0] == ">"
	start := 0
	if connected {
		start = 1
	}
	if len(parts)-2 <= start {
		return iwdNetwork{}, false
	}
	return iwdNetwork{
		Connected: connected,
		SSID:      strings.Join(parts[start:len(parts)-2], " "),
		Security:  parts[len(parts)-2],
		Stars:     strings.Count(parts[len(parts)-1], "*"),
	}, true
}

// parseIWDNetworks reads the table printed by `iwctl station <if> get-networks`.
func parseIWDNetworks(out []byte) []iwdNetwork {
	var result []iwdNetwork
	var cols iwdColumns
	haveCols := false
	inTable := false
	for _, raw := range lines(out) {
		plain := strings.TrimRight(stripANSI(raw), " \t")
		line := strings.TrimSpace(plain)
		if !inTable {
			inTable = strings.Contains(line, "Available networks")
			continue
		}
		if strings.Contains(line, "Network name") {
			cols, haveCols = headerColumns(plain)
			continue
		}
		if line == "" || strings.HasPrefix(line, "---") {
			continue
		}

		nw, ok := iwdNetwork{}, false
		if haveCols {
			nw, ok = cols.parse(plain)
		}
		if !ok {
			nw, ok = parseIWDFields(line)
		}
		if !ok {
			continue
		}
		for _, m := range dimStars.FindAllStringSubmatch(raw, -1) {
			nw.Stars -= len(m[1])
		}
		result = append(result, nw)
	}
	return result
}

func (w *IWD) networks(ctx context.Context) ([]iwdNetwork, error) {
	if !w.Available() {
		return nil, domain.Unavailable(w.ID(), "iwctl not installed or iwd not running")
	}
	res, err := w.runner.Run(ctx, nil, iwctlBin, "station", w.iface, "get-networks")
	if err != nil {
		return nil, domain.Unavailable(w.ID(), err.Error())
	}
	if !res.Success() {
		return nil, domain.Unavailable(w.ID(), reason(res))
	}
	return parseIWDNetworks(res.Stdout), nil
}

// ListOptions lists the networks iwd last scanned, followed by Disconnect while one
// of them is connected.
func (w *IWD) ListOptions(ctx context.Context) ([]domain.BackendOption, error) {
	networks, err := w.networks(ctx)
	if err != nil {
		return nil, err
	}
	opts := make([]domain.BackendOption, 0, len(networks)+1)
	connected := false
	for _, nw := range networks {
		connected = connected || nw.Connected
		opts = append(opts, domain.BackendOption{
			ID:     nw.SSID,
			Label:  fmt.Sprintf("%s - %s", nw.SSID, strengthBars(nw.Stars)),
			Class:  nw.Security,
			Active: nw.Connected,
		})
	}
	if connected {
		opts = append(opts, stationOption(true))
	}
	return opts, nil
}

// CurrentActive returns the connected SSID.
func (w *IWD) CurrentActive(ctx context.Context) (string, bool, error) {
	networks, err := w.networks(ctx)
	if err != nil {
		return "", false, err
	}
	for _, nw := range networks {
		if nw.Connected {
			return nw.SSID, true, nil
		}
	}
	return "", false, nil
}

// Apply connects to ssid, asking for a passphrase when iwd has none stored.
func (w *IWD) Apply(ctx context.Context, ssid string) error {
	if ssid == "" {
		return &domain.ApplyFailedError{Backend: w.ID(), Target: ssid, Reason: "empty ssid"}
	}
	if isStationID(ssid) {
		return w.applyStation(ctx, ssid)
	}
	if current, ok, err := w.CurrentActive(ctx); err == nil && ok && current == ssid {
		return nil
	}

	res, err := w.runner.Run(ctx, nil, iwctlBin, "--dont-ask", "station", w.iface, "connect", ssid)
	if err != nil {
		return &domain.ApplyFailedError{Backend: w.ID(), Target: ssid, Err: err}
	}
	if res.Success() {
		notifyConnected(w.notifier, ssid)
		return nil
	}
	if strings.Contains(strings.ToLower(reason(res)), "not found") {
		return &domain.ApplyFailedError{Backend: w.ID(), Target: ssid, Reason: reason(res)}
	}

	secret, err := promptPassphrase(ctx, w.prompter, w.ID(), ssid)
	if err != nil {
		return err
	}

	res, err = w.runner.Run(ctx, nil, iwctlBin, "--passphrase", secret, "station", w.iface, "connect", ssid)
	if err != nil {
		return &domain.ApplyFailedError{Backend: w.ID(), Target: ssid, Err: err}
	}
	if !res.Success() {
		if iwdRejected(reason(res)) {
			w.logger.Info("passphrase rejected", zap.String("ssid", ssid))
			return fmt.Errorf("%s: %q: %w", w.ID(), ssid, domain.ErrWrongCredentials)
		}
		return &domain.ApplyFailedError{Backend: w.ID(), Target: ssid, Reason: reason(res)}
	}
	notifyConnected(w.notifier, ssid)
	return nil
}

// applyStation disconnects the station. iwd reconnects on its own, so Connect is
// never listed and is refused here.
func (w *IWD) applyStation(ctx context.Context, id string) error {
	if id != WifiDisconnect {
		return &domain.ApplyFailedError{Backend: w.ID(), Target: id, Reason: "not supported by iwd"}
	}
	if _, connected, err := w.CurrentActive(ctx); err == nil && !connected {
		return nil
	}
	res, err := w.runner.Run(ctx, nil, iwctlBin, "station", w.iface, "disconnect")
	if err != nil {
		return &domain.ApplyFailedError{Backend: w.ID(), Target: id, Err: err}
	}
	if !res.Success() {
		return &domain.ApplyFailedError{Backend: w.ID(), Target: id, Reason: reason(res)}
	}
	w.logger.Info("wifi station disconnected", zap.String("interface", w.iface))
	return nil
}

func iwdRejected(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "operation failed") ||
		strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "passphrase") ||
		strings.Contains(msg, "aborted")
}

// Ensure IWD implements WifiDriver.
var _ WifiDriver = (*IWD)(nil)
