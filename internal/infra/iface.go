package infra

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/net"
)

// sysClassNet is where Linux exposes per-interface attributes.
var sysClassNet = "/sys/class/net"

// WirelessInterface returns preferred when such an interface exists, otherwise the
// first wireless interface found. Falls back to preferred when nothing better is known.
func WirelessInterface(preferred string) string {
	ifaces, err := net.Interfaces()
	if err != nil || len(ifaces) == 0 {
		return preferred
	}

	names := make([]string, 0, len(ifaces))
	for _, iface := range ifaces {
		if iface.Name == preferred {
			return preferred
		}
		names = append(names, iface.Name)
	}
	if w := pickWireless(names); w != "" {
		return w
	}
	return preferred
}

func pickWireless(names []string) string {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(sysClassNet, name, "wireless")); err == nil {
			return name
		}
	}
	for _, name := range names {
		if strings.HasPrefix(name, "wl") {
			return name
		}
	}
	return ""
}
