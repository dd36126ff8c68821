package backend

import "strings"

// strengthBars converts iwctl's star rating (0-4 lit stars) into NetworkManager-style bars.
func strengthBars(stars int) string {
	bars := []string{"▂", "_", "_", "_"}
	if stars >= 2 {
		bars[1] = "▄"
	}
	if stars >= 3 {
		bars[2] = "▆"
	}
	if stars >= 4 {
		bars[3] = "█"
	}
	return strings.Join(bars, "")
}
