package glyph

var countryFlags = map[string]string{
	"Albania":        "🇦🇱",
	"Australia":      "🇦🇺",
	"Austria":        "🇦🇹",
	"Belgium":        "🇧🇪",
	"Brazil":         "🇧🇷",
	"Bulgaria":       "🇧🇬",
	"Canada":         "🇨🇦",
	"Chile":          "🇨🇱",
	"Colombia":       "🇨🇴",
	"Croatia":        "🇭🇷",
	"Czech Republic": "🇨🇿",
	"Denmark":        "🇩🇰",
	"Estonia":        "🇪🇪",
	"Finland":        "🇫🇮",
	"France":         "🇫🇷",
	"Germany":        "🇩🇪",
	"Greece":         "🇬🇷",
	"Hong Kong":      "🇭🇰",
	"Hungary":        "🇭🇺",
	"Indonesia":      "🇮🇩",
	"Ireland":        "🇮🇪",
	"Israel":         "🇮🇱",
	"Italy":          "🇮🇹",
	"Japan":          "🇯🇵",
	"Latvia":         "🇱🇻",
	"Mexico":         "🇲🇽",
	"Netherlands":    "🇳🇱",
	"New Zealand":    "🇳🇿",
	"Norway":         "🇳🇴",
	"Poland":         "🇵🇱",
	"Portugal":       "🇵🇹",
	"Romania":        "🇷🇴",
	"Serbia":         "🇷🇸",
	"Singapore":      "🇸🇬",
	"Slovakia":       "🇸🇰",
	"Slovenia":       "🇸🇮",
	"South Africa":   "🇿🇦",
	"Spain":          "🇪🇸",
	"Sweden":         "🇸🇪",
	"Switzerland":    "🇨🇭",
	"Thailand":       "🇹🇭",
	"Turkey":         "🇹🇷",
	"UK":             "🇬🇧",
	"Ukraine":        "🇺🇦",
	"USA":            "🇺🇸",
}

// Flag returns the flag emoji for a country name as printed by tailscale.
func Flag(country string) string {
	if f, ok := countryFlags[country]; ok {
		return f
	}
	return UnknownFlag
}
