// Package glyph maps classification metadata to the icons shown in the menu.
package glyph

import "github.com/eliteGoblin/netmenu/internal/domain"

// Icons used across sources.
const (
	Active       = "✅"
	Inactive     = " "
	Disable      = "❌"
	Enable       = "✅"
	Shield       = "🛡️"
	Signal       = "📶"
	Connected    = "🌐"
	TailnetNode  = "🌿"
	UnknownFlag  = "❓"
	ClassNone    = "none"
	ClassEnable  = "enable"
	ClassDisable = "disable"
	ClassShield  = "shield"
	ClassRadio   = "radio"
)

// For returns the icon for an option of the given source.
// Active options always render with the Active mark except on Wi-Fi, which keeps the
// NetworkManager-style globe. The Wi-Fi disconnect entry gets the Disable mark.
func For(source domain.Source, class string, active bool) string {
	switch source {
	case domain.SourceExitNode:
		switch {
		case active:
			return Active
		case class == ClassNone:
			return Disable
		case class == "":
			return TailnetNode
		default:
			return Flag(class)
		}
	case domain.SourceVPNControl, domain.SourceSystem:
		switch class {
		case ClassEnable:
			return Enable
		case ClassDisable:
			return Disable
		case ClassShield:
			return Shield
		case ClassRadio:
			return Signal
		}
		if active {
			return Active
		}
		return ""
	case domain.SourceWifi:
		if class == ClassDisable {
			return Disable
		}
		if active {
			return Connected
		}
		return Signal
	case domain.SourceBluetooth:
		if active {
			return Active
		}
		return Inactive
	}
	return ""
}
