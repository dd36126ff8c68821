package usecase

import (
	"github.com/mattn/go-runewidth"

	"github.com/eliteGoblin/netmenu/internal/domain"
	"github.com/eliteGoblin/netmenu/internal/glyph"
)

// actionColumn is the width of the leading action name column.
const actionColumn = 10

// FormatEntry renders "<action padded to 10>- <icon> <text>". The icon is omitted
// when empty.
func FormatEntry(action, icon, text string) string {
	head := runewidth.FillRight(action, actionColumn) + "- "
	if icon == "" {
		return head + text
	}
	return head + icon + " " + text
}

// actionName is the leading column for an option of the given source.
func actionName(source domain.Source, class string) string {
	switch source {
	case domain.SourceExitNode:
		switch class {
		case glyph.ClassNone:
			return "tailscale"
		case "":
			return "exit-node"
		default:
			return "mullvad"
		}
	case domain.SourceVPNControl:
		return "tailscale"
	case domain.SourceWifi:
		return "wifi"
	case domain.SourceBluetooth:
		return "bluetooth"
	case domain.SourceSystem:
		return "system"
	default:
		return string(source)
	}
}

// Normalize turns a driver option into an Action whose recipe routes back to the
// driver with the given id. It has no side effects.
func Normalize(source domain.Source, backendID string, opt domain.BackendOption) domain.Action {
	return domain.Action{
		Display:  FormatEntry(actionName(source, opt.Class), glyph.For(source, opt.Class, opt.Active), opt.Label),
		Source:   source,
		Recipe:   domain.ApplyRecipe(backendID, opt.ID),
		IsActive: opt.Active,
	}
}

// NormalizeAll normalizes every option of one driver, preserving order.
func NormalizeAll(b domain.Backend, opts []domain.BackendOption) []domain.Action {
	actions := make([]domain.Action, 0, len(opts))
	for _, opt := range opts {
		actions = append(actions, Normalize(b.Source(), b.ID(), opt))
	}
	return actions
}
