package usecase

import (
	"fmt"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

// ActiveFirst moves active actions to the front, keeping relative order otherwise.
func ActiveFirst(actions []domain.Action) []domain.Action {
	result := make([]domain.Action, 0, len(actions))
	for _, a := range actions {
		if a.IsActive {
			result = append(result, a)
		}
	}
	for _, a := range actions {
		if !a.IsActive {
			result = append(result, a)
		}
	}
	return result
}

// Merge concatenates static actions (unchanged, in configuration order) with each
// backend group in the given order, surfacing the active option within each group.
func Merge(static []domain.Action, groups ...[]domain.Action) []domain.Action {
	size := len(static)
	for _, g := range groups {
		size += len(g)
	}
	merged := make([]domain.Action, 0, size)
	merged = append(merged, static...)
	for _, g := range groups {
		merged = append(merged, ActiveFirst(g)...)
	}
	return merged
}

// Dedupe makes every display unique. The first occurrence keeps its label; later
// ones get " [<source>]", then " [<source> #n]" if that is taken too. Nothing is
// dropped.
func Dedupe(actions []domain.Action) []domain.Action {
	seen := make(map[string]bool, len(actions))
	result := make([]domain.Action, 0, len(actions))
	for _, a := range actions {
		if seen[a.Display] {
			label := fmt.Sprintf("%s [%s]", a.Display, a.Source)
			for n := 2; seen[label]; n++ {
				label = fmt.Sprintf("%s [%s #%d]", a.Display, a.Source, n)
			}
			a.Display = label
		}
		seen[a.Display] = true
		result = append(result, a)
	}
	return result
}

// Displays returns the display strings in order.
func Displays(actions []domain.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Display
	}
	return out
}
