package config

import "github.com/eliteGoblin/netmenu/internal/domain"

// StaticSource serves the configured actions unchanged.
type StaticSource struct {
	actions []domain.Action
}

// NewStaticSource converts configured actions in file order.
func NewStaticSource(custom []domain.CustomAction) *StaticSource {
	actions := make([]domain.Action, 0, len(custom))
	for _, c := range custom {
		actions = append(actions, domain.Action{
			Display: c.Display,
			Source:  domain.SourceStatic,
			Recipe:  domain.ShellRecipe(c.Cmd),
		})
	}
	return &StaticSource{actions: actions}
}

// Actions returns a copy of the static actions.
func (s *StaticSource) Actions() []domain.Action {
	out := make([]domain.Action, len(s.actions))
	copy(out, s.actions)
	return out
}

// Ensure StaticSource implements domain.ActionSource.
var _ domain.ActionSource = (*StaticSource)(nil)
