// Package domain contains core entities and collaborator interfaces.
// This is the innermost layer - no external dependencies.
package domain

import "time"

// Source tags where an Action came from.
type Source string

const (
	SourceStatic     Source = "static-config"
	SourceExitNode   Source = "vpn-exit-node"
	SourceVPNControl Source = "vpn-control"
	SourceWifi       Source = "wifi-network"
	SourceBluetooth  Source = "bluetooth-device"
	SourceSystem     Source = "system"
)

// RecipeKind distinguishes how a Recipe is executed.
type RecipeKind int

const (
	// RecipeShell runs Command through the shell.
	RecipeShell RecipeKind = iota
	// RecipeApply routes Target back to the backend identified by Backend.
	RecipeApply
)

// Recipe is the opaque instruction attached to an Action.
type Recipe struct {
	Kind    RecipeKind
	Command string // RecipeShell only
	Backend string // RecipeApply only: id of the owning backend
	Target  string // RecipeApply only: option identifier passed to Apply
}

// ShellRecipe builds a recipe that runs cmd verbatim.
func ShellRecipe(cmd string) Recipe {
	return Recipe{Kind: RecipeShell, Command: cmd}
}

// ApplyRecipe builds a recipe that calls Apply(target) on the backend with the given id.
func ApplyRecipe(backendID, target string) Recipe {
	return Recipe{Kind: RecipeApply, Backend: backendID, Target: target}
}

// Valid reports whether the recipe can be resolved to something executable.
func (r Recipe) Valid() bool {
	switch r.Kind {
	case RecipeShell:
		return r.Command != ""
	case RecipeApply:
		return r.Backend != ""
	default:
		return false
	}
}

// Action is one normalized, selectable, executable unit presented to the user.
type Action struct {
	Display  string
	Source   Source
	Recipe   Recipe
	IsActive bool
}

// BackendOption is the raw datum a backend returns before normalization.
type BackendOption struct {
	ID     string // target identifier passed back to Apply (node name, SSID, MAC)
	Label  string // human label fragment
	Class  string // classification metadata, e.g. country for exit nodes
	Active bool
}

// CustomAction is a user-configured static action.
type CustomAction struct {
	Display string `toml:"display" yaml:"display"`
	Cmd     string `toml:"cmd" yaml:"cmd"`
}

// State is a step of one selection/execution cycle.
type State string

const (
	StateIdle       State = "idle"
	StateQuerying   State = "querying"
	StatePresenting State = "presenting"
	StateCancelled  State = "cancelled"
	StateSelected   State = "selected"
	StateExecuting  State = "executing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateCancelled || s == StateSucceeded || s == StateFailed
}

// Outcome captures what happened during a single cycle.
type Outcome struct {
	State      State
	Action     *Action // nil when cancelled
	Output     string  // captured output of the executed recipe
	Err        error   // set when State is StateFailed
	Offered    int     // number of entries handed to the picker
	ExecutedAt time.Time
	DurationMs int64
}
