// Package game provides the main game loop and state management.
package game

// State represents the current game state.
type State int

const (
	// StateExplore is the default mode where the explorer walks the field.
	StateExplore State = iota
	// StateCombat is the battle mode driven by the battle menus.
	StateCombat
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateExplore:
		return "explore"
	case StateCombat:
		return "combat"
	default:
		return "unknown"
	}
}
