// Package combat provides the turn-based battle state machine.
package combat

import (
	"github.com/samdwyer/skirmish/internal/entity"
)

// Action is what a hero does on their turn. Values match the action menu
// cursor order.
type Action int

const (
	// ActionAttack deals physical damage.
	ActionAttack Action = iota
	// ActionMagic deals magic damage, twice the physical value.
	ActionMagic
)

// String returns the action identifier.
func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionMagic:
		return "magic"
	default:
		return "unknown"
	}
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a == ActionAttack || a == ActionMagic
}

// Resolve carries out action from actor against target.
func Resolve(actor, target *entity.Unit, action Action) entity.AttackResult {
	if action == ActionMagic {
		return actor.AttackWithMagic(target)
	}
	return actor.Attack(target)
}

// PreviewDamage returns the damage action would deal, without applying it.
func PreviewDamage(actor *entity.Unit, action Action) int {
	if action == ActionMagic {
		return actor.MagicDamage
	}
	return actor.Damage
}
