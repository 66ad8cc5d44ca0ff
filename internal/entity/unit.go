// Package entity provides the combatants and the exploring party.
package entity

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/skirmish/internal/gamedata"
)

// Side tags which controller drives a unit.
type Side int

const (
	// SideHero units are driven by player input.
	SideHero Side = iota
	// SideEnemy units are driven by the battle AI.
	SideEnemy
)

// String returns the side name.
func (s Side) String() string {
	switch s {
	case SideHero:
		return "hero"
	case SideEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// Slot is the menu line that represents a unit on screen. The unit never
// owns it; it only tells it to deactivate when the unit dies.
type Slot interface {
	Deactivate()
}

// Unit is one combatant. HP only changes through TakeDamage.
type Unit struct {
	Kind        string // Display name, also the menu label
	Side        Side
	Symbol      rune
	Color       tcell.Color
	MaxHP       int
	HP          int
	Damage      int // Physical damage per attack
	MagicDamage int // Always 2x Damage, fixed at creation

	alive bool
	slot  Slot
}

// NewUnit creates a living unit at full health.
func NewUnit(kind string, side Side, hp, damage int) *Unit {
	if hp < 0 {
		hp = 0
	}
	return &Unit{
		Kind:        kind,
		Side:        side,
		Symbol:      '?',
		Color:       tcell.ColorWhite,
		MaxHP:       hp,
		HP:          hp,
		Damage:      damage,
		MagicDamage: damage * 2,
		alive:       hp > 0,
	}
}

// NewHero creates a player-controlled unit.
func NewHero(kind string, hp, damage int) *Unit {
	return NewUnit(kind, SideHero, hp, damage)
}

// NewEnemy creates an AI-controlled unit.
func NewEnemy(kind string, hp, damage int) *Unit {
	return NewUnit(kind, SideEnemy, hp, damage)
}

// NewUnitFromDef creates a unit from a data-driven definition.
func NewUnitFromDef(def *gamedata.UnitDef, side Side) *Unit {
	u := NewUnit(def.Name, side, def.HP, def.Damage)
	u.Symbol = def.GlyphRune()
	u.Color = def.TCellColor()
	return u
}

// IsAlive reports whether the unit can still act or be targeted.
func (u *Unit) IsAlive() bool { return u.alive }

// IsPlayer reports whether the unit waits for player input on its turn.
func (u *Unit) IsPlayer() bool { return u.Side == SideHero }

// Label returns the text shown for the unit in a menu.
func (u *Unit) Label() string { return u.Kind }

// BindSlot attaches the menu line that represents this unit. A dead unit
// deactivates the slot immediately and keeps no reference to it.
func (u *Unit) BindSlot(s Slot) {
	if !u.alive {
		if s != nil {
			s.Deactivate()
		}
		u.slot = nil
		return
	}
	u.slot = s
}

// Slot returns the bound menu line, or nil once the unit has died.
func (u *Unit) Slot() Slot { return u.slot }

// TakeDamage lowers HP, never below zero, and returns the HP actually lost.
// Reaching zero kills the unit exactly once: the bound slot is deactivated
// and released. Damage to a dead unit is ignored.
func (u *Unit) TakeDamage(amount int) int {
	if !u.alive || amount <= 0 {
		return 0
	}
	actual := amount
	if actual > u.HP {
		actual = u.HP
	}
	u.HP -= actual
	if u.HP == 0 {
		u.alive = false
		if u.slot != nil {
			u.slot.Deactivate()
			u.slot = nil
		}
	}
	return actual
}

// Attack hits target with physical damage.
func (u *Unit) Attack(target *Unit) AttackResult {
	return u.strike(target, u.Damage, false)
}

// AttackWithMagic hits target with magic damage.
func (u *Unit) AttackWithMagic(target *Unit) AttackResult {
	return u.strike(target, u.MagicDamage, true)
}

func (u *Unit) strike(target *Unit, damage int, magic bool) AttackResult {
	result := AttackResult{Attacker: u, Target: target, Damage: damage, Magic: magic}
	if target == nil || !target.IsAlive() {
		return result
	}
	result.Landed = true
	result.Dealt = target.TakeDamage(damage)
	result.Killed = !target.IsAlive()
	return result
}

// AttackResult describes one resolved attack.
type AttackResult struct {
	Attacker *Unit
	Target   *Unit
	Damage   int  // Nominal damage of the attack
	Dealt    int  // HP the target actually lost
	Magic    bool // True for AttackWithMagic
	Landed   bool // False when the target was already dead
	Killed   bool // True when this attack killed the target
}

// Message returns the banner text for the attack, or "" if it did not land.
func (r AttackResult) Message() string {
	if !r.Landed {
		return ""
	}
	if r.Magic {
		return fmt.Sprintf("%s attacks %s with a spell for %d damage!", r.Attacker.Kind, r.Target.Kind, r.Damage)
	}
	return fmt.Sprintf("%s attacks %s for %d damage!", r.Attacker.Kind, r.Target.Kind, r.Damage)
}
