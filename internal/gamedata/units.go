package gamedata

import "github.com/gdamore/tcell/v2"

// UnitDef defines a combatant type loaded from JSON. Heroes and enemies share
// the same shape; which side a unit fights on is decided when it is spawned.
type UnitDef struct {
	ID     string `json:"id"`     // Unique identifier (e.g., "green_dragon")
	Name   string `json:"name"`   // Display name, also used as the menu label
	Glyph  string `json:"glyph"`  // Single character for rendering
	Color  string `json:"color"`  // Hex color code (e.g., "#00FF00")
	HP     int    `json:"hp"`     // Maximum hit points
	Damage int    `json:"damage"` // Physical damage per attack
}

// GlyphRune returns the glyph as a rune for rendering.
func (u *UnitDef) GlyphRune() rune {
	if len(u.Glyph) == 0 {
		return '?'
	}
	return rune(u.Glyph[0])
}

// TCellColor returns the color as a tcell.Color.
func (u *UnitDef) TCellColor() tcell.Color {
	color, err := ParseHexColor(u.Color)
	if err != nil {
		return tcell.ColorWhite
	}
	return color
}

// HeroesFile represents the structure of heroes.json.
type HeroesFile struct {
	Heroes []UnitDef `json:"heroes"`
}

// EnemiesFile represents the structure of enemies.json.
type EnemiesFile struct {
	Enemies []UnitDef `json:"enemies"`
}

// LoadHeroes loads hero definitions from the embedded heroes.json file.
func LoadHeroes() ([]UnitDef, error) {
	file, err := Load[HeroesFile]("heroes.json")
	if err != nil {
		return nil, err
	}
	return file.Heroes, nil
}

// LoadEnemies loads enemy definitions from the embedded enemies.json file.
func LoadEnemies() ([]UnitDef, error) {
	file, err := Load[EnemiesFile]("enemies.json")
	if err != nil {
		return nil, err
	}
	return file.Enemies, nil
}
