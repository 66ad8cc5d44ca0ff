package gamedata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Load reads and strictly decodes a JSON file from the embedded filesystem.
// Unknown fields are rejected so typos in data files fail at startup.
func Load[T any](filename string) (T, error) {
	var result T

	content, err := dataFS.ReadFile(filename)
	if err != nil {
		return result, fmt.Errorf("failed to read embedded file %s: %w", filename, err)
	}

	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&result); err != nil {
		return result, fmt.Errorf("failed to parse JSON from %s: %w", filename, err)
	}

	return result, nil
}

// MustLoad reads and decodes a JSON file, panicking on error.
func MustLoad[T any](filename string) T {
	result, err := Load[T](filename)
	if err != nil {
		panic(err)
	}
	return result
}

// Catalog bundles every registry the game needs to spawn battles.
type Catalog struct {
	Heroes     *UnitRegistry
	Enemies    *UnitRegistry
	Encounters *EncounterRegistry
}

// LoadCatalog loads heroes, enemies and encounters from the embedded files.
func LoadCatalog() (*Catalog, error) {
	heroes, err := LoadHeroRegistry()
	if err != nil {
		return nil, err
	}
	enemies, err := LoadEnemyRegistry()
	if err != nil {
		return nil, err
	}
	encounters, err := LoadEncounterRegistry(enemies)
	if err != nil {
		return nil, err
	}
	return &Catalog{Heroes: heroes, Enemies: enemies, Encounters: encounters}, nil
}
