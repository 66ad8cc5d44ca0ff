package gamedata

import (
	"errors"
	"fmt"
	"math/rand"
)

// UnitRegistry holds loaded unit definitions keyed by ID.
type UnitRegistry struct {
	units map[string]*UnitDef
	all   []UnitDef
}

// NewUnitRegistry creates a registry from loaded unit definitions.
func NewUnitRegistry(units []UnitDef) *UnitRegistry {
	registry := &UnitRegistry{
		units: make(map[string]*UnitDef),
		all:   units,
	}
	for i := range units {
		registry.units[units[i].ID] = &units[i]
	}
	return registry
}

// LoadHeroRegistry loads and creates a registry from the embedded heroes.json.
func LoadHeroRegistry() (*UnitRegistry, error) {
	heroes, err := LoadHeroes()
	if err != nil {
		return nil, err
	}
	if len(heroes) == 0 {
		return nil, errors.New("no heroes loaded from heroes.json")
	}
	return NewUnitRegistry(heroes), nil
}

// LoadEnemyRegistry loads and creates a registry from the embedded enemies.json.
func LoadEnemyRegistry() (*UnitRegistry, error) {
	enemies, err := LoadEnemies()
	if err != nil {
		return nil, err
	}
	if len(enemies) == 0 {
		return nil, errors.New("no enemies loaded from enemies.json")
	}
	return NewUnitRegistry(enemies), nil
}

// GetByID returns the unit definition with the given ID, or nil if not found.
func (r *UnitRegistry) GetByID(id string) *UnitDef {
	return r.units[id]
}

// All returns all unit definitions in file order.
func (r *UnitRegistry) All() []UnitDef {
	return r.all
}

// Count returns the number of unit types in the registry.
func (r *UnitRegistry) Count() int {
	return len(r.all)
}

// =============================================================================
// EncounterRegistry
// =============================================================================

// EncounterRegistry holds encounter definitions and picks them by weight.
type EncounterRegistry struct {
	encounters  []EncounterDef
	totalWeight int
}

// NewEncounterRegistry creates a registry from loaded encounter definitions.
func NewEncounterRegistry(encounters []EncounterDef) *EncounterRegistry {
	totalWeight := 0
	for _, e := range encounters {
		totalWeight += e.Weight
	}
	return &EncounterRegistry{
		encounters:  encounters,
		totalWeight: totalWeight,
	}
}

// LoadEncounterRegistry loads encounters and checks every enemy reference
// against the given enemy registry.
func LoadEncounterRegistry(enemies *UnitRegistry) (*EncounterRegistry, error) {
	encounters, err := LoadEncounters()
	if err != nil {
		return nil, err
	}
	if len(encounters) == 0 {
		return nil, errors.New("no encounters loaded from encounters.json")
	}
	for _, enc := range encounters {
		if len(enc.Enemies) == 0 {
			return nil, fmt.Errorf("encounter %s has no enemies", enc.ID)
		}
		for _, id := range enc.Enemies {
			if enemies.GetByID(id) == nil {
				return nil, fmt.Errorf("encounter %s references unknown enemy %s", enc.ID, id)
			}
		}
	}
	return NewEncounterRegistry(encounters), nil
}

// SpawnRandom selects a random encounter using weighted probability.
func (r *EncounterRegistry) SpawnRandom(rng *rand.Rand) *EncounterDef {
	if r.totalWeight <= 0 || len(r.encounters) == 0 {
		return nil
	}

	roll := rng.Intn(r.totalWeight)

	cumulative := 0
	for i := range r.encounters {
		cumulative += r.encounters[i].Weight
		if roll < cumulative {
			return &r.encounters[i]
		}
	}

	return &r.encounters[0]
}

// GetByID returns the encounter with the given ID, or nil if not found.
func (r *EncounterRegistry) GetByID(id string) *EncounterDef {
	for i := range r.encounters {
		if r.encounters[i].ID == id {
			return &r.encounters[i]
		}
	}
	return nil
}

// Count returns the number of encounters in the registry.
func (r *EncounterRegistry) Count() int {
	return len(r.encounters)
}
