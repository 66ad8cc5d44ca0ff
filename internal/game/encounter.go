package game

import (
	"fmt"

	"github.com/samdwyer/skirmish/internal/entity"
	"github.com/samdwyer/skirmish/internal/gamedata"
)

// BuildRosters spawns a full-health hero party and the enemies of enc, in
// data file order.
func BuildRosters(catalog *gamedata.Catalog, enc *gamedata.EncounterDef) (heroes, enemies []*entity.Unit, err error) {
	if enc == nil {
		return nil, nil, fmt.Errorf("no encounter to spawn")
	}

	for _, def := range catalog.Heroes.All() {
		heroes = append(heroes, entity.NewUnitFromDef(&def, entity.SideHero))
	}
	for _, id := range enc.Enemies {
		def := catalog.Enemies.GetByID(id)
		if def == nil {
			return nil, nil, fmt.Errorf("encounter %s: unknown enemy %s", enc.ID, id)
		}
		enemies = append(enemies, entity.NewUnitFromDef(def, entity.SideEnemy))
	}
	return heroes, enemies, nil
}
