// Package world provides the exploration field and its encounter zones.
package world

// Tile represents a single map tile.
type Tile rune

const (
	// TileGrass is open ground.
	TileGrass Tile = '.'
	// TileTree is an obstacle.
	TileTree Tile = 'T'
)

// IsPassable returns true if the tile can be walked on.
func (t Tile) IsPassable() bool {
	return t == TileGrass
}

// Rune returns the tile's display character.
func (t Tile) Rune() rune {
	return rune(t)
}
