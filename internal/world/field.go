package world

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/skirmish/internal/telemetry"
)

const (
	// Default field dimensions, leaving room for a status line.
	DefaultWidth  = 80
	DefaultHeight = 21

	// DefaultZoneCount is the number of encounter zones on a new field.
	DefaultZoneCount = 30

	treeChance   = 0.12 // Probability that an inner tile is a tree
	clearRadius  = 2    // Tiles kept free around the start point
	placeRetries = 100
)

// Field is the exploration map: grass with scattered trees, ringed by trees,
// plus the encounter zones.
type Field struct {
	Width  int
	Height int
	Tiles  [][]Tile
	Zones  []Zone
	rng    *rand.Rand
}

// NewField creates a field of grass. Call Generate to plant trees and zones.
func NewField(width, height int, rng *rand.Rand) *Field {
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = TileGrass
		}
	}
	return &Field{
		Width:  width,
		Height: height,
		Tiles:  tiles,
		rng:    rng,
	}
}

// Generate plants the tree border and scattered trees, keeps the start
// point clear and places zoneCount encounter zones on grass.
func (f *Field) Generate(ctx context.Context, zoneCount int) {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "field.generate")
	defer span.End()

	startTime := time.Now()

	sx, sy := f.Start()
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			switch {
			case x == 0 || y == 0 || x == f.Width-1 || y == f.Height-1:
				f.Tiles[y][x] = TileTree
			case abs(x-sx) <= clearRadius && abs(y-sy) <= clearRadius:
				f.Tiles[y][x] = TileGrass
			case f.rng.Float64() < treeChance:
				f.Tiles[y][x] = TileTree
			default:
				f.Tiles[y][x] = TileGrass
			}
		}
	}

	f.Zones = f.Zones[:0]
	for i := 0; i < zoneCount; i++ {
		f.Zones = append(f.Zones, f.randomZone())
	}

	span.SetAttributes(
		attribute.Int("field.width", f.Width),
		attribute.Int("field.height", f.Height),
		attribute.Int("field.zone_count", len(f.Zones)),
		attribute.Int64("field.generation_ms", time.Since(startTime).Milliseconds()),
	)
}

// Start returns the explorer's starting point.
func (f *Field) Start() (int, int) {
	return f.Width / 2, f.Height / 2
}

// IsPassable returns true if the given position can be walked on.
func (f *Field) IsPassable(x, y int) bool {
	return f.GetTile(x, y).IsPassable()
}

// GetTile returns the tile at the given position. Out of bounds is a tree.
func (f *Field) GetTile(x, y int) Tile {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return TileTree
	}
	return f.Tiles[y][x]
}

// ZoneAt returns the index of the zone containing the position, or -1.
func (f *Field) ZoneAt(x, y int) int {
	for i, z := range f.Zones {
		if z.Contains(x, y) {
			return i
		}
	}
	return -1
}

// RelocateZone moves a zone to a new random spot after it has fired.
func (f *Field) RelocateZone(index int) {
	if index < 0 || index >= len(f.Zones) {
		return
	}
	f.Zones[index] = f.randomZone()
}

// randomZone picks a 1x1 zone on grass away from the start point.
func (f *Field) randomZone() Zone {
	sx, sy := f.Start()
	for i := 0; i < placeRetries; i++ {
		x := 1 + f.rng.Intn(max(f.Width-2, 1))
		y := 1 + f.rng.Intn(max(f.Height-2, 1))
		if !f.IsPassable(x, y) {
			continue
		}
		if abs(x-sx) <= clearRadius && abs(y-sy) <= clearRadius {
			continue
		}
		return Zone{X: x, Y: y, Width: 1, Height: 1}
	}
	// Crowded field: fall back to the corner of the start area.
	return Zone{X: sx + clearRadius, Y: sy + clearRadius, Width: 1, Height: 1}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
