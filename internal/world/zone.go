package world

// Zone is an invisible patch of ground that starts a battle when the
// explorer steps into it.
type Zone struct {
	X, Y          int
	Width, Height int
}

// Contains returns true if the given point is inside the zone.
func (z Zone) Contains(x, y int) bool {
	return x >= z.X && x < z.X+z.Width && y >= z.Y && y < z.Y+z.Height
}

// Center returns the center coordinates of the zone.
func (z Zone) Center() (int, int) {
	return z.X + z.Width/2, z.Y + z.Height/2
}
