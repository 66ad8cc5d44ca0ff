package entity

// Facing is the direction the explorer last moved in.
type Facing int

// Facings, one per arrow key.
const (
	FacingDown Facing = iota
	FacingUp
	FacingLeft
	FacingRight
)

// Explorer is the party as a single marker on the exploration field.
type Explorer struct {
	X, Y   int
	Facing Facing
}

// NewExplorer creates an explorer at the given position, facing down.
func NewExplorer(x, y int) *Explorer {
	return &Explorer{X: x, Y: y, Facing: FacingDown}
}

// Move shifts the explorer by the given delta and turns it to face that way.
// Horizontal movement takes precedence when choosing the facing.
func (e *Explorer) Move(dx, dy int) {
	e.X += dx
	e.Y += dy
	switch {
	case dx < 0:
		e.Facing = FacingLeft
	case dx > 0:
		e.Facing = FacingRight
	case dy < 0:
		e.Facing = FacingUp
	case dy > 0:
		e.Facing = FacingDown
	}
}

// Position returns the current x, y coordinates.
func (e *Explorer) Position() (int, int) {
	return e.X, e.Y
}

// Symbol returns the display glyph for the current facing.
func (e *Explorer) Symbol() rune {
	switch e.Facing {
	case FacingUp:
		return '^'
	case FacingLeft:
		return '<'
	case FacingRight:
		return '>'
	default:
		return 'v'
	}
}
