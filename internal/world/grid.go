package world

import "math"

// Default playfield dimensions, in cells.
const (
	DefaultGridWidth  = 20
	DefaultGridHeight = 15
)

// Cell addresses one discrete grid square.
type Cell struct {
	X int
	Y int
}

// Position is a continuous coordinate in cell units. Entities interpolate
// between cells, so most positions are fractional.
type Position struct {
	X float64
	Y float64
}

// Cell rounds the position to the nearest discrete cell.
func (p Position) Cell() Cell {
	return Cell{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// DistanceTo returns the Euclidean distance to other.
func (p Position) DistanceTo(other Position) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// PositionOf returns the continuous coordinate at the center of a cell.
func PositionOf(c Cell) Position {
	return Position{X: float64(c.X), Y: float64(c.Y)}
}

// Grid is the static playfield geometry. The zero value is unusable; use
// DefaultGrid or construct with explicit dimensions.
type Grid struct {
	Width  int
	Height int
}

func DefaultGrid() Grid {
	return Grid{Width: DefaultGridWidth, Height: DefaultGridHeight}
}

// Contains reports whether the cell lies inside the grid.
func (g Grid) Contains(c Cell) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// SpawnCell is where hostiles enter, the left edge at mid height.
func (g Grid) SpawnCell() Cell {
	return Cell{X: 0, Y: g.Height / 2}
}

// GoalCell is the defended exit, the right edge at mid height.
func (g Grid) GoalCell() Cell {
	return Cell{X: g.Width - 1, Y: g.Height / 2}
}

// CellSet is a set of blocked cells handed to the route planner.
type CellSet map[Cell]struct{}

func (s CellSet) Add(c Cell) {
	s[c] = struct{}{}
}

func (s CellSet) Has(c Cell) bool {
	_, ok := s[c]
	return ok
}
