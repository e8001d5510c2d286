package game

// Position is a cell on the park grid.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Bounds describes the park grid geometry.
type Bounds struct {
	Rows int
	Cols int
}

// Contains reports whether p lies inside the grid.
func (b Bounds) Contains(p Position) bool {
	return p.Row >= 0 && p.Row < b.Rows && p.Col >= 0 && p.Col < b.Cols
}

// GridSize is the player-selectable grid preset.
type GridSize string

const (
	GridSmall  GridSize = "small"
	GridMedium GridSize = "medium"
	GridLarge  GridSize = "large"
)

// BoundsForSize maps a grid preset to concrete dimensions. Unknown presets
// fall back to medium.
func BoundsForSize(size GridSize) Bounds {
	switch size {
	case GridSmall:
		return Bounds{Rows: 8, Cols: 10}
	case GridLarge:
		return Bounds{Rows: 16, Cols: 20}
	default:
		return Bounds{Rows: 12, Cols: 15}
	}
}
