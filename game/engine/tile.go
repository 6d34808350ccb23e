package engine

// Tile is a single numbered occupant of a board cell.
//
// The merge flag is per-move state: it starts true, is consumed when the tile
// takes part in a merge and is restored at the end of every ResolveMove.
type Tile struct {
	value         int
	mergeEligible bool
}

// NewTile creates a merge-eligible tile with the given value
func NewTile(value int) Tile {
	return Tile{value: value, mergeEligible: true}
}

// Value returns the tile value
func (t Tile) Value() int {
	return t.value
}

// CanMerge reports whether the tile may still merge during the current move
func (t Tile) CanMerge() bool {
	return t.mergeEligible
}

// SetValue replaces the tile value
func (t *Tile) SetValue(v int) {
	t.value = v
}

// ConsumeMergeEligibility marks the tile as merged for the current move
func (t *Tile) ConsumeMergeEligibility() {
	t.mergeEligible = false
}

// ResetMergeEligibility makes the tile mergeable again
func (t *Tile) ResetMergeEligibility() {
	t.mergeEligible = true
}

// Cell is either empty or holds exactly one tile by value
type Cell struct {
	tile     Tile
	occupied bool
}

// Empty reports whether the cell holds no tile
func (c Cell) Empty() bool {
	return !c.occupied
}

// Tile returns the held tile and whether the cell is occupied
func (c Cell) Tile() (Tile, bool) {
	return c.tile, c.occupied
}
