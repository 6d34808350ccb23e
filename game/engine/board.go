package engine

import (
	"fmt"
	"math/rand"
	"strings"
)

// Board is a fixed-size grid of cells. Each cell owns its tile by value, so
// moving a tile is a copy and the source cell is cleared.
type Board struct {
	rows  int
	cols  int
	cells []Cell
}

// NewBoard creates an empty rows x cols board
func NewBoard(rows, cols int) *Board {
	return &Board{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
}

// NewBoardFromValues builds a board from a value grid, 0 meaning empty.
// All rows must have the same length.
func NewBoardFromValues(values [][]int) (*Board, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, fmt.Errorf("board must have at least one row and one column")
	}
	b := NewBoard(len(values), len(values[0]))
	for r, row := range values {
		if len(row) != b.cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", r, len(row), b.cols)
		}
		for c, v := range row {
			if v == 0 {
				continue
			}
			if !isPowerOfTwo(v) {
				return nil, fmt.Errorf("value %d at (%d,%d) is not a power of two", v, r, c)
			}
			b.Place(r, c, v)
		}
	}
	return b, nil
}

// Rows returns the number of rows
func (b *Board) Rows() int {
	return b.rows
}

// Cols returns the number of columns
func (b *Board) Cols() int {
	return b.cols
}

func (b *Board) index(row, col int) int {
	return row*b.cols + col
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}

// At returns the tile at (row, col) and whether the cell is occupied.
// Out-of-range coordinates read as empty.
func (b *Board) At(row, col int) (Tile, bool) {
	if !b.inBounds(row, col) {
		return Tile{}, false
	}
	return b.cells[b.index(row, col)].Tile()
}

// Place puts a fresh tile with the given value at (row, col), replacing any occupant
func (b *Board) Place(row, col, value int) {
	b.cells[b.index(row, col)] = Cell{tile: NewTile(value), occupied: true}
}

// Remove clears the cell at (row, col)
func (b *Board) Remove(row, col int) {
	b.cells[b.index(row, col)] = Cell{}
}

// Clear empties every cell
func (b *Board) Clear() {
	for i := range b.cells {
		b.cells[i] = Cell{}
	}
}

// EmptyCount returns the number of empty cells
func (b *Board) EmptyCount() int {
	count := 0
	for _, cell := range b.cells {
		if cell.Empty() {
			count++
		}
	}
	return count
}

// IsFull reports whether no cell is empty
func (b *Board) IsFull() bool {
	return b.EmptyCount() == 0
}

// SpawnRandom places one tile on an empty cell.
//
// A start index is drawn uniformly and the grid is scanned forward, wrapping at
// rows*cols, until an empty cell is found. The value is rule.Primary with
// probability rule.PrimaryPercent/100, else rule.Secondary. On a full board
// nothing happens and ok is false.
func (b *Board) SpawnRandom(rng *rand.Rand, rule SpawnRule) (pos Position, value int, ok bool) {
	if b.IsFull() {
		return Position{}, 0, false
	}

	total := len(b.cells)
	location := rng.Intn(total)
	for !b.cells[location].Empty() {
		location = (location + 1) % total
	}

	value = rule.Secondary
	if rng.Intn(100) < rule.PrimaryPercent {
		value = rule.Primary
	}

	pos = Position{Row: location / b.cols, Col: location % b.cols}
	b.Place(pos.Row, pos.Col, value)
	return pos, value, true
}

// ResolveMove slides and merges every tile toward the edge named by dir.
//
// Each tile keeps stepping while the next cell is empty, or merges into an
// equal neighbour when both are still merge-eligible. A merged tile is
// ineligible for the rest of the move, so a tile never merges twice. All tiles
// are made eligible again before returning.
func (b *Board) ResolveMove(dir Direction) MoveOutcome {
	tr, ok := traversals[dir]
	if !ok {
		return MoveOutcome{}
	}

	var outcome MoveOutcome
	for i := 0; i < b.rows; i++ {
		row := i
		if tr.rowsDesc {
			row = b.rows - 1 - i
		}
		for j := 0; j < b.cols; j++ {
			col := j
			if tr.colsDesc {
				col = b.cols - 1 - j
			}
			b.slide(row, col, tr, &outcome)
		}
	}

	for i := range b.cells {
		if b.cells[i].occupied {
			b.cells[i].tile.ResetMergeEligibility()
		}
	}

	return outcome
}

// slide resolves a single source cell
func (b *Board) slide(row, col int, tr traversal, outcome *MoveOutcome) {
	if b.cells[b.index(row, col)].Empty() {
		return
	}

	for {
		nextRow, nextCol := row+tr.dRow, col+tr.dCol
		if !b.inBounds(nextRow, nextCol) {
			return
		}

		src := &b.cells[b.index(row, col)]
		dst := &b.cells[b.index(nextRow, nextCol)]

		switch {
		case dst.Empty():
			*dst = *src
			*src = Cell{}
		case dst.tile.Value() == src.tile.Value() && dst.tile.CanMerge() && src.tile.CanMerge():
			dst.tile.SetValue(dst.tile.Value() * 2)
			dst.tile.ConsumeMergeEligibility()
			*src = Cell{}
			outcome.ScoreDelta += dst.tile.Value()
			outcome.Merges++
		default:
			return
		}

		outcome.Moved = true
		row, col = nextRow, nextCol
	}
}

// IsTerminal reports whether no move is possible: the grid is full and no two
// orthogonal neighbours hold equal values.
func (b *Board) IsTerminal() bool {
	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.cols; col++ {
			current, ok := b.At(row, col)
			if !ok {
				return false
			}
			if b.hasMergeableNeighbour(row, col, current) {
				return false
			}
		}
	}
	return true
}

// hasMergeableNeighbour checks the right and lower neighbours; together with the
// row-major scan this covers every adjacent pair.
func (b *Board) hasMergeableNeighbour(row, col int, current Tile) bool {
	neighbours := []Position{{Row: row, Col: col + 1}, {Row: row + 1, Col: col}}
	for _, n := range neighbours {
		if !b.inBounds(n.Row, n.Col) {
			continue
		}
		check, ok := b.At(n.Row, n.Col)
		if !ok || check.Value() == current.Value() {
			return true
		}
	}
	return false
}

// HasWinningTile reports whether any tile value is at least target
func (b *Board) HasWinningTile(target int) bool {
	return b.MaxValue() >= target
}

// MaxValue returns the largest tile value, or 0 on an empty board
func (b *Board) MaxValue() int {
	highest := 0
	for _, cell := range b.cells {
		if cell.occupied && cell.tile.Value() > highest {
			highest = cell.tile.Value()
		}
	}
	return highest
}

// Sum returns the total of all tile values
func (b *Board) Sum() int {
	total := 0
	for _, cell := range b.cells {
		if cell.occupied {
			total += cell.tile.Value()
		}
	}
	return total
}

// Values returns a rows x cols snapshot of tile values, 0 meaning empty
func (b *Board) Values() [][]int {
	grid := make([][]int, b.rows)
	for row := range grid {
		grid[row] = make([]int, b.cols)
		for col := range grid[row] {
			if tile, ok := b.At(row, col); ok {
				grid[row][col] = tile.Value()
			}
		}
	}
	return grid
}

// Tiles returns every occupied cell in row-major order
func (b *Board) Tiles() []PlacedTile {
	tiles := make([]PlacedTile, 0, len(b.cells))
	for i, cell := range b.cells {
		if cell.occupied {
			tiles = append(tiles, PlacedTile{Row: i / b.cols, Col: i % b.cols, Value: cell.tile.Value()})
		}
	}
	return tiles
}

// Clone returns an independent copy of the board
func (b *Board) Clone() *Board {
	clone := &Board{
		rows:  b.rows,
		cols:  b.cols,
		cells: make([]Cell, len(b.cells)),
	}
	copy(clone.cells, b.cells)
	return clone
}

// Equal reports whether both boards have the same shape and values
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.rows != other.rows || b.cols != other.cols {
		return false
	}
	for i := range b.cells {
		if b.cells[i].occupied != other.cells[i].occupied {
			return false
		}
		if b.cells[i].occupied && b.cells[i].tile.Value() != other.cells[i].tile.Value() {
			return false
		}
	}
	return true
}

// String renders the board as a fixed-width text grid
func (b *Board) String() string {
	width := len(fmt.Sprint(b.MaxValue()))
	if width < 1 {
		width = 1
	}

	var sb strings.Builder
	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.cols; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			if tile, ok := b.At(row, col); ok {
				fmt.Fprintf(&sb, "%*d", width, tile.Value())
			} else {
				fmt.Fprintf(&sb, "%*s", width, ".")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
