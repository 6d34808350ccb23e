package main

import (
	"math"

	"github.com/wricardo/game2048/game/engine"
)

// Heuristic weights
const (
	emptyWeight        = 2.7
	monotonicityWeight = 1.0
	smoothnessWeight   = 0.1
	cornerWeight       = 1.5
	mergeWeight        = 0.5
)

// preference breaks ties so the largest tile drifts to the bottom-left corner
var preference = []engine.Direction{engine.Down, engine.Left, engine.Right, engine.Up}

// Strategy picks moves with a one-ply expectimax: every legal direction is
// resolved on a copy of the board, then the spawn that follows is averaged
// over all empty cells using the configured spawn rule.
type Strategy struct {
	spawn engine.SpawnRule
}

// NewStrategy creates a strategy for boards spawning tiles per rule
func NewStrategy(rule engine.SpawnRule) *Strategy {
	if rule.Primary == 0 {
		rule = engine.DefaultSpawnRule()
	}
	return &Strategy{spawn: rule}
}

// NextMove returns the best direction for grid, and false when nothing moves
func (s *Strategy) NextMove(grid [][]int) (engine.Direction, bool) {
	board, err := engine.NewBoardFromValues(grid)
	if err != nil {
		return 0, false
	}

	best := math.Inf(-1)
	var bestDir engine.Direction
	found := false

	for _, dir := range preference {
		next := board.Clone()
		outcome := next.ResolveMove(dir)
		if !outcome.Moved {
			continue
		}

		score := s.expectation(next) + mergeWeight*float64(outcome.Merges)
		if score > best {
			best = score
			bestDir = dir
			found = true
		}
	}

	return bestDir, found
}

// expectation averages evaluate over every possible spawn on board
func (s *Strategy) expectation(board *engine.Board) float64 {
	empty := emptyCells(board)
	if len(empty) == 0 {
		return evaluate(board)
	}

	primaryP := float64(s.spawn.PrimaryPercent) / 100
	total := 0.0
	for _, pos := range empty {
		board.Place(pos.Row, pos.Col, s.spawn.Primary)
		total += primaryP * evaluate(board)

		if primaryP < 1 {
			board.Place(pos.Row, pos.Col, s.spawn.Secondary)
			total += (1 - primaryP) * evaluate(board)
		}
		board.Remove(pos.Row, pos.Col)
	}
	return total / float64(len(empty))
}

func emptyCells(board *engine.Board) []engine.Position {
	var cells []engine.Position
	for row := 0; row < board.Rows(); row++ {
		for col := 0; col < board.Cols(); col++ {
			if _, ok := board.At(row, col); !ok {
				cells = append(cells, engine.Position{Row: row, Col: col})
			}
		}
	}
	return cells
}

// evaluate scores a position; higher is better
func evaluate(board *engine.Board) float64 {
	grid := logGrid(board)

	score := emptyWeight * math.Log(float64(board.EmptyCount())+1)
	score += monotonicityWeight * monotonicity(grid)
	score -= smoothnessWeight * roughness(grid)

	corner := grid[len(grid)-1][0]
	if corner == maxOf(grid) {
		score += cornerWeight * corner
	}
	return score
}

// logGrid converts tile values to their base-2 logarithm, 0 for empty cells
func logGrid(board *engine.Board) [][]float64 {
	values := board.Values()
	grid := make([][]float64, len(values))
	for r, row := range values {
		grid[r] = make([]float64, len(row))
		for c, v := range row {
			if v > 0 {
				grid[r][c] = math.Log2(float64(v))
			}
		}
	}
	return grid
}

// monotonicity rewards rows increasing towards the left and columns increasing
// towards the bottom. It is never positive; 0 means perfectly ordered.
func monotonicity(grid [][]float64) float64 {
	penalty := 0.0
	for _, row := range grid {
		for c := 1; c < len(row); c++ {
			if row[c] > row[c-1] {
				penalty += row[c] - row[c-1]
			}
		}
	}
	for c := range grid[0] {
		for r := 1; r < len(grid); r++ {
			if grid[r-1][c] > grid[r][c] {
				penalty += grid[r-1][c] - grid[r][c]
			}
		}
	}
	return -penalty
}

// roughness sums the differences between occupied neighbours
func roughness(grid [][]float64) float64 {
	total := 0.0
	for r, row := range grid {
		for c, v := range row {
			if v == 0 {
				continue
			}
			if c+1 < len(row) && row[c+1] != 0 {
				total += math.Abs(v - row[c+1])
			}
			if r+1 < len(grid) && grid[r+1][c] != 0 {
				total += math.Abs(v - grid[r+1][c])
			}
		}
	}
	return total
}

func maxOf(grid [][]float64) float64 {
	highest := 0.0
	for _, row := range grid {
		for _, v := range row {
			highest = math.Max(highest, v)
		}
	}
	return highest
}
