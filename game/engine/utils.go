package engine

// isPowerOfTwo reports whether v is a positive power of two
func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// CountTiles counts the occupied cells of a value grid
func CountTiles(grid [][]int) int {
	count := 0
	for _, row := range grid {
		for _, v := range row {
			if v != 0 {
				count++
			}
		}
	}
	return count
}

// CountValue counts the cells of a value grid holding exactly value
func CountValue(grid [][]int, value int) int {
	count := 0
	for _, row := range grid {
		for _, v := range row {
			if v == value {
				count++
			}
		}
	}
	return count
}

// SumGrid returns the total of all values in a grid
func SumGrid(grid [][]int) int {
	total := 0
	for _, row := range grid {
		for _, v := range row {
			total += v
		}
	}
	return total
}
