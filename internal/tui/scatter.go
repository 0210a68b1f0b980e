package tui

import (
	"math"
	"strings"

	"textvec/internal/domain"
)

const (
	collisionMark = '*'
	selectedMark  = '@'
	labels        = "123456789abcdefghijklmnopqrstuvwxyz"
)

// Label is the plot marker of point i.
func Label(i int) rune {
	if i < 0 || i >= len(labels) {
		return '+'
	}
	return rune(labels[i])
}

// Scatter draws points on a width x height character grid framed by axes.
// Larger Y values are drawn higher. A cell shared by several points shows
// collisionMark; the selected point, when >= 0, always shows selectedMark.
func Scatter(points domain.Matrix, width, height, selected int) string {
	if width < 3 || height < 3 {
		return ""
	}
	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	// axes through the origin when it is in range, else along the borders
	minX, maxX, minY, maxY := bounds(points)
	col0 := cell(0, minX, maxX, width)
	row0 := height - 1 - cell(0, minY, maxY, height)
	if minX > 0 || maxX < 0 {
		col0 = 0
	}
	if minY > 0 || maxY < 0 {
		row0 = height - 1
	}
	for r := range grid {
		grid[r][col0] = '|'
	}
	for c := range grid[row0] {
		grid[row0][c] = '-'
	}
	grid[row0][col0] = '+'

	occupied := make(map[[2]int]bool, len(points))
	var selCell [2]int
	for i, p := range points {
		c := cell(p[0], minX, maxX, width)
		r := height - 1 - cell(p[1], minY, maxY, height)
		key := [2]int{r, c}
		if occupied[key] {
			grid[r][c] = collisionMark
		} else {
			grid[r][c] = Label(i)
			occupied[key] = true
		}
		if i == selected {
			selCell = key
		}
	}
	if selected >= 0 && selected < len(points) {
		grid[selCell[0]][selCell[1]] = selectedMark
	}

	lines := make([]string, height)
	for r := range grid {
		lines[r] = string(grid[r])
	}
	return strings.Join(lines, "\n")
}

func bounds(points domain.Matrix) (minX, maxX, minY, maxY float64) {
	if len(points) == 0 {
		return -1, 1, -1, 1
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	return minX, maxX, minY, maxY
}

// cell maps v in [lo, hi] onto 0..n-1. A zero-width range maps to the middle.
func cell(v, lo, hi float64, n int) int {
	if hi-lo <= 0 || math.IsNaN(v) {
		return n / 2
	}
	i := int(math.Round((v - lo) / (hi - lo) * float64(n-1)))
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
