package network

import "sort"

// A gridCell is one position of the layered grid topology.
type gridCell struct {
	x, y int
	hop  int
}

// chebyshev returns the Chebyshev distance of (x, y) from the origin, which
// defines the hop layer of a grid cell.
func chebyshev(x, y int) int {
	if x < 0 {
		x = -x
	}
	if y < 0 {
		y = -y
	}
	if x > y {
		return x
	}
	return y
}

// gridCells returns the cells of a square grid centred at the origin,
// ordered layer by layer outward from the sink. Within a layer, cells are
// ordered by x, then y, so node IDs are stable across runs.
func gridCells(maxHops int) []gridCell {
	cells := make([]gridCell, 0, (2*maxHops+1)*(2*maxHops+1))

	for y := -maxHops; y <= maxHops; y++ {
		for x := -maxHops; x <= maxHops; x++ {
			cells = append(cells, gridCell{x: x, y: y, hop: chebyshev(x, y)})
		}
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].hop != cells[j].hop {
			return cells[i].hop < cells[j].hop
		}
		if cells[i].x != cells[j].x {
			return cells[i].x < cells[j].x
		}
		return cells[i].y < cells[j].y
	})

	return cells
}
