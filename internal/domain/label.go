package domain

// Cell is one grid pixel address.
type Cell struct {
	Row int
	Col int
}

// LabelComponents partitions the true cells of a row-major boolean mask into
// 4-connected components (N/S/E/W neighbors; diagonals do not connect).
//
// Components are numbered in scan order of their first cell, and each
// component's cell list is in row-major scan order over the whole mask —
// detectors depend on this ordering when chaining coordinates.
func LabelComponents(mask []bool, rows, cols int) [][]Cell {
	if rows == 0 || cols == 0 {
		return nil
	}

	labels := make([]int, rows*cols)
	next := 0

	// Flood fill with an explicit stack; recursion depth would be
	// unbounded on large coherent regions.
	var stack []int
	for start, set := range mask {
		if !set || labels[start] != 0 {
			continue
		}
		next++
		labels[start] = next
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			r, c := idx/cols, idx%cols

			visit := func(n int) {
				if mask[n] && labels[n] == 0 {
					labels[n] = next
					stack = append(stack, n)
				}
			}
			if r > 0 {
				visit(idx - cols)
			}
			if r < rows-1 {
				visit(idx + cols)
			}
			if c > 0 {
				visit(idx - 1)
			}
			if c < cols-1 {
				visit(idx + 1)
			}
		}
	}

	components := make([][]Cell, next)
	for idx, label := range labels {
		if label == 0 {
			continue
		}
		components[label-1] = append(components[label-1], Cell{Row: idx / cols, Col: idx % cols})
	}
	return components
}
