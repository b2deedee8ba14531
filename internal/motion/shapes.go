package motion

// blockShape is a connected region in block coordinates.
type blockShape struct {
	id         int
	size       int
	sumX, sumY int
	minX, maxX int
	minY, maxY int
}

// extractShapes labels 4-connected regions of diffMarker cells. IDs
// start at 1 in scan order. The fill uses an explicit stack so frame
// size never affects call depth.
func extractShapes(diffs []byte, cols, rows int) []blockShape {
	n := cols * rows
	labels := make([]int, n)
	stack := make([]int, 0, n*2)
	var shapes []blockShape

	for start := 0; start < n; start++ {
		if diffs[start] != diffMarker || labels[start] != 0 {
			continue
		}
		id := len(shapes) + 1
		sh := blockShape{id: id, minX: cols, minY: rows, maxX: -1, maxY: -1}

		labels[start] = id
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y := idx%cols, idx/cols
			sh.size++
			sh.sumX += x
			sh.sumY += y
			sh.minX, sh.maxX = min(sh.minX, x), max(sh.maxX, x)
			sh.minY, sh.maxY = min(sh.minY, y), max(sh.maxY, y)

			push := func(nx, ny int) {
				if nx < 0 || ny < 0 || nx >= cols || ny >= rows {
					return
				}
				j := ny*cols + nx
				if diffs[j] == diffMarker && labels[j] == 0 {
					labels[j] = id
					stack = append(stack, j)
				}
			}
			push(x-1, y)
			push(x+1, y)
			push(x, y-1)
			push(x, y+1)
		}
		shapes = append(shapes, sh)
	}
	return shapes
}

func toPixelShapes(in []blockShape, squareX, squareY int) []Shape {
	out := make([]Shape, len(in))
	for i, s := range in {
		out[i] = Shape{
			ID:      s.id,
			Size:    s.size,
			CenterX: s.sumX * squareX / s.size,
			CenterY: s.sumY * squareY / s.size,
			MinX:    s.minX * squareX,
			MaxX:    s.maxX * squareX,
			MinY:    s.minY * squareY,
			MaxY:    s.maxY * squareY,
		}
	}
	return out
}
