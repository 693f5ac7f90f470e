package dom

// Rect is a closed, axis-aligned rectangle with (X1,Y1) bottom-left and
// (X2,Y2) top-right, in CSS pixels.
//
// Ported from the paint-order occlusion filter's RectUnionPure helper: a
// disjoint-rectangle union supporting a contains/add pair suitable for a
// few thousand rectangles without external dependencies.
type Rect struct {
	X1, X2, Y1, Y2 float64
}

func (r Rect) Area() float64 {
	return (r.Y2 - r.Y1) * (r.X2 - r.X1)
}

func (r Rect) Intersects(o Rect) bool {
	return !(o.X2 <= r.X1 || r.X2 <= o.X1 || o.Y2 <= r.Y1 || r.Y2 <= o.Y1)
}

func (r Rect) Contains(o Rect) bool {
	return r.Y1 <= o.Y1 && r.X1 <= o.X1 && r.Y2 >= o.Y2 && r.X2 >= o.X2
}

// rectUnion maintains a disjoint set of rectangles.
type rectUnion struct {
	rects []Rect
}

// splitDiff returns up to four rectangles covering a \ b, assuming a
// intersects b.
func splitDiff(a, b Rect) []Rect {
	var parts []Rect

	if a.Y2 > b.Y2 {
		parts = append(parts, Rect{a.X1, a.X2, b.Y2, a.Y2})
	}
	if a.Y1 < b.Y1 {
		parts = append(parts, Rect{a.X1, a.X2, a.Y1, b.Y1})
	}

	yHi := min(a.Y2, b.Y2)
	yLo := max(a.Y1, b.Y1)

	if a.X2 > b.X2 {
		parts = append(parts, Rect{b.X2, a.X2, yLo, yHi})
	}
	if a.X1 < b.X1 {
		parts = append(parts, Rect{a.X1, b.X1, yLo, yHi})
	}

	return parts
}

// Contains reports whether r is fully covered by the current union.
func (u *rectUnion) Contains(r Rect) bool {
	if len(u.rects) == 0 {
		return false
	}

	stack := []Rect{r}
	for _, s := range u.rects {
		var next []Rect
		for _, piece := range stack {
			if s.Contains(piece) {
				continue
			}
			if piece.Intersects(s) {
				next = append(next, splitDiff(piece, s)...)
			} else {
				next = append(next, piece)
			}
		}
		if len(next) == 0 {
			return true
		}
		stack = next
	}
	return false
}

// Add inserts r if it is not already covered. Returns true if the union grew.
func (u *rectUnion) Add(r Rect) bool {
	if u.Contains(r) {
		return false
	}

	pending := []Rect{r}
	for _, s := range u.rects {
		var next []Rect
		for _, piece := range pending {
			if piece.Intersects(s) {
				next = append(next, splitDiff(piece, s)...)
			} else {
				next = append(next, piece)
			}
		}
		pending = next
	}

	u.rects = append(u.rects, pending...)
	return true
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
