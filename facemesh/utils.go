package facemesh

import "math"

// IoU calculates Intersection over Union between two corner-form rectangles.
func IoU(r1, r2 Rect) float64 {
	xA := maxFloat64(r1.X1, r2.X1)
	yA := maxFloat64(r1.Y1, r2.Y1)
	xB := minFloat64(r1.X2, r2.X2)
	yB := minFloat64(r1.Y2, r2.Y2)

	interArea := maxFloat64(0, xB-xA) * maxFloat64(0, yB-yA)
	if interArea == 0 {
		return 0.0
	}

	r1Area := r1.Width() * r1.Height()
	r2Area := r2.Width() * r2.Height()

	return interArea / (r1Area + r2Area - interArea)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// roundHalfUp rounds .5 towards +Inf, which is what pixel rounding in the
// preprocessing code expects (math.Round goes away from zero for negatives).
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// clampFloat64 clamps v into [lo, hi]. NaN ends up at lo.
func clampFloat64(v, lo, hi float64) float64 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
