package facemesh

// Pad grows rect by ratio*width on each horizontal side and ratio*height on each
// vertical side, then clamps it into the frame. Pads are rounded from the
// unrounded size, bounds are rounded before the pads are added.
// Calling it twice grows the box twice: pad once per frame per rect.
func Pad(rect Rect, frame FrameSize, ratio float64) Rect {
	rect = normalized(rect)
	widthPad := roundHalfUp(rect.Width() * ratio)
	heightPad := roundHalfUp(rect.Height() * ratio)

	padded := Rect{
		Confidence: rect.Confidence,
		X1:         roundHalfUp(rect.X1) - widthPad,
		Y1:         roundHalfUp(rect.Y1) - heightPad,
		X2:         roundHalfUp(rect.X2) + widthPad,
		Y2:         roundHalfUp(rect.Y2) + heightPad,
	}
	return ClampOnly(padded, frame)
}

// ClampOnly clamps all four bounds into [0, width-1] x [0, height-1] without growing.
func ClampOnly(rect Rect, frame FrameSize) Rect {
	rect = normalized(rect)
	maxX := float64(frame.Width - 1)
	maxY := float64(frame.Height - 1)
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	// NaN bounds land on zero and may invert the box, hence the second normalization
	return normalized(Rect{
		Confidence: rect.Confidence,
		X1:         clampFloat64(rect.X1, 0, maxX),
		Y1:         clampFloat64(rect.Y1, 0, maxY),
		X2:         clampFloat64(rect.X2, 0, maxX),
		Y2:         clampFloat64(rect.Y2, 0, maxY),
	})
}

// normalized swaps inverted bounds so that x1 <= x2 and y1 <= y2
func normalized(rect Rect) Rect {
	if rect.X1 > rect.X2 {
		rect.X1, rect.X2 = rect.X2, rect.X1
	}
	if rect.Y1 > rect.Y2 {
		rect.Y1, rect.Y2 = rect.Y2, rect.Y1
	}
	return rect
}
