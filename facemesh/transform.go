package facemesh

import "math"

// Padding is the number of letterbox pixels added before and after the image on one axis.
type Padding struct {
	Before int
	After  int
}

// Letterbox describes how a source frame is fitted into the square detector input:
// uniform aspect-preserving resize to Scaled, then padding up to Size x Size.
// Computed once per session since the frame size is fixed.
type Letterbox struct {
	Frame  FrameSize
	Size   int
	Scaled FrameSize
	PadY   Padding
	PadX   Padding
	// Source pixels per detector pixel
	Scale float64
}

// NewLetterbox computes the resized size and padding for the given frame and detector input size.
func NewLetterbox(frame FrameSize, detectorSize int) (Letterbox, error) {
	if frame.Height <= 0 || frame.Width <= 0 {
		return Letterbox{}, newContractViolation("letterbox", "frame size must be positive, got %dx%d", frame.Width, frame.Height)
	}
	if detectorSize <= 0 {
		return Letterbox{}, newContractViolation("letterbox", "detector size must be positive, got %d", detectorSize)
	}
	size := float64(detectorSize)
	h := float64(frame.Height)
	w := float64(frame.Width)

	scaled := FrameSize{Height: detectorSize, Width: detectorSize}
	switch {
	case frame.Height > frame.Width:
		scaled.Width = int(roundHalfUp(w * size / h))
	case frame.Width > frame.Height:
		scaled.Height = int(roundHalfUp(h * size / w))
	}
	if scaled.Height < 1 {
		scaled.Height = 1
	}
	if scaled.Width < 1 {
		scaled.Width = 1
	}

	return Letterbox{
		Frame:  frame,
		Size:   detectorSize,
		Scaled: scaled,
		PadY:   splitPadding(detectorSize - scaled.Height),
		PadX:   splitPadding(detectorSize - scaled.Width),
		Scale:  h / float64(scaled.Height),
	}, nil
}

func splitPadding(total int) Padding {
	half := float64(total) / 2.0
	return Padding{
		Before: int(math.Ceil(half)),
		After:  int(math.Floor(half)),
	}
}

// ToDetectorSpace maps a source-frame point into the padded detector input.
func (lb Letterbox) ToDetectorSpace(p Point) Point {
	return Point{
		X: p.X/lb.Scale + float64(lb.PadX.Before),
		Y: p.Y/lb.Scale + float64(lb.PadY.Before),
	}
}

// FromDetectorSpace is the inverse of ToDetectorSpace.
func (lb Letterbox) FromDetectorSpace(p Point) Point {
	return Point{
		X: (p.X - float64(lb.PadX.Before)) * lb.Scale,
		Y: (p.Y - float64(lb.PadY.Before)) * lb.Scale,
	}
}

// RectFromDetectorSpace maps a detector-space box back to source pixels, confidence untouched.
func (lb Letterbox) RectFromDetectorSpace(r Rect) Rect {
	p1 := lb.FromDetectorSpace(Point{X: r.X1, Y: r.Y1})
	p2 := lb.FromDetectorSpace(Point{X: r.X2, Y: r.Y2})
	return Rect{Confidence: r.Confidence, X1: p1.X, Y1: p1.Y, X2: p2.X, Y2: p2.Y}
}

// ToCropSpace maps a source-frame point into the normalized crop defined by rect:
// (0, 0) is the crop origin and (1, 1) its far corner, whatever the mesh input size is.
// Z passes through.
func ToCropSpace(p Point3, rect Rect) (Point3, error) {
	if err := checkCropRect("to crop space", rect); err != nil {
		return Point3{}, err
	}
	return Point3{
		X: (p.X - rect.X1) / rect.Width(),
		Y: (p.Y - rect.Y1) / rect.Height(),
		Z: p.Z,
	}, nil
}

// FromCropSpace maps a normalized crop point back to source-frame pixels.
func FromCropSpace(p Point3, rect Rect) (Point3, error) {
	if err := checkCropRect("from crop space", rect); err != nil {
		return Point3{}, err
	}
	return Point3{
		X: p.X*rect.Width() + rect.X1,
		Y: p.Y*rect.Height() + rect.Y1,
		Z: p.Z,
	}, nil
}
