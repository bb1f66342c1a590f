package facemesh

import (
	"fmt"
	"image"
	"math"
)

// FrameSize is the (height, width) of the source image in pixels.
type FrameSize struct {
	Height int
	Width  int
}

func NewFrameSize(height, width int) FrameSize {
	return FrameSize{
		Height: height,
		Width:  width,
	}
}

func NewFrameSizeFrom(rect image.Rectangle) FrameSize {
	return FrameSize{
		Height: rect.Dy(),
		Width:  rect.Dx(),
	}
}

// Rect is a face rectangle in source-frame pixel coordinates.
// Confidence is in [0, 1] once it went through a sigmoid.
type Rect struct {
	Confidence float64
	X1         float64
	Y1         float64
	X2         float64
	Y2         float64
}

func NewRect(confidence, x1, y1, x2, y2 float64) Rect {
	return Rect{
		Confidence: confidence,
		X1:         x1,
		Y1:         y1,
		X2:         x2,
		Y2:         y2,
	}
}

func NewRectFrom(rect image.Rectangle, confidence float64) Rect {
	return Rect{
		Confidence: confidence,
		X1:         float64(rect.Min.X),
		Y1:         float64(rect.Min.Y),
		X2:         float64(rect.Max.X),
		Y2:         float64(rect.Max.Y),
	}
}

// NewRectFromCenter converts (center, size) box to corners.
func NewRectFromCenter(confidence, cx, cy, w, h float64) Rect {
	return Rect{
		Confidence: confidence,
		X1:         cx - w/2.0,
		Y1:         cy - h/2.0,
		X2:         cx + w/2.0,
		Y2:         cy + h/2.0,
	}
}

// Width returns x2 - x1
func (r Rect) Width() float64 {
	return r.X2 - r.X1
}

// Height returns y2 - y1
func (r Rect) Height() float64 {
	return r.Y2 - r.Y1
}

// Center returns center of the rectangle
func (r Rect) Center() Point {
	return Point{
		X: (r.X1 + r.X2) / 2.0,
		Y: (r.Y1 + r.Y2) / 2.0,
	}
}

// IsDegenerate reports whether width or height is not positive (NaN included).
func (r Rect) IsDegenerate() bool {
	return !(r.Width() > 0) || !(r.Height() > 0)
}

// IsFinite reports whether all four bounds are finite numbers.
func (r Rect) IsFinite() bool {
	return isFinite(r.X1) && isFinite(r.Y1) && isFinite(r.X2) && isFinite(r.Y2)
}

// ToImageRect rounds bounds to integer pixels.
func (r Rect) ToImageRect() image.Rectangle {
	return image.Rect(
		int(roundHalfUp(r.X1)),
		int(roundHalfUp(r.Y1)),
		int(roundHalfUp(r.X2)),
		int(roundHalfUp(r.Y2)),
	)
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.3f: (%.1f, %.1f)-(%.1f, %.1f)]", r.Confidence, r.X1, r.Y1, r.X2, r.Y2)
}

type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func NewPointFrom(point image.Point) Point {
	return Point{
		X: float64(point.X),
		Y: float64(point.Y),
	}
}

// Point3 is a single landmark. Z is kept in the units of the mesh model.
type Point3 struct {
	X float64
	Y float64
	Z float64
}

func NewPoint3(x, y, z float64) Point3 {
	return Point3{
		X: x,
		Y: y,
		Z: z,
	}
}

// XY drops the depth component
func (p Point3) XY() Point {
	return Point{X: p.X, Y: p.Y}
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}
