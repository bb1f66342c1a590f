package facemesh

import (
	"math"
	"testing"
)

func TestPad(t *testing.T) {
	frame := NewFrameSize(480, 640)
	cases := []struct {
		rect    Rect
		ratio   float64
		correct Rect
	}{
		{NewRect(0.95, 100, 100, 200, 200), 0.25, NewRect(0.95, 75, 75, 225, 225)},
		// clamped at the top-left corner
		{NewRect(1, 10, 10, 110, 110), 0.25, NewRect(1, 0, 0, 135, 135)},
		// clamped at the bottom-right corner
		{NewRect(1, 600, 400, 640, 480), 0.25, NewRect(1, 590, 380, 639, 479)},
		// pads come from the unrounded size, bounds are rounded first
		{NewRect(1, 10.4, 10.6, 50.5, 60.2), 0.25, NewRect(1, 0, 0, 61, 72)},
		{NewRect(1, 100, 100, 200, 200), 0, NewRect(1, 100, 100, 200, 200)},
	}
	for i, c := range cases {
		padded := Pad(c.rect, frame, c.ratio)
		if !rectsEqual(padded, c.correct, eps) {
			t.Errorf("Case %d: wrong padded rect %v, expected %v", i, padded, c.correct)
		}
	}
}

func TestPadContainsInput(t *testing.T) {
	frame := NewFrameSize(480, 640)
	rects := []Rect{
		NewRect(1, 0, 0, 1, 1),
		NewRect(1, 5, 7, 45, 90),
		NewRect(1, 320, 240, 639, 479),
		NewRect(1, 100, 200, 101, 300),
	}
	for _, rect := range rects {
		padded := Pad(rect, frame, 0.25)
		if padded.X1 > rect.X1 || padded.Y1 > rect.Y1 || padded.X2 < rect.X2 || padded.Y2 < rect.Y2 {
			t.Errorf("Padded rect %v does not contain %v", padded, rect)
		}
	}
}

func TestClampOnly(t *testing.T) {
	frame := NewFrameSize(480, 640)
	rects := []Rect{
		NewRect(1, -50, -50, 1000, 1000),
		NewRect(1, 700, 500, 800, 600),
		NewRect(1, 200, 100, 100, 50),
		NewRect(1, math.NaN(), 10, 20, math.Inf(1)),
		NewRect(1, math.Inf(-1), math.NaN(), math.NaN(), math.Inf(-1)),
	}
	for _, rect := range rects {
		clamped := ClampOnly(rect, frame)
		for _, v := range []float64{clamped.X1, clamped.X2} {
			if !(v >= 0 && v <= 639) {
				t.Errorf("Rect %v clamped to %v: x out of frame", rect, clamped)
			}
		}
		for _, v := range []float64{clamped.Y1, clamped.Y2} {
			if !(v >= 0 && v <= 479) {
				t.Errorf("Rect %v clamped to %v: y out of frame", rect, clamped)
			}
		}
		if clamped.X1 > clamped.X2 || clamped.Y1 > clamped.Y2 {
			t.Errorf("Rect %v clamped to inverted %v", rect, clamped)
		}
	}
	inside := NewRect(0.5, 10.25, 20.5, 30.75, 40)
	if clamped := ClampOnly(inside, frame); !rectsEqual(clamped, inside, eps) {
		t.Errorf("Rect inside the frame must not change: %v vs %v", clamped, inside)
	}
}
