package facemesh

import (
	"math"
	"testing"
)

func TestBoxSmootherFirstMeasurement(t *testing.T) {
	smoother := NewBoxSmootherDefault()
	rect := NewRect(1, 10, 20, 50, 80)
	smoothed, err := smoother.Update(rect)
	if err != nil {
		t.Fatal(err)
	}
	if !rectsEqual(smoothed, rect, eps) {
		t.Errorf("First measurement must pass through: %v vs %v", smoothed, rect)
	}
	vx, vy, vw, vh := smoother.Velocity()
	if vx != 0 || vy != 0 || vw != 0 || vh != 0 {
		t.Errorf("Velocity must be zero right after init, got %v %v %v %v", vx, vy, vw, vh)
	}
}

func TestBoxSmootherStaticBox(t *testing.T) {
	smoother := NewBoxSmootherDefault()
	rect := NewRect(1, 100, 100, 160, 180)
	for i := 0; i < 10; i++ {
		smoothed, err := smoother.Update(rect)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(smoothed.X1-rect.X1) > 1 || math.Abs(smoothed.Y2-rect.Y2) > 1 {
			t.Errorf("Iteration %d: static box drifted to %v", i, smoothed)
		}
	}
}

func TestBoxSmootherDampsJump(t *testing.T) {
	smoother := NewBoxSmootherDefault()
	if _, err := smoother.Update(NewRect(1, 100, 100, 160, 160)); err != nil {
		t.Fatal(err)
	}
	smoothed, err := smoother.Update(NewRect(1, 200, 100, 260, 160))
	if err != nil {
		t.Fatal(err)
	}
	center := smoothed.Center()
	if !(center.X > 130 && center.X <= 230+eps) {
		t.Errorf("Smoothed center %v is outside of the jump range", center)
	}
	smoother.Reset()
	rect := NewRect(1, 0, 0, 10, 10)
	smoothed, err = smoother.Update(rect)
	if err != nil {
		t.Fatal(err)
	}
	if !rectsEqual(smoothed, rect, eps) {
		t.Errorf("After reset the measurement must pass through, got %v", smoothed)
	}
}
