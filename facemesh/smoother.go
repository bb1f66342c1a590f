package facemesh

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// BoxSmoother smooths the committed face rect with 8-D Kalman filter.
// State vector: [cx, cy, w, h, vx, vy, vw, vh].
// It only produces a display rect: the tracking state keeps the raw mesh rect.
type BoxSmoother struct {
	dt      float64
	tracker *kalman_filter.KalmanBBox
}

// NewBoxSmoother creates smoother with specified time step.
func NewBoxSmoother(dt float64) *BoxSmoother {
	return &BoxSmoother{
		dt: dt,
	}
}

// NewBoxSmootherDefault creates smoother with time step of 1 frame.
func NewBoxSmootherDefault() *BoxSmoother {
	return NewBoxSmoother(1.0)
}

// Update feeds a new measurement and returns the smoothed rect.
// The first measurement after creation or Reset is returned as is.
func (s *BoxSmoother) Update(rect Rect) (Rect, error) {
	cx := (rect.X1 + rect.X2) / 2.0
	cy := (rect.Y1 + rect.Y2) / 2.0
	w := rect.Width()
	h := rect.Height()
	if s.tracker == nil {
		// Kalman filter props
		uCx := 0.0
		uCy := 0.0
		uW := 0.0
		uH := 0.0
		stdDevA := 2.0
		stdDevMCx := 0.1
		stdDevMCy := 0.1
		stdDevMW := 0.1
		stdDevMH := 0.1
		s.tracker = kalman_filter.NewKalmanBBox(
			s.dt, uCx, uCy, uW, uH,
			stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
			kalman_filter.WithStateBBox(cx, cy, w, h),
		)
		return rect, nil
	}

	s.tracker.Predict()
	err := s.tracker.Update(cx, cy, w, h)
	if err != nil {
		return rect, errors.Wrap(err, "Can't update box smoother")
	}
	scx, scy, sw, sh := s.tracker.GetState()
	return NewRectFromCenter(rect.Confidence, scx, scy, sw, sh), nil
}

// Reset forgets the filter state, next Update starts over
func (s *BoxSmoother) Reset() {
	s.tracker = nil
}

// Velocity returns current velocity estimates (vx, vy, vw, vh); zeros before the first update.
func (s *BoxSmoother) Velocity() (float64, float64, float64, float64) {
	if s.tracker == nil {
		return 0, 0, 0, 0
	}
	return s.tracker.GetVelocity()
}
