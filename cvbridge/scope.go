// Package cvbridge runs the face detector and the face mesh model through OpenCV DNN
// and adapts their outputs to the facemesh pipeline.
package cvbridge

import (
	"gocv.io/x/gocv"
)

// Scope owns the intermediate Mats of one frame and releases them together.
//
//	scope := NewScope()
//	defer scope.Close()
//	resized := scope.Track(gocv.NewMat())
type Scope struct {
	mats []gocv.Mat
}

// NewScope creates empty scope
func NewScope() *Scope {
	return &Scope{
		mats: make([]gocv.Mat, 0, 8),
	}
}

// Track registers mat for release and returns it
func (s *Scope) Track(mat gocv.Mat) gocv.Mat {
	s.mats = append(s.mats, mat)
	return mat
}

// Len returns number of tracked Mats
func (s *Scope) Len() int {
	return len(s.mats)
}

// Close releases Mats in reverse order. Safe to call more than once.
func (s *Scope) Close() {
	for i := len(s.mats) - 1; i >= 0; i-- {
		s.mats[i].Close()
	}
	s.mats = s.mats[:0]
}
