package facemesh

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Mode of the per-session state machine
type Mode int

const (
	// Detecting runs the full-frame detector before the mesh stage
	Detecting Mode = iota
	// Tracking reuses the previous mesh rect and skips the detector
	Tracking
)

func (m Mode) String() string {
	switch m {
	case Detecting:
		return "detecting"
	case Tracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// TrackingState is carried from one frame to the next.
// LastRect is set only in Tracking mode and is the unpadded mesh rect of the previous frame.
type TrackingState struct {
	Mode     Mode
	LastRect *Rect
}

// DetectFunc runs the detector on the current frame, already letterboxed by the caller.
type DetectFunc func(ctx context.Context) (DetectorOutput, error)

// MeshFunc runs the mesh model on the crop of the current frame given by crop.
type MeshFunc func(ctx context.Context, crop Rect) (MeshOutput, error)

// FrameResult is everything the pipeline derived from one frame.
type FrameResult struct {
	SessionID uuid.UUID
	// Sequence number inside the session, starting at 1
	Frame uint64
	// Mode the frame was processed in
	Mode Mode
	// Mode the next frame will be processed in
	Next Mode
	// Whether the detector was invoked on this frame
	Detected bool
	// Padded face rect used to crop the mesh input
	Rect Rect
	// Whether the mesh stage was invoked on this frame
	MeshInvoked    bool
	MeshConfidence float64
	// Landmarks in source-frame pixels. Set only when the mesh was accepted
	Landmarks []Point3
	// Landmark bounding box, empty when the mesh output was not finite
	MeshRect Rect
	// Mesh accepted and committed as the next frame rect
	Accepted bool
	// Kalman-smoothed MeshRect when smoothing is enabled and the mesh was accepted
	Smoothed *Rect
	// Distance between centers of Rect and MeshRect, pixels
	CenterShift float64
	// IoU between Rect and MeshRect
	IoU float64
}

// FrameObserver is notified after each committed frame.
type FrameObserver interface {
	ObserveFrame(result FrameResult)
}

// Controller drives the detect/track state machine of a single camera session.
// It is not safe for concurrent use: frames of one session are processed in order.
type Controller struct {
	id        uuid.UUID
	config    Config
	anchors   AnchorTable
	letterbox Letterbox
	state     TrackingState
	frames    uint64
	smoother  *BoxSmoother
	logger    logrus.FieldLogger
	observer  FrameObserver
}

// NewController creates a controller in Detecting mode for frames of the given size.
func NewController(config Config, anchors AnchorTable, frame FrameSize) (*Controller, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(anchors) == 0 {
		return nil, newContractViolation("new controller", "empty anchor table")
	}
	lb, err := NewLetterbox(frame, config.DetectorSize)
	if err != nil {
		return nil, err
	}
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	c := &Controller{
		id:        uuid.New(),
		config:    config,
		anchors:   anchors,
		letterbox: lb,
		state:     TrackingState{Mode: Detecting},
		logger:    silent,
	}
	if config.SmoothOutput {
		c.smoother = NewBoxSmoother(config.SmoothDt)
	}
	return c, nil
}

// NewControllerDefault creates a controller with DefaultConfig.
func NewControllerDefault(anchors AnchorTable, frame FrameSize) (*Controller, error) {
	return NewController(DefaultConfig(), anchors, frame)
}

// SessionID returns identifier of the current session
func (c *Controller) SessionID() uuid.UUID {
	return c.id
}

// Config returns parameters the controller was created with
func (c *Controller) Config() Config {
	return c.config
}

// Letterbox returns the detector input geometry of the session
func (c *Controller) Letterbox() Letterbox {
	return c.letterbox
}

// Frames returns number of committed frames in the current session
func (c *Controller) Frames() uint64 {
	return c.frames
}

// State returns a copy of the current tracking state
func (c *Controller) State() TrackingState {
	state := TrackingState{Mode: c.state.Mode}
	if c.state.LastRect != nil {
		last := *c.state.LastRect
		state.LastRect = &last
	}
	return state
}

// SetLogger sets logger for state transitions. Nil restores the silent one.
func (c *Controller) SetLogger(logger logrus.FieldLogger) {
	if logger == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		logger = silent
	}
	c.logger = logger
}

// SetObserver sets observer of committed frames. Nil disables notifications.
func (c *Controller) SetObserver(observer FrameObserver) {
	c.observer = observer
}

// Reset drops tracking state and starts a new session
func (c *Controller) Reset() {
	c.id = uuid.New()
	c.state = TrackingState{Mode: Detecting}
	c.frames = 0
	if c.smoother != nil {
		c.smoother.Reset()
	}
	c.logger.WithField("session", c.id.String()).Debug("Session reset")
}

// Step processes one frame. The detector is invoked only when there is no rect to track.
// Any error leaves the tracking state as it was before the call.
func (c *Controller) Step(ctx context.Context, detect DetectFunc, mesh MeshFunc) (FrameResult, error) {
	if detect == nil || mesh == nil {
		return FrameResult{}, newContractViolation("step", "detector and mesh stages must both be provided")
	}
	if err := ctx.Err(); err != nil {
		return FrameResult{}, errors.Wrap(err, "Frame cancelled")
	}
	frame := c.letterbox.Frame
	result := FrameResult{
		SessionID: c.id,
		Frame:     c.frames + 1,
		Mode:      c.state.Mode,
	}

	var faceRect Rect
	if c.state.Mode == Tracking && c.state.LastRect != nil {
		faceRect = Pad(*c.state.LastRect, frame, c.config.PadRatio)
	} else {
		result.Mode = Detecting
		out, err := detect(ctx)
		if err != nil {
			return FrameResult{}, errors.Wrap(err, "detector stage")
		}
		raw, idx, err := DecodeBest(out, c.anchors, c.letterbox)
		if err != nil {
			return FrameResult{}, err
		}
		faceRect = Pad(raw, frame, c.config.PadRatio)
		result.Detected = true
		c.logger.WithFields(logrus.Fields{
			"frame":  result.Frame,
			"anchor": idx,
			"rect":   faceRect.String(),
		}).Debug("Face detected")
	}
	result.Rect = faceRect

	next := TrackingState{Mode: Detecting}
	if !(faceRect.Confidence > c.config.DetectThreshold) {
		c.commit(&result, next)
		return result, nil
	}

	if err := checkCropRect("mesh crop", faceRect); err != nil {
		return FrameResult{}, err
	}
	out, err := mesh(ctx, faceRect)
	if err != nil {
		return FrameResult{}, errors.Wrap(err, "mesh stage")
	}
	meshResult, err := MapMesh(out, faceRect)
	if err != nil {
		return FrameResult{}, err
	}
	result.MeshInvoked = true
	result.MeshConfidence = meshResult.Confidence
	result.MeshRect = meshResult.Rect

	if meshResult.Confidence > c.config.MeshThreshold && !ClampOnly(meshResult.Rect, frame).IsDegenerate() {
		result.Accepted = true
		result.Landmarks = meshResult.Landmarks
		result.CenterShift = euclideanDistance(faceRect.Center(), meshResult.Rect.Center())
		result.IoU = IoU(faceRect, meshResult.Rect)
		last := meshResult.Rect
		next = TrackingState{Mode: Tracking, LastRect: &last}
	}
	c.commit(&result, next)
	return result, nil
}

// commit stores the next state and reports the frame. Nothing before it mutates the controller.
func (c *Controller) commit(result *FrameResult, next TrackingState) {
	if c.smoother != nil {
		if result.Accepted {
			smoothed, err := c.smoother.Update(ClampOnly(result.MeshRect, c.letterbox.Frame))
			if err != nil {
				c.logger.WithError(err).WithField("frame", result.Frame).Warn("Can't smooth face rect")
				c.smoother.Reset()
			} else {
				result.Smoothed = &smoothed
			}
		} else {
			c.smoother.Reset()
		}
	}
	if next.Mode != c.state.Mode {
		c.logger.WithFields(logrus.Fields{
			"session": c.id.String(),
			"frame":   result.Frame,
			"from":    c.state.Mode.String(),
			"to":      next.Mode.String(),
		}).Debug("Tracking mode changed")
	}
	c.state = next
	c.frames++
	result.Next = next.Mode
	if c.observer != nil {
		c.observer.ObserveFrame(*result)
	}
}

// Detector produces raw detector output for a frame of type F.
type Detector[F any] interface {
	Detect(ctx context.Context, frame F, lb Letterbox) (DetectorOutput, error)
}

// MeshModel produces normalized mesh output for a crop of a frame of type F.
type MeshModel[F any] interface {
	RunMesh(ctx context.Context, frame F, crop Rect) (MeshOutput, error)
}

// Tracker binds a Controller to concrete models working on frames of type F.
type Tracker[F any] struct {
	*Controller
	detector Detector[F]
	mesh     MeshModel[F]
}

// NewTracker wraps controller with the given models
func NewTracker[F any](controller *Controller, detector Detector[F], mesh MeshModel[F]) *Tracker[F] {
	return &Tracker[F]{
		Controller: controller,
		detector:   detector,
		mesh:       mesh,
	}
}

// Process runs one frame through the controller
func (t *Tracker[F]) Process(ctx context.Context, frame F) (FrameResult, error) {
	lb := t.Letterbox()
	return t.Step(ctx,
		func(ctx context.Context) (DetectorOutput, error) {
			return t.detector.Detect(ctx, frame, lb)
		},
		func(ctx context.Context, crop Rect) (MeshOutput, error) {
			return t.mesh.RunMesh(ctx, frame, crop)
		},
	)
}
