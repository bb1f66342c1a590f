package facemesh

// Config holds tunable parameters of the detect/track pipeline
type Config struct {
	// Side of the square detector input, pixels
	DetectorSize int
	// Side of the square mesh model input, pixels
	MeshSize int
	// Detector confidence must be strictly above this to run the mesh stage. Default 0.9
	DetectThreshold float64
	// Mesh confidence must be strictly above this to keep tracking. Default 0.5
	MeshThreshold float64
	// Growth of the face rect on each side, relative to its size. Default 0.25
	PadRatio float64
	// Enables Kalman smoothing of the committed rect (FrameResult.Smoothed)
	SmoothOutput bool
	// Time step of the smoothing filter, frames
	SmoothDt float64
}

// DefaultConfig returns the values the face detector and face mesh models were tuned with
func DefaultConfig() Config {
	return Config{
		DetectorSize:    128,
		MeshSize:        192,
		DetectThreshold: 0.9,
		MeshThreshold:   0.5,
		PadRatio:        0.25,
		SmoothOutput:    false,
		SmoothDt:        1.0,
	}
}

// Validate checks that the values make sense together
func (cfg Config) Validate() error {
	if cfg.DetectorSize <= 0 {
		return newContractViolation("config", "detector size must be positive, got %d", cfg.DetectorSize)
	}
	if cfg.MeshSize <= 0 {
		return newContractViolation("config", "mesh size must be positive, got %d", cfg.MeshSize)
	}
	if !(cfg.DetectThreshold >= 0 && cfg.DetectThreshold <= 1) {
		return newContractViolation("config", "detect threshold %v is outside [0, 1]", cfg.DetectThreshold)
	}
	if !(cfg.MeshThreshold >= 0 && cfg.MeshThreshold <= 1) {
		return newContractViolation("config", "mesh threshold %v is outside [0, 1]", cfg.MeshThreshold)
	}
	if !(cfg.PadRatio >= 0) || !isFinite(cfg.PadRatio) {
		return newContractViolation("config", "pad ratio must be a non-negative number, got %v", cfg.PadRatio)
	}
	if cfg.SmoothOutput && !(cfg.SmoothDt > 0) {
		return newContractViolation("config", "smoothing time step must be positive, got %v", cfg.SmoothDt)
	}
	return nil
}
