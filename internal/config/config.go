// Package config reads settings of the demo binary from .env file and environment.
package config

import (
	"io/fs"
	"os"
	"strconv"

	"github.com/LdDl/facemesh-go/facemesh"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config of the webcam demo
type Config struct {
	// Camera device index or path to a video file
	Camera        string
	DetectorModel string
	MeshModel     string
	// Optional JSON anchor table; generated when empty
	Anchors         string
	DetectThreshold float64
	MeshThreshold   float64
	PadRatio        float64
	Smooth          bool
	ShowWindow      bool
	// Empty disables the /metrics endpoint
	MetricsAddr string
	LogLevel    string
	LogFile     string
}

// Default returns settings used when nothing is configured
func Default() Config {
	core := facemesh.DefaultConfig()
	return Config{
		Camera:          "0",
		DetectorModel:   "models/face_detection_short_range.onnx",
		MeshModel:       "models/face_landmark.onnx",
		DetectThreshold: core.DetectThreshold,
		MeshThreshold:   core.MeshThreshold,
		PadRatio:        core.PadRatio,
		Smooth:          core.SmoothOutput,
		ShowWindow:      true,
		MetricsAddr:     ":9090",
		LogLevel:        "info",
	}
}

// Load reads given .env files (missing files are ignored, ".env" when none given)
// and then overrides defaults with FACEMESH_* environment variables.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "Can't load env file '%s'", file)
		}
	}

	cfg := Default()
	readString(&cfg.Camera, "FACEMESH_CAMERA")
	readString(&cfg.DetectorModel, "FACEMESH_DETECTOR_MODEL")
	readString(&cfg.MeshModel, "FACEMESH_MESH_MODEL")
	readString(&cfg.Anchors, "FACEMESH_ANCHORS")
	readString(&cfg.MetricsAddr, "FACEMESH_METRICS_ADDR")
	readString(&cfg.LogLevel, "FACEMESH_LOG_LEVEL")
	readString(&cfg.LogFile, "FACEMESH_LOG_FILE")
	if err := readFloat(&cfg.DetectThreshold, "FACEMESH_DETECT_THRESHOLD"); err != nil {
		return Config{}, err
	}
	if err := readFloat(&cfg.MeshThreshold, "FACEMESH_MESH_THRESHOLD"); err != nil {
		return Config{}, err
	}
	if err := readFloat(&cfg.PadRatio, "FACEMESH_PAD_RATIO"); err != nil {
		return Config{}, err
	}
	if err := readBool(&cfg.Smooth, "FACEMESH_SMOOTH"); err != nil {
		return Config{}, err
	}
	if err := readBool(&cfg.ShowWindow, "FACEMESH_SHOW_WINDOW"); err != nil {
		return Config{}, err
	}
	if err := cfg.Facemesh().Validate(); err != nil {
		return Config{}, errors.Wrap(err, "Invalid pipeline settings")
	}
	return cfg, nil
}

// Facemesh returns pipeline parameters
func (cfg Config) Facemesh() facemesh.Config {
	core := facemesh.DefaultConfig()
	core.DetectThreshold = cfg.DetectThreshold
	core.MeshThreshold = cfg.MeshThreshold
	core.PadRatio = cfg.PadRatio
	core.SmoothOutput = cfg.Smooth
	return core
}

// CameraIndex returns device index when Camera is a number
func (cfg Config) CameraIndex() (int, bool) {
	idx, err := strconv.Atoi(cfg.Camera)
	if err != nil {
		return 0, false
	}
	return idx, true
}

func readString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func readFloat(dst *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.Wrapf(err, "Can't parse %s", key)
	}
	*dst = parsed
	return nil
}

func readBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return errors.Wrapf(err, "Can't parse %s", key)
	}
	*dst = parsed
	return nil
}
