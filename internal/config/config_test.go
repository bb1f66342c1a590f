package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/LdDl/facemesh-go/facemesh"
)

const (
	eps = 0.00001
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	core := cfg.Facemesh()
	if core != facemesh.DefaultConfig() {
		t.Errorf("Default settings must give default pipeline config: %+v", core)
	}
	idx, ok := cfg.CameraIndex()
	if !ok || idx != 0 {
		t.Errorf("Wrong default camera: %v %v", idx, ok)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("FACEMESH_CAMERA", "clip.mp4")
	t.Setenv("FACEMESH_DETECT_THRESHOLD", "0.75")
	t.Setenv("FACEMESH_PAD_RATIO", "0.3")
	t.Setenv("FACEMESH_SMOOTH", "true")
	t.Setenv("FACEMESH_SHOW_WINDOW", "false")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Camera != "clip.mp4" {
		t.Errorf("Wrong camera: %s", cfg.Camera)
	}
	if _, ok := cfg.CameraIndex(); ok {
		t.Errorf("File path must not be parsed as device index")
	}
	if math.Abs(cfg.DetectThreshold-0.75) > eps || math.Abs(cfg.PadRatio-0.3) > eps {
		t.Errorf("Wrong thresholds: %+v", cfg)
	}
	if !cfg.Smooth || cfg.ShowWindow {
		t.Errorf("Wrong flags: %+v", cfg)
	}
	if !cfg.Facemesh().SmoothOutput {
		t.Errorf("Smoothing must reach pipeline config")
	}
}

func TestLoadEnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	content := "FACEMESH_MESH_THRESHOLD=0.6\nFACEMESH_LOG_LEVEL=debug\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets process environment, clean it up afterwards
	t.Setenv("FACEMESH_MESH_THRESHOLD", "")
	t.Setenv("FACEMESH_LOG_LEVEL", "")
	os.Unsetenv("FACEMESH_MESH_THRESHOLD")
	os.Unsetenv("FACEMESH_LOG_LEVEL")

	cfg, err := Load(file)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(cfg.MeshThreshold-0.6) > eps || cfg.LogLevel != "debug" {
		t.Errorf("Env file values are not applied: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("FACEMESH_DETECT_THRESHOLD", "high")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Errorf("Expected parse error")
	}
	t.Setenv("FACEMESH_DETECT_THRESHOLD", "1.5")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if !facemesh.IsContractViolation(err) {
		t.Errorf("Expected contract violation for threshold above 1, got %v", err)
	}
}
