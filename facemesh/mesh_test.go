package facemesh

import (
	"math"
	"testing"
)

func TestMapMesh(t *testing.T) {
	rect := NewRect(0.95, 10, 10, 110, 110)
	out := MeshOutput{
		Landmarks:  []float64{0, 0, 0, 1, 1, 0},
		Confidence: 0.9,
	}
	result, err := MapMesh(out, rect)
	if err != nil {
		t.Fatal(err)
	}
	correctLandmarks := []Point3{{10, 10, 0}, {110, 110, 0}}
	if len(result.Landmarks) != len(correctLandmarks) {
		t.Fatalf("Wrong number of landmarks: %d", len(result.Landmarks))
	}
	for i, lm := range result.Landmarks {
		c := correctLandmarks[i]
		if math.Abs(lm.X-c.X) > eps || math.Abs(lm.Y-c.Y) > eps || math.Abs(lm.Z-c.Z) > eps {
			t.Errorf("Landmark %d: %+v, expected %+v", i, lm, c)
		}
	}
	correctRect := NewRect(1, 10, 10, 110, 110)
	if !rectsEqual(result.Rect, correctRect, eps) {
		t.Errorf("Wrong mesh rect: %v, correct rect: %v", result.Rect, correctRect)
	}
	if result.Confidence != 0.9 {
		t.Errorf("Wrong confidence: %v", result.Confidence)
	}
	// input must stay untouched
	if out.Landmarks[3] != 1 {
		t.Errorf("MapMesh modified its input")
	}
}

func TestMapMeshNonRectangularCrop(t *testing.T) {
	rect := NewRect(1, 20, 40, 60, 140)
	out := MeshOutput{
		Landmarks:  []float64{0.5, 0.25, 1.5, 0.25, 0.75, -2},
		Confidence: 0.7,
	}
	result, err := MapMesh(out, rect)
	if err != nil {
		t.Fatal(err)
	}
	correctRect := NewRect(1, 30, 65, 40, 115)
	if !rectsEqual(result.Rect, correctRect, eps) {
		t.Errorf("Wrong mesh rect: %v, correct rect: %v", result.Rect, correctRect)
	}
	if result.Landmarks[1].Z != -2 {
		t.Errorf("Z must pass through, got %v", result.Landmarks[1].Z)
	}
}

func TestMapMeshNonFinite(t *testing.T) {
	rect := NewRect(1, 10, 10, 110, 110)
	out := MeshOutput{
		Landmarks:  []float64{0, 0, 0, math.NaN(), 1, 0},
		Confidence: 0.99,
	}
	result, err := MapMesh(out, rect)
	if err != nil {
		t.Fatal(err)
	}
	if result.Confidence != 0 {
		t.Errorf("Non-finite landmarks must zero the confidence, got %v", result.Confidence)
	}
	if result.Rect != (Rect{}) {
		t.Errorf("Non-finite landmarks must give empty rect, got %v", result.Rect)
	}

	out = MeshOutput{
		Landmarks:  []float64{0, 0, 0, 1, 1, 0},
		Confidence: math.NaN(),
	}
	result, err = MapMesh(out, rect)
	if err != nil {
		t.Fatal(err)
	}
	if result.Confidence != 0 {
		t.Errorf("NaN confidence must become zero, got %v", result.Confidence)
	}
}

func TestMapMeshErrors(t *testing.T) {
	out := MeshOutput{
		Landmarks:  []float64{0, 0, 0},
		Confidence: 0.9,
	}
	if _, err := MapMesh(out, NewRect(1, 10, 10, 10, 110)); !IsGeometryError(err) {
		t.Errorf("Expected geometry error, got %v", err)
	}
	out.Landmarks = []float64{0, 0}
	if _, err := MapMesh(out, NewRect(1, 10, 10, 110, 110)); !IsContractViolation(err) {
		t.Errorf("Expected contract violation, got %v", err)
	}
	out.Landmarks = nil
	if _, err := MapMesh(out, NewRect(1, 10, 10, 110, 110)); !IsContractViolation(err) {
		t.Errorf("Expected contract violation, got %v", err)
	}
}

func TestMeshFromPixels(t *testing.T) {
	out, err := MeshFromPixels([]float32{96, 48, 3, 192, 0, -1}, 0.8, 192)
	if err != nil {
		t.Fatal(err)
	}
	correct := []float64{0.5, 0.25, 3, 1, 0, -1}
	for i := range correct {
		if math.Abs(out.Landmarks[i]-correct[i]) > eps {
			t.Errorf("Value %d: %v, expected %v", i, out.Landmarks[i], correct[i])
		}
	}
	if out.Confidence != 0.8 {
		t.Errorf("Wrong confidence: %v", out.Confidence)
	}
	if _, err := MeshFromPixels(nil, 0.8, 0); !IsContractViolation(err) {
		t.Errorf("Expected contract violation, got %v", err)
	}
}
