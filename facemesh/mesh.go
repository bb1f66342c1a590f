package facemesh

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MeshOutput is the raw mesh model answer for one crop: flat (x, y, z) triples
// normalized to the crop (0..1 spans the crop side) and the face confidence.
type MeshOutput struct {
	Landmarks  []float64
	Confidence float64
}

// MeshResult is the mesh output mapped back to the source frame.
type MeshResult struct {
	// Mesh model confidence. Zero when the model returned non-finite numbers.
	Confidence float64
	Landmarks  []Point3
	// Bounding box of the landmarks with confidence fixed at 1, not padded.
	Rect Rect
}

// MapMesh maps normalized landmarks from the crop given by rect into source pixels
// and derives their bounding rectangle.
func MapMesh(out MeshOutput, rect Rect) (MeshResult, error) {
	if err := checkCropRect("map mesh", rect); err != nil {
		return MeshResult{}, err
	}
	if len(out.Landmarks) == 0 || len(out.Landmarks)%3 != 0 {
		return MeshResult{}, newContractViolation("map mesh", "landmark array of length %d is not a non-empty sequence of triples", len(out.Landmarks))
	}
	n := len(out.Landmarks) / 3

	data := make([]float64, len(out.Landmarks))
	copy(data, out.Landmarks)
	mesh := mat.NewDense(n, 3, data)

	// Same affine map as FromCropSpace, applied on the whole matrix
	width, height := rect.Width(), rect.Height()
	mesh.Apply(func(_, j int, v float64) float64 {
		switch j {
		case 0:
			return v*width + rect.X1
		case 1:
			return v*height + rect.Y1
		default:
			return v
		}
	}, mesh)

	result := MeshResult{
		Confidence: out.Confidence,
		Landmarks:  make([]Point3, n),
	}
	finite := isFinite(out.Confidence)
	for i := 0; i < n; i++ {
		row := mesh.RawRowView(i)
		result.Landmarks[i] = Point3{X: row[0], Y: row[1], Z: row[2]}
		if !isFinite(row[0]) || !isFinite(row[1]) || !isFinite(row[2]) {
			finite = false
		}
	}
	if !finite {
		result.Confidence = 0
		return result, nil
	}

	xs := mat.Col(nil, 0, mesh)
	ys := mat.Col(nil, 1, mesh)
	result.Rect = Rect{
		Confidence: 1,
		X1:         floats.Min(xs),
		Y1:         floats.Min(ys),
		X2:         floats.Max(xs),
		Y2:         floats.Max(ys),
	}
	return result, nil
}

// MeshFromPixels converts mesh output expressed in mesh-input pixels
// (0..inputSize spans the crop) to the normalized form MapMesh expects.
func MeshFromPixels(raw []float32, confidence float64, inputSize int) (MeshOutput, error) {
	if inputSize <= 0 {
		return MeshOutput{}, newContractViolation("mesh from pixels", "input size must be positive, got %d", inputSize)
	}
	out := MeshOutput{
		Landmarks:  make([]float64, len(raw)),
		Confidence: confidence,
	}
	size := float64(inputSize)
	for i, v := range raw {
		if i%3 == 2 {
			out.Landmarks[i] = float64(v)
			continue
		}
		out.Landmarks[i] = float64(v) / size
	}
	return out, nil
}
