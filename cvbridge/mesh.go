package cvbridge

import (
	"context"
	"math"
	"os"
	"sync"

	"github.com/LdDl/facemesh-go/facemesh"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// MeshOptions describes the face mesh network.
type MeshOptions struct {
	ModelPath string
	// Side of the square input, pixels. Landmarks come out in this pixel space
	InputSize       int
	LandmarksLayer  string
	ConfidenceLayer string
	// The confidence output is a logit and needs a sigmoid
	ConfidenceIsLogit bool
	Backend           gocv.NetBackendType
	Target            gocv.NetTargetType
}

// DefaultMeshOptions returns options for the 468-point face landmark model converted to ONNX
func DefaultMeshOptions(modelPath string) MeshOptions {
	return MeshOptions{
		ModelPath:         modelPath,
		InputSize:         192,
		LandmarksLayer:    "conv2d_21",
		ConfidenceLayer:   "conv2d_31",
		ConfidenceIsLogit: true,
		Backend:           gocv.NetBackendDefault,
		Target:            gocv.NetTargetCPU,
	}
}

// MeshNet runs face mesh model on face crops.
type MeshNet struct {
	net     gocv.Net
	options MeshOptions
	mu      sync.Mutex // Protects inference
}

var _ facemesh.MeshModel[gocv.Mat] = (*MeshNet)(nil)

// NewMeshNet loads the network
func NewMeshNet(options MeshOptions) (*MeshNet, error) {
	if options.InputSize <= 0 {
		return nil, facemesh.NewContractViolation("new mesh", "input size must be positive, got %d", options.InputSize)
	}
	if _, err := os.Stat(options.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "Can't find mesh model '%s'", options.ModelPath)
	}
	net := gocv.ReadNet(options.ModelPath, "")
	if net.Empty() {
		return nil, errors.Errorf("Can't read mesh model '%s'", options.ModelPath)
	}
	net.SetPreferableBackend(options.Backend)
	net.SetPreferableTarget(options.Target)
	return &MeshNet{
		net:     net,
		options: options,
	}, nil
}

// RunMesh implements facemesh.MeshModel
func (m *MeshNet) RunMesh(ctx context.Context, frame gocv.Mat, crop facemesh.Rect) (facemesh.MeshOutput, error) {
	if err := ctx.Err(); err != nil {
		return facemesh.MeshOutput{}, err
	}
	scope := NewScope()
	defer scope.Close()

	blob, err := CropInput(scope, frame, crop, m.options.InputSize)
	if err != nil {
		return facemesh.MeshOutput{}, errors.Wrap(err, "Can't prepare mesh input")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.net.SetInput(blob, "")
	outs := m.net.ForwardLayers([]string{m.options.LandmarksLayer, m.options.ConfidenceLayer})
	for i := range outs {
		scope.Track(outs[i])
	}
	if len(outs) != 2 {
		return facemesh.MeshOutput{}, facemesh.NewContractViolation("run mesh", "expected 2 mesh outputs, got %d", len(outs))
	}
	landmarks, err := outs[0].DataPtrFloat32()
	if err != nil {
		return facemesh.MeshOutput{}, errors.Wrap(err, "Can't read mesh landmarks")
	}
	scores, err := outs[1].DataPtrFloat32()
	if err != nil {
		return facemesh.MeshOutput{}, errors.Wrap(err, "Can't read mesh confidence")
	}
	if len(scores) == 0 {
		return facemesh.MeshOutput{}, facemesh.NewContractViolation("run mesh", "empty confidence output")
	}
	return DecodeMeshOutput(landmarks, scores[0], m.options)
}

// Close releases the network
func (m *MeshNet) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.net.Close()
}

// DecodeMeshOutput converts raw landmarks in input pixels and the raw score into
// the normalized form the mapper expects.
func DecodeMeshOutput(landmarks []float32, score float32, options MeshOptions) (facemesh.MeshOutput, error) {
	confidence := float64(score)
	if options.ConfidenceIsLogit {
		confidence = 1.0 / (1.0 + math.Exp(-confidence))
	}
	return facemesh.MeshFromPixels(landmarks, confidence, options.InputSize)
}
