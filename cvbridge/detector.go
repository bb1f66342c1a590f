package cvbridge

import (
	"context"
	"os"
	"sync"

	"github.com/LdDl/facemesh-go/facemesh"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// DetectorOptions describes the face detector network.
//
// When BoxesLayer is empty the network is expected to produce a single output
// with rows [logit, dx, dy, w, h, ...]. Otherwise ScoresLayer holds the logit in
// column 0 and BoxesLayer holds [dx, dy, w, h, ...].
type DetectorOptions struct {
	ModelPath   string
	ScoresLayer string
	BoxesLayer  string
	Backend     gocv.NetBackendType
	Target      gocv.NetTargetType
}

// DefaultDetectorOptions returns options for the two-output short-range face detector converted to ONNX
func DefaultDetectorOptions(modelPath string) DetectorOptions {
	return DetectorOptions{
		ModelPath:   modelPath,
		ScoresLayer: "classificators",
		BoxesLayer:  "regressors",
		Backend:     gocv.NetBackendDefault,
		Target:      gocv.NetTargetCPU,
	}
}

// DetectorNet runs face detector on letterboxed frames.
type DetectorNet struct {
	net     gocv.Net
	options DetectorOptions
	anchors int
	mu      sync.Mutex // Protects inference
}

var _ facemesh.Detector[gocv.Mat] = (*DetectorNet)(nil)

// NewDetectorNet loads the network. anchors is the number of output rows, i.e. the size of the anchor table.
func NewDetectorNet(options DetectorOptions, anchors int) (*DetectorNet, error) {
	if anchors <= 0 {
		return nil, facemesh.NewContractViolation("new detector", "anchor count must be positive, got %d", anchors)
	}
	if _, err := os.Stat(options.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "Can't find detector model '%s'", options.ModelPath)
	}
	net := gocv.ReadNet(options.ModelPath, "")
	if net.Empty() {
		return nil, errors.Errorf("Can't read detector model '%s'", options.ModelPath)
	}
	net.SetPreferableBackend(options.Backend)
	net.SetPreferableTarget(options.Target)
	return &DetectorNet{
		net:     net,
		options: options,
		anchors: anchors,
	}, nil
}

// Detect implements facemesh.Detector
func (d *DetectorNet) Detect(ctx context.Context, frame gocv.Mat, lb facemesh.Letterbox) (facemesh.DetectorOutput, error) {
	if err := ctx.Err(); err != nil {
		return facemesh.DetectorOutput{}, err
	}
	scope := NewScope()
	defer scope.Close()

	blob, err := LetterboxInput(scope, frame, lb)
	if err != nil {
		return facemesh.DetectorOutput{}, errors.Wrap(err, "Can't prepare detector input")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.net.SetInput(blob, "")

	if d.options.BoxesLayer == "" {
		out := scope.Track(d.net.Forward(d.options.ScoresLayer))
		data, err := out.DataPtrFloat32()
		if err != nil {
			return facemesh.DetectorOutput{}, errors.Wrap(err, "Can't read detector output")
		}
		return DecodeDetectorRows(data, 0, data, 1, d.anchors)
	}

	outs := d.net.ForwardLayers([]string{d.options.ScoresLayer, d.options.BoxesLayer})
	for i := range outs {
		scope.Track(outs[i])
	}
	if len(outs) != 2 {
		return facemesh.DetectorOutput{}, facemesh.NewContractViolation("detect", "expected 2 detector outputs, got %d", len(outs))
	}
	scores, err := outs[0].DataPtrFloat32()
	if err != nil {
		return facemesh.DetectorOutput{}, errors.Wrap(err, "Can't read detector scores")
	}
	boxes, err := outs[1].DataPtrFloat32()
	if err != nil {
		return facemesh.DetectorOutput{}, errors.Wrap(err, "Can't read detector boxes")
	}
	return DecodeDetectorRows(scores, 0, boxes, 0, d.anchors)
}

// Close releases the network
func (d *DetectorNet) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

// DecodeDetectorRows splits flat row-major detector outputs with one row per anchor
// into logits and boxes. scoreCol is the logit column in scores, boxCol the first
// of four box columns in boxes. scores and boxes may be the same slice.
func DecodeDetectorRows(scores []float32, scoreCol int, boxes []float32, boxCol int, anchors int) (facemesh.DetectorOutput, error) {
	if anchors <= 0 {
		return facemesh.DetectorOutput{}, facemesh.NewContractViolation("decode detector rows", "anchor count must be positive, got %d", anchors)
	}
	if len(scores)%anchors != 0 || len(boxes)%anchors != 0 {
		return facemesh.DetectorOutput{}, facemesh.NewContractViolation("decode detector rows", "outputs of %d and %d values do not split into %d rows", len(scores), len(boxes), anchors)
	}
	scoreStride := len(scores) / anchors
	boxStride := len(boxes) / anchors
	if scoreCol < 0 || scoreCol >= scoreStride {
		return facemesh.DetectorOutput{}, facemesh.NewContractViolation("decode detector rows", "score column %d is outside of %d columns", scoreCol, scoreStride)
	}
	if boxCol < 0 || boxCol+4 > boxStride {
		return facemesh.DetectorOutput{}, facemesh.NewContractViolation("decode detector rows", "box columns %d..%d are outside of %d columns", boxCol, boxCol+3, boxStride)
	}

	out := facemesh.DetectorOutput{
		Logits: make([]float64, anchors),
		Boxes:  make([][4]float64, anchors),
	}
	for i := 0; i < anchors; i++ {
		out.Logits[i] = float64(scores[i*scoreStride+scoreCol])
		row := boxes[i*boxStride+boxCol : i*boxStride+boxCol+4]
		out.Boxes[i] = [4]float64{float64(row[0]), float64(row[1]), float64(row[2]), float64(row[3])}
	}
	return out, nil
}
