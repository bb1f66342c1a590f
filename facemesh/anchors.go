package facemesh

import (
	"io"
	"math"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Anchor is one row of the detector anchor table: normalized center and size.
type Anchor struct {
	CX float64
	CY float64
	W  float64
	H  float64
}

// AnchorTable is indexed the same way as detector output rows. Read-only after load.
type AnchorTable []Anchor

// DetectorOutput is the raw detector answer for one frame: one confidence logit
// and four box offsets (dx, dy, w, h in detector pixels) per anchor.
type DetectorOutput struct {
	Logits []float64
	Boxes  [][4]float64
}

// DecodeBest picks the anchor with the highest logit (lowest index wins ties,
// non-finite logits never win unless nothing is finite, then index 0 is used)
// and decodes its box into source-frame coordinates. The result is neither padded nor clamped.
// Non-finite logits or box values give confidence 0.
func DecodeBest(out DetectorOutput, anchors AnchorTable, lb Letterbox) (Rect, int, error) {
	if len(anchors) == 0 {
		return Rect{}, -1, newContractViolation("decode", "empty anchor table")
	}
	if len(out.Logits) != len(anchors) {
		return Rect{}, -1, newContractViolation("decode", "detector returned %d logits for %d anchors", len(out.Logits), len(anchors))
	}
	if len(out.Boxes) != len(anchors) {
		return Rect{}, -1, newContractViolation("decode", "detector returned %d boxes for %d anchors", len(out.Boxes), len(anchors))
	}
	idx := bestAnchor(out.Logits)
	rect, err := decodeAnchor(out, anchors, idx, lb)
	return rect, idx, err
}

// bestAnchor is arg-max over finite logits
func bestAnchor(logits []float64) int {
	finite := make([]float64, len(logits))
	for i, v := range logits {
		if isFinite(v) {
			finite[i] = v
		} else {
			finite[i] = math.NaN()
		}
	}
	// MaxIdx skips NaN and returns the first index among equal maxima (0 when all are NaN)
	return floats.MaxIdx(finite)
}

func decodeAnchor(out DetectorOutput, anchors AnchorTable, idx int, lb Letterbox) (Rect, error) {
	if idx < 0 || idx >= len(anchors) || idx >= len(out.Boxes) {
		return Rect{}, newContractViolation("decode", "anchor index %d out of range [0, %d)", idx, len(anchors))
	}
	anchor := anchors[idx]
	box := out.Boxes[idx]
	size := float64(lb.Size)

	cx := box[0] + anchor.CX*size
	cy := box[1] + anchor.CY*size
	w := box[2] * anchor.W
	h := box[3] * anchor.H

	logit := out.Logits[idx]
	confidence := sigmoid(logit)
	if !isFinite(logit) || !isFinite(cx) || !isFinite(cy) || !isFinite(w) || !isFinite(h) {
		confidence = 0
	}
	return lb.RectFromDetectorSpace(NewRectFromCenter(confidence, cx, cy, w, h)), nil
}

// SSDAnchorOptions describes a single-scale SSD anchor grid with fixed anchor size.
type SSDAnchorOptions struct {
	InputSize int
	// One entry per layer. Consecutive layers with equal stride share a feature map.
	Strides []int
	// Anchors generated per layer for each feature-map cell
	AnchorsPerLayer int
	Offset          float64
}

// DefaultSSDAnchorOptions returns options of the 128x128 short-range face detector (896 anchors).
func DefaultSSDAnchorOptions() SSDAnchorOptions {
	return SSDAnchorOptions{
		InputSize:       128,
		Strides:         []int{8, 16, 16, 16},
		AnchorsPerLayer: 2,
		Offset:          0.5,
	}
}

// GenerateAnchors builds the anchor table in detector output order: feature maps
// by increasing layer, then rows, then columns, then anchors of the cell.
func GenerateAnchors(opts SSDAnchorOptions) (AnchorTable, error) {
	if opts.InputSize <= 0 || opts.AnchorsPerLayer <= 0 || len(opts.Strides) == 0 {
		return nil, newContractViolation("generate anchors", "invalid options %+v", opts)
	}
	anchors := make(AnchorTable, 0)
	layer := 0
	for layer < len(opts.Strides) {
		stride := opts.Strides[layer]
		if stride <= 0 {
			return nil, newContractViolation("generate anchors", "stride must be positive, got %d", stride)
		}
		sameStride := 0
		for layer < len(opts.Strides) && opts.Strides[layer] == stride {
			sameStride++
			layer++
		}
		perCell := sameStride * opts.AnchorsPerLayer
		fmHeight := int(math.Ceil(float64(opts.InputSize) / float64(stride)))
		fmWidth := fmHeight
		for y := 0; y < fmHeight; y++ {
			for x := 0; x < fmWidth; x++ {
				cx := (float64(x) + opts.Offset) / float64(fmWidth)
				cy := (float64(y) + opts.Offset) / float64(fmHeight)
				for k := 0; k < perCell; k++ {
					anchors = append(anchors, Anchor{CX: cx, CY: cy, W: 1.0, H: 1.0})
				}
			}
		}
	}
	return anchors, nil
}

// ReadAnchorsJSON reads an anchor table stored as a JSON array of [cx, cy, w, h] rows.
func ReadAnchorsJSON(r io.Reader) (AnchorTable, error) {
	var rows [][]float64
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, errors.Wrap(err, "Can't decode anchor table")
	}
	if len(rows) == 0 {
		return nil, newContractViolation("read anchors", "anchor table is empty")
	}
	anchors := make(AnchorTable, len(rows))
	for i, row := range rows {
		if len(row) != 4 {
			return nil, newContractViolation("read anchors", "row %d has %d values, expected 4", i, len(row))
		}
		anchors[i] = Anchor{CX: row[0], CY: row[1], W: row[2], H: row[3]}
	}
	return anchors, nil
}
