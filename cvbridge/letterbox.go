package cvbridge

import (
	"image"
	"image/color"

	"github.com/LdDl/facemesh-go/facemesh"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// LetterboxInput resizes BGR frame preserving aspect ratio, maps pixels to [-1, 1],
// pads with zeros up to detector size and packs the result into NCHW RGB blob.
// Every Mat it creates, the blob included, is owned by scope.
func LetterboxInput(scope *Scope, frame gocv.Mat, lb facemesh.Letterbox) (gocv.Mat, error) {
	if frame.Empty() {
		return gocv.Mat{}, errors.New("Empty frame")
	}
	if frame.Rows() != lb.Frame.Height || frame.Cols() != lb.Frame.Width {
		return gocv.Mat{}, facemesh.NewContractViolation("letterbox input", "frame is %dx%d, session expects %dx%d", frame.Cols(), frame.Rows(), lb.Frame.Width, lb.Frame.Height)
	}

	resized := scope.Track(gocv.NewMat())
	gocv.Resize(frame, &resized, image.Pt(lb.Scaled.Width, lb.Scaled.Height), 0, 0, gocv.InterpolationLinear)

	normalized := scope.Track(gocv.NewMat())
	resized.ConvertToWithParams(&normalized, gocv.MatTypeCV32FC3, 1.0/127.5, -1.0)

	// Zero padding after normalization, so letterbox bars are mid-gray for the model
	padded := scope.Track(gocv.NewMat())
	gocv.CopyMakeBorder(normalized, &padded, lb.PadY.Before, lb.PadY.After, lb.PadX.Before, lb.PadX.After, gocv.BorderConstant, color.RGBA{})

	blob := scope.Track(gocv.BlobFromImage(padded, 1.0, image.Pt(lb.Size, lb.Size), gocv.NewScalar(0, 0, 0, 0), true, false))
	return blob, nil
}

// CropInput cuts crop out of BGR frame, resizes it to size x size, maps pixels
// to [0, 1] and packs the result into NCHW RGB blob owned by scope.
func CropInput(scope *Scope, frame gocv.Mat, crop facemesh.Rect, size int) (gocv.Mat, error) {
	if frame.Empty() {
		return gocv.Mat{}, errors.New("Empty frame")
	}
	bounds := crop.ToImageRect().Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
	if bounds.Empty() {
		return gocv.Mat{}, errors.Errorf("Crop %v is outside of %dx%d frame", crop, frame.Cols(), frame.Rows())
	}

	region := scope.Track(frame.Region(bounds))

	resized := scope.Track(gocv.NewMat())
	gocv.Resize(region, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationLinear)

	normalized := scope.Track(gocv.NewMat())
	resized.ConvertToWithParams(&normalized, gocv.MatTypeCV32FC3, 1.0/255.0, 0)

	blob := scope.Track(gocv.BlobFromImage(normalized, 1.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false))
	return blob, nil
}
