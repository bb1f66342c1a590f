package cvbridge

import (
	"fmt"
	"image"
	"image/color"

	"github.com/LdDl/facemesh-go/facemesh"
	"gocv.io/x/gocv"
)

var (
	faceRectColor = color.RGBA{128, 0, 128, 0}
	smoothedColor = color.RGBA{255, 255, 0, 0}
	landmarkColor = color.RGBA{0, 255, 0, 0}
	textColor     = color.RGBA{0, 0, 255, 0}
)

// DrawResult draws the crop rect, the smoothed rect and the landmarks of an accepted frame.
func DrawResult(img *gocv.Mat, result facemesh.FrameResult) {
	if result.MeshInvoked {
		gocv.Rectangle(img, result.Rect.ToImageRect(), faceRectColor, 2)
	}
	if result.Smoothed != nil {
		gocv.Rectangle(img, result.Smoothed.ToImageRect(), smoothedColor, 1)
	}
	for _, lm := range result.Landmarks {
		center := image.Pt(int(lm.X+0.5), int(lm.Y+0.5))
		gocv.Circle(img, center, 2, landmarkColor, -1)
	}
}

// DrawStatus prints mode and frame rate in the top-left corner
func DrawStatus(img *gocv.Mat, result facemesh.FrameResult, fps float64) {
	text := fmt.Sprintf("%.0f FPS %s", fps, result.Mode)
	gocv.PutText(img, text, image.Pt(5, 20), gocv.FontHersheyPlain, 1.2, textColor, 2)
}
