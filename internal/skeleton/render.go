package skeleton

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ayusman/signscribe/internal/detector"
	"gocv.io/x/gocv"
)

// Drawing style of the skeleton canvas.
var (
	BoneColor     = color.RGBA{G: 255, A: 255}
	LandmarkColor = color.RGBA{R: 255, A: 255}
)

const (
	boneThickness  = 2
	landmarkRadius = 3
)

// NewCanvas allocates a white size x size BGR canvas. The caller owns the Mat.
func NewCanvas(size int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), size, size, gocv.MatTypeCV8UC3)
}

// Render clears dst to white and draws the bones and landmark markers.
// dst must be a Size x Size CV_8UC3 Mat, usually from NewCanvas.
func Render(sk *Skeleton, dst *gocv.Mat) error {
	if dst.Rows() != sk.Size || dst.Cols() != sk.Size || dst.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("canvas is %dx%d type %v, want %dx%d CV_8UC3",
			dst.Cols(), dst.Rows(), dst.Type(), sk.Size, sk.Size)
	}

	dst.SetTo(gocv.NewScalar(255, 255, 255, 0))

	for _, b := range Bones {
		gocv.Line(dst, pixel(sk.Points[b[0]]), pixel(sk.Points[b[1]]), BoneColor, boneThickness)
	}
	for i := 0; i < detector.NumLandmarks; i++ {
		gocv.Circle(dst, pixel(sk.Points[i]), landmarkRadius, LandmarkColor, -1)
	}

	return nil
}

// EncodeJPEG encodes a canvas for the display layer.
func EncodeJPEG(canvas gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, canvas)
	if err != nil {
		return nil, fmt.Errorf("encode skeleton: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

func pixel(p detector.Point) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}
