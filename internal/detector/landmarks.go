// Package detector provides hand detection interfaces and types for fingerspelling recognition.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point is a 2D landmark position in pixel coordinates (y grows downward).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is the detected hand region in the source frame.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Hand is a single detected hand: its box and 21 landmarks in frame pixels.
type Hand struct {
	Points     [NumLandmarks]Point `json:"points"`
	Box        BoundingBox         `json:"box"`
	Handedness string              `json:"handedness"` // "Left" or "Right"
	Score      float64             `json:"score"`
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// BoxFromPoints computes the tight integer bounding box around the points.
func BoxFromPoints(points [NumLandmarks]Point) BoundingBox {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y

	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	x := int(math.Floor(minX))
	y := int(math.Floor(minY))
	return BoundingBox{
		X:      x,
		Y:      y,
		Width:  int(math.Ceil(maxX)) - x,
		Height: int(math.Ceil(maxY)) - y,
	}
}

// RegionRelative re-expresses the landmarks relative to the crop region,
// which is the bounding box grown by pad pixels on every side.
func (h *Hand) RegionRelative(pad int) [NumLandmarks]Point {
	var out [NumLandmarks]Point
	originX := float64(h.Box.X - pad)
	originY := float64(h.Box.Y - pad)

	for i, p := range h.Points {
		out[i] = Point{X: p.X - originX, Y: p.Y - originY}
	}
	return out
}
