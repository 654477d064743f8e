// Package skeleton maps detected hand landmarks into the fixed-size canonical
// canvas the classifier and the skeleton view are drawn on.
package skeleton

import (
	"errors"
	"fmt"

	"github.com/ayusman/signscribe/internal/detector"
)

var (
	// ErrInvalidBox is returned when the hand box has a non-positive side.
	ErrInvalidBox = errors.New("invalid hand box")
	// ErrMalformedCrop is returned when a shifted landmark falls outside the canvas.
	ErrMalformedCrop = errors.New("malformed crop")
)

// Canvas describes the canonical frame.
type Canvas struct {
	Size    int // side length S of the square canvas
	Margin  int // subtracted from the centering offset
	CropPad int // padding around the detected box when cropping the hand region
}

// DefaultCanvas returns the 400x400 canvas the classifier was trained on.
func DefaultCanvas() Canvas {
	return Canvas{
		Size:    400,
		Margin:  15,
		CropPad: 29,
	}
}

// Skeleton is a hand re-expressed inside the canonical canvas.
type Skeleton struct {
	Points  [detector.NumLandmarks]detector.Point
	Size    int
	OffsetX int
	OffsetY int
}

// Normalize shifts region-relative landmarks by the centering offset
// ((S-w)/2 - margin, (S-h)/2 - margin). Every resulting point must lie in [0, S).
func Normalize(points [detector.NumLandmarks]detector.Point, w, h int, canvas Canvas) (*Skeleton, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidBox, w, h)
	}

	size := canvas.Size
	sk := &Skeleton{
		Size:    size,
		OffsetX: floorHalf(size-w) - canvas.Margin,
		OffsetY: floorHalf(size-h) - canvas.Margin,
	}

	limit := float64(size)
	for i, p := range points {
		q := detector.Point{X: p.X + float64(sk.OffsetX), Y: p.Y + float64(sk.OffsetY)}
		if q.X < 0 || q.Y < 0 || q.X >= limit || q.Y >= limit {
			return nil, fmt.Errorf("%w: landmark %d at (%.1f, %.1f) outside %dx%d canvas",
				ErrMalformedCrop, i, q.X, q.Y, size, size)
		}
		sk.Points[i] = q
	}

	return sk, nil
}

// floorHalf divides by two rounding toward negative infinity, so hands wider
// than the canvas shift consistently.
func floorHalf(n int) int {
	if n < 0 {
		return -((-n + 1) / 2)
	}
	return n / 2
}

// FromHand crops the hand region and normalizes it in one step.
func FromHand(hand *detector.Hand, canvas Canvas) (*Skeleton, error) {
	return Normalize(hand.RegionRelative(canvas.CropPad), hand.Box.Width, hand.Box.Height, canvas)
}

// Bones lists the connective lines of the skeleton drawing: the thumb chain,
// the four finger chains and the palm base.
var Bones = [][2]int{
	{detector.Wrist, detector.ThumbCMC},
	{detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP},
	{detector.ThumbIP, detector.ThumbTip},

	{detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP},
	{detector.IndexDIP, detector.IndexTip},

	{detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP},
	{detector.MiddleDIP, detector.MiddleTip},

	{detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP},
	{detector.RingDIP, detector.RingTip},

	{detector.PinkyMCP, detector.PinkyPIP},
	{detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},

	{detector.IndexMCP, detector.MiddleMCP},
	{detector.MiddleMCP, detector.RingMCP},
	{detector.RingMCP, detector.PinkyMCP},
	{detector.Wrist, detector.IndexMCP},
	{detector.Wrist, detector.PinkyMCP},
}
