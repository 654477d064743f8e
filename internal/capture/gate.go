package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	blurKernel    = 21
	diffThreshold = 25
)

// GateConfig configures a MotionGate.
type GateConfig struct {
	// Threshold is the percentage of pixels that must change between frames.
	Threshold float64
	// MaxSkip forces a pass through the gate after this many closed frames,
	// so a hand that slides in slowly is still picked up.
	MaxSkip int
}

// DefaultGateConfig opens on a 1% change and never stays shut longer than
// ten frames.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Threshold: 1.0,
		MaxSkip:   10,
	}
}

// MotionGate decides whether a frame differs enough from the previous one to
// be worth running hand detection on. It blurs a grayscale copy of each frame
// and counts the pixels whose difference passes a fixed threshold.
type MotionGate struct {
	config      GateConfig
	prevGray    gocv.Mat
	initialized bool
	skipped     int
	mu          sync.Mutex
}

// NewMotionGate creates a gate. A non-positive threshold disables gating.
func NewMotionGate(config GateConfig) *MotionGate {
	return &MotionGate{
		config:   config,
		prevGray: gocv.NewMat(),
	}
}

// Open reports whether frame should be processed, and the percentage of
// pixels that changed. The first frame always opens the gate.
func (g *MotionGate) Open(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}
	if g.config.Threshold <= 0 {
		return true, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

	if !g.initialized || blurred.Rows() != g.prevGray.Rows() || blurred.Cols() != g.prevGray.Cols() {
		blurred.CopyTo(&g.prevGray)
		g.initialized = true
		g.skipped = 0
		return true, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, diffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(thresh)) / float64(thresh.Rows()*thresh.Cols()) * 100.0

	blurred.CopyTo(&g.prevGray)

	if changed > g.config.Threshold {
		g.skipped = 0
		return true, changed
	}

	g.skipped++
	if g.config.MaxSkip > 0 && g.skipped >= g.config.MaxSkip {
		g.skipped = 0
		return true, changed
	}

	return false, changed
}

// Reset forgets the previous frame.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
}

// Close releases resources used by the gate.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
}

func (g *MotionGate) release() {
	if !g.prevGray.Empty() {
		g.prevGray.Close()
		g.prevGray = gocv.NewMat()
	}
	g.initialized = false
	g.skipped = 0
}
