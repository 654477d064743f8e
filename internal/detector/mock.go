package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hand  *Hand
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHand sets the hand that will be returned by Detect. Nil means no hand.
func (m *MockDetector) SetHand(hand *Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hand = hand
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls reports how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hand or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.hand == nil {
		return nil, nil
	}
	hand := *m.hand
	return &hand, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FrameWidth and FrameHeight are the frame size the fixture hands are placed in.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// handFromNormalized scales [0,1] coordinates into a FrameWidth x FrameHeight frame.
func handFromNormalized(points [NumLandmarks][2]float64) Hand {
	hand := Hand{
		Handedness: "Right",
		Score:      0.95,
	}
	for i, p := range points {
		hand.Points[i] = Point{X: p[0] * FrameWidth, Y: p[1] * FrameHeight}
	}
	hand.Box = BoxFromPoints(hand.Points)
	return hand
}

// ThumbsUpHand returns a fixture hand with the thumb extended upward while the
// other fingers are curled (a closed fist, like the letter A).
func ThumbsUpHand() Hand {
	return handFromNormalized([NumLandmarks][2]float64{
		Wrist: {0.5, 0.8},

		ThumbCMC: {0.55, 0.75},
		ThumbMCP: {0.58, 0.65},
		ThumbIP:  {0.58, 0.50},
		ThumbTip: {0.58, 0.35},

		IndexMCP: {0.55, 0.70},
		IndexPIP: {0.55, 0.68},
		IndexDIP: {0.52, 0.70},
		IndexTip: {0.50, 0.72},

		MiddleMCP: {0.50, 0.68},
		MiddlePIP: {0.50, 0.66},
		MiddleDIP: {0.47, 0.68},
		MiddleTip: {0.45, 0.70},

		RingMCP: {0.45, 0.70},
		RingPIP: {0.45, 0.68},
		RingDIP: {0.42, 0.70},
		RingTip: {0.40, 0.72},

		PinkyMCP: {0.40, 0.72},
		PinkyPIP: {0.40, 0.70},
		PinkyDIP: {0.37, 0.72},
		PinkyTip: {0.35, 0.74},
	})
}

// OpenPalmHand returns a fixture hand with all fingers extended (the letter B
// with the thumb out).
func OpenPalmHand() Hand {
	return handFromNormalized([NumLandmarks][2]float64{
		Wrist: {0.5, 0.8},

		ThumbCMC: {0.55, 0.75},
		ThumbMCP: {0.62, 0.70},
		ThumbIP:  {0.68, 0.65},
		ThumbTip: {0.73, 0.60},

		IndexMCP: {0.55, 0.68},
		IndexPIP: {0.57, 0.55},
		IndexDIP: {0.58, 0.45},
		IndexTip: {0.58, 0.35},

		MiddleMCP: {0.50, 0.66},
		MiddlePIP: {0.50, 0.52},
		MiddleDIP: {0.50, 0.40},
		MiddleTip: {0.50, 0.28},

		RingMCP: {0.45, 0.68},
		RingPIP: {0.43, 0.55},
		RingDIP: {0.42, 0.45},
		RingTip: {0.42, 0.35},

		PinkyMCP: {0.40, 0.70},
		PinkyPIP: {0.37, 0.60},
		PinkyDIP: {0.35, 0.50},
		PinkyTip: {0.34, 0.42},
	})
}

// EdgeHand returns a fixture hand too large for the canonical canvas, as when
// the hand fills the camera view.
func EdgeHand() Hand {
	hand := OpenPalmHand()
	for i := range hand.Points {
		hand.Points[i].X = (hand.Points[i].X-320)*2.2 + 320
		hand.Points[i].Y = (hand.Points[i].Y-240)*2.2 + 240
	}
	hand.Box = BoxFromPoints(hand.Points)
	return hand
}
