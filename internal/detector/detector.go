package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the most prominent hand.
	// Returns a nil hand and nil error if no hand is visible.
	Detect(frame *gocv.Mat) (*Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// Script is the path to the MediaPipe service script. Empty means search
	// the default locations.
	Script string

	// Python is the interpreter used to run the script. Empty means search
	// for a virtual environment, then fall back to python3.
	Python string

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 0.5,
	}
}
