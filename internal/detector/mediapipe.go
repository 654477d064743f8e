package detector

import (
	"encoding/json"
	"fmt"

	"github.com/ayusman/signscribe/internal/worker"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

const mediaPipeScript = "mediapipe_service.py"

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
type MediaPipeDetector struct {
	config  Config
	process *worker.Process
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config, logger zerolog.Logger) (*MediaPipeDetector, error) {
	script := config.Script
	if script == "" {
		script = worker.FindScript(mediaPipeScript)
	}
	if script == "" {
		return nil, fmt.Errorf("%w: %s", worker.ErrScriptNotFound, mediaPipeScript)
	}

	return &MediaPipeDetector{
		config:  config,
		process: worker.New(script, config.Python, logger.With().Str("component", "detector").Logger()),
	}, nil
}

// Detect sends the frame as JPEG and returns the highest scoring hand.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) (*Hand, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	line, err := d.process.Exchange(buf.GetBytes())
	if err != nil {
		return nil, err
	}

	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var best *Hand
	for _, h := range response.Hands {
		if len(h.Points) != NumLandmarks || h.Score < d.config.MinConfidence {
			continue
		}
		if best == nil || h.Score > best.Score {
			hand := h.toHand(frame.Cols(), frame.Rows())
			best = &hand
		}
	}

	return best, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	return d.process.Close()
}

// jsonHand represents the JSON structure from the Python service.
// Coordinates are normalized to the frame size.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (h jsonHand) toHand(width, height int) Hand {
	hand := Hand{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		hand.Points[i] = Point{
			X: h.Points[i].X * float64(width),
			Y: h.Points[i].Y * float64(height),
		}
	}
	hand.Box = BoxFromPoints(hand.Points)

	return hand
}
