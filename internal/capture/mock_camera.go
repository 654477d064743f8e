package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

var (
	// ErrNoFrames is returned by a MockCamera that was given nothing to play.
	ErrNoFrames = errors.New("mock camera has no frames")
	// ErrEndOfFrames is returned once a non-looping MockCamera is exhausted.
	ErrEndOfFrames = errors.New("mock camera reached the last frame")
)

// MockCamera replays a fixed frame sequence through the same Config as the
// real camera, so mirroring and frame rate behave the way the pipeline sees
// them in production.
type MockCamera struct {
	mu     sync.Mutex
	config Config
	frames []*gocv.Mat
	loop   bool
	next   int
	reads  int
	open   bool
}

// NewMockCamera creates a camera that hands out clones of frames. Zero FPS
// falls back to the default rate.
func NewMockCamera(config Config, frames []*gocv.Mat, loop bool) *MockCamera {
	if config.FPS <= 0 {
		config.FPS = DefaultConfig().FPS
	}
	return &MockCamera{config: config, frames: frames, loop: loop}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.next = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// ReadFrame returns a clone of the next frame, mirrored if configured.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !c.open:
		return nil, ErrCameraNotOpen
	case len(c.frames) == 0:
		return nil, ErrNoFrames
	case c.next >= len(c.frames) && !c.loop:
		return nil, ErrEndOfFrames
	}

	frame := c.frames[c.next%len(c.frames)].Clone()
	c.next = c.next%len(c.frames) + 1
	c.reads++

	if c.config.Mirror {
		Mirror(&frame)
	}
	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.FPS = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.FPS
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Reads returns how many frames have been handed out.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}
