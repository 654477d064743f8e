package speech

import (
	"context"
	"sync"
)

// MockSynthesizer records spoken text. When Block is set, Speak waits for it
// to be closed or for ctx to end.
type MockSynthesizer struct {
	mu     sync.Mutex
	spoken []string
	err    error

	Block chan struct{}
}

// NewMockSynthesizer creates a mock synthesizer.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

// SetError makes Speak fail with err.
func (m *MockSynthesizer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Spoken returns the texts spoken so far.
func (m *MockSynthesizer) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.spoken...)
}

// Speak implements Synthesizer.
func (m *MockSynthesizer) Speak(ctx context.Context, text string) error {
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.spoken = append(m.spoken, text)
	return m.err
}
