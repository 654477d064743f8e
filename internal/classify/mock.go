package classify

import (
	"sync"

	"github.com/ayusman/signscribe/internal/label"
)

// MockModel is a Model that returns a configurable probability vector.
type MockModel struct {
	mu     sync.Mutex
	probs  []float64
	err    error
	calls  int
	closed bool
}

// NewMockModel creates a mock model returning probs.
func NewMockModel(probs []float64) *MockModel {
	return &MockModel{probs: probs}
}

// SetProbabilities changes the vector returned by Predict.
func (m *MockModel) SetProbabilities(probs []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probs = probs
}

// SetError makes Predict fail with err. Pass nil to clear.
func (m *MockModel) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Predict was called.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Predict implements Model.
func (m *MockModel) Predict(tensor []float32) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	out := make([]float64, len(m.probs))
	copy(out, m.probs)
	return out, nil
}

// Close implements Model.
func (m *MockModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// OneHot builds a probability vector over labels with p on target and the
// remainder spread over runnerUp. An empty runnerUp leaves the rest on target.
func OneHot(labels []label.Label, target label.Label, p float64, runnerUp label.Label) []float64 {
	probs := make([]float64, len(labels))
	for i, l := range labels {
		switch l {
		case target:
			probs[i] += p
			if runnerUp == label.None {
				probs[i] += 1 - p
			}
		case runnerUp:
			probs[i] += 1 - p
		}
	}
	return probs
}
