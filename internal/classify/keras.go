package classify

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ayusman/signscribe/internal/worker"
	"github.com/rs/zerolog"
)

const kerasScript = "classifier_service.py"

// KerasConfig configures the classifier subprocess.
type KerasConfig struct {
	Script string
	Python string
}

// KerasModel implements Model by talking to a Python Keras service. Tensors
// are sent as little-endian float32 values and probabilities come back as a
// JSON line.
type KerasModel struct {
	process *worker.Process
}

// NewKerasModel locates the classifier service. The process is started on the
// first prediction.
func NewKerasModel(config KerasConfig, logger zerolog.Logger) (*KerasModel, error) {
	script := config.Script
	if script == "" {
		script = worker.FindScript(kerasScript)
	}
	if script == "" {
		return nil, fmt.Errorf("%w: %s", worker.ErrScriptNotFound, kerasScript)
	}

	return &KerasModel{
		process: worker.New(script, config.Python, logger.With().Str("component", "classifier").Logger()),
	}, nil
}

// Predict implements Model.
func (m *KerasModel) Predict(tensor []float32) ([]float64, error) {
	line, err := m.process.Exchange(encodeTensor(tensor))
	if err != nil {
		return nil, err
	}

	var response struct {
		Probabilities []float64 `json:"probabilities"`
		Error         string    `json:"error,omitempty"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("classifier service: %s", response.Error)
	}

	return response.Probabilities, nil
}

// Close shuts down the Python process.
func (m *KerasModel) Close() error {
	return m.process.Close()
}

func encodeTensor(tensor []float32) []byte {
	buf := make([]byte, 4*len(tensor))
	for i, v := range tensor {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}
