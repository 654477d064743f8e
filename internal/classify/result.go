// Package classify adapts the external gesture classifier to the pipeline:
// it shapes the skeleton canvas into the model's input tensor and decodes the
// model's probability vector into a ranked result.
package classify

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ayusman/signscribe/internal/label"
)

var (
	// ErrClassifierFailure wraps any model call or decoding failure.
	ErrClassifierFailure = errors.New("classifier failure")
	// ErrMalformedOutput is returned when the probability vector is unusable.
	ErrMalformedOutput = errors.New("malformed classifier output")
)

// TopK is the number of ranked candidates kept for disambiguation.
const TopK = 3

// sumTolerance bounds how far the vector may drift from summing to 1.
const sumTolerance = 0.02

// Candidate is a label with its probability.
type Candidate struct {
	Label       label.Label `json:"label"`
	Probability float64     `json:"probability"`
}

// Result holds the top candidates ordered by descending probability.
type Result struct {
	Candidates []Candidate `json:"candidates"`
}

// Top returns the i-th ranked candidate, or a zero-probability blank.
func (r Result) Top(i int) Candidate {
	if i < 0 || i >= len(r.Candidates) {
		return Candidate{Label: label.Blank}
	}
	return r.Candidates[i]
}

// Decode validates probs against the label set and ranks it. Ties keep the
// label set order so decoding is deterministic.
func Decode(probs []float64, labels []label.Label) (Result, error) {
	if len(probs) != len(labels) {
		return Result{}, fmt.Errorf("%w: got %d values for %d labels", ErrMalformedOutput, len(probs), len(labels))
	}

	var sum float64
	candidates := make([]Candidate, len(probs))
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
			return Result{}, fmt.Errorf("%w: value %d is %v", ErrMalformedOutput, i, p)
		}
		sum += p
		candidates[i] = Candidate{Label: labels[i], Probability: p}
	}

	if math.Abs(sum-1) > sumTolerance {
		return Result{}, fmt.Errorf("%w: probabilities sum to %.4f", ErrMalformedOutput, sum)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Probability > candidates[j].Probability
	})

	if len(candidates) > TopK {
		candidates = candidates[:TopK]
	}

	return Result{Candidates: candidates}, nil
}
