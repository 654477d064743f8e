// Package pipeline runs one camera frame through hand detection, skeleton
// normalization, classification, disambiguation and the commit machine.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/signscribe/internal/capture"
	"github.com/ayusman/signscribe/internal/classify"
	"github.com/ayusman/signscribe/internal/commit"
	"github.com/ayusman/signscribe/internal/detector"
	"github.com/ayusman/signscribe/internal/label"
	"github.com/ayusman/signscribe/internal/metrics"
	"github.com/ayusman/signscribe/internal/resolve"
	"github.com/ayusman/signscribe/internal/sentence"
	"github.com/ayusman/signscribe/internal/skeleton"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// ErrNoHandDetected is reported when a frame has no usable hand.
var ErrNoHandDetected = errors.New("no hand detected")

// Display text for frames without a letter.
const (
	DisplayNoHand = "No Hand Detected"
	DisplayReady  = "Ready"
)

// Outcome classifies a processed frame.
type Outcome string

const (
	OutcomeRecognized        Outcome = "recognized"
	OutcomeNoHand            Outcome = "no_hand"
	OutcomeMalformed         Outcome = "malformed"
	OutcomeClassifierFailure Outcome = "classifier_failure"
)

// Result describes one processed frame.
type Result struct {
	Outcome    Outcome
	Symbol     label.Label // resolved label, blank on classifier failure, no-hand when absent
	Candidates []classify.Candidate
	Event      commit.Event
	Skeleton   []byte // JPEG of the rendered canvas, nil when no skeleton was drawn
	Duration   time.Duration
	Err        error
}

// Display returns the text shown for the current symbol.
func (r Result) Display() string {
	switch r.Symbol {
	case label.NoHand:
		return DisplayNoHand
	case label.None:
		return ""
	default:
		return string(r.Symbol)
	}
}

// Config holds the tunables of a pipeline.
type Config struct {
	Canvas   skeleton.Canvas
	Resolver resolve.Config
	Commit   commit.Config
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Canvas:   skeleton.DefaultCanvas(),
		Resolver: resolve.DefaultConfig(),
		Commit:   commit.DefaultConfig(),
	}
}

// Pipeline owns the commit machine and the sentence assembler. It is not
// safe for concurrent use; callers serialize Process with the sentence
// operations.
type Pipeline struct {
	config    Config
	detector  detector.Detector
	adapter   *classify.Adapter
	resolver  *resolve.Resolver
	machine   *commit.Machine
	assembler *sentence.Assembler
	gate      *capture.MotionGate
	logger    zerolog.Logger

	canvas   gocv.Mat
	lastHand bool
}

// New creates a pipeline. gate may be nil to run detection on every frame.
func New(config Config, det detector.Detector, adapter *classify.Adapter, suggester sentence.Suggester, gate *capture.MotionGate, logger zerolog.Logger) *Pipeline {
	if config.Canvas.Size <= 0 {
		config.Canvas = skeleton.DefaultCanvas()
	}

	return &Pipeline{
		config:    config,
		detector:  det,
		adapter:   adapter,
		resolver:  resolve.New(config.Resolver),
		machine:   commit.New(config.Commit),
		assembler: sentence.NewAssembler(suggester),
		gate:      gate,
		logger:    logger.With().Str("component", "pipeline").Logger(),
		canvas:    skeleton.NewCanvas(config.Canvas.Size),
	}
}

// Process runs one frame through the pipeline.
func (p *Pipeline) Process(frame *gocv.Mat) Result {
	start := time.Now()
	res := p.process(frame)
	res.Duration = time.Since(start)

	metrics.FramesProcessed.WithLabelValues(string(res.Outcome)).Inc()
	metrics.FrameDuration.Observe(res.Duration.Seconds())
	if res.Event.Committed() {
		metrics.Commits.WithLabelValues(res.Event.Kind.String()).Inc()
	}

	return res
}

func (p *Pipeline) process(frame *gocv.Mat) Result {
	if p.gate != nil {
		open, _ := p.gate.Open(frame)
		// A still scene that had no hand still has none. A visible hand is
		// always re-detected, since holding a letter is a still scene too.
		if !open && !p.lastHand {
			return p.noHand(nil)
		}
	}

	hand, err := p.detector.Detect(frame)
	if err != nil {
		p.logger.Debug().Err(err).Msg("hand detection failed")
		return p.noHand(err)
	}
	if hand == nil {
		return p.noHand(nil)
	}
	p.lastHand = true

	sk, err := skeleton.FromHand(hand, p.config.Canvas)
	if err != nil {
		return Result{Outcome: OutcomeMalformed, Err: err}
	}

	if err := skeleton.Render(sk, &p.canvas); err != nil {
		return Result{Outcome: OutcomeMalformed, Err: err}
	}

	jpeg, err := skeleton.EncodeJPEG(p.canvas)
	if err != nil {
		p.logger.Debug().Err(err).Msg("skeleton encode failed")
	}

	classifyStart := time.Now()
	result, err := p.adapter.Classify(p.canvas)
	metrics.ClassifierLatency.Observe(time.Since(classifyStart).Seconds())
	if err != nil {
		p.logger.Debug().Err(err).Msg("classification failed")
		return Result{
			Outcome:  OutcomeClassifierFailure,
			Symbol:   label.Blank,
			Skeleton: jpeg,
			Err:      err,
		}
	}

	symbol := p.resolver.Resolve(result, sk)
	ev := p.machine.Step(symbol)
	p.assembler.Apply(ev)

	if ev.Committed() {
		p.logger.Debug().Str("label", string(ev.Label)).Str("kind", ev.Kind.String()).Msg("committed")
	}

	return Result{
		Outcome:    OutcomeRecognized,
		Symbol:     symbol,
		Candidates: result.Candidates,
		Event:      ev,
		Skeleton:   jpeg,
	}
}

func (p *Pipeline) noHand(cause error) Result {
	p.lastHand = false
	p.machine.Step(label.NoHand)

	err := ErrNoHandDetected
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrNoHandDetected, cause)
	}

	return Result{
		Outcome: OutcomeNoHand,
		Symbol:  label.NoHand,
		Err:     err,
	}
}

// Sentence returns a copy of the sentence state.
func (p *Pipeline) Sentence() sentence.State {
	return p.assembler.Snapshot()
}

// Commit returns a copy of the commit machine state.
func (p *Pipeline) Commit() commit.State {
	return p.machine.State()
}

// ApplySuggestion replaces the current word with suggestion i.
func (p *Pipeline) ApplySuggestion(i int) bool {
	return p.assembler.ApplySuggestion(i)
}

// ClearSentence empties the sentence. The commit machine keeps its state.
func (p *Pipeline) ClearSentence() {
	p.assembler.Clear()
}

// Reset starts a fresh session: sentence, commit machine and motion gate.
func (p *Pipeline) Reset() {
	p.assembler.Clear()
	p.machine.Reset()
	p.lastHand = false
	if p.gate != nil {
		p.gate.Reset()
	}
}

// Close releases the canvas.
func (p *Pipeline) Close() error {
	return p.canvas.Close()
}
