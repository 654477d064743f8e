package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/signscribe/internal/metrics"
	"github.com/rs/zerolog"
)

// ErrNothingToSpeak is returned when the sentence is empty.
var ErrNothingToSpeak = errors.New("nothing to speak")

// Status messages shown to the display.
const (
	StatusReady    = "Ready"
	StatusSpeaking = "Speaking..."
	StatusEmpty    = "Nothing to speak"
)

// Dispatcher runs each utterance in its own goroutine over a copy of the
// text. Utterances are not cancelled or queued; the status reflects the most
// recently finished one.
type Dispatcher struct {
	synth   Synthesizer
	timeout time.Duration
	logger  zerolog.Logger

	mu       sync.Mutex
	status   string
	onStatus func(status string)
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher. A zero timeout means 30 seconds.
func NewDispatcher(synth Synthesizer, timeout time.Duration, logger zerolog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		synth:   synth,
		timeout: timeout,
		logger:  logger.With().Str("component", "speech").Logger(),
		status:  StatusReady,
	}
}

// Speak starts speaking text and returns immediately.
func (d *Dispatcher) Speak(text string) error {
	if strings.TrimSpace(text) == "" {
		d.setStatus(StatusEmpty)
		metrics.SpeechRequests.WithLabelValues("empty").Inc()
		return ErrNothingToSpeak
	}

	d.setStatus(StatusSpeaking)
	d.wg.Add(1)

	go func(text string) {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.synth.Speak(ctx, text); err != nil {
			d.logger.Warn().Err(err).Msg("speech failed")
			metrics.SpeechRequests.WithLabelValues("error").Inc()
			d.setStatus("error: " + err.Error())
			return
		}

		metrics.SpeechRequests.WithLabelValues("ok").Inc()
		d.setStatus(StatusReady)
	}(text)

	return nil
}

// Status returns the current speech status line.
func (d *Dispatcher) Status() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// OnStatus registers fn to be called after every status change, including
// the one an utterance makes when it finishes in the background.
func (d *Dispatcher) OnStatus(fn func(status string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onStatus = fn
}

// Wait blocks until every started utterance has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) setStatus(s string) {
	d.mu.Lock()
	d.status = s
	fn := d.onStatus
	d.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}
