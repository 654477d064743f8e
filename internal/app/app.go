// Package app ties the camera, the recognition pipeline and speech together
// and publishes a display snapshot after every frame.
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/signscribe/internal/capture"
	"github.com/ayusman/signscribe/internal/classify"
	"github.com/ayusman/signscribe/internal/metrics"
	"github.com/ayusman/signscribe/internal/pipeline"
	"github.com/ayusman/signscribe/internal/speech"
	"github.com/ayusman/signscribe/internal/store"
	"github.com/ayusman/signscribe/internal/suggest"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTick is the capture interval.
const DefaultTick = 30 * time.Millisecond

// ErrInvalidSuggestion is returned when a suggestion slot is empty or out of range.
var ErrInvalidSuggestion = errors.New("no suggestion in that slot")

var _ suggest.Dictionary = (*store.WordRepository)(nil)

// Config holds configuration options for the application.
type Config struct {
	Tick time.Duration
	// Store persists transcripts and the enabled toggle. Optional.
	Store *store.Store
}

// Snapshot is what the display shows after a frame.
type Snapshot struct {
	SessionID   string               `json:"session_id"`
	Symbol      string               `json:"symbol"`
	Candidates  []classify.Candidate `json:"candidates,omitempty"`
	Sentence    string               `json:"sentence"`
	Word        string               `json:"word"`
	Suggestions suggest.Suggestions  `json:"suggestions"`
	Speech      string               `json:"speech"`
	Enabled     bool                 `json:"enabled"`
	Running     bool                 `json:"running"`
	Frames      uint64               `json:"frames"`
	FrameTime   time.Time            `json:"frame_time"`
	Skeleton    []byte               `json:"-"`
}

// App is the main application. Frame passes and user actions are serialized
// on one mutex, so the pipeline never sees concurrent calls.
type App struct {
	config   Config
	camera   capture.Camera
	pipeline *pipeline.Pipeline
	speech   *speech.Dispatcher
	logger   zerolog.Logger

	mu       sync.Mutex
	snapshot Snapshot

	runMu  sync.Mutex
	stopCh chan struct{}
	done   chan struct{}

	subMu sync.Mutex
	subs  map[chan Snapshot]struct{}
}

// New creates an App. The enabled toggle is restored from the store when
// one is configured.
func New(config Config, camera capture.Camera, p *pipeline.Pipeline, speaker *speech.Dispatcher, logger zerolog.Logger) *App {
	if config.Tick <= 0 {
		config.Tick = DefaultTick
	}

	enabled := true
	if config.Store != nil {
		enabled = config.Store.Settings().GetBool(store.SettingEnabled, true)
	}

	a := &App{
		config:   config,
		camera:   camera,
		pipeline: p,
		speech:   speaker,
		logger:   logger.With().Str("component", "app").Logger(),
		snapshot: Snapshot{
			SessionID: uuid.NewString(),
			Symbol:    pipeline.DisplayReady,
			Enabled:   enabled,
		},
		subs: make(map[chan Snapshot]struct{}),
	}

	// speech finishes in the background, possibly while no frames are flowing
	speaker.OnStatus(func(string) { a.publish(a.Snapshot()) })
	return a
}

// Start opens the camera and begins the capture loop.
func (a *App) Start() error {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stopCh, a.done)

	a.mu.Lock()
	a.snapshot.Running = true
	a.mu.Unlock()

	a.logger.Info().Dur("tick", a.config.Tick).Str("session", a.SessionID()).Msg("capture loop started")
	return nil
}

// Stop halts the capture loop, waits for the current pass and releases the
// camera. Speech already in flight is left to finish.
func (a *App) Stop() {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	if a.stopCh == nil {
		return
	}
	close(a.stopCh)
	<-a.done
	a.stopCh = nil
	a.done = nil

	if err := a.camera.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("error closing camera")
	}

	a.mu.Lock()
	a.snapshot.Running = false
	a.mu.Unlock()

	a.logger.Info().Msg("capture loop stopped")
}

// run processes one frame per tick. A pass that overruns the tick makes the
// ticker drop the missed ticks rather than queue them.
func (a *App) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.config.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := a.Step(); err != nil {
				a.logger.Debug().Err(err).Msg("frame skipped")
			}
		}
	}
}

// Step reads one frame and runs it through the pipeline. It does nothing
// while recognition is disabled.
func (a *App) Step() error {
	if !a.IsEnabled() {
		return nil
	}

	frame, err := a.camera.ReadFrame()
	if err != nil {
		metrics.FramesProcessed.WithLabelValues("capture_error").Inc()
		return fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	a.mu.Lock()
	res := a.pipeline.Process(frame)
	a.applyResult(res)
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.publish(snap)
	return nil
}

// applyResult folds a frame result into the snapshot. A malformed frame
// leaves the previous symbol and skeleton on screen.
func (a *App) applyResult(res pipeline.Result) {
	s := &a.snapshot
	s.Frames++
	s.FrameTime = time.Now()

	if res.Outcome != pipeline.OutcomeMalformed {
		s.Symbol = res.Display()
		s.Candidates = res.Candidates
		s.Skeleton = res.Skeleton
	}

	st := a.pipeline.Sentence()
	s.Sentence = st.Sentence
	s.Word = st.Word
	s.Suggestions = st.Suggestions
}

func (a *App) snapshotLocked() Snapshot {
	snap := a.snapshot
	snap.Candidates = append([]classify.Candidate(nil), a.snapshot.Candidates...)
	snap.Speech = a.speech.Status()
	return snap
}

// Snapshot returns the current display state.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// SessionID identifies this run in stored transcripts.
func (a *App) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot.SessionID
}

// ApplySuggestion replaces the current word with suggestion slot i.
func (a *App) ApplySuggestion(i int) error {
	a.mu.Lock()
	ok := a.pipeline.ApplySuggestion(i)
	if ok {
		a.syncSentence()
	}
	snap := a.snapshotLocked()
	a.mu.Unlock()

	if !ok {
		return ErrInvalidSuggestion
	}
	a.publish(snap)
	return nil
}

// Clear empties the sentence and resets the symbol display. The commit
// machine keeps its state, so a held letter does not re-commit.
func (a *App) Clear() {
	a.mu.Lock()
	a.pipeline.ClearSentence()
	a.syncSentence()
	a.snapshot.Symbol = pipeline.DisplayReady
	a.snapshot.Candidates = nil
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.publish(snap)
}

// Speak sends the current sentence to the synthesizer and records it as a
// transcript. It returns as soon as speech has started.
func (a *App) Speak() error {
	a.mu.Lock()
	text := a.snapshot.Sentence
	session := a.snapshot.SessionID
	a.mu.Unlock()

	if err := a.speech.Speak(text); err != nil {
		return err
	}

	if a.config.Store != nil {
		t := &store.Transcript{SessionID: session, Text: text}
		if err := a.config.Store.Transcripts().Create(t); err != nil {
			a.logger.Warn().Err(err).Msg("failed to store transcript")
		}
	}
	return nil
}

// SetEnabled turns recognition on or off and persists the choice. Turning
// it off resets the commit machine so a letter held across the pause is
// counted afresh.
func (a *App) SetEnabled(enabled bool) error {
	a.mu.Lock()
	if a.snapshot.Enabled != enabled && !enabled {
		a.pipeline.Reset()
		a.syncSentence()
		a.snapshot.Symbol = pipeline.DisplayReady
		a.snapshot.Candidates = nil
		a.snapshot.Skeleton = nil
	}
	a.snapshot.Enabled = enabled
	snap := a.snapshotLocked()
	a.mu.Unlock()

	a.publish(snap)

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingEnabled, enabled); err != nil {
			return fmt.Errorf("persist enabled: %w", err)
		}
	}
	return nil
}

// IsEnabled returns whether recognition is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot.Enabled
}

func (a *App) syncSentence() {
	st := a.pipeline.Sentence()
	a.snapshot.Sentence = st.Sentence
	a.snapshot.Word = st.Word
	a.snapshot.Suggestions = st.Suggestions
}

// Subscribe returns a channel that receives a snapshot after every change.
// Slow subscribers only see the latest snapshot. Call the returned function
// to unsubscribe.
func (a *App) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	a.subMu.Lock()
	a.subs[ch] = struct{}{}
	a.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.subMu.Lock()
			delete(a.subs, ch)
			a.subMu.Unlock()
		})
	}
}

func (a *App) publish(snap Snapshot) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	for ch := range a.subs {
		select {
		case ch <- snap:
		default:
			// replace the stale snapshot
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
