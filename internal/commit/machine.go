// Package commit debounces per-frame labels into committed characters.
//
// A label is committed once it has been seen on StableFrames consecutive
// frames, and then not again until some other label has been committed or
// the hand has been idle for IdleResetFrames frames. A space is suppressed
// until a letter or an idle gap follows it.
package commit

import (
	"github.com/ayusman/signscribe/internal/label"
)

// Kind classifies an Event.
type Kind int

const (
	KindNone Kind = iota
	KindCharacter
	KindSpace
)

func (k Kind) String() string {
	switch k {
	case KindCharacter:
		return "character"
	case KindSpace:
		return "space"
	default:
		return "none"
	}
}

// Event is the outcome of one Step.
type Event struct {
	Kind  Kind
	Label label.Label
}

// Committed reports whether the event carries a commit.
func (e Event) Committed() bool {
	return e.Kind != KindNone
}

// Config holds the debounce thresholds.
type Config struct {
	StableFrames    int
	IdleResetFrames int
}

// DefaultConfig returns ten stable frames (about 300 ms at the 30 ms tick)
// and a one second idle reset.
func DefaultConfig() Config {
	return Config{
		StableFrames:    10,
		IdleResetFrames: 30,
	}
}

// State is a read-only view of the machine.
type State struct {
	Label         label.Label `json:"label"`
	Count         int         `json:"count"`
	LastCommitted label.Label `json:"last_committed"`
	IdleFrames    int         `json:"idle_frames"`
	SpacePending  bool        `json:"space_pending"`
}

// Accumulating reports whether a label is being counted.
func (s State) Accumulating() bool {
	return s.Label != label.None
}

// Machine is the commit state machine. It is not safe for concurrent use;
// the owner serializes calls.
type Machine struct {
	config Config
	state  State
}

// New creates a machine in the idle state.
func New(config Config) *Machine {
	if config.StableFrames <= 0 {
		config.StableFrames = DefaultConfig().StableFrames
	}
	return &Machine{config: config}
}

// Step feeds one resolved label and returns the commit it produced, if any.
func (m *Machine) Step(l label.Label) Event {
	s := &m.state

	if l.IsIdle() {
		s.Label = label.None
		s.Count = 0
		s.IdleFrames++
		if m.config.IdleResetFrames > 0 && s.IdleFrames >= m.config.IdleResetFrames {
			s.LastCommitted = label.None
			s.SpacePending = false
		}
		return Event{}
	}

	s.IdleFrames = 0
	if l != s.Label {
		s.Label = l
		s.Count = 1
	} else {
		s.Count++
	}

	if s.Count < m.config.StableFrames || l == s.LastCommitted {
		return Event{}
	}
	if l == label.Space && s.SpacePending {
		return Event{}
	}

	s.LastCommitted = l
	s.Count = 0

	if l == label.Space {
		s.SpacePending = true
		return Event{Kind: KindSpace, Label: l}
	}

	s.SpacePending = false
	return Event{Kind: KindCharacter, Label: l}
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state
}

// Reset returns the machine to a fresh idle state.
func (m *Machine) Reset() {
	m.state = State{}
}
