// Package suggest turns the word being spelled into spelling suggestions.
package suggest

import (
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ErrDictionaryUnavailable is logged when no dictionary is configured or the
// dictionary fails. Suggestions are then empty.
var ErrDictionaryUnavailable = errors.New("dictionary unavailable")

// Slots is the number of suggestions shown.
const Slots = 4

// Suggestions is a fixed set of slots; unused slots are empty strings.
type Suggestions [Slots]string

// Empty reports whether every slot is empty.
func (s Suggestions) Empty() bool {
	return s == Suggestions{}
}

// Dictionary validates words and proposes corrections. Words are passed in
// lower case.
type Dictionary interface {
	Check(word string) (bool, error)
	Suggest(word string, limit int) ([]string, error)
}

// Engine wraps a Dictionary. A nil dictionary is allowed.
type Engine struct {
	dict   Dictionary
	logger zerolog.Logger

	warnOnce sync.Once
}

// NewEngine creates a suggestion engine.
func NewEngine(dict Dictionary, logger zerolog.Logger) *Engine {
	return &Engine{
		dict:   dict,
		logger: logger.With().Str("component", "suggest").Logger(),
	}
}

// Suggest returns the suggestions for word. A valid word is returned as the
// only suggestion; otherwise up to four corrections fill the slots.
func (e *Engine) Suggest(word string) Suggestions {
	var out Suggestions
	if word == "" {
		return out
	}

	if e.dict == nil {
		e.unavailable(nil)
		return out
	}

	lower := strings.ToLower(word)

	ok, err := e.dict.Check(lower)
	if err != nil {
		e.unavailable(err)
		return out
	}
	if ok {
		out[0] = lower
		return out
	}

	corrections, err := e.dict.Suggest(lower, Slots)
	if err != nil {
		e.unavailable(err)
		return out
	}

	copy(out[:], corrections)
	return out
}

func (e *Engine) unavailable(cause error) {
	e.warnOnce.Do(func() {
		ev := e.logger.Warn()
		if cause != nil {
			ev = ev.Err(cause)
		}
		ev.Msg(ErrDictionaryUnavailable.Error() + ", suggestions disabled")
	})
}
