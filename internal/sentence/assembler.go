// Package sentence builds the sentence being spelled from commit events.
package sentence

import (
	"strings"

	"github.com/ayusman/signscribe/internal/commit"
	"github.com/ayusman/signscribe/internal/suggest"
)

// Suggester supplies spelling suggestions for the current word.
type Suggester interface {
	Suggest(word string) suggest.Suggestions
}

// State is a copy of the assembler's contents.
type State struct {
	Sentence    string              `json:"sentence"`
	Word        string              `json:"word"`
	Suggestions suggest.Suggestions `json:"suggestions"`
}

// Assembler owns the sentence state. It is not safe for concurrent use.
type Assembler struct {
	suggester Suggester
	state     State
}

// NewAssembler creates an empty assembler.
func NewAssembler(suggester Suggester) *Assembler {
	return &Assembler{suggester: suggester}
}

// Apply updates the sentence with a commit event. Non-commit events are ignored.
func (a *Assembler) Apply(ev commit.Event) {
	switch ev.Kind {
	case commit.KindCharacter:
		a.state.Sentence += string(ev.Label)
		a.state.Word += string(ev.Label)
	case commit.KindSpace:
		if !strings.HasSuffix(a.state.Sentence, " ") {
			a.state.Sentence += " "
		}
		a.state.Word = ""
	default:
		return
	}

	a.state.Suggestions = a.suggest(a.state.Word)
}

// ApplySuggestion replaces the last word of the sentence with suggestion i,
// upper-cased and followed by a space. Empty or out-of-range slots are ignored.
func (a *Assembler) ApplySuggestion(i int) bool {
	if i < 0 || i >= suggest.Slots {
		return false
	}
	choice := a.state.Suggestions[i]
	if choice == "" {
		return false
	}

	tokens := strings.Fields(a.state.Sentence)
	if len(tokens) == 0 {
		tokens = []string{""}
	}
	tokens[len(tokens)-1] = strings.ToUpper(choice)

	a.state.Sentence = strings.Join(tokens, " ") + " "
	a.state.Word = ""
	a.state.Suggestions = suggest.Suggestions{}
	return true
}

// Clear empties the sentence, the word and the suggestions.
func (a *Assembler) Clear() {
	a.state = State{}
}

// Snapshot returns a copy of the state.
func (a *Assembler) Snapshot() State {
	return a.state
}

func (a *Assembler) suggest(word string) suggest.Suggestions {
	if a.suggester == nil || word == "" {
		return suggest.Suggestions{}
	}
	return a.suggester.Suggest(word)
}
