// Package label defines the symbols that flow through the recognition pipeline.
package label

// Label is a classifier class or a pipeline sentinel.
type Label string

// Non-letter labels.
const (
	Space  Label = "space"
	Blank  Label = "blank"   // classifier saw no confident gesture
	NoHand Label = "no-hand" // detector found no hand; never produced by the classifier
	None   Label = ""
)

// IsLetter reports whether l is a single uppercase letter A-Z.
func (l Label) IsLetter() bool {
	return len(l) == 1 && l[0] >= 'A' && l[0] <= 'Z'
}

// IsIdle reports whether l carries no gesture.
func (l Label) IsIdle() bool {
	return l == Blank || l == NoHand || l == None
}

// Letters returns A through Z in order.
func Letters() []Label {
	letters := make([]Label, 0, 26)
	for c := 'A'; c <= 'Z'; c++ {
		letters = append(letters, Label(string(c)))
	}
	return letters
}

// Default returns the full classifier label set: A-Z, space, blank.
func Default() []Label {
	return append(Letters(), Space, Blank)
}
