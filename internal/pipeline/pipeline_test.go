package pipeline

import (
	"errors"
	"testing"

	"github.com/ayusman/signscribe/internal/capture"
	"github.com/ayusman/signscribe/internal/classify"
	"github.com/ayusman/signscribe/internal/commit"
	"github.com/ayusman/signscribe/internal/detector"
	"github.com/ayusman/signscribe/internal/label"
	"github.com/ayusman/signscribe/internal/skeleton"
	"github.com/ayusman/signscribe/internal/suggest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type fixture struct {
	p     *Pipeline
	det   *detector.MockDetector
	model *classify.MockModel
	frame gocv.Mat
}

func newFixture(t *testing.T, gate *capture.MotionGate) *fixture {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	det := detector.NewMockDetector()
	palm := detector.OpenPalmHand()
	det.SetHand(&palm)

	labels := label.Default()
	model := classify.NewMockModel(classify.OneHot(labels, "H", 0.95, label.None))

	f := &fixture{
		p:     New(DefaultConfig(), det, classify.NewAdapter(model, labels), nil, gate, zerolog.Nop()),
		det:   det,
		model: model,
		frame: gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), detector.FrameHeight, detector.FrameWidth, gocv.MatTypeCV8UC3),
	}
	t.Cleanup(func() {
		f.frame.Close()
		f.p.Close()
	})
	return f
}

func (f *fixture) show(l label.Label) {
	f.model.SetProbabilities(classify.OneHot(label.Default(), l, 0.95, label.None))
}

func (f *fixture) run(n int) []Result {
	results := make([]Result, n)
	for i := range results {
		results[i] = f.p.Process(&f.frame)
	}
	return results
}

func TestProcess_SpellsHI(t *testing.T) {
	f := newFixture(t, nil)

	f.show("H")
	results := f.run(10)
	assert.Equal(t, OutcomeRecognized, results[9].Outcome)
	assert.Equal(t, commit.Event{Kind: commit.KindCharacter, Label: "H"}, results[9].Event)
	assert.Equal(t, "H", f.p.Sentence().Sentence)

	f.show("I")
	f.run(10)
	f.show(label.Space)
	f.run(10)

	st := f.p.Sentence()
	assert.Equal(t, "HI ", st.Sentence)
	assert.Equal(t, "", st.Word)
}

func TestProcess_Result(t *testing.T) {
	f := newFixture(t, nil)

	res := f.p.Process(&f.frame)
	require.NoError(t, res.Err)
	assert.Equal(t, label.Label("H"), res.Symbol)
	assert.Equal(t, "H", res.Display())
	assert.NotEmpty(t, res.Skeleton, "skeleton JPEG is attached")
	assert.Len(t, res.Candidates, classify.TopK)
	assert.Positive(t, res.Duration)
}

func TestProcess_NoHand(t *testing.T) {
	f := newFixture(t, nil)

	f.run(5)
	f.det.SetHand(nil)

	res := f.p.Process(&f.frame)
	assert.Equal(t, OutcomeNoHand, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrNoHandDetected)
	assert.Equal(t, DisplayNoHand, res.Display())
	assert.False(t, f.p.Commit().Accumulating(), "no hand resets accumulation")
	assert.Equal(t, 1, f.p.Commit().IdleFrames)
}

func TestProcess_DetectorErrorIsNoHand(t *testing.T) {
	f := newFixture(t, nil)
	f.det.SetError(errors.New("service crashed"))

	res := f.p.Process(&f.frame)
	assert.Equal(t, OutcomeNoHand, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrNoHandDetected)
	assert.Contains(t, res.Err.Error(), "service crashed")
}

func TestProcess_MalformedSkipsMachine(t *testing.T) {
	f := newFixture(t, nil)

	f.run(5)
	before := f.p.Commit()

	edge := detector.EdgeHand()
	f.det.SetHand(&edge)

	res := f.p.Process(&f.frame)
	assert.Equal(t, OutcomeMalformed, res.Outcome)
	assert.ErrorIs(t, res.Err, skeleton.ErrMalformedCrop)
	assert.Equal(t, before, f.p.Commit(), "commit machine untouched")
	assert.Equal(t, 5, f.model.Calls(), "classifier not called")
}

func TestProcess_ClassifierFailure(t *testing.T) {
	f := newFixture(t, nil)

	f.run(5)
	before := f.p.Commit()

	f.model.SetError(errors.New("model gone"))
	res := f.p.Process(&f.frame)

	assert.Equal(t, OutcomeClassifierFailure, res.Outcome)
	assert.ErrorIs(t, res.Err, classify.ErrClassifierFailure)
	assert.Equal(t, label.Blank, res.Symbol)
	assert.Equal(t, "blank", res.Display())
	assert.Equal(t, before, f.p.Commit(), "commit machine not stepped")
}

func TestProcess_Suggestions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	det := detector.NewMockDetector()
	palm := detector.OpenPalmHand()
	det.SetHand(&palm)

	labels := label.Default()
	model := classify.NewMockModel(classify.OneHot(labels, "H", 0.95, label.None))
	engine := suggest.NewEngine(nil, zerolog.Nop())

	p := New(DefaultConfig(), det, classify.NewAdapter(model, labels), engine, nil, zerolog.Nop())
	defer p.Close()

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	for i := 0; i < 10; i++ {
		p.Process(&frame)
	}

	st := p.Sentence()
	assert.Equal(t, "H", st.Word)
	assert.True(t, st.Suggestions.Empty(), "no dictionary gives empty slots")
	assert.False(t, p.ApplySuggestion(0))
}

func TestClearSentence_KeepsMachine(t *testing.T) {
	f := newFixture(t, nil)

	f.run(10)
	require.Equal(t, "H", f.p.Sentence().Sentence)

	f.p.ClearSentence()
	assert.Equal(t, "", f.p.Sentence().Sentence)
	assert.Equal(t, label.Label("H"), f.p.Commit().LastCommitted)

	// holding H does not re-commit after a clear
	f.run(20)
	assert.Equal(t, "", f.p.Sentence().Sentence)
}

func TestClearSentence_SpaceAfterPause(t *testing.T) {
	f := newFixture(t, nil)

	f.run(10)
	f.show(label.Space)
	f.run(10)
	require.Equal(t, "H ", f.p.Sentence().Sentence)

	f.p.ClearSentence()

	// an idle pause lets a fresh space commit into the cleared sentence
	f.det.SetHand(nil)
	f.run(commit.DefaultConfig().IdleResetFrames)
	palm := detector.OpenPalmHand()
	f.det.SetHand(&palm)

	results := f.run(10)
	assert.Equal(t, commit.Event{Kind: commit.KindSpace, Label: label.Space}, results[9].Event)
	assert.Equal(t, " ", f.p.Sentence().Sentence)
}

func TestReset(t *testing.T) {
	f := newFixture(t, nil)

	f.run(10)
	f.p.Reset()

	assert.Equal(t, commit.State{}, f.p.Commit())
	f.run(10)
	assert.Equal(t, "H", f.p.Sentence().Sentence)
}

func TestProcess_MotionGate(t *testing.T) {
	f := newFixture(t, capture.NewMotionGate(capture.GateConfig{Threshold: 1.0, MaxSkip: 100}))
	defer f.p.gate.Close()

	f.det.SetHand(nil)

	// first frame always opens the gate
	f.run(1)
	assert.Equal(t, 1, f.det.Calls())

	// a still frame with no hand before it skips detection
	res := f.run(3)
	assert.Equal(t, 1, f.det.Calls())
	assert.Equal(t, OutcomeNoHand, res[2].Outcome)

	// once a hand is seen it is re-detected on still frames
	palm := detector.OpenPalmHand()
	f.det.SetHand(&palm)
	f.p.gate.Reset()
	f.run(3)
	assert.Equal(t, 4, f.det.Calls())
}
