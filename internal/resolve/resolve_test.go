package resolve

import (
	"testing"

	"github.com/ayusman/signscribe/internal/classify"
	"github.com/ayusman/signscribe/internal/detector"
	"github.com/ayusman/signscribe/internal/label"
	"github.com/ayusman/signscribe/internal/skeleton"
	"github.com/stretchr/testify/assert"
)

// uprightHand is an open hand, fingers up, palm length 100.
func uprightHand() *skeleton.Skeleton {
	pts := [detector.NumLandmarks]detector.Point{
		{X: 200, Y: 350}, // wrist
		{X: 160, Y: 330}, {X: 140, Y: 300}, {X: 130, Y: 280}, {X: 125, Y: 260},
		{X: 165, Y: 250}, {X: 165, Y: 210}, {X: 165, Y: 185}, {X: 165, Y: 165},
		{X: 200, Y: 250}, {X: 200, Y: 205}, {X: 200, Y: 178}, {X: 200, Y: 155},
		{X: 230, Y: 255}, {X: 230, Y: 215}, {X: 230, Y: 190}, {X: 230, Y: 170},
		{X: 258, Y: 265}, {X: 258, Y: 235}, {X: 258, Y: 215}, {X: 258, Y: 200},
	}
	return &skeleton.Skeleton{Points: pts, Size: 400}
}

func with(sk *skeleton.Skeleton, idx int, p detector.Point) *skeleton.Skeleton {
	sk.Points[idx] = p
	return sk
}

func result(pairs ...any) classify.Result {
	var r classify.Result
	for i := 0; i < len(pairs); i += 2 {
		r.Candidates = append(r.Candidates, classify.Candidate{
			Label:       label.Label(pairs[i].(string)),
			Probability: pairs[i+1].(float64),
		})
	}
	return r
}

// alongKnuckles places a point at fraction t from the index MCP to the pinky MCP.
func alongKnuckles(sk *skeleton.Skeleton, t float64) detector.Point {
	a, b := sk.Points[detector.IndexMCP], sk.Points[detector.PinkyMCP]
	return detector.Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
}

func TestResolve_Gating(t *testing.T) {
	r := New(DefaultConfig())

	tests := []struct {
		name   string
		result classify.Result
		want   label.Label
	}{
		{"empty result", classify.Result{}, label.Blank},
		{"high confidence short-circuits", result("T", 0.9, "A", 0.1), "T"},
		{"wide margin keeps top1", result("T", 0.6, "A", 0.3), "T"},
		{"close but different groups", result("A", 0.45, "S", 0.40), "A"},
		{"close but ungrouped", result("B", 0.45, "C", 0.40), "B"},
		{"single candidate", result("T", 0.5), "T"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.result, uprightHand()))
		})
	}
}

func TestResolve_GroupRules(t *testing.T) {
	r := New(DefaultConfig())

	tests := []struct {
		name   string
		sk     *skeleton.Skeleton
		result classify.Result
		want   label.Label
	}{
		{"thumb out is A", uprightHand(), result("T", 0.5, "A", 0.45), "A"},
		{"thumb tucked is T", with(uprightHand(), detector.ThumbTip, detector.Point{X: 180, Y: 210}),
			result("A", 0.5, "T", 0.45), "T"},

		{"thumb under index is S", func() *skeleton.Skeleton {
			sk := uprightHand()
			return with(sk, detector.ThumbTip, alongKnuckles(sk, 0.2))
		}(), result("N", 0.45, "S", 0.40), "S"},
		{"thumb under middle is N", func() *skeleton.Skeleton {
			sk := uprightHand()
			return with(sk, detector.ThumbTip, alongKnuckles(sk, 0.55))
		}(), result("M", 0.45, "N", 0.40), "N"},
		{"thumb under ring is M", func() *skeleton.Skeleton {
			sk := uprightHand()
			return with(sk, detector.ThumbTip, alongKnuckles(sk, 0.9))
		}(), result("S", 0.45, "M", 0.40), "M"},
		{"rule picks a third member, top1 stays", func() *skeleton.Skeleton {
			sk := uprightHand()
			return with(sk, detector.ThumbTip, alongKnuckles(sk, 0.2))
		}(), result("M", 0.45, "N", 0.40), "M"},

		{"parallel fingers are U", uprightHand(), result("R", 0.45, "U", 0.40), "U"},
		{"crossed fingers are R", func() *skeleton.Skeleton {
			sk := with(uprightHand(), detector.IndexTip, detector.Point{X: 215, Y: 165})
			return with(sk, detector.MiddleTip, detector.Point{X: 185, Y: 160})
		}(), result("U", 0.45, "R", 0.40), "R"},
		{"folded middle is D", with(uprightHand(), detector.MiddleTip, detector.Point{X: 200, Y: 280}),
			result("U", 0.45, "D", 0.40), "D"},

		{"straight pinky is I", uprightHand(), result("J", 0.45, "I", 0.40), "I"},
		{"hooked pinky is J", with(uprightHand(), detector.PinkyTip, detector.Point{X: 300, Y: 240}),
			result("I", 0.45, "J", 0.40), "J"},

		{"upright is K", uprightHand(), result("P", 0.45, "K", 0.40), "K"},
		{"pointing down is P", with(uprightHand(), detector.MiddleMCP, detector.Point{X: 200, Y: 450}),
			result("K", 0.45, "P", 0.40), "P"},

		{"open is V", uprightHand(), result("F", 0.45, "V", 0.40), "V"},
		{"pinch is F", with(uprightHand(), detector.ThumbTip, detector.Point{X: 170, Y: 175}),
			result("V", 0.45, "F", 0.40), "F"},

		{"extended middle is H", uprightHand(), result("G", 0.45, "H", 0.40), "H"},
		{"folded middle is G", with(uprightHand(), detector.MiddleTip, detector.Point{X: 200, Y: 280}),
			result("H", 0.45, "G", 0.40), "G"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.result, tt.sk))
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := New(DefaultConfig())
	res := result("A", 0.5, "T", 0.45)
	sk := uprightHand()

	first := r.Resolve(res, sk)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, r.Resolve(res, sk))
	}
}

func TestGroups(t *testing.T) {
	seen := map[label.Label]bool{}
	for _, g := range Groups() {
		assert.GreaterOrEqual(t, len(g), 2)
		for _, l := range g {
			assert.True(t, l.IsLetter())
			assert.False(t, seen[l], "label %s in two groups", l)
			seen[l] = true
		}
	}
	assert.Len(t, seen, 16)
}

func TestFeatures(t *testing.T) {
	sk := uprightHand()

	assert.InDelta(t, 1.95, middleReach(&sk.Points), 1e-9)
	assert.InDelta(t, 0.0, palmTilt(&sk.Points), 1e-9)
	assert.InDelta(t, 0.0, pinkyBend(&sk.Points), 1e-9)
	assert.False(t, tipsCrossed(&sk.Points))
	assert.InDelta(t, 0.5, thumbProjection(&[detector.NumLandmarks]detector.Point{
		detector.IndexMCP: {X: 0, Y: 0},
		detector.PinkyMCP: {X: 10, Y: 0},
		detector.ThumbTip: {X: 5, Y: 7},
	}), 1e-9)
}
