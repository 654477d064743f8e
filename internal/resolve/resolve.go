// Package resolve breaks ties between visually similar letters using the
// geometry of the canonical skeleton.
package resolve

import (
	"github.com/ayusman/signscribe/internal/classify"
	"github.com/ayusman/signscribe/internal/detector"
	"github.com/ayusman/signscribe/internal/label"
	"github.com/ayusman/signscribe/internal/skeleton"
)

// Feature thresholds. Distances are in palm lengths, angles in degrees.
const (
	ThumbTuckedMax   = 0.45 // A/T
	ThumbUnderIndex  = 0.40 // S/N boundary on the knuckle line
	ThumbUnderMiddle = 0.72 // N/M boundary
	FingerExtended   = 1.35 // D/R/U and G/H
	PinkyHookMin     = 35.0 // I/J
	PalmDownMin      = 90.0 // P/K
	PinchMax         = 0.35 // F/V
)

// Config holds the gating thresholds.
type Config struct {
	HighConfidence float64
	Closeness      float64
}

// DefaultConfig returns the standard gating thresholds.
func DefaultConfig() Config {
	return Config{
		HighConfidence: 0.85,
		Closeness:      0.15,
	}
}

// rule maps a skeleton to one member of its group.
type rule func(p *[detector.NumLandmarks]detector.Point) label.Label

type group struct {
	members []label.Label
	pick    rule
}

var groups = []group{
	{
		members: []label.Label{"A", "T"},
		pick: func(p *[detector.NumLandmarks]detector.Point) label.Label {
			if thumbToKnuckles(p) < ThumbTuckedMax {
				return "T"
			}
			return "A"
		},
	},
	{
		members: []label.Label{"S", "M", "N"},
		pick: func(p *[detector.NumLandmarks]detector.Point) label.Label {
			switch t := thumbProjection(p); {
			case t < ThumbUnderIndex:
				return "S"
			case t < ThumbUnderMiddle:
				return "N"
			default:
				return "M"
			}
		},
	},
	{
		members: []label.Label{"D", "R", "U"},
		pick: func(p *[detector.NumLandmarks]detector.Point) label.Label {
			switch {
			case middleReach(p) < FingerExtended:
				return "D"
			case tipsCrossed(p):
				return "R"
			default:
				return "U"
			}
		},
	},
	{
		members: []label.Label{"I", "J"},
		pick: func(p *[detector.NumLandmarks]detector.Point) label.Label {
			if pinkyBend(p) > PinkyHookMin {
				return "J"
			}
			return "I"
		},
	},
	{
		members: []label.Label{"P", "K"},
		pick: func(p *[detector.NumLandmarks]detector.Point) label.Label {
			if palmTilt(p) > PalmDownMin {
				return "P"
			}
			return "K"
		},
	},
	{
		members: []label.Label{"F", "V"},
		pick: func(p *[detector.NumLandmarks]detector.Point) label.Label {
			if thumbToIndex(p) < PinchMax {
				return "F"
			}
			return "V"
		},
	},
	{
		members: []label.Label{"G", "H"},
		pick: func(p *[detector.NumLandmarks]detector.Point) label.Label {
			if middleReach(p) >= FingerExtended {
				return "H"
			}
			return "G"
		},
	},
}

// Resolver picks the final label for a frame.
type Resolver struct {
	config Config
	index  map[label.Label]int
}

// New creates a resolver.
func New(config Config) *Resolver {
	index := make(map[label.Label]int)
	for i, g := range groups {
		for _, m := range g.members {
			index[m] = i
		}
	}
	return &Resolver{config: config, index: index}
}

// Resolve returns the top label unless it is a low-margin call between two
// members of the same confusable group, in which case the group's geometric
// rule decides between them.
func (r *Resolver) Resolve(result classify.Result, sk *skeleton.Skeleton) label.Label {
	if len(result.Candidates) == 0 {
		return label.Blank
	}

	top1 := result.Candidates[0]
	if top1.Probability > r.config.HighConfidence || len(result.Candidates) < 2 || sk == nil {
		return top1.Label
	}

	top2 := result.Candidates[1]
	if top1.Probability-top2.Probability >= r.config.Closeness {
		return top1.Label
	}

	g, ok := r.sameGroup(top1.Label, top2.Label)
	if !ok {
		return top1.Label
	}

	if picked := g.pick(&sk.Points); picked == top2.Label {
		return top2.Label
	}
	return top1.Label
}

func (r *Resolver) sameGroup(a, b label.Label) (group, bool) {
	ia, ok := r.index[a]
	if !ok {
		return group{}, false
	}
	ib, ok := r.index[b]
	if !ok || ia != ib {
		return group{}, false
	}
	return groups[ia], true
}

// Groups returns the confusable groups.
func Groups() [][]label.Label {
	out := make([][]label.Label, len(groups))
	for i, g := range groups {
		out[i] = append([]label.Label(nil), g.members...)
	}
	return out
}
