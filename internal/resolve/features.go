package resolve

import (
	"math"

	"github.com/ayusman/signscribe/internal/detector"
)

// Geometric features of a canonical skeleton. Canvas coordinates grow right
// and down; lengths are divided by the palm length so they do not depend on
// hand size.

func palmLength(p *[detector.NumLandmarks]detector.Point) float64 {
	l := detector.Distance(p[detector.Wrist], p[detector.MiddleMCP])
	if l == 0 {
		return 1
	}
	return l
}

func normDistance(p *[detector.NumLandmarks]detector.Point, a, b int) float64 {
	return detector.Distance(p[a], p[b]) / palmLength(p)
}

func midpoint(a, b detector.Point) detector.Point {
	return detector.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// thumbToKnuckles is the thumb tip distance to the midpoint of the index and
// middle PIP joints. Small when the thumb is tucked between them.
func thumbToKnuckles(p *[detector.NumLandmarks]detector.Point) float64 {
	mid := midpoint(p[detector.IndexPIP], p[detector.MiddlePIP])
	return detector.Distance(p[detector.ThumbTip], mid) / palmLength(p)
}

// thumbProjection is the position of the thumb tip projected onto the line
// from the index MCP (0) to the pinky MCP (1).
func thumbProjection(p *[detector.NumLandmarks]detector.Point) float64 {
	a, b, t := p[detector.IndexMCP], p[detector.PinkyMCP], p[detector.ThumbTip]
	dx, dy := b.X-a.X, b.Y-a.Y
	den := dx*dx + dy*dy
	if den == 0 {
		return 0
	}
	return ((t.X-a.X)*dx + (t.Y-a.Y)*dy) / den
}

// middleReach compares how far the middle tip is from the wrist against the
// palm length. Extended fingers reach well past 1.
func middleReach(p *[detector.NumLandmarks]detector.Point) float64 {
	return normDistance(p, detector.Wrist, detector.MiddleTip)
}

// tipsCrossed reports whether the index and middle tips are on the opposite
// sides of each other compared to their knuckles.
func tipsCrossed(p *[detector.NumLandmarks]detector.Point) bool {
	base := p[detector.IndexMCP].X - p[detector.MiddleMCP].X
	tips := p[detector.IndexTip].X - p[detector.MiddleTip].X
	return base*tips < 0
}

// angleBetween returns the unsigned angle in degrees between vectors a->b and c->d.
func angleBetween(a, b, c, d detector.Point) float64 {
	ux, uy := b.X-a.X, b.Y-a.Y
	vx, vy := d.X-c.X, d.Y-c.Y
	nu, nv := math.Hypot(ux, uy), math.Hypot(vx, vy)
	if nu == 0 || nv == 0 {
		return 0
	}
	cos := (ux*vx + uy*vy) / (nu * nv)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// pinkyBend is the angle between the pinky and the palm axis.
func pinkyBend(p *[detector.NumLandmarks]detector.Point) float64 {
	return angleBetween(p[detector.PinkyMCP], p[detector.PinkyTip], p[detector.Wrist], p[detector.MiddleMCP])
}

// palmTilt is the angle of the palm axis from canvas up.
func palmTilt(p *[detector.NumLandmarks]detector.Point) float64 {
	w := p[detector.Wrist]
	up := detector.Point{X: w.X, Y: w.Y - 1}
	return angleBetween(w, p[detector.MiddleMCP], w, up)
}

func thumbToIndex(p *[detector.NumLandmarks]detector.Point) float64 {
	return normDistance(p, detector.ThumbTip, detector.IndexTip)
}
