package capture

import "math"

// Point defines a public type used by avfacePay APIs.
type Point struct {
	X float64
	Y float64
}

// AlignmentEvaluator defines a public type used by avfacePay APIs.
//
// AlignmentEvaluator classifies whether a detected face center sits inside
// the on-screen guide circle. The guide center is mutable so the embedder can
// re-anchor it whenever the viewport resizes; the threshold is fixed for the
// lifetime of a session.
type AlignmentEvaluator struct {
	guide     Point
	threshold float64
}

// NewAlignmentEvaluator describes the newalignmentevaluator operation and its observable behavior.
func NewAlignmentEvaluator(threshold float64) *AlignmentEvaluator {
	return &AlignmentEvaluator{threshold: threshold}
}

// SetGuideCenter re-anchors the guide circle, typically from a resize hook.
func (a *AlignmentEvaluator) SetGuideCenter(p Point) {
	a.guide = p
}

// GuideCenter describes the guidecenter operation and its observable behavior.
func (a *AlignmentEvaluator) GuideCenter() Point { return a.guide }

// InCircle reports whether the face center is within the alignment threshold
// of the guide center. A nil face (no detection) is never in the circle,
// independent of any stale position data.
func (a *AlignmentEvaluator) InCircle(face *Point) bool {
	if face == nil {
		return false
	}
	dx := face.X - a.guide.X
	dy := face.Y - a.guide.Y
	return math.Sqrt(dx*dx+dy*dy) <= a.threshold
}
