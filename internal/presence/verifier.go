package presence

import "nilgate/internal/geo"

// Result is a single presence evaluation. Distance is reported on rejection
// too, so the claimant can be told how far off they were.
type Result struct {
	Verified       bool
	DistanceMeters float64
}

// Formatted renders the distance for display ("45m", "1.2km").
func (r Result) Formatted() string {
	return geo.FormatDistance(r.DistanceMeters)
}

// Verifier compares a reported position against a hotspot. One position is
// evaluated once; resubmission is the caller's decision.
type Verifier struct{}

// Verify reports verified iff the great-circle distance is within the radius
// (boundary inclusive).
func (Verifier) Verify(h Hotspot, position geo.Coordinate) Result {
	d := geo.Distance(h.Center, position)
	return Result{Verified: d <= h.RadiusMeters, DistanceMeters: d}
}
