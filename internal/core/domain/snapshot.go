package domain

import "slices"

// SessionSnapshot is the running aggregate of a location session: the accepted
// fixes in chronological order and the distance walked across them.
type SessionSnapshot struct {
	Distance float64       `json:"distance_m"`
	Fixes    []LocationFix `json:"fixes"`
}

// Append returns a new snapshot with fix added. The receiver is left intact so
// snapshots already handed to consumers never change underneath them.
func (s SessionSnapshot) Append(fix LocationFix) SessionSnapshot {
	next := SessionSnapshot{
		Distance: s.Distance,
		Fixes:    append(slices.Clip(s.Fixes), fix),
	}
	if last, ok := s.Last(); ok {
		next.Distance += last.DistanceTo(fix)
	}
	return next
}

// Last returns the most recent accepted fix.
func (s SessionSnapshot) Last() (LocationFix, bool) {
	if len(s.Fixes) == 0 {
		return LocationFix{}, false
	}
	return s.Fixes[len(s.Fixes)-1], true
}
