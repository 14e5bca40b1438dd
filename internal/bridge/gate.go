package bridge

import "time"

// Gate rate-limits an action to at most once per cadence window.
//
// Ready returns true when at least Cadence has elapsed since the last
// time it returned true, and records now as the new reference point.
// A zero Cadence means every call is ready, so a gate is never a
// reason an action silently stops firing.
//
// Gate is not safe for concurrent use; the loop is single-threaded.
type Gate struct {
	Cadence time.Duration
	last    time.Time
}

// Ready reports whether the gated action may fire at now.
func (g *Gate) Ready(now time.Time) bool {
	if now.Sub(g.last) >= g.Cadence {
		g.last = now
		return true
	}
	return false
}

// Reset clears the reference point so the next Ready call fires
// regardless of cadence.
func (g *Gate) Reset() {
	g.last = time.Time{}
}
