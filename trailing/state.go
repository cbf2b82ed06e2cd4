// Package trailing moves protective stops in the trade's favor as price
// advances, and never the other way. Stops are tracked per ticket in a
// durable map so a restart resumes exactly where the last run left off.
package trailing

import "sort"

// State is the ticket -> stop price map. It is not safe for concurrent
// use; the engine owns it from a single goroutine.
type State map[int64]float64

// Get returns the tracked stop for ticket, with ok=false when the ticket
// is not tracked.
func (s State) Get(ticket int64) (float64, bool) {
	stop, ok := s[ticket]
	return stop, ok
}

// Adopt starts tracking ticket at stop unless it is already tracked.
// Returns true when the entry was added.
func (s State) Adopt(ticket int64, stop float64) bool {
	if _, ok := s[ticket]; ok {
		return false
	}
	s[ticket] = stop
	return true
}

// Advance records a new stop for ticket. The caller has already verified
// the move is favorable; Advance itself is a plain write.
func (s State) Advance(ticket int64, stop float64) {
	s[ticket] = stop
}

// Prune drops every tracked ticket not present in live and returns how
// many entries were removed.
func (s State) Prune(live map[int64]bool) int {
	removed := 0
	for ticket := range s {
		if !live[ticket] {
			delete(s, ticket)
			removed++
		}
	}
	return removed
}

// Tickets returns the tracked tickets in ascending order.
func (s State) Tickets() []int64 {
	out := make([]int64, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
