package effect

// staged holds the parameters an effect uses this tick and a pending copy
// that setters edit. commit swaps the pending copy in at the start of a tick.
type staged[P any] struct {
	cur   P
	next  P
	dirty bool
}

func (s *staged[P]) edit(fn func(*P)) {
	if !s.dirty {
		s.next = s.cur
		s.dirty = true
	}
	fn(&s.next)
}

func (s *staged[P]) commit() {
	if !s.dirty {
		return
	}
	s.cur = s.next
	s.dirty = false
}

// Pending reports whether a setter call has not yet been committed.
func (s *staged[P]) Pending() bool {
	return s.dirty
}

// Params returns the parameters in effect for the current tick.
func (s *staged[P]) Params() P {
	return s.cur
}
