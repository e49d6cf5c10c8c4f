package location

import "sync/atomic"

// Epoch tags asynchronous refreshes so that a slow response for an old
// position cannot overwrite state produced for a newer one.
type Epoch struct {
	current atomic.Uint64
}

// Next starts a new epoch and returns its value.
func (e *Epoch) Next() uint64 {
	return e.current.Add(1)
}

// Current returns the latest epoch.
func (e *Epoch) Current() uint64 {
	return e.current.Load()
}

// IsCurrent reports whether v is still the latest epoch.
func (e *Epoch) IsCurrent(v uint64) bool {
	return v == e.current.Load()
}
