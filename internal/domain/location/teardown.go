package location

import "sync"

// Teardown collects disposers and runs them once, newest first.
type Teardown struct {
	mu   sync.Mutex
	fns  []func()
	done bool
}

// Add registers fn. After Run has happened fn is executed immediately.
func (t *Teardown) Add(fn func()) {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		fn()
		return
	}
	t.fns = append(t.fns, fn)
	t.mu.Unlock()
}

// Run executes the disposers. Subsequent calls are no-ops.
func (t *Teardown) Run() {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	fns := t.fns
	t.fns = nil
	t.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
