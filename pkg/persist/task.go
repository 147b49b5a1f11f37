package persist

import "time"

// task is a cancellable delayed call. Each schedule supersedes the previous
// one, and a generation number lets a timer that already started firing
// detect that it was cancelled or superseded. The owner serialises access.
type task struct {
	timer  *time.Timer
	gen    uint64
	active bool
}

// schedule arranges for fn to run after d, cancelling any earlier call.
// fn receives the generation it was scheduled with.
func (t *task) schedule(d time.Duration, fn func(gen uint64)) {
	t.cancel()
	t.gen++
	gen := t.gen
	t.active = true
	t.timer = time.AfterFunc(d, func() { fn(gen) })
}

// cancel drops the scheduled call and reports whether one was pending.
func (t *task) cancel() bool {
	if !t.active {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	t.active = false
	return true
}

// fire claims the call scheduled with gen. It returns false when that call
// was cancelled or superseded in the meantime.
func (t *task) fire(gen uint64) bool {
	if !t.active || gen != t.gen {
		return false
	}
	t.timer = nil
	t.active = false
	return true
}

func (t *task) pending() bool {
	return t.active
}
