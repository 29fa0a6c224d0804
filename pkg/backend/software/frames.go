package software

import (
	"sort"
	"time"

	"wavebg/pkg/wave"
)

// Frames is a wave.FrameScheduler stepped by hand. Callbacks requested
// during a Step run on the following Step, as with a display refresh.
type Frames struct {
	next    wave.FrameHandle
	pending map[wave.FrameHandle]func()

	Requested int
	Cancelled int
}

// NewFrames returns an empty scheduler.
func NewFrames() *Frames {
	return &Frames{pending: make(map[wave.FrameHandle]func())}
}

// RequestFrame queues fn for the next Step.
func (f *Frames) RequestFrame(fn func()) wave.FrameHandle {
	f.next++
	f.pending[f.next] = fn
	f.Requested++
	return f.next
}

// CancelFrame drops a queued callback. Unknown handles are ignored.
func (f *Frames) CancelFrame(h wave.FrameHandle) {
	if _, ok := f.pending[h]; ok {
		delete(f.pending, h)
		f.Cancelled++
	}
}

// Pending returns the number of queued callbacks.
func (f *Frames) Pending() int {
	return len(f.pending)
}

// Step runs every callback queued before the call, in request order, and
// reports whether any ran.
func (f *Frames) Step() bool {
	if len(f.pending) == 0 {
		return false
	}

	handles := make([]wave.FrameHandle, 0, len(f.pending))
	for h := range f.pending {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	for _, h := range handles {
		fn, ok := f.pending[h]
		if !ok {
			continue // cancelled by an earlier callback
		}
		delete(f.pending, h)
		fn()
	}
	return true
}

// StepClock is a wave.Clock that only moves when told to.
type StepClock struct {
	now time.Time
}

// NewStepClock returns a clock reading start.
func NewStepClock(start time.Time) *StepClock {
	return &StepClock{now: start}
}

func (c *StepClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *StepClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
