package host

import "wavebg/pkg/wave"

type frameRequest struct {
	handle wave.FrameHandle
	fn     func()
}

// Loop is the wave.FrameScheduler of the display thread. Callbacks run once
// per iteration of the host's main loop, right before the buffer swap.
type Loop struct {
	next    wave.FrameHandle
	pending []frameRequest
}

// RequestFrame queues fn for the next displayed frame.
func (l *Loop) RequestFrame(fn func()) wave.FrameHandle {
	l.next++
	l.pending = append(l.pending, frameRequest{handle: l.next, fn: fn})
	return l.next
}

// CancelFrame revokes a queued callback. Handles that already ran are ignored.
func (l *Loop) CancelFrame(h wave.FrameHandle) {
	for i, req := range l.pending {
		if req.handle == h {
			l.pending = append(l.pending[:i], l.pending[i+1:]...)
			return
		}
	}
}

// Pending reports the number of queued callbacks.
func (l *Loop) Pending() int {
	return len(l.pending)
}

// RunFrame runs the callbacks queued before the call and reports whether
// any ran. Callbacks they request wait for the next RunFrame.
func (l *Loop) RunFrame() bool {
	if len(l.pending) == 0 {
		return false
	}

	due := l.pending
	l.pending = nil
	for _, req := range due {
		req.fn()
	}
	return true
}
