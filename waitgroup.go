package goless

import "sync"

// WaitGroup is a one-shot fan-in counter, usable standalone or as a
// select case via WaitCase.
//
// Unlike sync.WaitGroup, a goless WaitGroup may only be waited on
// once: Wait/WaitCase finalize it, and Add after finalization fails
// with ErrInvalidWaitGroup. This mirrors the original goless
// implementation's documented limitation (goless/waitgroup.py): "in
// years of Go programming I've only needed this pattern."
type WaitGroup struct {
	mu        sync.Mutex
	counter   int
	done      bool
	finalized bool
	sig       Channel
}

// NewWaitGroup constructs a WaitGroup, optionally calling Add(delta)
// immediately if delta is non-zero.
func NewWaitGroup(delta ...int) *WaitGroup {
	wg := &WaitGroup{}
	if len(delta) > 0 && delta[0] != 0 {
		wg.Add(delta[0])
	}
	return wg
}

// Add adds delta, which must be positive, to the counter. It panics
// with ErrInvalidWaitGroup if delta is not positive or if the group
// has already been finalized by Wait/WaitCase.
func (wg *WaitGroup) Add(delta int) {
	if delta <= 0 {
		panic(ErrInvalidWaitGroup)
	}
	wg.mu.Lock()
	defer wg.mu.Unlock()
	if wg.finalized {
		panic(ErrInvalidWaitGroup)
	}
	wg.counter += delta
}

// Done decrements the counter by one. Reaching zero signals any
// pending Wait/WaitCase. It panics with ErrInvalidWaitGroup if the
// counter would go negative.
func (wg *WaitGroup) Done() {
	wg.mu.Lock()
	wg.counter--
	if wg.counter < 0 {
		wg.mu.Unlock()
		panic(ErrInvalidWaitGroup)
	}
	reachedZero := wg.counter == 0
	var sig Channel
	if reachedZero {
		wg.done = true
		sig = wg.sig
	}
	wg.mu.Unlock()
	if reachedZero && sig != nil {
		// The signal channel is bounded(1): exactly one send is ever
		// needed, and it must not block even if Wait hasn't reached
		// its Recv yet.
		_ = sig.Send(nil)
	}
}

// Wait finalizes the group and blocks until the counter reaches zero.
// It panics with ErrInvalidWaitGroup if called a second time.
func (wg *WaitGroup) Wait() {
	ch := wg.finalize()
	if ch == nil {
		return
	}
	_, _ = ch.Recv()
}

// WaitCase finalizes the group and returns an RCase suitable for use
// in Select/SelectOk: it becomes ready once the counter reaches zero.
// It panics with ErrInvalidWaitGroup if called a second time (whether
// via WaitCase or Wait).
func (wg *WaitGroup) WaitCase() Case {
	ch := wg.finalize()
	if ch == nil {
		// Counter was already zero: hand back a case over a
		// channel already primed with one value, so it is
		// immediately ready and its Recv succeeds rather than
		// failing with ErrChannelClosed.
		primed := Chan(1)
		_ = primed.Send(nil)
		return RCase(primed)
	}
	return RCase(ch)
}

// finalize marks the group finalized and returns the signal channel
// to wait on, or nil if the counter is already zero.
func (wg *WaitGroup) finalize() Channel {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	if wg.finalized {
		panic(ErrInvalidWaitGroup)
	}
	wg.finalized = true
	if wg.counter == 0 {
		wg.done = true
		return nil
	}
	wg.sig = Chan(1)
	return wg.sig
}
