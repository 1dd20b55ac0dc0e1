// Package chans implements a unified channel algorithm: one
// capacity-parameterized engine shared by the Sync (capacity 0),
// Bounded (capacity n>0), and Unbounded (capacity "infinite") channel
// flavors.
//
// The shape of this file mirrors runtime/chan.go's hchan / chansend /
// chanrecv / closechan: a buffer staging values, plus one Rendezvous
// as the "parking lot" for whichever side currently has no
// counterpart. Unlike hchan, the buffer here is a plain growable
// slice used as a FIFO deque rather than a fixed-size ring array:
// hchan preallocates buf to exactly dataqsiz elements, which is fine
// for real Go channels (dataqsiz is always a small, caller-chosen
// number) but not for Unbounded, whose nominal capacity is enormous.
// A deque is also a closer match to the original Python
// implementation's collections.deque (goless/channels.py). Values are
// any, and the whole structure is guarded by an explicit sync.Mutex
// rather than a runtime-internal one, because the scheduler backing
// this module maps tasks onto real goroutines (see
// internal/scheduler) rather than onto a single OS thread.
package chans

import (
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/rgalanakis/goless-go/internal/scheduler"
)

// ErrClosed is returned by Send on a closed channel, and by Recv on a
// closed, drained channel.
var ErrClosed = errors.New("goless: send or receive on closed channel")

// ErrDeadlock is returned by Send/Recv when completing the operation
// would park the only runnable task.
var ErrDeadlock = errors.New("goless: operation would deadlock, no other runnable tasks")

// Unbounded designates "infinite" capacity when passed to New. This
// engine's deque-backed buffer grows without a fixed bound; the
// "capacity" is nominal and only used to size-check bounded/sync
// channels.
const Unbounded = math.MaxInt

// Chan is the unified channel engine. A capacity of 0 behaves as a
// synchronous channel, a positive capacity as a bounded channel, and
// Unbounded as a channel whose Send effectively never blocks.
type Chan struct {
	sched scheduler.Scheduler
	rend  scheduler.Rendezvous

	mu       sync.Mutex
	capacity uint
	buf      []any
	closed   bool
}

// New constructs a channel engine of the given capacity against the
// given scheduler. Callers normally go through the package-level
// factory exposed by the root goless package instead of calling this
// directly.
func New(sched scheduler.Scheduler, capacity int) *Chan {
	return &Chan{
		sched:    sched,
		rend:     sched.RendezvousChannel(),
		capacity: uint(capacity),
	}
}

// Capacity returns the channel's fixed capacity.
func (c *Chan) Capacity() int {
	return int(c.capacity)
}

// Send delivers v to a parked receiver or enqueues it in the buffer,
// blocking if neither is possible.
func (c *Chan) Send(v any) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	// Step 2: hand off directly if a receiver is parked, or if the
	// buffer has no room (balance < 0 means a receiver got here first
	// and is already parked on rend.Receive()).
	receiverWaiting := c.rend.Balance() < 0
	if receiverWaiting || uint(len(c.buf)) == c.capacity {
		c.mu.Unlock()
		// A receiver already parked means this handoff completes
		// immediately rather than blocking, so it's never the cause of
		// a deadlock; only check when this Send would itself have to
		// park and wait for a receiver to show up.
		if !receiverWaiting && c.sched.WouldDeadlock() {
			return ErrDeadlock
		}
		if err := c.rend.Send(v); err != nil {
			return err
		}
		// After returning from the handoff, re-check closed: Close
		// wakes parked senders by draining them with Receive, and a
		// sender that was woken that way must fail ErrClosed — if the
		// channel closes while the caller is blocked inside send, the
		// caller also fails with ErrClosed.
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return ErrClosed
		}
		return nil
	}

	// Step 3: room in the buffer, enqueue.
	c.assertInvariant()
	c.buf = append(c.buf, v)
	c.mu.Unlock()
	return nil
}

// Recv returns the next buffered or handed-off value, blocking if
// none is available yet.
func (c *Chan) Recv() (any, error) {
	c.mu.Lock()
	if c.closed && !c.recvReadyLocked() {
		c.mu.Unlock()
		return nil, ErrClosed
	}

	if len(c.buf) > 0 {
		v := c.buf[0]
		c.buf[0] = nil
		c.buf = c.buf[1:]
		// If a sender is parked waiting for room, transfer its value
		// into the buffer now, preserving FIFO and freeing the sender.
		// The transfer happens without releasing c.mu: the parked
		// sender is already blocked on rend, waiting only for this
		// Receive, so it cannot itself need c.mu to make progress, and
		// holding the lock across the transfer keeps the buffer
		// consistent against concurrent Send calls from other tasks.
		if c.rend.Balance() > 0 {
			if sv, err := c.rend.Receive(); err == nil {
				c.assertInvariant()
				c.buf = append(c.buf, sv)
			}
		}
		c.mu.Unlock()
		return v, nil
	}

	senderWaiting := c.rend.Balance() > 0
	c.mu.Unlock()
	// A sender already parked means this handoff completes immediately
	// rather than blocking; only check when nothing is buffered and no
	// sender is parked, so this Recv would itself have to park and wait
	// for a sender to show up.
	if !senderWaiting && c.sched.WouldDeadlock() {
		return nil, ErrDeadlock
	}
	v, err := c.rend.Receive()
	if err != nil {
		return nil, err
	}
	if _, isSentinel := v.(scheduler.ClosedSentinel); isSentinel {
		return nil, ErrClosed
	}
	// A concurrent Close may have already flipped the closed flag by
	// the time this handoff resolves, even though it delivered a real
	// value rather than a ClosedSentinel (Close drains parked senders
	// with a plain Receive, which can race an unrelated Recv call for
	// the same parked sender). The channel must not yield an
	// un-flagged successful receive once closed, symmetric with Send's
	// own post-handoff recheck above.
	if c.Closed() {
		return nil, ErrClosed
	}
	return v, nil
}

// RecvReady reports whether a subsequent Recv would produce a value
// without blocking.
func (c *Chan) RecvReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recvReadyLocked()
}

func (c *Chan) recvReadyLocked() bool {
	return len(c.buf) > 0 || c.rend.Balance() > 0
}

// SendReady reports whether a subsequent Send would complete without
// blocking.
func (c *Chan) SendReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint(len(c.buf)) < c.capacity || c.rend.Balance() < 0
}

// Closed reports whether Close has been called.
func (c *Chan) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close marks the channel closed and wakes every party currently
// parked on it. Close is idempotent: a second call is a no-op rather
// than an error, since "closed transitions exactly once" is a guard
// rather than a panic condition.
func (c *Chan) Close() error {
	// Step 1: courtesy yield, giving already-ready parked parties a
	// last chance to complete before the closed flag becomes visible.
	c.sched.Yield()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	balance := c.rend.Balance()
	c.mu.Unlock()

	// Step 3: wake parked receivers with a sentinel.
	for balance < 0 {
		if err := c.rend.Send(scheduler.ClosedSentinel{}); err != nil {
			break
		}
		balance++
	}
	// Step 4: drain parked senders; they wake and observe closed.
	for balance > 0 {
		if _, err := c.rend.Receive(); err != nil {
			break
		}
		balance--
	}
	return nil
}

// Iter returns a native Go channel that yields Recv's values until the
// channel closes and drains, then closes itself: `for v := range
// ch.Iter() { ... }`.
func (c *Chan) Iter() <-chan any {
	out := make(chan any)
	c.sched.Spawn(func() {
		defer close(out)
		for {
			v, err := c.Recv()
			if err != nil {
				return
			}
			out <- v
		}
	})
	return out
}

// assertInvariant is a debug-only internal consistency check for the
// three-way buffer/balance invariant: a negative balance (parked
// receivers) only while the buffer is empty, a positive balance
// (parked senders) only while the buffer is full, otherwise zero. It is the runtime-assertion counterpart to
// the BufferedChannel._send assert block in the original goless
// implementation (goless/channels.py), kept as actual code rather
// than only a comment the way runtime/chan.go documents its own
// invariants. Must be called with c.mu held.
func (c *Chan) assertInvariant() {
	if !debugAssertions {
		return
	}
	balance := c.rend.Balance()
	qcount := uint(len(c.buf))
	ok := (balance < 0 && qcount == 0) ||
		(balance > 0 && qcount == c.capacity) ||
		balance == 0
	if !ok {
		panic(errors.Errorf("goless: channel invariant violated: qcount=%d capacity=%d balance=%d", qcount, c.capacity, balance))
	}
}

// debugAssertions toggles the internal consistency check above. Off
// by default; flip on in tests that want extra paranoia, mirroring
// runtime/chan.go's debugChan const.
var debugAssertions = false
