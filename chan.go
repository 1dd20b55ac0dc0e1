// Package goless provides Go-style CSP concurrency primitives —
// lightweight tasks, channels, and a multi-way select — built
// on top of a pluggable Scheduler backend rather than assuming any
// particular host runtime.
package goless

import "github.com/rgalanakis/goless-go/internal/chans"

// sched is the process-wide Scheduler backend, resolved once at
// package initialization the same way backends.py's `current` is
// computed at import time from the GOLESS_BACKEND environment
// variable. See internal/scheduler.Resolve.
var sched = resolveScheduler()

// Channel is the public channel interface: a synchronous, bounded, or
// unbounded communication primitive.
type Channel interface {
	// Send places v into the channel, blocking if necessary. It fails
	// with ErrChannelClosed if the channel is already closed, or
	// closes while the caller is blocked inside Send.
	Send(v any) error

	// Recv returns the next value, blocking if necessary. It fails
	// with ErrChannelClosed once the channel is closed and drained.
	Recv() (any, error)

	// RecvReady reports whether a subsequent Recv would return
	// immediately without blocking.
	RecvReady() bool

	// SendReady reports whether a subsequent Send would return
	// immediately without blocking.
	SendReady() bool

	// Close idempotently closes the channel. Every sender and
	// receiver currently blocked wakes with ErrChannelClosed.
	Close() error

	// Closed reports whether Close has been called.
	Closed() bool

	// Iter returns a native Go channel that yields Recv's values
	// until this channel closes and drains, then closes itself:
	// `for v := range ch.Iter() { ... }`.
	Iter() <-chan any
}

// Chan returns a new channel. size == 0 returns a synchronous
// channel (send blocks until a receiver is available, and vice
// versa); size > 0 returns a channel buffered up to size elements;
// size < 0 returns an unbounded channel, whose Send effectively never
// blocks.
func Chan(size int) Channel {
	switch {
	case size == 0:
		return chans.New(sched, 0)
	case size < 0:
		return chans.New(sched, chans.Unbounded)
	default:
		return chans.New(sched, size)
	}
}
