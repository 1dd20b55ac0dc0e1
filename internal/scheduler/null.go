package scheduler

import "time"

// nullScheduler is installed when no real backend could be
// constructed. It lets goless be imported without a usable backend,
// matching backends.py's NullBackend, which raises NoValidBackend
// only when actually accessed. Operations that can report failure
// through a normal return value (RendezvousChannel's Send/Receive) do
// so with ErrNoValidBackend; Spawn has no error return in the
// Scheduler interface, so it panics instead, since there is no
// graceful way to report "cannot even start this task" otherwise.
type nullScheduler struct{}

func (nullScheduler) Spawn(func())        { panic(ErrNoValidBackend) }
func (nullScheduler) Yield()              {}
func (nullScheduler) Sleep(time.Duration) {}

func (nullScheduler) RendezvousChannel() Rendezvous {
	return nullRendezvous{}
}

func (nullScheduler) WouldDeadlock() bool { return true }

func (nullScheduler) PropagatePanic(err error) { panic(err) }

type nullRendezvous struct{}

func (nullRendezvous) Send(any) error      { return ErrNoValidBackend }
func (nullRendezvous) Receive() (any, error) { return nil, ErrNoValidBackend }
func (nullRendezvous) Balance() int        { return 0 }
