package goless

// Case describes a single communication attempt used by Select and
// SelectOk: either a receive (RCase), a send (SCase), or a fallback
// (DCase).
type Case interface {
	ready() bool
	exec() (any, error)
}

// RCase builds a case that receives from ch when select chooses it.
// A nil ch behaves like a nil channel in a Go select statement: it is
// simply never ready, rather than panicking, so selects that
// optionally include a case can pass a nil Channel to disable it.
func RCase(ch Channel) Case {
	return rcase{ch: ch}
}

type rcase struct{ ch Channel }

func (c rcase) ready() bool {
	return c.ch != nil && (c.ch.Closed() || c.ch.RecvReady())
}

func (c rcase) exec() (any, error) {
	return c.ch.Recv()
}

// SCase builds a case that sends value on ch when select chooses it.
// A nil ch is never ready, for the same reason as RCase.
func SCase(ch Channel, value any) Case {
	return scase{ch: ch, value: value}
}

type scase struct {
	ch    Channel
	value any
}

func (c scase) ready() bool {
	return c.ch != nil && (c.ch.Closed() || c.ch.SendReady())
}

func (c scase) exec() (any, error) {
	return nil, c.ch.Send(c.value)
}

// DCase builds the default case: it matches only when no other case
// in the same Select/SelectOk call is ready.
func DCase() Case {
	return dcase{}
}

type dcase struct{}

func (dcase) ready() bool          { return false }
func (dcase) exec() (any, error)   { return nil, nil }

// Select chooses the first ready case among cases, in list order:
// unlike Go's own randomized select statement, this is deterministic
// by input order. If a DCase is present and no other case is ready, it is
// chosen with a nil value. If no case is ready and there is no
// default, Select blocks until one becomes ready, or fails with
// ErrDeadlock if blocking would park the only runnable task.
//
// If the chosen case is an RCase over a channel that turns out to be
// closed and drained, Select returns ErrChannelClosed. Use SelectOk to
// get an explicit ok flag instead of an error for that case.
func Select(cases ...Case) (chosen Case, value any, err error) {
	chosen, value, ok, err := selectImpl(cases)
	if err != nil {
		return chosen, value, err
	}
	if !ok {
		return chosen, value, ErrChannelClosed
	}
	return chosen, value, nil
}

// SelectOk is like Select, but reports channel closure via the ok
// return value instead of an error.
func SelectOk(cases ...Case) (chosen Case, value any, ok bool, err error) {
	return selectImpl(cases)
}

func selectImpl(cases []Case) (chosen Case, value any, ok bool, err error) {
	if len(cases) == 0 {
		return nil, nil, false, nil
	}

	var deflt Case
	haveDefault := false

	tryReady := func() (Case, any, bool, bool) {
		for _, c := range cases {
			if _, isDefault := c.(dcase); isDefault {
				if haveDefault {
					panic("goless: only one default case is allowed in a single select")
				}
				haveDefault = true
				deflt = c
				continue
			}
			if c.ready() {
				v, execErr := c.exec()
				if execErr != nil {
					return c, nil, false, true
				}
				return c, v, true, true
			}
		}
		return nil, nil, false, false
	}

	if c, v, chanOk, found := tryReady(); found {
		return c, v, chanOk, nil
	}
	if haveDefault {
		return deflt, nil, true, nil
	}

	// We must check for deadlock before blocking: we don't perform an
	// actual Send/Recv here that the Rendezvous could detect on our
	// behalf, so the check has to happen explicitly (following
	// selecting.py's select_ok).
	if sched.WouldDeadlock() {
		return nil, nil, false, ErrDeadlock
	}

	for {
		if c, v, chanOk, found := tryReady(); found {
			return c, v, chanOk, nil
		}
		sched.Yield()
	}
}
