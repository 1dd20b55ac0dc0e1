package goless

import (
	"github.com/pkg/errors"

	"github.com/rgalanakis/goless-go/internal/chans"
	"github.com/rgalanakis/goless-go/internal/scheduler"
)

// ErrChannelClosed is returned by Send on a closed channel, and by
// Recv on a closed channel once its buffer has drained. It is also
// what a blocked Send or Recv resolves to if the channel closes while
// the caller was parked.
var ErrChannelClosed = chans.ErrClosed

// ErrDeadlock is raised from channel Send/Recv and from Select/SelectOk
// when completing the operation would park the only runnable task.
var ErrDeadlock = chans.ErrDeadlock

// ErrInvalidWaitGroup covers programming errors in WaitGroup usage:
// a non-positive Add, an unbalanced Done, a second Wait/WaitCase, or
// an Add after Wait/WaitCase has already finalized the group.
var ErrInvalidWaitGroup = errors.New("goless: invalid WaitGroup usage")

// ErrNoValidBackend is the failure of the null backend installed when
// no scheduler backend could be constructed: Go panics with it, and
// that backend's rendezvous Send/Receive return it. The null backend's
// WouldDeadlock always reports true, so a channel operation that would
// block, or a Select with nothing ready, returns ErrDeadlock instead,
// and channel operations that need not block succeed.
var ErrNoValidBackend = scheduler.ErrNoValidBackend
