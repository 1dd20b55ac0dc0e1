package scheduler

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// goroutineScheduler is the default Scheduler backend: it maps tasks
// onto real goroutines and its Rendezvous onto a native Go unbuffered
// channel, which already gives the handoff and receiver-wakes-next
// semantics a rendezvous needs from its host (compare chansend/chanrecv
// in runtime/chan.go: a matched send/recv pair always resumes the
// receiver via goready, never the sender).
//
// Real goroutines are genuinely concurrent, not cooperative, so
// "would this park the only runnable task" can't be answered by
// inspecting a single run queue the way a true single-threaded fiber
// host could. Instead two atomic counters approximate it: alive
// (tasks spawned via Spawn that have not returned yet, plus the
// bootstrap task) and parked (tasks currently blocked inside a
// Rendezvous Send/Receive). WouldDeadlock reports true when parking
// one more task would mean every alive task is parked.
type goroutineScheduler struct {
	alive  int64
	parked int64
	logger zerolog.Logger
}

// NewGoroutineBackend constructs the default Scheduler backend.
func NewGoroutineBackend() Scheduler {
	return &goroutineScheduler{
		alive:  1, // the bootstrap task (whoever is running when the package initializes)
		logger: log.Logger,
	}
}

func (s *goroutineScheduler) Spawn(fn func()) {
	atomic.AddInt64(&s.alive, 1)
	go func() {
		defer atomic.AddInt64(&s.alive, -1)
		defer s.recoverPanic()
		fn()
	}()
}

func (s *goroutineScheduler) recoverPanic() {
	if r := recover(); r != nil {
		err, ok := r.(error)
		if !ok {
			err = &panicValue{value: r}
		}
		s.PropagatePanic(errors.WithStack(err))
	}
}

type panicValue struct{ value any }

func (p *panicValue) Error() string { return "panic recovered in spawned task" }

func (s *goroutineScheduler) Yield() {
	runtime.Gosched()
}

func (s *goroutineScheduler) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (s *goroutineScheduler) RendezvousChannel() Rendezvous {
	return &rendezvous{
		ch:     make(chan any),
		parked: &s.parked,
	}
}

func (s *goroutineScheduler) WouldDeadlock() bool {
	return atomic.LoadInt64(&s.parked) >= atomic.LoadInt64(&s.alive)-1
}

// PropagatePanic logs the failure with a pkg/errors stack trace and
// terminates the process. Applications that want different behavior
// replace goless.PanicHandler instead of reaching for this method
// directly.
func (s *goroutineScheduler) PropagatePanic(err error) {
	s.logger.Error().
		Err(err).
		Str("stack", fmt.Sprintf("%+v", err)).
		Msg("unhandled panic in spawned task, terminating")
	os.Exit(2)
}

// rendezvous is the goroutine backend's Rendezvous: a bare native Go
// channel (the actual zero-capacity handoff) plus a signed counter of
// parked parties, shared with the owning scheduler's deadlock-
// detection accounting.
type rendezvous struct {
	ch      chan any
	balance int64
	parked  *int64
}

// ClosedSentinel is handed to a parked receiver by Close so it wakes,
// sees it received a sentinel rather than a real value, and re-enters
// the channel method prologue where the closed flag is checked.
type ClosedSentinel struct{}

func (r *rendezvous) Send(v any) error {
	atomic.AddInt64(&r.balance, 1)
	atomic.AddInt64(r.parked, 1)
	defer func() {
		atomic.AddInt64(&r.balance, -1)
		atomic.AddInt64(r.parked, -1)
	}()
	r.ch <- v
	return nil
}

func (r *rendezvous) Receive() (any, error) {
	atomic.AddInt64(&r.balance, -1)
	atomic.AddInt64(r.parked, 1)
	defer func() {
		atomic.AddInt64(&r.balance, 1)
		atomic.AddInt64(r.parked, -1)
	}()
	v := <-r.ch
	return v, nil
}

func (r *rendezvous) Balance() int {
	return int(atomic.LoadInt64(&r.balance))
}
