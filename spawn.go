package goless

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PanicHandler is invoked with the recovered value whenever a task
// spawned via Go fails without recovering its own panic. The default
// implementation logs the failure, with a pkg/errors stack trace
// captured at the point of recovery, and terminates the process.
// Replace this variable to install different behavior; it is read
// once per panic, so replacing it is safe to do concurrently with
// running tasks as long as there is no task failing at that exact
// instant.
var PanicHandler = defaultPanicHandler

func defaultPanicHandler(recovered any) {
	err := asError(recovered)
	log.Error().
		Interface("recovered", recovered).
		Str("stack", fmt.Sprintf("%+v", err)).
		Msg("goless: unhandled panic in spawned task")
	sched.PropagatePanic(err)
}

// asError wraps recovered in a pkg/errors stack-carrying error so the
// stack can be rendered later with "%+v", capturing it here rather
// than at the eventual logging site since the original panic frames
// are only available at the point of recovery.
func asError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return errors.WithStack(err)
	}
	return errors.WithStack(&recoveredPanic{value: recovered})
}

type recoveredPanic struct{ value any }

func (p *recoveredPanic) Error() string {
	return "goless: panic recovered in spawned task"
}

// Go runs fn in a new task, analogous to Go's own `go` statement. Any
// panic that escapes fn is caught here and routed to PanicHandler
// rather than crashing the whole process directly.
func Go(fn func()) {
	sched.Spawn(func() {
		defer func() {
			if r := recover(); r != nil {
				PanicHandler(r)
			}
		}()
		fn()
	})
}

// SetLogger replaces the global zerolog.Logger that the default panic
// handler logs through. The goroutine scheduler backend keeps the
// copy of the global logger it took when it was constructed, so its
// own termination message is not redirected by SetLogger.
func SetLogger(logger zerolog.Logger) {
	log.Logger = logger
}
