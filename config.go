package goless

import "github.com/rgalanakis/goless-go/internal/scheduler"

// resolveScheduler picks the Scheduler backend this process will use,
// implemented in internal/scheduler.Resolve: an explicit GOLESS_BACKEND
// environment variable wins, then a preferred default, then any
// registered backend, then a backend that fails lazily with
// ErrNoValidBackend.
func resolveScheduler() scheduler.Scheduler {
	return scheduler.Resolve()
}

// RegisterBackend adds a named Scheduler backend to the registry
// consulted by GOLESS_BACKEND. This package resolves its own backend
// once, during package initialization, which completes before any
// importer can call RegisterBackend: a backend registered here is not
// used by this package's channels, Select or Go, and naming it in
// GOLESS_BACKEND makes initialization panic, since it is not yet
// registered at that point.
func RegisterBackend(name string, factory func() (scheduler.Scheduler, error)) {
	scheduler.Register(name, factory)
}
