package scheduler

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// ErrNoValidBackend is returned (lazily, on first use) when no
// scheduler backend could be constructed.
var ErrNoValidBackend = errors.New("goless: no valid scheduler backend available")

// Factory constructs a Scheduler backend on demand. Backends register
// themselves under a name so they can be selected by the
// GOLESS_BACKEND environment variable, mirroring backends.py's
// _default_backends map.
type Factory func() (Scheduler, error)

var registry = map[string]Factory{
	"goroutine": func() (Scheduler, error) { return NewGoroutineBackend(), nil },
}

// preferredDefault names the backend tried first when no explicit
// selection is made via the environment. This module itself only ships
// the goroutine backend, but the registry is kept open so an
// application can register additional backends (e.g. a
// worker-pool-backed one) before Resolve is called.
const preferredDefault = "goroutine"

type backendConfig struct {
	Name string `env:"GOLESS_BACKEND"`
}

// Resolve implements the same fallback chain as backends.py's
// calculate_backend:
//
//  1. Read GOLESS_BACKEND. If set, it must name a registered backend;
//     failure to construct it is an error (an explicit, wrong request
//     should not be silently papered over).
//  2. Otherwise try the preferred default backend.
//  3. Otherwise try every registered backend, in map iteration order,
//     returning the first that constructs successfully.
//  4. Otherwise return a nullScheduler, which fails with
//     ErrNoValidBackend the moment it is actually used.
func Resolve() Scheduler {
	var cfg backendConfig
	// Parse errors here mean the environment variable is absent or
	// empty, which is not itself an error condition; cfg.Name simply
	// stays "".
	_ = env.Parse(&cfg)

	if cfg.Name != "" {
		factory, ok := registry[cfg.Name]
		if !ok {
			panic(fmt.Sprintf("goless: invalid backend %q specified via GOLESS_BACKEND, valid backends are %v", cfg.Name, backendNames()))
		}
		sched, err := factory()
		if err != nil {
			panic(errors.Wrapf(err, "goless: backend %q specified via GOLESS_BACKEND failed to start", cfg.Name))
		}
		return sched
	}

	if factory, ok := registry[preferredDefault]; ok {
		if sched, err := factory(); err == nil {
			return sched
		}
	}

	for _, factory := range registry {
		if sched, err := factory(); err == nil {
			return sched
		}
	}

	return nullScheduler{}
}

func backendNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Register adds a named backend factory to the registry. Intended for
// applications or tests that want to swap in an alternate Scheduler
// backend before Resolve runs.
func Register(name string, factory Factory) {
	registry[name] = factory
}
