// Package bootstrap provides the command lifecycle: interrupt handling and
// ordered release of the resources a command opened.
package bootstrap

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"sync"
)

// App runs one command and closes the registered resources afterwards.
type App struct {
	mu      sync.Mutex
	closers []func() error
}

// New creates a new App.
func New() *App {
	return &App{}
}

// AddCloser registers a function to call once the command finished.
// Closers run in reverse order (LIFO). Thread-safe.
func (a *App) AddCloser(fn func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

// Manage registers c as a closer.
func (a *App) Manage(c io.Closer) {
	a.AddCloser(c.Close)
}

// Run executes run with a context that is canceled on OS interrupt. After run
// returned, for any reason, the closers are called in LIFO order. Errors of run
// and of the closers are joined.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	err := run(ctx)
	return errors.Join(err, a.close())
}

func (a *App) close() error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
