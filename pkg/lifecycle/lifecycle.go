// Package lifecycle coordinates named startup checks and shutdown cleanup
// for the service's subsystems.
package lifecycle

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// Coordinator runs startup hooks concurrently, tracks which subsystems
// failed to start, and runs shutdown hooks once its context is cancelled.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup

	mu       sync.RWMutex
	started  bool
	failures map[string]error
	pending  map[string]struct{}
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:      ctx,
		cancel:   cancel,
		failures: make(map[string]error),
		pending:  make(map[string]struct{}),
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn concurrently. A returned error marks the named
// subsystem as failed and keeps the coordinator from reporting ready.
func (c *Coordinator) OnStartup(name string, fn func(ctx context.Context) error) {
	c.startupWg.Go(func() {
		if err := fn(c.ctx); err != nil {
			c.mu.Lock()
			c.failures[name] = err
			c.mu.Unlock()
		}
	})
}

// OnShutdown registers cleanup that runs after the context is cancelled.
func (c *Coordinator) OnShutdown(name string, fn func()) {
	c.mu.Lock()
	c.pending[name] = struct{}{}
	c.mu.Unlock()

	c.shutdownWg.Go(func() {
		<-c.ctx.Done()
		fn()
		c.mu.Lock()
		delete(c.pending, name)
		c.mu.Unlock()
	})
}

// Ready reports whether startup finished without failures.
func (c *Coordinator) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.started && len(c.failures) == 0
}

// Failures returns the startup error message of each failed subsystem.
func (c *Coordinator) Failures() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.failures))
	for name, err := range c.failures {
		out[name] = err.Error()
	}
	return out
}

// WaitForStartup blocks until every startup hook has returned.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
}

// Shutdown cancels the context and waits for shutdown hooks to complete
// within the given timeout. A timeout error names the hooks still running.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		c.mu.RLock()
		names := slices.Sorted(maps.Keys(c.pending))
		c.mu.RUnlock()
		return fmt.Errorf("shutdown timeout after %v: %v still running", timeout, names)
	}
}
