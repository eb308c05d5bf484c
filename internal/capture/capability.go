// Package capture acquires an energy source for the ring in the background.
// The frame loop polls a Capability every tick and never waits on it: until
// acquisition succeeds, and forever after it fails, the reading is absent.
package capture

import (
	"context"
	"errors"
	"log"
	"sync"
)

// ErrClosed is reported when the capability was torn down before
// acquisition finished.
var ErrClosed = errors.New("capture: closed")

// Source delivers per-tick frequency/energy readings.
type Source interface {
	// ByteFrequencyData writes the current reading into dst, growing it if
	// needed. It returns nil when there is nothing to report this tick.
	ByteFrequencyData(dst []byte) []byte
	Close() error
}

// Opener acquires a Source. It may block; it runs off the frame loop.
type Opener func(ctx context.Context) (Source, error)

// Unavailable returns an Opener that always fails with err.
func Unavailable(err error) Opener {
	return func(context.Context) (Source, error) {
		return nil, err
	}
}

// State is the lifecycle of a Capability.
type State uint8

const (
	StatePending State = iota
	StateReady
	StateUnavailable
	StateClosed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	default:
		return "closed"
	}
}

// Capability is a one-shot future for a Source.
type Capability struct {
	mu     sync.Mutex
	state  State
	src    Source
	err    error
	cancel context.CancelFunc
	done   chan struct{}
}

// Acquire starts open on its own goroutine and returns immediately.
func Acquire(ctx context.Context, open Opener) *Capability {
	ctx, cancel := context.WithCancel(ctx)
	c := &Capability{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go c.resolve(ctx, open)
	return c
}

func (c *Capability) resolve(ctx context.Context, open Opener) {
	src, err := open(ctx)
	if err == nil && src == nil {
		err = errors.New("capture: opener returned no source")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(c.done)

	if c.state == StateClosed {
		if src != nil {
			src.Close()
		}
		return
	}
	if err != nil {
		c.state = StateUnavailable
		c.err = err
		log.Printf("capture: energy source unavailable, staying idle: %v", err)
		return
	}
	c.state = StateReady
	c.src = src
	log.Printf("capture: energy source ready")
}

// Energy returns the current reading, or nil while pending, after failure,
// or after Close. It never blocks on acquisition. A Close from another
// goroutine waits for an in-flight reading to finish.
func (c *Capability) Energy(dst []byte) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.src == nil {
		return nil
	}
	return c.src.ByteFrequencyData(dst)
}

// Source returns the acquired source, or nil unless the capability is ready.
func (c *Capability) Source() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.src
}

// State reports where acquisition stands.
func (c *Capability) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the acquisition error once the capability is Unavailable.
func (c *Capability) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Done closes once acquisition has resolved, either way.
func (c *Capability) Done() <-chan struct{} {
	return c.done
}

// Close releases the source. It is safe before acquisition resolves (a late
// source is closed on arrival), after a failure, and more than once.
func (c *Capability) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil
	}
	c.cancel()
	wasPending := c.state == StatePending
	c.state = StateClosed
	if wasPending {
		c.err = ErrClosed
	}
	src := c.src
	c.src = nil
	if src != nil {
		return src.Close()
	}
	return nil
}
