// Package timer implements the hang/rest sequencing of training sessions as
// explicit state machines. Time is fed in from outside through Tick, so the
// machines never read a clock themselves.
package timer

import (
	"errors"
	"time"
)

// State is the state of a Countdown.
type State string

const (
	Stopped State = "stopped"
	Running State = "running"
	Paused  State = "paused"
)

var (
	ErrNotRunning = errors.New("countdown is not running")
	ErrNotPaused  = errors.New("countdown is not paused")
)

// Countdown counts a duration down to zero. The zero value is stopped.
type Countdown struct {
	state     State
	remaining time.Duration
}

// State returns the current state.
func (c *Countdown) State() State {
	if c.state == "" {
		return Stopped
	}
	return c.state
}

// Remaining returns the time left. It is zero when stopped.
func (c *Countdown) Remaining() time.Duration {
	return c.remaining
}

// Start (re)starts the countdown from d.
func (c *Countdown) Start(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.state = Running
	c.remaining = d
}

// Tick advances a running countdown by elapsed and reports whether it reached
// zero on this tick. Ticks while paused or stopped are ignored.
func (c *Countdown) Tick(elapsed time.Duration) bool {
	if c.State() != Running || elapsed < 0 {
		return false
	}
	c.remaining -= elapsed
	if c.remaining > 0 {
		return false
	}
	c.Stop()
	return true
}

// Pause suspends a running countdown, keeping the time left.
func (c *Countdown) Pause() error {
	if c.State() != Running {
		return ErrNotRunning
	}
	c.state = Paused
	return nil
}

// Resume continues a paused countdown from where it stopped.
func (c *Countdown) Resume() error {
	if c.State() != Paused {
		return ErrNotPaused
	}
	c.state = Running
	return nil
}

// Stop halts the countdown and clears the time left.
func (c *Countdown) Stop() {
	c.state = Stopped
	c.remaining = 0
}
