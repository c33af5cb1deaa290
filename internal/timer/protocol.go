package timer

import (
	"errors"
	"fmt"
	"time"
)

// Phase is the step of the training protocol currently counting down.
type Phase string

const (
	PhaseIdle Phase = "idle"
	PhasePrep Phase = "prep" // once, before the first hang of a session
	PhaseHang Phase = "hang"
	PhaseRest Phase = "rest"
)

var (
	ErrBusy         = errors.New("timer is already running a phase")
	ErrNotPausable  = errors.New("only rest can be paused")
	ErrNotSkippable = errors.New("only hang and rest can be skipped")
	ErrIdle         = errors.New("timer is idle")
)

// Durations are the lengths of the protocol phases.
type Durations struct {
	Prep time.Duration
	Hang time.Duration
	Rest time.Duration
}

// DefaultDurations returns 5s prep, 7s hang and 180s rest.
func DefaultDurations() Durations {
	return Durations{Prep: 5 * time.Second, Hang: 7 * time.Second, Rest: 180 * time.Second}
}

// Listener receives the protocol's effects on the session.
type Listener interface {
	// HangCompleted marks the hang set complete. Called when its hang phase
	// expires or is skipped.
	HangCompleted(setID string) error
	// NextHangSet returns the first incomplete hang set, if any.
	NextHangSet() (setID string, ok bool)
}

// Snapshot is a read-only view of a Protocol.
type Snapshot struct {
	Phase     Phase         `json:"phase"`
	State     State         `json:"state"`
	Remaining time.Duration `json:"remaining"`
	SetID     string        `json:"setId,omitempty"`
	PrepDone  bool          `json:"prepDone"`
}

// Protocol sequences prep, hang and rest for the hang sets of one training
// session. It is not safe for concurrent use.
type Protocol struct {
	durations Durations
	listener  Listener

	countdown Countdown
	phase     Phase
	setID     string // hang set being timed, also kept through its rest
	prepDone  bool
}

// NewProtocol creates an idle protocol.
func NewProtocol(d Durations, l Listener) *Protocol {
	return &Protocol{durations: d, listener: l, phase: PhaseIdle}
}

// Snapshot returns the current phase and time left.
func (p *Protocol) Snapshot() Snapshot {
	return Snapshot{
		Phase:     p.phase,
		State:     p.countdown.State(),
		Remaining: p.countdown.Remaining(),
		SetID:     p.setID,
		PrepDone:  p.prepDone,
	}
}

// Phase returns the current phase.
func (p *Protocol) Phase() Phase {
	return p.phase
}

// StartHang begins timing setID. The first hang of the session gets a prep
// phase first.
func (p *Protocol) StartHang(setID string) error {
	if p.phase != PhaseIdle {
		return ErrBusy
	}
	p.setID = setID
	if !p.prepDone {
		p.enter(PhasePrep, p.durations.Prep)
		return nil
	}
	p.enter(PhaseHang, p.durations.Hang)
	return nil
}

// StartRest begins a rest after a set completed outside the hang timer. A
// running rest is restarted.
func (p *Protocol) StartRest() error {
	switch p.phase {
	case PhasePrep, PhaseHang:
		return ErrBusy
	}
	p.setID = ""
	p.enter(PhaseRest, p.durations.Rest)
	return nil
}

// Tick advances the running phase by elapsed and moves to the next phase when
// it runs out.
func (p *Protocol) Tick(elapsed time.Duration) error {
	if !p.countdown.Tick(elapsed) {
		return nil
	}
	return p.advance()
}

// Pause suspends a running rest.
func (p *Protocol) Pause() error {
	if p.phase != PhaseRest {
		return ErrNotPausable
	}
	return p.countdown.Pause()
}

// Resume continues a paused rest.
func (p *Protocol) Resume() error {
	if p.phase != PhaseRest {
		return ErrNotPausable
	}
	return p.countdown.Resume()
}

// Skip ends the hang or rest phase now, with the same effect as letting it
// run out.
func (p *Protocol) Skip() error {
	switch p.phase {
	case PhaseHang, PhaseRest:
		p.countdown.Stop()
		return p.advance()
	case PhaseIdle:
		return ErrIdle
	default:
		return ErrNotSkippable
	}
}

// Cancel stops any phase without completing anything.
func (p *Protocol) Cancel() {
	p.countdown.Stop()
	p.phase = PhaseIdle
	p.setID = ""
}

func (p *Protocol) enter(phase Phase, d time.Duration) {
	p.phase = phase
	p.countdown.Start(d)
}

func (p *Protocol) advance() error {
	switch p.phase {
	case PhasePrep:
		p.prepDone = true
		p.enter(PhaseHang, p.durations.Hang)

	case PhaseHang:
		setID := p.setID
		if err := p.listener.HangCompleted(setID); err != nil {
			p.Cancel()
			return fmt.Errorf("complete hang set %s: %w", setID, err)
		}
		p.enter(PhaseRest, p.durations.Rest)

	case PhaseRest:
		afterHang := p.setID != ""
		p.Cancel()
		if !afterHang {
			return nil
		}
		if next, ok := p.listener.NextHangSet(); ok {
			p.setID = next
			p.enter(PhaseHang, p.durations.Hang)
		}
	}
	return nil
}
