package show

import (
	"sync"
	"time"
)

// State is where a prop is in its activation cycle.
type State int

// Scheduler states.
const (
	StateIdle State = iota
	StateAdmitted
	StateRunning
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAdmitted:
		return "admitted"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// TriggerState is the per-prop scheduling record.
type TriggerState struct {
	State State

	// LastFired is only meaningful once Fired is set.
	LastFired time.Time
	Fired     bool

	// Activations counts admissions since start.
	Activations int

	// SoundStartedAt is when this prop last started its sounds.
	SoundStartedAt time.Time
}

// Scheduler guards one prop's TriggerState.
//
// Only the prop's own task moves it between states. Snapshot may be called
// from anywhere.
type Scheduler struct {
	prop     string
	cooldown time.Duration
	claim    Claim
	arbiter  *Arbiter

	mu        sync.Mutex
	state     TriggerState
	prevSound time.Time
}

// NewScheduler creates a scheduler in the Idle state.
func NewScheduler(prop string, cooldown time.Duration, claim Claim, arbiter *Arbiter) *Scheduler {
	return &Scheduler{
		prop:     prop,
		cooldown: cooldown,
		claim:    claim,
		arbiter:  arbiter,
	}
}

// Admit tries to move Idle -> Admitted for a trigger raised at now. On
// success it returns the 1-based activation number. A refusal changes
// nothing.
func (s *Scheduler) Admit(now time.Time) (activation int, reason DropReason, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.State != StateIdle {
		return 0, ReasonBusy, false
	}
	if s.state.Fired && now.Sub(s.state.LastFired) < s.cooldown {
		return 0, ReasonCooldown, false
	}
	if reason, ok := s.arbiter.Acquire(s.prop, s.claim, now); !ok {
		return 0, reason, false
	}

	s.state.State = StateAdmitted
	s.state.LastFired = now
	s.state.Fired = true
	s.state.Activations++
	if s.claim.Sound {
		s.prevSound = s.state.SoundStartedAt
		s.state.SoundStartedAt = now
	}
	return s.state.Activations, "", true
}

// SoundStarted records that the admitted activation's sounds began at at.
func (s *Scheduler) SoundStarted(at time.Time) {
	s.mu.Lock()
	reserved := s.state.SoundStartedAt
	s.state.SoundStartedAt = at
	s.mu.Unlock()
	s.arbiter.SoundStarted(s.prop, reserved, at)
}

// SoundFailed undoes the sound start recorded by Admit, so a sound that
// never played does not hold back other props.
func (s *Scheduler) SoundFailed() {
	s.mu.Lock()
	reserved := s.state.SoundStartedAt
	s.state.SoundStartedAt = s.prevSound
	s.mu.Unlock()
	s.arbiter.CancelSound(s.prop, reserved)
}

// Begin moves Admitted -> Running.
func (s *Scheduler) Begin() {
	s.mu.Lock()
	if s.state.State == StateAdmitted {
		s.state.State = StateRunning
	}
	s.mu.Unlock()
}

// Settle returns the prop to Idle and releases any show lock it holds.
func (s *Scheduler) Settle() {
	s.mu.Lock()
	s.state.State = StateIdle
	s.mu.Unlock()
	s.arbiter.Release(s.prop)
}

// Snapshot returns a copy of the current state.
func (s *Scheduler) Snapshot() TriggerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
