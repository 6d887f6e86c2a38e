package show

import (
	"sync"
	"time"

	"github.com/jakelevirne/Halloween2025/internal/infrastructure/config"
)

// DropReason says why a trigger was not admitted.
type DropReason string

// Drop reasons.
const (
	ReasonCooldown DropReason = "cooldown"
	ReasonBusy     DropReason = "busy"
	ReasonSoundGap DropReason = "sound_gap"
)

// Claim describes what an admitted prop takes from the show.
type Claim struct {
	// Exclusive props hold the show lock in exclusive mode.
	Exclusive bool

	// Sound props restart the shared sound clock in sound_gap mode.
	Sound bool
}

// Arbiter owns the state shared by every prop: the show lock and the time
// the last sound started. Check and claim happen under one mutex, so two
// props can never both believe they were admitted.
type Arbiter struct {
	mode   config.Mode
	minGap time.Duration

	mu             sync.Mutex
	holder         string
	soundStartedAt time.Time
	soundStarted   bool

	// soundOwner made the latest reservation; prev* is what it replaced.
	soundOwner       string
	prevSoundAt      time.Time
	prevSoundStarted bool
}

// NewArbiter creates an arbiter for the given mode.
func NewArbiter(mode config.Mode, minGap time.Duration) *Arbiter {
	return &Arbiter{mode: mode, minGap: minGap}
}

// Mode returns the arbitration mode.
func (a *Arbiter) Mode() config.Mode { return a.mode }

// Acquire tries to admit prop at now. On success the claim is recorded and
// must later be returned with Release. In sound_gap mode the sound clock is
// reserved at now until the prop confirms with SoundStarted or backs out
// with CancelSound.
func (a *Arbiter) Acquire(prop string, c Claim, now time.Time) (DropReason, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.mode {
	case config.ModeExclusive:
		if !c.Exclusive {
			return "", true
		}
		if a.holder != "" && a.holder != prop {
			return ReasonBusy, false
		}
		a.holder = prop

	case config.ModeSoundGap:
		if !c.Sound {
			return "", true
		}
		if a.soundStarted && now.Sub(a.soundStartedAt) < a.minGap {
			return ReasonSoundGap, false
		}
		a.prevSoundAt, a.prevSoundStarted = a.soundStartedAt, a.soundStarted
		a.soundOwner = prop
		a.soundStartedAt = now
		a.soundStarted = true
	}

	return "", true
}

// SoundStarted moves prop's reservation made at reservedAt to the time its
// sound actually began.
func (a *Arbiter) SoundStarted(prop string, reservedAt, at time.Time) {
	a.mu.Lock()
	if a.soundOwner == prop && a.soundStartedAt.Equal(reservedAt) {
		a.soundStartedAt = at
	}
	a.mu.Unlock()
}

// CancelSound drops prop's reservation made at reservedAt, restoring the
// previous sound start. It does nothing if another prop has reserved since.
func (a *Arbiter) CancelSound(prop string, reservedAt time.Time) {
	a.mu.Lock()
	if a.soundOwner == prop && a.soundStartedAt.Equal(reservedAt) {
		a.soundStartedAt, a.soundStarted = a.prevSoundAt, a.prevSoundStarted
		a.soundOwner = ""
	}
	a.mu.Unlock()
}

// Release gives the show lock back if prop holds it.
func (a *Arbiter) Release(prop string) {
	a.mu.Lock()
	if a.holder == prop {
		a.holder = ""
	}
	a.mu.Unlock()
}

// Holder returns the prop holding the show lock, or "".
func (a *Arbiter) Holder() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holder
}

// SoundStartedAt returns when the most recent gated sound started.
func (a *Arbiter) SoundStartedAt() (time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.soundStartedAt, a.soundStarted
}
