package actuation

import (
	"time"

	"github.com/jakelevirne/Halloween2025/internal/infrastructure/config"
)

// Step is one command to one actuator board.
type Step struct {
	ActuatorID string
	Command    string

	// DelayAfter is the pause before the next step. On the last step due in
	// an activation it is the post-command hold before the prop may listen
	// again.
	DelayAfter time.Duration

	// EveryNth limits the step to every Nth activation (1st, N+1th, ...).
	// Zero or one means every activation.
	EveryNth int
}

// Due reports whether the step runs on the given 1-based activation.
func (s Step) Due(activation int) bool {
	if s.EveryNth <= 1 {
		return true
	}
	return (activation-1)%s.EveryNth == 0
}

// Plan is the ordered command sequence a prop runs when admitted.
type Plan struct {
	Steps []Step
}

// PlanFromConfig builds a plan from the prop's action list.
func PlanFromConfig(actions []config.ActionConfig) Plan {
	steps := make([]Step, 0, len(actions))
	for _, a := range actions {
		steps = append(steps, Step{
			ActuatorID: a.Actuator,
			Command:    a.Command,
			DelayAfter: time.Duration(a.DelayMS) * time.Millisecond,
			EveryNth:   a.EveryNth,
		})
	}
	return Plan{Steps: steps}
}

// Hold returns how long the prop stays Running after the last send of the
// given activation: the delay of the last step due in it when that step has
// one, otherwise fallback.
func (p Plan) Hold(activation int, fallback time.Duration) time.Duration {
	if i := p.lastDue(activation); i >= 0 && p.Steps[i].DelayAfter > 0 {
		return p.Steps[i].DelayAfter
	}
	return fallback
}

// lastDue returns the index of the last step due in activation, or -1.
func (p Plan) lastDue(activation int) int {
	for i := len(p.Steps) - 1; i >= 0; i-- {
		if p.Steps[i].Due(activation) {
			return i
		}
	}
	return -1
}
