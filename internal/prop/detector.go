package prop

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jakelevirne/Halloween2025/internal/infrastructure/config"
)

// Detection is the outcome of one poll.
//
// Decided is false when the rule had too little data to judge; the inbox is
// then left as it was. Values holds the numeric readings in arrival order.
// Peak is the highest of them, valid only when HasPeak is set.
type Detection struct {
	DeviceID  string
	At        time.Time
	Decided   bool
	Triggered bool
	Readings  []Reading
	Values    []int
	Peak      int
	HasPeak   bool
}

func (d *Detection) observe(v int) {
	d.Values = append(d.Values, v)
	if !d.HasPeak || v > d.Peak {
		d.Peak, d.HasPeak = v, true
	}
}

// Rule turns the contents of an inbox into a detection.
type Rule interface {
	Name() string
	Apply(in *Inbox, threshold int) Detection
}

// MaxRule fires when the largest reading in the window exceeds the
// threshold. The window is emptied on every decided poll.
type MaxRule struct{}

// Name implements Rule.
func (MaxRule) Name() string { return config.RuleMax }

// Apply implements Rule.
func (MaxRule) Apply(in *Inbox, threshold int) Detection {
	batch := in.Drain()
	if len(batch) == 0 {
		return Detection{}
	}

	d := Detection{Decided: true, Readings: batch}
	for _, r := range batch {
		if v, ok := r.Value(); ok {
			d.observe(v)
		}
	}
	d.Triggered = d.HasPeak && d.Peak > threshold
	return d
}

// ConsecutiveRule fires when two adjacent readings both exceed the
// threshold. It needs at least two readings and carries the newest one
// over so a pair straddling two polls is still seen.
type ConsecutiveRule struct{}

// Name implements Rule.
func (ConsecutiveRule) Name() string { return config.RuleConsecutive }

// Apply implements Rule.
func (ConsecutiveRule) Apply(in *Inbox, threshold int) Detection {
	batch, ok := in.TakeRetainLast(2)
	if !ok {
		return Detection{}
	}

	d := Detection{Decided: true, Readings: batch}
	prevHigh := false
	for _, r := range batch {
		v, numeric := r.Value()
		if numeric {
			d.observe(v)
		}

		high := numeric && v > threshold
		if high && prevHigh {
			d.Triggered = true
		}
		prevHigh = high
	}
	return d
}

// RuleByName returns the rule registered under name.
func RuleByName(name string) (Rule, error) {
	switch name {
	case config.RuleMax:
		return MaxRule{}, nil
	case config.RuleConsecutive, "":
		return ConsecutiveRule{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}
}

// Detector applies one rule to one sensor's inbox.
type Detector struct {
	deviceID  string
	inbox     *Inbox
	rule      Rule
	threshold int
	clock     clock.Clock
}

// NewDetector binds a rule and threshold to an inbox. A nil clock means
// the wall clock.
func NewDetector(deviceID string, inbox *Inbox, rule Rule, threshold int, clk clock.Clock) *Detector {
	if clk == nil {
		clk = clock.New()
	}
	return &Detector{
		deviceID:  deviceID,
		inbox:     inbox,
		rule:      rule,
		threshold: threshold,
		clock:     clk,
	}
}

// Poll evaluates the current window and stamps the result with the time
// it was taken.
func (d *Detector) Poll() Detection {
	det := d.rule.Apply(d.inbox, d.threshold)
	det.DeviceID = d.deviceID
	det.At = d.clock.Now()
	return det
}

// Rule returns the configured rule name.
func (d *Detector) Rule() string { return d.rule.Name() }

// Threshold returns the configured threshold.
func (d *Detector) Threshold() int { return d.threshold }
