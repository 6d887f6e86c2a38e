package config

import (
	"fmt"
	"time"
)

// Mode selects how props arbitrate with each other.
type Mode string

const (
	// ModeIndependent applies only each prop's own cooldown.
	ModeIndependent Mode = "independent"

	// ModeExclusive allows at most one participating prop to run at a time.
	ModeExclusive Mode = "exclusive"

	// ModeSoundGap holds back audio props until the current clip has
	// played for at least MinSoundGapS seconds.
	ModeSoundGap Mode = "sound_gap"
)

// Detection rule names.
const (
	RuleMax         = "max"
	RuleConsecutive = "consecutive"
)

// Device roles.
const (
	RoleSensor   = "sensor"
	RoleActuator = "actuator"
)

// ShowConfig describes the props and how they are scheduled.
type ShowConfig struct {
	Mode           Mode    `yaml:"mode"`
	PollIntervalMS int     `yaml:"poll_interval_ms"`
	DefaultSettleS float64 `yaml:"default_settle_s"`
	MinSoundGapS   float64 `yaml:"min_sound_gap_s"`

	Devices []DeviceConfig `yaml:"devices"`
	Props   []PropConfig   `yaml:"props"`
}

// DeviceConfig declares one addressable device on the bus.
// A board that both senses and actuates is declared once per role.
type DeviceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Role string `yaml:"role"`
}

// PropConfig binds a sensor to the actions and sounds it triggers.
type PropConfig struct {
	Name      string  `yaml:"name"`
	Sensor    string  `yaml:"sensor"`
	Rule      string  `yaml:"rule"`
	Threshold int     `yaml:"threshold"`
	CooldownS float64 `yaml:"cooldown_s"`
	SettleS   float64 `yaml:"settle_s"`

	// JitterMS adds a random delay of up to this many milliseconds between
	// admission and the first sound or action.
	JitterMS int `yaml:"jitter_ms"`

	// Exclusive defaults to true. Only consulted in exclusive mode.
	Exclusive *bool `yaml:"exclusive"`

	Actions []ActionConfig `yaml:"actions"`
	Sounds  []SoundConfig  `yaml:"sounds"`
}

// ActionConfig is one command sent to an actuator.
type ActionConfig struct {
	Actuator string `yaml:"actuator"`
	Command  string `yaml:"command"`
	DelayMS  int    `yaml:"delay_ms"`

	// EveryNth sends the command only on every Nth activation of the prop.
	EveryNth int `yaml:"every_nth"`
}

// SoundConfig places one clip on one output channel (1-based).
type SoundConfig struct {
	File    string `yaml:"file"`
	Channel int    `yaml:"channel"`
}

// PollInterval returns the detector cadence.
func (s ShowConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMS) * time.Millisecond
}

// DefaultSettle returns the hold applied when neither the prop nor its
// last due action specifies one.
func (s ShowConfig) DefaultSettle() time.Duration {
	return seconds(s.DefaultSettleS)
}

// MinSoundGap returns the minimum play time enforced in sound_gap mode.
func (s ShowConfig) MinSoundGap() time.Duration {
	return seconds(s.MinSoundGapS)
}

// Cooldown returns the minimum interval between two admissions.
func (p PropConfig) Cooldown() time.Duration {
	return seconds(p.CooldownS)
}

// Settle returns the prop's own hold, or zero when unset.
func (p PropConfig) Settle() time.Duration {
	return seconds(p.SettleS)
}

// Jitter returns the upper bound of the random pre-activation delay.
func (p PropConfig) Jitter() time.Duration {
	return time.Duration(p.JitterMS) * time.Millisecond
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// IsExclusive reports whether the prop takes part in the global lock.
func (p PropConfig) IsExclusive() bool {
	return p.Exclusive == nil || *p.Exclusive
}

// RuleName returns the configured rule, defaulting to consecutive.
func (p PropConfig) RuleName() string {
	if p.Rule == "" {
		return RuleConsecutive
	}
	return p.Rule
}

func (s ShowConfig) validate(audioEnabled bool) []string {
	var errs []string

	switch s.Mode {
	case ModeIndependent, ModeExclusive, ModeSoundGap:
	default:
		errs = append(errs, fmt.Sprintf("show.mode %q must be independent, exclusive, or sound_gap", s.Mode))
	}
	if s.PollIntervalMS <= 0 {
		errs = append(errs, "show.poll_interval_ms must be positive")
	}
	if s.DefaultSettleS < 0 {
		errs = append(errs, "show.default_settle_s must not be negative")
	}
	if s.MinSoundGapS < 0 {
		errs = append(errs, "show.min_sound_gap_s must not be negative")
	}

	type key struct{ id, role string }
	declared := make(map[key]bool, len(s.Devices))
	for i, d := range s.Devices {
		if d.ID == "" {
			errs = append(errs, fmt.Sprintf("show.devices[%d].id is required", i))
			continue
		}
		if d.Role != RoleSensor && d.Role != RoleActuator {
			errs = append(errs, fmt.Sprintf("show.devices[%d].role %q must be sensor or actuator", i, d.Role))
			continue
		}
		k := key{d.ID, d.Role}
		if declared[k] {
			errs = append(errs, fmt.Sprintf("show.devices[%d]: %s %s declared twice", i, d.Role, d.ID))
		}
		declared[k] = true
	}

	names := make(map[string]bool, len(s.Props))
	sensors := make(map[string]string, len(s.Props))
	for i, p := range s.Props {
		prefix := fmt.Sprintf("show.props[%d]", i)
		if p.Name == "" {
			errs = append(errs, prefix+".name is required")
		} else if names[p.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate prop name %q", prefix, p.Name))
		}
		names[p.Name] = true

		if !declared[key{p.Sensor, RoleSensor}] {
			errs = append(errs, fmt.Sprintf("%s.sensor %q is not a declared sensor device", prefix, p.Sensor))
		} else if other, taken := sensors[p.Sensor]; taken {
			errs = append(errs, fmt.Sprintf("%s.sensor %q already drives prop %q", prefix, p.Sensor, other))
		}
		sensors[p.Sensor] = p.Name

		switch p.RuleName() {
		case RuleMax, RuleConsecutive:
		default:
			errs = append(errs, fmt.Sprintf("%s.rule %q must be max or consecutive", prefix, p.Rule))
		}
		if p.CooldownS < 0 {
			errs = append(errs, prefix+".cooldown_s must not be negative")
		}
		if p.SettleS < 0 {
			errs = append(errs, prefix+".settle_s must not be negative")
		}
		if p.JitterMS < 0 {
			errs = append(errs, prefix+".jitter_ms must not be negative")
		}
		if len(p.Actions) == 0 && len(p.Sounds) == 0 {
			errs = append(errs, prefix+" needs at least one action or sound")
		}

		for j, a := range p.Actions {
			if !declared[key{a.Actuator, RoleActuator}] {
				errs = append(errs, fmt.Sprintf("%s.actions[%d].actuator %q is not a declared actuator device", prefix, j, a.Actuator))
			}
			if a.Command == "" {
				errs = append(errs, fmt.Sprintf("%s.actions[%d].command is required", prefix, j))
			}
			if a.DelayMS < 0 {
				errs = append(errs, fmt.Sprintf("%s.actions[%d].delay_ms must not be negative", prefix, j))
			}
			if a.EveryNth < 0 {
				errs = append(errs, fmt.Sprintf("%s.actions[%d].every_nth must not be negative", prefix, j))
			}
		}

		if len(p.Sounds) > 0 && !audioEnabled {
			errs = append(errs, prefix+" has sounds but audio is disabled")
		}
		for j, snd := range p.Sounds {
			if snd.File == "" {
				errs = append(errs, fmt.Sprintf("%s.sounds[%d].file is required", prefix, j))
			}
			if snd.Channel < 1 {
				errs = append(errs, fmt.Sprintf("%s.sounds[%d].channel must be 1 or greater", prefix, j))
			}
		}
	}

	return errs
}
