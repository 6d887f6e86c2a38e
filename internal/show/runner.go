package show

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/jakelevirne/Halloween2025/internal/actuation"
	"github.com/jakelevirne/Halloween2025/internal/audio"
	"github.com/jakelevirne/Halloween2025/internal/infrastructure/config"
	"github.com/jakelevirne/Halloween2025/internal/prop"
)

// Deps are the collaborators a Runner needs.
type Deps struct {
	Router     *prop.Router
	Dispatcher Dispatcher
	Mixer      Mixer
	Sink       Sink
	Clock      clock.Clock
	Logger     Logger

	// AudioDevice is matched against output device names.
	AudioDevice string

	// SoundDir is prepended to relative clip paths.
	SoundDir string

	// Jitter picks a delay in [0, limit). Defaults to a uniform draw.
	Jitter func(limit time.Duration) time.Duration
}

// Runner owns every prop task.
type Runner struct {
	mode    config.Mode
	arbiter *Arbiter
	tasks   []*Task
	byName  map[string]*Task
	logger  Logger
}

// NewRunner builds one task per configured prop and binds each to its
// sensor's inbox on the router. The prop set is fixed from here on.
func NewRunner(cfg config.ShowConfig, deps Deps) (*Runner, error) {
	if deps.Router == nil {
		return nil, ErrNoRouter
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = noopLogger{}
	}
	if deps.Sink == nil {
		deps.Sink = discardSink{}
	}
	if deps.Jitter == nil {
		deps.Jitter = uniformJitter
	}

	arbiter := NewArbiter(cfg.Mode, cfg.MinSoundGap())
	r := &Runner{
		mode:    cfg.Mode,
		arbiter: arbiter,
		byName:  make(map[string]*Task, len(cfg.Props)),
		logger:  deps.Logger,
	}

	for _, p := range cfg.Props {
		if len(p.Actions) > 0 && deps.Dispatcher == nil {
			return nil, fmt.Errorf("prop %s: %w", p.Name, ErrNoDispatcher)
		}
		if len(p.Sounds) > 0 && deps.Mixer == nil {
			return nil, fmt.Errorf("prop %s: %w", p.Name, ErrNoMixer)
		}

		rule, err := prop.RuleByName(p.RuleName())
		if err != nil {
			return nil, fmt.Errorf("prop %s: %w", p.Name, err)
		}
		inbox, err := deps.Router.Bind(p.Sensor)
		if err != nil {
			return nil, fmt.Errorf("prop %s: %w", p.Name, err)
		}

		plan := actuation.PlanFromConfig(p.Actions)
		settle := p.Settle()
		if settle == 0 {
			settle = cfg.DefaultSettle()
		}

		sound := audio.MixRequest{Device: deps.AudioDevice}
		for _, s := range p.Sounds {
			path := s.File
			if deps.SoundDir != "" && !filepath.IsAbs(path) {
				path = filepath.Join(deps.SoundDir, path)
			}
			sound.Clips = append(sound.Clips, audio.ClipSpec{Path: path, Channel: s.Channel})
		}

		claim := Claim{Exclusive: p.IsExclusive(), Sound: len(sound.Clips) > 0}
		t := &Task{
			name:       p.Name,
			deviceID:   p.Sensor,
			detector:   prop.NewDetector(p.Sensor, inbox, rule, p.Threshold, deps.Clock),
			inbox:      inbox,
			scheduler:  NewScheduler(p.Name, p.Cooldown(), claim, arbiter),
			plan:       plan,
			sound:      sound,
			settle:     settle,
			jitter:     p.Jitter(),
			jitterFn:   deps.Jitter,
			poll:       cfg.PollInterval(),
			dispatcher: deps.Dispatcher,
			mixer:      deps.Mixer,
			sink:       deps.Sink,
			clock:      deps.Clock,
			logger:     deps.Logger,
		}
		r.tasks = append(r.tasks, t)
		r.byName[p.Name] = t
	}

	return r, nil
}

func uniformJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return rand.N(limit)
}

// Run starts every prop task and blocks until ctx is cancelled and all
// tasks have returned.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("show starting", "mode", string(r.mode), "props", len(r.tasks))

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range r.tasks {
		g.Go(func() error {
			return t.Run(gctx)
		})
	}
	err := g.Wait()

	r.logger.Info("show stopped")
	return err
}

// Mode returns the arbitration mode.
func (r *Runner) Mode() config.Mode { return r.mode }

// Props returns the status of every prop, sorted by name.
func (r *Runner) Props() []Status {
	out := make([]Status, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Prop returns the status of one prop.
func (r *Runner) Prop(name string) (Status, bool) {
	t, ok := r.byName[name]
	if !ok {
		return Status{}, false
	}
	return t.Status(), true
}

// Task returns the task for one prop.
func (r *Runner) Task(name string) (*Task, bool) {
	t, ok := r.byName[name]
	return t, ok
}
