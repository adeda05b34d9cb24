// Package animator drives the joints of a model towards random targets.
//
// Each cycle plans a random target for every movable joint, tweens from the
// current values to those targets, and re-arms itself once the tween's
// duration has elapsed. The chain keeps running until its Handle is stopped.
package animator

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/armviewer/internal/kinematics"
	"github.com/Faultbox/armviewer/internal/schedule"
	"github.com/Faultbox/armviewer/internal/tween"
)

// Config bounds the random cycle length and selects the easing.
type Config struct {
	MinDuration time.Duration
	MaxDuration time.Duration
	Easing      tween.EasingFunc
}

// DefaultConfig returns cycles of 1 to 5 seconds with quadratic ease-out.
func DefaultConfig() Config {
	return Config{
		MinDuration: 1000 * time.Millisecond,
		MaxDuration: 5000 * time.Millisecond,
		Easing:      tween.QuadraticOut,
	}
}

// Plan is one cycle's worth of targets.
type Plan struct {
	From     map[string]float64
	Targets  map[string]float64
	Duration time.Duration
}

// Animator owns the tween target set for its table.
type Animator struct {
	cfg    Config
	table  *kinematics.Table
	tweens *tween.Group
	sched  *schedule.Scheduler
	rng    *rand.Rand
	log    *zap.Logger

	cycles int
}

// New creates an animator. A nil logger disables logging.
func New(cfg Config, table *kinematics.Table, tweens *tween.Group, sched *schedule.Scheduler, rng *rand.Rand, log *zap.Logger) *Animator {
	if cfg.Easing == nil {
		cfg.Easing = tween.QuadraticOut
	}
	if cfg.MaxDuration < cfg.MinDuration {
		cfg.MaxDuration = cfg.MinDuration
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Animator{
		cfg:    cfg,
		table:  table,
		tweens: tweens,
		sched:  sched,
		rng:    rng,
		log:    log,
	}
}

// NewRand returns a generator for seed, or a time-seeded one when seed is 0.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Plan draws targets for every movable joint and a cycle duration. Static
// joints are never part of a plan.
func (a *Animator) Plan() Plan {
	p := Plan{
		From:    map[string]float64{},
		Targets: map[string]float64{},
	}
	for _, name := range a.table.Movable() {
		j, _ := a.table.Joint(name)
		p.From[name] = j.Value
		p.Targets[name] = a.randomTarget(j)
	}
	p.Duration = a.randomDuration()
	return p
}

// randomTarget picks min plus a uniform whole number of units, staying
// within the joint's inclusive limits. Integer limits give integer targets.
func (a *Animator) randomTarget(j kinematics.Joint) float64 {
	if j.Max <= j.Min {
		return j.Min
	}
	steps := int64(math.Floor(j.Max-j.Min)) + 1
	return j.Min + float64(a.rng.Int64N(steps))
}

// randomDuration picks a whole number of milliseconds in [min, max].
func (a *Animator) randomDuration() time.Duration {
	lo := a.cfg.MinDuration.Milliseconds()
	hi := a.cfg.MaxDuration.Milliseconds()
	if hi <= lo {
		return time.Duration(lo) * time.Millisecond
	}
	return time.Duration(lo+a.rng.Int64N(hi-lo+1)) * time.Millisecond
}

// Cycles returns how many cycles have been started.
func (a *Animator) Cycles() int {
	return a.cycles
}

// Start runs the first cycle now and returns the handle of the chain.
func (a *Animator) Start() *Handle {
	h := &Handle{a: a}
	h.cycle()
	return h
}

// Handle controls a running animation chain.
type Handle struct {
	a       *Animator
	current *tween.Tween
	rearm   *schedule.Timer
	stopped bool
}

func (h *Handle) cycle() {
	if h.stopped {
		return
	}
	a := h.a
	plan := a.Plan()
	a.cycles++

	if h.current != nil {
		h.current.Stop()
	}
	h.current = tween.New(plan.From).
		To(plan.Targets, plan.Duration).
		Easing(a.cfg.Easing).
		OnUpdate(func(values map[string]float64) {
			for name := range plan.Targets {
				a.write(name, values[name])
			}
		}).
		Start(a.sched.Now())
	a.tweens.Add(h.current)

	a.log.Debug("cycle planned",
		zap.Int("cycle", a.cycles),
		zap.Int("joints", len(plan.Targets)),
		zap.Duration("duration", plan.Duration),
	)

	h.rearm = a.sched.After(plan.Duration, h.cycle)
}

// write pushes one interpolated value into the table. Interpolated values
// stay within limits because both ends do; a rejection means the table
// changed underneath the tween and is only logged.
func (a *Animator) write(name string, value float64) {
	err := a.table.Set(name, value)
	if err == nil {
		return
	}
	if errors.Is(err, kinematics.ErrOutOfRange) {
		j, _ := a.table.Joint(name)
		err = a.table.Set(name, j.Clamp(value))
	}
	if err != nil {
		a.log.Warn("joint write rejected", zap.String("joint", name), zap.Error(err))
	}
}

// Stop cancels the pending re-arm and halts the running tween. Further
// cycles never start. Safe to call more than once.
func (h *Handle) Stop() {
	if h.stopped {
		return
	}
	h.stopped = true
	h.rearm.Stop()
	if h.current != nil {
		h.current.Stop()
	}
}

// Stopped reports whether Stop was called.
func (h *Handle) Stopped() bool {
	return h.stopped
}

// Current returns the tween of the running cycle.
func (h *Handle) Current() *tween.Tween {
	return h.current
}
