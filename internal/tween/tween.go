package tween

import (
	"time"

	"github.com/tanema/gween"
)

// Tween interpolates a set of named values from a start to a target, one
// gween tween per targeted name. The remaining start values are passed
// through unchanged.
type Tween struct {
	from     map[string]float64
	to       map[string]float64
	values   map[string]float64
	duration time.Duration
	easing   EasingFunc
	channels map[string]*gween.Tween

	onUpdate   func(values map[string]float64)
	onComplete func()

	start   time.Time
	running bool
	done    bool
}

// New creates a tween starting from a copy of from.
func New(from map[string]float64) *Tween {
	t := &Tween{
		from:   make(map[string]float64, len(from)),
		values: make(map[string]float64, len(from)),
		to:     map[string]float64{},
		easing: Linear,
	}
	for k, v := range from {
		t.from[k] = v
		t.values[k] = v
	}
	return t
}

// To sets the target values and the duration.
func (t *Tween) To(target map[string]float64, d time.Duration) *Tween {
	t.to = make(map[string]float64, len(target))
	for k, v := range target {
		t.to[k] = v
		if _, ok := t.from[k]; !ok {
			t.from[k] = 0
			t.values[k] = 0
		}
	}
	t.duration = d
	return t
}

// Easing sets the easing curve.
func (t *Tween) Easing(fn EasingFunc) *Tween {
	if fn != nil {
		t.easing = fn
	}
	return t
}

// OnUpdate registers a callback invoked with the interpolated values after
// every update. The map is reused between calls.
func (t *Tween) OnUpdate(fn func(values map[string]float64)) *Tween {
	t.onUpdate = fn
	return t
}

// OnComplete registers a callback invoked once when the tween finishes.
func (t *Tween) OnComplete(fn func()) *Tween {
	t.onComplete = fn
	return t
}

// Start begins the tween at now.
func (t *Tween) Start(now time.Time) *Tween {
	secs := float32(t.duration.Seconds())
	t.channels = make(map[string]*gween.Tween, len(t.to))
	for k, end := range t.to {
		t.channels[k] = gween.New(float32(t.from[k]), float32(end), secs, t.easing)
	}
	t.start = now
	t.running = true
	t.done = false
	return t
}

// Stop halts the tween without completing it.
func (t *Tween) Stop() {
	t.running = false
}

// Running reports whether the tween is started and not yet finished.
func (t *Tween) Running() bool {
	return t.running
}

// Done reports whether the tween reached its target.
func (t *Tween) Done() bool {
	return t.done
}

// Duration returns the tween duration.
func (t *Tween) Duration() time.Duration {
	return t.duration
}

// Target returns a copy of the target values.
func (t *Tween) Target() map[string]float64 {
	out := make(map[string]float64, len(t.to))
	for k, v := range t.to {
		out[k] = v
	}
	return out
}

// Update advances the tween to now. It returns false once the tween has
// finished or was stopped.
func (t *Tween) Update(now time.Time) bool {
	if !t.running {
		return false
	}
	if now.Before(t.start) {
		return true
	}

	// Channels are positioned at the elapsed time rather than stepped by
	// deltas, so a late frame cannot drift the schedule.
	finished := !now.Before(t.start.Add(t.duration))
	if finished {
		for k, end := range t.to {
			t.values[k] = end
		}
	} else {
		elapsed := float32(now.Sub(t.start).Seconds())
		for k, ch := range t.channels {
			v, _ := ch.Set(elapsed)
			t.values[k] = float64(v)
		}
	}
	if t.onUpdate != nil {
		t.onUpdate(t.values)
	}

	if !finished {
		return true
	}
	t.running = false
	t.done = true
	if t.onComplete != nil {
		t.onComplete()
	}
	return false
}
