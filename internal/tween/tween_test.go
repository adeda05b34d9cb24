package tween

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestEasingEndpoints(t *testing.T) {
	for name, fn := range easings {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 0.0, Progress(fn, 0), 1e-6)
			assert.InDelta(t, 1.0, Progress(fn, 1), 1e-6)
		})
	}
}

func TestQuadraticOutDecelerates(t *testing.T) {
	// Ease-out covers more ground in the first half than the second.
	first := Progress(QuadraticOut, 0.5) - Progress(QuadraticOut, 0)
	second := Progress(QuadraticOut, 1) - Progress(QuadraticOut, 0.5)
	assert.Greater(t, first, second)
	assert.InDelta(t, 0.75, Progress(QuadraticOut, 0.5), 1e-6)
}

func TestQuadraticCurves(t *testing.T) {
	tests := []struct {
		name string
		fn   EasingFunc
		k    float64
		want float64
	}{
		{"linear", Linear, 0.3, 0.3},
		{"in", QuadraticIn, 0.5, 0.25},
		{"in-out midpoint", QuadraticInOut, 0.5, 0.5},
		{"in-out quarter", QuadraticInOut, 0.25, 0.125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Progress(tt.fn, tt.k), 1e-6)
		})
	}
}

func TestByName(t *testing.T) {
	fn, err := ByName("quadratic-out")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, Progress(fn, 0.5), 1e-6)

	_, err = ByName("bounce")
	assert.Error(t, err)

	assert.Contains(t, Names(), "bounce-out")
	assert.Contains(t, Names(), "quadratic-in-out")
}

func TestTweenInterpolates(t *testing.T) {
	var seen map[string]float64
	tw := New(map[string]float64{"a": 0, "b": 10, "keep": 5}).
		To(map[string]float64{"a": 100, "b": -10}, time.Second).
		OnUpdate(func(v map[string]float64) { seen = v })
	tw.Start(t0)

	require.True(t, tw.Update(t0.Add(500*time.Millisecond)))
	assert.InDelta(t, 50.0, seen["a"], 1e-4)
	assert.InDelta(t, 0.0, seen["b"], 1e-4)
	assert.Equal(t, 5.0, seen["keep"], "names outside the target pass through")
	assert.True(t, tw.Running())
}

func TestTweenEasingApplied(t *testing.T) {
	var got float64
	tw := New(map[string]float64{"x": 0}).
		To(map[string]float64{"x": 100}, time.Second).
		Easing(QuadraticOut).
		OnUpdate(func(v map[string]float64) { got = v["x"] }).
		Start(t0)

	tw.Update(t0.Add(500 * time.Millisecond))
	assert.InDelta(t, 75.0, got, 1e-4)
}

func TestTweenPositionsByElapsedTime(t *testing.T) {
	var got float64
	tw := New(map[string]float64{"x": 0}).
		To(map[string]float64{"x": 100}, time.Second).
		OnUpdate(func(v map[string]float64) { got = v["x"] }).
		Start(t0)

	// A skipped frame lands where a steady stream of frames would.
	tw.Update(t0.Add(100 * time.Millisecond))
	tw.Update(t0.Add(700 * time.Millisecond))
	assert.InDelta(t, 70.0, got, 1e-4)
}

func TestTweenEmptyTargetLastsDuration(t *testing.T) {
	completed := false
	tw := New(nil).To(nil, time.Second).OnComplete(func() { completed = true }).Start(t0)

	assert.True(t, tw.Update(t0.Add(500*time.Millisecond)))
	assert.False(t, completed)
	assert.False(t, tw.Update(t0.Add(time.Second)))
	assert.True(t, completed)
}

func TestTweenCompletes(t *testing.T) {
	completed := 0
	var got float64
	tw := New(map[string]float64{"x": 1}).
		To(map[string]float64{"x": 3}, time.Second).
		OnUpdate(func(v map[string]float64) { got = v["x"] }).
		OnComplete(func() { completed++ }).
		Start(t0)

	assert.False(t, tw.Update(t0.Add(2*time.Second)), "overshoot finishes the tween")
	assert.Equal(t, 3.0, got, "final update lands exactly on the target")
	assert.Equal(t, 1, completed)
	assert.True(t, tw.Done())

	assert.False(t, tw.Update(t0.Add(3*time.Second)))
	assert.Equal(t, 1, completed, "completion fires once")
}

func TestTweenBeforeStart(t *testing.T) {
	updates := 0
	tw := New(map[string]float64{"x": 0}).
		To(map[string]float64{"x": 1}, time.Second).
		OnUpdate(func(map[string]float64) { updates++ }).
		Start(t0)

	assert.True(t, tw.Update(t0.Add(-time.Millisecond)))
	assert.Equal(t, 0, updates)
}

func TestTweenZeroDuration(t *testing.T) {
	var got float64
	tw := New(nil).
		To(map[string]float64{"x": 4}, 0).
		OnUpdate(func(v map[string]float64) { got = v["x"] }).
		Start(t0)

	assert.False(t, tw.Update(t0))
	assert.Equal(t, 4.0, got, "missing start values begin at zero")
}

func TestTweenNotStarted(t *testing.T) {
	tw := New(map[string]float64{"x": 0}).To(map[string]float64{"x": 1}, time.Second)
	assert.False(t, tw.Update(t0))
	assert.False(t, tw.Running())
}

func TestTweenStop(t *testing.T) {
	completed := false
	tw := New(map[string]float64{"x": 0}).
		To(map[string]float64{"x": 1}, time.Second).
		OnComplete(func() { completed = true }).
		Start(t0)

	tw.Stop()
	assert.False(t, tw.Update(t0.Add(2*time.Second)))
	assert.False(t, completed)
	assert.False(t, tw.Done())
}

func TestTweenCopiesInputs(t *testing.T) {
	from := map[string]float64{"x": 0}
	target := map[string]float64{"x": 10}
	tw := New(from).To(target, time.Second)

	from["x"] = 99
	target["x"] = -99
	assert.Equal(t, map[string]float64{"x": 10}, tw.Target())
	assert.Equal(t, time.Second, tw.Duration())
}

func TestGroup(t *testing.T) {
	g := NewGroup()
	short := New(map[string]float64{"x": 0}).To(map[string]float64{"x": 1}, 100*time.Millisecond).Start(t0)
	long := New(map[string]float64{"x": 0}).To(map[string]float64{"x": 1}, time.Second).Start(t0)
	g.Add(short)
	g.Add(long)
	require.Equal(t, 2, g.Len())

	g.Update(t0.Add(200 * time.Millisecond))
	assert.Equal(t, 1, g.Len(), "finished tweens are dropped")

	g.RemoveAll()
	assert.Equal(t, 0, g.Len())
	assert.False(t, long.Running())
}

func TestGroupAddDuringUpdate(t *testing.T) {
	g := NewGroup()
	var chained *Tween
	first := New(nil).To(map[string]float64{"x": 1}, 0).Start(t0)
	first.OnComplete(func() {
		chained = New(nil).To(map[string]float64{"y": 1}, time.Second).Start(t0)
		g.Add(chained)
	})
	g.Add(first)

	g.Update(t0)
	require.NotNil(t, chained)
	assert.Equal(t, 1, g.Len())
}
