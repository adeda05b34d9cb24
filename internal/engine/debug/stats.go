// Package debug provides frame statistics and capture utilities.
package debug

import (
	"fmt"
	"runtime"
	"time"
)

// FrameStats tracks frame timing and render counters. It replaces an on
// screen overlay: the summary goes to the window title.
type FrameStats struct {
	// Frame timing
	frameCount    int
	fps           float64
	frameTime     float64 // ms
	fpsUpdateTime float64 // seconds since last FPS update
	frameAccum    int
	last          time.Time

	// Memory stats
	memStats      runtime.MemStats
	memUpdateTime float64

	// Render stats, set by the renderer each frame
	DrawCalls int
	Triangles int

	Enabled bool
}

// NewFrameStats creates enabled frame statistics.
func NewFrameStats() *FrameStats {
	return &FrameStats{Enabled: true}
}

// Tick records a frame presented at now.
func (s *FrameStats) Tick(now time.Time) {
	if s.last.IsZero() {
		s.last = now
		s.frameCount++
		return
	}
	s.Update(float64(now.Sub(s.last)) / float64(time.Millisecond))
	s.last = now
}

// Update advances the statistics by a frame time in milliseconds.
func (s *FrameStats) Update(deltaMs float64) {
	s.frameCount++
	s.frameTime = deltaMs
	s.frameAccum++
	s.fpsUpdateTime += deltaMs / 1000.0

	// Update FPS every 0.5 seconds
	if s.fpsUpdateTime >= 0.5 {
		s.fps = float64(s.frameAccum) / s.fpsUpdateTime
		s.frameAccum = 0
		s.fpsUpdateTime = 0
	}

	// Update memory stats every 2 seconds
	s.memUpdateTime += deltaMs / 1000.0
	if s.memUpdateTime >= 2.0 {
		runtime.ReadMemStats(&s.memStats)
		s.memUpdateTime = 0
	}
}

// FPS returns the frames per second measured over the last window.
func (s *FrameStats) FPS() float64 {
	return s.fps
}

// FrameTime returns the duration of the last frame in milliseconds.
func (s *FrameStats) FrameTime() float64 {
	return s.frameTime
}

// Frames returns the total number of frames recorded.
func (s *FrameStats) Frames() int {
	return s.frameCount
}

// HeapMB returns the heap in use at the last memory sample.
func (s *FrameStats) HeapMB() float64 {
	return float64(s.memStats.HeapAlloc) / (1024 * 1024)
}

// Title formats the statistics after a base window title. When disabled the
// base is returned unchanged.
func (s *FrameStats) Title(base string) string {
	if !s.Enabled {
		return base
	}
	return fmt.Sprintf("%s | %.0f FPS (%.1f ms) | %d draws, %d tris | %.1f MB",
		base, s.fps, s.frameTime, s.DrawCalls, s.Triangles, s.HeapMB())
}
