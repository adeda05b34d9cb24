package tween

import "time"

// Group advances a set of tweens together and drops them once finished.
type Group struct {
	tweens []*Tween
}

// NewGroup creates an empty group.
func NewGroup() *Group {
	return &Group{}
}

// Add registers a tween with the group.
func (g *Group) Add(t *Tween) {
	g.tweens = append(g.tweens, t)
}

// Update advances every tween. Finished or stopped tweens are removed.
func (g *Group) Update(now time.Time) {
	// Callbacks may add tweens while we iterate.
	current := g.tweens
	g.tweens = nil

	var keep []*Tween
	for _, t := range current {
		if t.Update(now) {
			keep = append(keep, t)
		}
	}
	g.tweens = append(keep, g.tweens...)
}

// Len returns the number of tweens in the group.
func (g *Group) Len() int {
	return len(g.tweens)
}

// RemoveAll stops and drops every tween.
func (g *Group) RemoveAll() {
	for _, t := range g.tweens {
		t.Stop()
	}
	g.tweens = nil
}
