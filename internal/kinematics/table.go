// Package kinematics holds the joint-state table of an articulated model.
//
// The table is the only place joint values live. Animation code writes through
// Set, and renderers read values back when posing the model, so neither side
// depends on the other's object shapes.
package kinematics

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/armviewer/pkg/collada"
)

// Table errors.
var (
	ErrUnknownJoint = errors.New("unknown joint")
	ErrStaticJoint  = errors.New("joint is static")
	ErrOutOfRange   = errors.New("joint value out of limits")
	ErrDuplicate    = errors.New("duplicate joint name")
)

// Joint is one row of the table.
type Joint struct {
	Name         string
	Label        string // Human readable name from the document
	Type         collada.JointType
	Min, Max     float64
	Static       bool
	ZeroPosition float64
	Value        float64
}

// Clamp limits v to the joint's range.
func (j Joint) Clamp(v float64) float64 {
	if v < j.Min {
		return j.Min
	}
	if v > j.Max {
		return j.Max
	}
	return v
}

// InRange reports whether v lies within the inclusive limits.
func (j Joint) InRange(v float64) bool {
	return v >= j.Min && v <= j.Max
}

// Table maps joint names to their state. It is not safe for concurrent use;
// callers serialize access on the render goroutine.
type Table struct {
	joints map[string]*Joint
	names  []string // sorted
	writes int
}

// NewTable builds a table. Every joint starts at its zero position.
func NewTable(joints []Joint) (*Table, error) {
	t := &Table{joints: make(map[string]*Joint, len(joints))}
	for _, j := range joints {
		if _, dup := t.joints[j.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, j.Name)
		}
		row := j
		row.Value = j.ZeroPosition
		t.joints[j.Name] = &row
		t.names = append(t.names, j.Name)
	}
	sort.Strings(t.names)
	return t, nil
}

// FromDocument builds a table from the joints of a COLLADA document.
func FromDocument(doc *collada.Document) (*Table, error) {
	joints := make([]Joint, 0, len(doc.Joints))
	for _, dj := range doc.Joints {
		joints = append(joints, Joint{
			Name:         dj.Key(),
			Label:        dj.Name,
			Type:         dj.Type,
			Min:          dj.Min,
			Max:          dj.Max,
			Static:       dj.Static,
			ZeroPosition: dj.ZeroPosition,
		})
	}
	return NewTable(joints)
}

// Set is the single mutation point for joint values.
func (t *Table) Set(name string, value float64) error {
	j, ok := t.joints[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJoint, name)
	}
	if j.Static {
		return fmt.Errorf("%w: %s", ErrStaticJoint, name)
	}
	if !j.InRange(value) {
		return fmt.Errorf("%w: %s=%g not in [%g, %g]", ErrOutOfRange, name, value, j.Min, j.Max)
	}
	j.Value = value
	t.writes++
	return nil
}

// Value returns the current value of a joint.
func (t *Table) Value(name string) (float64, bool) {
	j, ok := t.joints[name]
	if !ok {
		return 0, false
	}
	return j.Value, true
}

// Joint returns a copy of a joint row.
func (t *Table) Joint(name string) (Joint, bool) {
	j, ok := t.joints[name]
	if !ok {
		return Joint{}, false
	}
	return *j, true
}

// Names returns all joint names in sorted order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Movable returns the names of non-static joints in sorted order.
func (t *Table) Movable() []string {
	var out []string
	for _, n := range t.names {
		if !t.joints[n].Static {
			out = append(out, n)
		}
	}
	return out
}

// Snapshot returns the current value of every joint.
func (t *Table) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(t.joints))
	for n, j := range t.joints {
		out[n] = j.Value
	}
	return out
}

// Reset moves every movable joint back to its zero position. Zero positions
// outside the limits are clamped.
func (t *Table) Reset() {
	for _, n := range t.Movable() {
		j := t.joints[n]
		j.Value = j.Clamp(j.ZeroPosition)
		t.writes++
	}
}

// Len returns the number of joints.
func (t *Table) Len() int {
	return len(t.names)
}

// Writes returns how many successful writes the table has accepted.
func (t *Table) Writes() int {
	return t.writes
}
