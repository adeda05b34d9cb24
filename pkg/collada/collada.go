// Package collada parses the subset of COLLADA (.dae) documents needed to show
// an articulated model: triangle geometry, the visual scene node tree with its
// transform stacks, and the kinematics joints bound to those transforms.
package collada

import (
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/armviewer/pkg/math"
)

// COLLADA parse errors.
var (
	ErrNotCollada       = errors.New("not a COLLADA document")
	ErrNoVisualScene    = errors.New("document has no visual scene")
	ErrUnresolvedSource = errors.New("unresolved source reference")
	ErrBadIndex         = errors.New("primitive index out of range")
	ErrBadNumber        = errors.New("malformed number list")
)

// Up axis values from <asset><up_axis>.
const (
	UpAxisX = "X_UP"
	UpAxisY = "Y_UP"
	UpAxisZ = "Z_UP"
)

// Document is a parsed COLLADA file.
type Document struct {
	UpAxis    string
	UnitMeter float64

	// Geometries by id, already triangulated.
	Geometries map[string]*Geometry

	// Scene is the instantiated visual scene (or the first one declared).
	Scene *VisualScene

	// Joints in declaration order; the SID is the lookup key.
	Joints []Joint

	// Bindings connect joints to transforms in the visual scene.
	Bindings []Binding
}

// Geometry is a triangulated mesh. Positions holds three vertices per triangle.
type Geometry struct {
	ID        string
	Name      string
	Positions []math.Vec3
}

// TriangleCount returns the number of triangles in the geometry.
func (g *Geometry) TriangleCount() int {
	return len(g.Positions) / 3
}

// VisualScene is the root of a node tree.
type VisualScene struct {
	ID    string
	Name  string
	Nodes []*Node
}

// Node is a visual scene node.
type Node struct {
	ID         string
	SID        string
	Name       string
	Transforms []Transform
	Geometries []string // geometry ids from instance_geometry
	Children   []*Node
}

// LocalMatrix composes the node's transform stack in document order.
func (n *Node) LocalMatrix() math.Mat4 {
	m := math.Identity()
	for _, t := range n.Transforms {
		m = m.Mul(t.Matrix())
	}
	return m
}

// Walk visits n and all its descendants depth-first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// TransformKind identifies a transform element.
type TransformKind int

const (
	TransformMatrix TransformKind = iota
	TransformTranslate
	TransformRotate
	TransformScale
)

// String returns the element name of the transform.
func (k TransformKind) String() string {
	switch k {
	case TransformMatrix:
		return "matrix"
	case TransformTranslate:
		return "translate"
	case TransformRotate:
		return "rotate"
	case TransformScale:
		return "scale"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Transform is one entry of a node's transform stack.
// Values: matrix 16 (row-major), translate/scale 3, rotate 4 (axis + degrees).
type Transform struct {
	Kind   TransformKind
	SID    string
	Values []float32
}

// Matrix returns the transform as a matrix using its own values.
func (t Transform) Matrix() math.Mat4 {
	v := t.Values
	switch t.Kind {
	case TransformMatrix:
		if len(v) < 16 {
			return math.Identity()
		}
		var a [16]float32
		copy(a[:], v)
		return math.FromRowMajor(a)
	case TransformTranslate:
		if len(v) < 3 {
			return math.Identity()
		}
		return math.Translate(v[0], v[1], v[2])
	case TransformRotate:
		if len(v) < 4 {
			return math.Identity()
		}
		return math.RotateAxis(math.Vec3{X: v[0], Y: v[1], Z: v[2]}, float32(math.DegToRad(float64(v[3]))))
	case TransformScale:
		if len(v) < 3 {
			return math.Identity()
		}
		return math.Scale(v[0], v[1], v[2])
	}
	return math.Identity()
}

// Axis returns the rotation axis of a rotate transform, or the direction of a
// translate transform.
func (t Transform) Axis() math.Vec3 {
	if len(t.Values) < 3 {
		return math.Vec3{}
	}
	return math.Vec3{X: t.Values[0], Y: t.Values[1], Z: t.Values[2]}
}

// JointType is the kind of degree of freedom.
type JointType int

const (
	Revolute JointType = iota
	Prismatic
)

// String returns the COLLADA element name for the joint type.
func (j JointType) String() string {
	if j == Prismatic {
		return "prismatic"
	}
	return "revolute"
}

// Joint is a kinematics joint with its limits.
// Revolute values are degrees; prismatic values are model units.
type Joint struct {
	SID            string
	ID             string
	Name           string
	Type           JointType
	Axis           math.Vec3
	Min            float64
	Max            float64
	Static         bool
	ZeroPosition   float64
	MiddlePosition float64
}

// Key returns the name the joint is addressed by.
func (j Joint) Key() string {
	if j.SID != "" {
		return j.SID
	}
	if j.ID != "" {
		return j.ID
	}
	return j.Name
}

// Binding ties a joint to a transform of a visual scene node.
type Binding struct {
	Joint        string // Joint.Key()
	Node         string // node id (or sid when no id matched)
	TransformSID string
}

// JointMatrix returns the matrix of a bound transform driven by a joint value.
// Revolute joints rotate about the joint axis by value degrees; prismatic
// joints translate along it by value units. When the joint has no axis the
// transform's own axis is used.
func JointMatrix(t Transform, j Joint, value float64) math.Mat4 {
	axis := j.Axis
	if axis == (math.Vec3{}) {
		axis = t.Axis()
	}
	switch j.Type {
	case Prismatic:
		d := axis.Scale(float32(value))
		return math.Translate(d.X, d.Y, d.Z)
	default:
		return math.RotateAxis(axis, float32(math.DegToRad(value)))
	}
}

// FindNode returns the node whose id (or, failing that, sid) matches ref.
func (d *Document) FindNode(ref string) *Node {
	if d.Scene == nil {
		return nil
	}
	var byID, bySID *Node
	for _, root := range d.Scene.Nodes {
		root.Walk(func(n *Node) {
			if byID == nil && n.ID == ref {
				byID = n
			}
			if bySID == nil && n.SID == ref {
				bySID = n
			}
		})
	}
	if byID != nil {
		return byID
	}
	return bySID
}

// Joint returns the joint with the given key.
func (d *Document) Joint(key string) (Joint, bool) {
	for _, j := range d.Joints {
		if j.Key() == key {
			return j, true
		}
	}
	return Joint{}, false
}

// RootMatrix converts the document's coordinate frame to Y-up.
func (d *Document) RootMatrix() math.Mat4 {
	switch d.UpAxis {
	case UpAxisZ:
		return math.RotateX(-float32(math.DegToRad(90)))
	case UpAxisX:
		return math.RotateAxis(math.Vec3{Z: 1}, float32(math.DegToRad(90)))
	}
	return math.Identity()
}

// ParseFile reads and parses a COLLADA file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}
