package scene

import (
	"fmt"
	"sort"

	"github.com/Faultbox/armviewer/internal/engine/model"
	"github.com/Faultbox/armviewer/pkg/collada"
	"github.com/Faultbox/armviewer/pkg/math"
)

// JointValues is read by Pose. *kinematics.Table satisfies it.
type JointValues interface {
	Value(name string) (float64, bool)
}

// DrawItem is one mesh placed in the world.
type DrawItem struct {
	Node     string
	Geometry string
	Mesh     *model.Mesh
	World    math.Mat4
}

// Model is an articulated COLLADA model ready to be posed.
type Model struct {
	doc    *collada.Document
	root   math.Mat4
	meshes map[string]*model.Mesh

	// bound[node][transform sid] is the joint driving that transform.
	bound   map[*collada.Node]map[string]collada.Joint
	unbound []collada.Binding
}

// NewModel builds meshes and resolves joint bindings for doc. The document
// frame is converted to Y-up and scaled uniformly by scale.
func NewModel(doc *collada.Document, scale float32, opts model.BuildOptions) (*Model, error) {
	if doc == nil || doc.Scene == nil {
		return nil, collada.ErrNoVisualScene
	}
	if scale == 0 {
		scale = 1
	}

	m := &Model{
		doc:    doc,
		root:   math.Scale(scale, scale, scale).Mul(doc.RootMatrix()),
		meshes: make(map[string]*model.Mesh, len(doc.Geometries)),
		bound:  make(map[*collada.Node]map[string]collada.Joint),
	}
	for id, g := range doc.Geometries {
		if mesh := model.BuildMesh(g, opts); mesh != nil {
			m.meshes[id] = mesh
		}
	}

	for _, b := range doc.Bindings {
		node := doc.FindNode(b.Node)
		joint, ok := doc.Joint(b.Joint)
		if node == nil || !ok || !hasTransform(node, b.TransformSID) {
			m.unbound = append(m.unbound, b)
			continue
		}
		if m.bound[node] == nil {
			m.bound[node] = map[string]collada.Joint{}
		}
		if _, dup := m.bound[node][b.TransformSID]; dup {
			return nil, fmt.Errorf("transform %s/%s bound twice", b.Node, b.TransformSID)
		}
		m.bound[node][b.TransformSID] = joint
	}
	return m, nil
}

func hasTransform(n *collada.Node, sid string) bool {
	for _, t := range n.Transforms {
		if t.SID == sid {
			return true
		}
	}
	return false
}

// Document returns the source document.
func (m *Model) Document() *collada.Document {
	return m.doc
}

// Mesh returns the mesh built for a geometry id.
func (m *Model) Mesh(id string) (*model.Mesh, bool) {
	mesh, ok := m.meshes[id]
	return mesh, ok
}

// MeshIDs returns the geometry ids that produced a mesh, sorted.
func (m *Model) MeshIDs() []string {
	ids := make([]string, 0, len(m.meshes))
	for id := range m.meshes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BoundJoints returns the keys of joints that drive at least one transform.
func (m *Model) BoundJoints() []string {
	seen := map[string]bool{}
	var keys []string
	for _, byTransform := range m.bound {
		for _, j := range byTransform {
			if !seen[j.Key()] {
				seen[j.Key()] = true
				keys = append(keys, j.Key())
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// Unbound returns bindings whose node, transform or joint could not be found.
func (m *Model) Unbound() []collada.Binding {
	return m.unbound
}

// Pose walks the node tree and returns a draw item per geometry instance.
// Bound transforms take the joint's current value; joints missing from
// values sit at their zero position.
func (m *Model) Pose(values JointValues) []DrawItem {
	var items []DrawItem
	for _, n := range m.doc.Scene.Nodes {
		items = m.pose(n, m.root, values, items)
	}
	return items
}

func (m *Model) pose(n *collada.Node, parent math.Mat4, values JointValues, items []DrawItem) []DrawItem {
	world := parent.Mul(m.localMatrix(n, values))
	for _, gid := range n.Geometries {
		mesh, ok := m.meshes[gid]
		if !ok {
			continue
		}
		items = append(items, DrawItem{
			Node:     n.ID,
			Geometry: gid,
			Mesh:     mesh,
			World:    world,
		})
	}
	for _, c := range n.Children {
		items = m.pose(c, world, values, items)
	}
	return items
}

func (m *Model) localMatrix(n *collada.Node, values JointValues) math.Mat4 {
	byTransform := m.bound[n]
	if byTransform == nil {
		return n.LocalMatrix()
	}
	local := math.Identity()
	for _, t := range n.Transforms {
		j, ok := byTransform[t.SID]
		if !ok || t.SID == "" {
			local = local.Mul(t.Matrix())
			continue
		}
		v := j.ZeroPosition
		if values != nil {
			if cur, ok := values.Value(j.Key()); ok {
				v = cur
			}
		}
		local = local.Mul(collada.JointMatrix(t, j, v))
	}
	return local
}
