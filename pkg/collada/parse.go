package collada

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

type xmlDocument struct {
	XMLName          xml.Name             `xml:"COLLADA"`
	Asset            xmlAsset             `xml:"asset"`
	Geometries       []xmlGeometry        `xml:"library_geometries>geometry"`
	VisualScenes     []xmlVisualScene     `xml:"library_visual_scenes>visual_scene"`
	Joints           []xmlJoint           `xml:"library_joints>joint"`
	KinematicsModels []xmlKinematicsModel `xml:"library_kinematics_models>kinematics_model"`
	Scene            xmlScene             `xml:"scene"`
}

type xmlAsset struct {
	UpAxis string  `xml:"up_axis"`
	Unit   xmlUnit `xml:"unit"`
}

type xmlUnit struct {
	Meter string `xml:"meter,attr"`
}

type xmlGeometry struct {
	ID   string   `xml:"id,attr"`
	Name string   `xml:"name,attr"`
	Mesh *xmlMesh `xml:"mesh"`
}

type xmlMesh struct {
	Sources   []xmlSource    `xml:"source"`
	Vertices  xmlVertices    `xml:"vertices"`
	Triangles []xmlPrimitive `xml:"triangles"`
	Polylists []xmlPrimitive `xml:"polylist"`
}

type xmlSource struct {
	ID         string      `xml:"id,attr"`
	FloatArray xmlArray    `xml:"float_array"`
	Accessor   xmlAccessor `xml:"technique_common>accessor"`
}

type xmlArray struct {
	Count int    `xml:"count,attr"`
	Data  string `xml:",chardata"`
}

type xmlAccessor struct {
	Count  int `xml:"count,attr"`
	Stride int `xml:"stride,attr"`
}

type xmlVertices struct {
	ID     string     `xml:"id,attr"`
	Inputs []xmlInput `xml:"input"`
}

type xmlInput struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   int    `xml:"offset,attr"`
}

type xmlPrimitive struct {
	Count  int        `xml:"count,attr"`
	Inputs []xmlInput `xml:"input"`
	VCount string     `xml:"vcount"`
	P      string     `xml:"p"`
}

type xmlVisualScene struct {
	ID    string    `xml:"id,attr"`
	Name  string    `xml:"name,attr"`
	Nodes []xmlNode `xml:"node"`
}

// xmlNode needs a custom decoder: transform order matters and encoding/xml
// splits differently named siblings into separate slices.
type xmlNode struct {
	ID         string
	SID        string
	Name       string
	Transforms []Transform
	Geometries []string
	Children   []xmlNode
}

type xmlValue struct {
	SID  string `xml:"sid,attr"`
	Data string `xml:",chardata"`
}

type xmlInstance struct {
	URL string `xml:"url,attr"`
}

func (n *xmlNode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "id":
			n.ID = a.Value
		case "sid":
			n.SID = a.Value
		case "name":
			n.Name = a.Value
		}
	}

	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := n.decodeChild(d, t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

var transformKinds = map[string]TransformKind{
	"matrix":    TransformMatrix,
	"translate": TransformTranslate,
	"rotate":    TransformRotate,
	"scale":     TransformScale,
}

func (n *xmlNode) decodeChild(d *xml.Decoder, t xml.StartElement) error {
	switch t.Name.Local {
	case "matrix", "translate", "rotate", "scale":
		var v xmlValue
		if err := d.DecodeElement(&v, &t); err != nil {
			return err
		}
		values, err := parseFloats(v.Data)
		if err != nil {
			return fmt.Errorf("node %q %s: %w", n.ID, t.Name.Local, err)
		}
		n.Transforms = append(n.Transforms, Transform{
			Kind:   transformKinds[t.Name.Local],
			SID:    v.SID,
			Values: values,
		})
	case "instance_geometry":
		var inst xmlInstance
		if err := d.DecodeElement(&inst, &t); err != nil {
			return err
		}
		n.Geometries = append(n.Geometries, strings.TrimPrefix(inst.URL, "#"))
	case "node":
		var child xmlNode
		if err := d.DecodeElement(&child, &t); err != nil {
			return err
		}
		n.Children = append(n.Children, child)
	default:
		return d.Skip()
	}
	return nil
}

type xmlJoint struct {
	ID        string        `xml:"id,attr"`
	SID       string        `xml:"sid,attr"`
	Name      string        `xml:"name,attr"`
	Revolute  []xmlJointDOF `xml:"revolute"`
	Prismatic []xmlJointDOF `xml:"prismatic"`
}

type xmlJointDOF struct {
	SID    string     `xml:"sid,attr"`
	Axis   string     `xml:"axis"`
	Limits *xmlLimits `xml:"limits"`
}

type xmlLimits struct {
	Min xmlLimitValue `xml:"min"`
	Max xmlLimitValue `xml:"max"`
}

type xmlLimitValue struct {
	Data  string `xml:",chardata"`
	Float string `xml:"float"`
}

func (v xmlLimitValue) text() string {
	if s := strings.TrimSpace(v.Data); s != "" {
		return s
	}
	return strings.TrimSpace(v.Float)
}

type xmlKinematicsModel struct {
	ID             string             `xml:"id,attr"`
	Name           string             `xml:"name,attr"`
	Joints         []xmlJoint         `xml:"technique_common>joint"`
	InstanceJoints []xmlInstanceJoint `xml:"technique_common>instance_joint"`
}

type xmlInstanceJoint struct {
	URL string `xml:"url,attr"`
	SID string `xml:"sid,attr"`
}

type xmlScene struct {
	VisualScene      xmlInstance                  `xml:"instance_visual_scene"`
	KinematicsScenes []xmlInstanceKinematicsScene `xml:"instance_kinematics_scene"`
}

type xmlInstanceKinematicsScene struct {
	BindJointAxes []xmlBindJointAxis `xml:"bind_joint_axis"`
}

type xmlBindJointAxis struct {
	Target string `xml:"target,attr"`
	Param  string `xml:"axis>param"`
	SIDRef string `xml:"axis>SIDREF"`
}

// Parse parses a COLLADA document from memory.
func Parse(data []byte) (*Document, error) {
	var raw xmlDocument
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		if strings.Contains(err.Error(), "expected element type <COLLADA>") {
			return nil, ErrNotCollada
		}
		return nil, fmt.Errorf("decoding xml: %w", err)
	}

	doc := &Document{
		UpAxis:     strings.TrimSpace(raw.Asset.UpAxis),
		UnitMeter:  1,
		Geometries: make(map[string]*Geometry, len(raw.Geometries)),
	}
	if doc.UpAxis == "" {
		doc.UpAxis = UpAxisY
	}
	if m := strings.TrimSpace(raw.Asset.Unit.Meter); m != "" {
		meter, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil, fmt.Errorf("unit meter %q: %w", m, ErrBadNumber)
		}
		doc.UnitMeter = meter
	}

	for i := range raw.Geometries {
		g, err := buildGeometry(&raw.Geometries[i])
		if err != nil {
			return nil, fmt.Errorf("geometry %q: %w", raw.Geometries[i].ID, err)
		}
		doc.Geometries[g.ID] = g
	}

	scene, err := pickVisualScene(&raw)
	if err != nil {
		return nil, err
	}
	doc.Scene = scene

	joints, err := collectJoints(&raw)
	if err != nil {
		return nil, err
	}
	doc.Joints = joints
	doc.Bindings = collectBindings(&raw, doc)

	return doc, nil
}

func pickVisualScene(raw *xmlDocument) (*VisualScene, error) {
	if len(raw.VisualScenes) == 0 {
		return nil, ErrNoVisualScene
	}
	chosen := &raw.VisualScenes[0]
	want := strings.TrimPrefix(raw.Scene.VisualScene.URL, "#")
	for i := range raw.VisualScenes {
		if raw.VisualScenes[i].ID == want {
			chosen = &raw.VisualScenes[i]
			break
		}
	}

	vs := &VisualScene{ID: chosen.ID, Name: chosen.Name}
	for i := range chosen.Nodes {
		vs.Nodes = append(vs.Nodes, convertNode(&chosen.Nodes[i]))
	}
	return vs, nil
}

func convertNode(x *xmlNode) *Node {
	n := &Node{
		ID:         x.ID,
		SID:        x.SID,
		Name:       x.Name,
		Transforms: x.Transforms,
		Geometries: x.Geometries,
	}
	for i := range x.Children {
		n.Children = append(n.Children, convertNode(&x.Children[i]))
	}
	return n
}

// parseFloats splits whitespace separated numbers.
func parseFloats(s string) ([]float32, error) {
	fields := strings.Fields(s)
	out := make([]float32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", f, ErrBadNumber)
		}
		out = append(out, float32(v))
	}
	return out, nil
}

// parseInts splits whitespace separated non-negative integers.
func parseInts(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%q: %w", f, ErrBadNumber)
		}
		out = append(out, v)
	}
	return out, nil
}
