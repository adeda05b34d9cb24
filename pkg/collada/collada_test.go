package collada

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/armviewer/pkg/math"
)

const sampleArmPath = "../../internal/assets/models/sample_arm.dae"

const zUpDoc = `<?xml version="1.0"?>
<COLLADA xmlns="http://www.collada.org/2005/11/COLLADASchema" version="1.4.1">
  <asset><unit meter="0.001"/><up_axis>Z_UP</up_axis></asset>
  <library_geometries>
    <geometry id="tri">
      <mesh>
        <source id="tri-pos">
          <float_array count="9">0 0 0 1 0 0 0 1 0</float_array>
          <technique_common><accessor count="3" stride="3"/></technique_common>
        </source>
        <source id="tri-nrm">
          <float_array count="3">0 0 1</float_array>
          <technique_common><accessor count="1" stride="3"/></technique_common>
        </source>
        <vertices id="tri-vtx"><input semantic="POSITION" source="#tri-pos"/></vertices>
        <triangles count="1">
          <input semantic="VERTEX" source="#tri-vtx" offset="0"/>
          <input semantic="NORMAL" source="#tri-nrm" offset="1"/>
          <p>0 0 1 0 2 0</p>
        </triangles>
      </mesh>
    </geometry>
  </library_geometries>
  <library_visual_scenes>
    <visual_scene id="unused"/>
    <visual_scene id="main">
      <node id="root">
        <matrix sid="m">1 0 0 5 0 1 0 6 0 0 1 7 0 0 0 1</matrix>
        <rotate sid="r">0 0 1 90</rotate>
        <instance_geometry url="#tri"/>
        <extra><technique profile="x"/></extra>
      </node>
    </visual_scene>
  </library_visual_scenes>
  <library_joints>
    <joint id="slide" name="slide">
      <prismatic sid="axis0">
        <axis>1 0 0</axis>
        <limits><min>-10</min><max>25.5</max></limits>
      </prismatic>
    </joint>
    <joint id="free" name="free">
      <revolute sid="axis0"><axis>0 0 1</axis></revolute>
    </joint>
  </library_joints>
  <scene><instance_visual_scene url="#main"/></scene>
</COLLADA>`

func TestParseSampleArm(t *testing.T) {
	doc, err := ParseFile(sampleArmPath)
	require.NoError(t, err)

	assert.Equal(t, UpAxisY, doc.UpAxis)
	assert.Equal(t, 1.0, doc.UnitMeter)
	require.Contains(t, doc.Geometries, "box-geom")
	require.Contains(t, doc.Geometries, "plate-geom")
	assert.Equal(t, 12, doc.Geometries["box-geom"].TriangleCount())
	// Six quads fan into twelve triangles.
	assert.Equal(t, 12, doc.Geometries["plate-geom"].TriangleCount())

	require.NotNil(t, doc.Scene)
	assert.Equal(t, "arm-scene", doc.Scene.ID)

	keys := make([]string, 0, len(doc.Joints))
	for _, j := range doc.Joints {
		keys = append(keys, j.Key())
	}
	assert.Equal(t, []string{"joint1", "joint2", "joint3", "joint4"}, keys)

	j1, ok := doc.Joint("joint1")
	require.True(t, ok)
	assert.Equal(t, "waist", j1.Name)
	assert.Equal(t, -165.0, j1.Min)
	assert.Equal(t, 165.0, j1.Max)
	assert.False(t, j1.Static)
	assert.Equal(t, math.Vec3{Y: 1}, j1.Axis)

	j4, ok := doc.Joint("joint4")
	require.True(t, ok)
	assert.True(t, j4.Static, "joint with max <= min must be static")
	assert.Equal(t, "tool_flange", j4.Name)

	assert.Equal(t, []Binding{
		{Joint: "joint1", Node: "link1", TransformSID: "rotY"},
		{Joint: "joint2", Node: "link2", TransformSID: "rotZ"},
		{Joint: "joint3", Node: "link3", TransformSID: "rotZ"},
		{Joint: "joint4", Node: "tool", TransformSID: "rotY"},
	}, doc.Bindings)
}

func TestTransformOrderPreserved(t *testing.T) {
	doc, err := ParseFile(sampleArmPath)
	require.NoError(t, err)

	link2 := doc.FindNode("link2")
	require.NotNil(t, link2)
	require.Len(t, link2.Transforms, 2)
	assert.Equal(t, TransformTranslate, link2.Transforms[0].Kind)
	assert.Equal(t, TransformRotate, link2.Transforms[1].Kind)
	assert.Equal(t, "rotZ", link2.Transforms[1].SID)
	assert.Len(t, link2.Children, 2)
}

func TestParseZUpDocument(t *testing.T) {
	doc, err := Parse([]byte(zUpDoc))
	require.NoError(t, err)

	assert.Equal(t, UpAxisZ, doc.UpAxis)
	assert.Equal(t, 0.001, doc.UnitMeter)
	assert.Equal(t, "main", doc.Scene.ID, "instance_visual_scene selects the scene")
	assert.Equal(t, 1, doc.Geometries["tri"].TriangleCount())

	// Y-up conversion maps +Z to +Y.
	p := doc.RootMatrix().TransformPoint(math.Vec3{Z: 1})
	assert.InDelta(t, 1.0, p.Y, 1e-5)
	assert.InDelta(t, 0.0, p.Z, 1e-5)

	root := doc.FindNode("root")
	require.NotNil(t, root)
	got := root.LocalMatrix().TransformPoint(math.Vec3{X: 1})
	assert.InDelta(t, 5.0, got.X, 1e-5)
	assert.InDelta(t, 7.0, got.Y, 1e-5)
	assert.InDelta(t, 7.0, got.Z, 1e-5)
}

func TestLibraryJointsWithoutKinematicsModel(t *testing.T) {
	doc, err := Parse([]byte(zUpDoc))
	require.NoError(t, err)
	require.Len(t, doc.Joints, 2)

	slide := doc.Joints[0]
	assert.Equal(t, "slide", slide.Key())
	assert.Equal(t, Prismatic, slide.Type)
	assert.Equal(t, 25.5, slide.Max)
	assert.InDelta(t, 7.75, slide.MiddlePosition, 1e-9)
	assert.Equal(t, 0.0, slide.ZeroPosition)

	free := doc.Joints[1]
	assert.True(t, free.Static, "a joint without limits cannot move")
	assert.Empty(t, doc.Bindings)
}

func TestJointMatrix(t *testing.T) {
	rot := Transform{Kind: TransformRotate, SID: "r", Values: []float32{0, 0, 1, 0}}

	rev := Joint{Type: Revolute, Axis: math.Vec3{Z: 1}}
	p := JointMatrix(rot, rev, 90).TransformPoint(math.Vec3{X: 1})
	assert.InDelta(t, 0.0, p.X, 1e-5)
	assert.InDelta(t, 1.0, p.Y, 1e-5)

	// No joint axis: fall back to the transform's axis.
	p = JointMatrix(rot, Joint{Type: Revolute}, -90).TransformPoint(math.Vec3{X: 1})
	assert.InDelta(t, -1.0, p.Y, 1e-5)

	pri := Joint{Type: Prismatic, Axis: math.Vec3{X: 1}}
	p = JointMatrix(rot, pri, 3).TransformPoint(math.Vec3{})
	assert.Equal(t, math.Vec3{X: 3}, p)
}

func TestTransformMatrixRotateDegrees(t *testing.T) {
	tr := Transform{Kind: TransformRotate, Values: []float32{0, 1, 0, 180}}
	p := tr.Matrix().TransformPoint(math.Vec3{X: 1})
	assert.InDelta(t, -1.0, p.X, 1e-5)
	assert.True(t, gomath.Abs(float64(p.Z)) < 1e-5)
}

func TestJointKeyFromParam(t *testing.T) {
	joints := []Joint{{SID: "joint_1"}, {SID: "joint_10"}, {ID: "elbow"}}

	tests := []struct {
		param string
		want  string
		ok    bool
	}{
		{"kscene_kmodel1_inst_joint_1_axis0", "joint_1", true},
		{"kscene_kmodel1_inst_joint_10_axis0", "joint_10", true},
		{"kmodel.inst_elbow_axis0", "elbow", true},
		{"something_joint_10_value", "joint_10", true},
		{"nothing_here", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			got, ok := jointKeyFromParam(tt.param, joints)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"not collada", `<foo/>`, ErrNotCollada},
		{"no visual scene", `<COLLADA><asset/></COLLADA>`, ErrNoVisualScene},
		{"bad number", `<COLLADA><library_visual_scenes><visual_scene id="s"><node id="n"><translate>1 x 3</translate></node></visual_scene></library_visual_scenes></COLLADA>`, ErrBadNumber},
		{"bad index", `<COLLADA><library_geometries><geometry id="g"><mesh>
			<source id="p"><float_array>0 0 0 1 0 0 0 1 0</float_array></source>
			<vertices id="v"><input semantic="POSITION" source="#p"/></vertices>
			<triangles count="1"><input semantic="VERTEX" source="#v" offset="0"/><p>0 1 9</p></triangles>
			</mesh></geometry></library_geometries></COLLADA>`, ErrBadIndex},
		{"missing source", `<COLLADA><library_geometries><geometry id="g"><mesh>
			<vertices id="v"><input semantic="POSITION" source="#nope"/></vertices>
			</mesh></geometry></library_geometries></COLLADA>`, ErrUnresolvedSource},
		{"missing instance joint", `<COLLADA><library_visual_scenes><visual_scene id="s"/></library_visual_scenes>
			<library_kinematics_models><kinematics_model id="k"><technique_common>
			<instance_joint url="#ghost" sid="j"/></technique_common></kinematics_model></library_kinematics_models></COLLADA>`, ErrUnresolvedSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestParseMalformedCounts(t *testing.T) {
	tests := []struct {
		name      string
		primitive string
	}{
		{"negative count", `<triangles count="-1"><input semantic="VERTEX" source="#v" offset="0"/><p>0 1 2</p></triangles>`},
		{"count beyond indices", `<triangles count="1000000000000"><input semantic="VERTEX" source="#v" offset="0"/><p>0 1 2</p></triangles>`},
		{"negative index", `<triangles count="1"><input semantic="VERTEX" source="#v" offset="0"/><p>0 -1 2</p></triangles>`},
		{"negative offset", `<triangles count="1"><input semantic="VERTEX" source="#v" offset="-3"/><p>0 1 2</p></triangles>`},
		{"negative vcount", `<polylist count="2"><input semantic="VERTEX" source="#v" offset="0"/><vcount>-4 3</vcount><p>0 1 2</p></polylist>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `<COLLADA><library_geometries><geometry id="g"><mesh>
				<source id="p"><float_array>0 0 0 1 0 0 0 1 0</float_array></source>
				<vertices id="v"><input semantic="POSITION" source="#p"/></vertices>` +
				tt.primitive + `</mesh></geometry></library_geometries></COLLADA>`

			require.NotPanics(t, func() {
				_, err := Parse([]byte(doc))
				assert.ErrorIs(t, err, ErrBadIndex)
			})
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile("/nonexistent/model.dae")
	assert.Error(t, err)
}
