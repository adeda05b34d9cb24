package scene

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/armviewer/internal/config"
	"github.com/Faultbox/armviewer/internal/engine/model"
	"github.com/Faultbox/armviewer/pkg/collada"
	"github.com/Faultbox/armviewer/pkg/math"
)

const sampleArm = "../assets/models/sample_arm.dae"

func loadArm(t *testing.T) *collada.Document {
	t.Helper()
	doc, err := collada.ParseFile(sampleArm)
	require.NoError(t, err)
	return doc
}

type values map[string]float64

func (v values) Value(name string) (float64, bool) {
	x, ok := v[name]
	return x, ok
}

func translation(m math.Mat4) math.Vec3 {
	return math.Vec3{X: m[12], Y: m[13], Z: m[14]}
}

func findItem(t *testing.T, items []DrawItem, node string) DrawItem {
	t.Helper()
	for _, it := range items {
		if it.Node == node {
			return it
		}
	}
	t.Fatalf("no draw item for node %s", node)
	return DrawItem{}
}

func assertVec(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-4, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-4, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-4, "z")
}

func TestLightMarkerPosition(t *testing.T) {
	const ms = 12345.0
	tt := ms * 1e-4

	p := LightMarkerPosition(ms)
	assert.Equal(t, float32(gomath.Cos(5*tt)*4000), p.Y)
	assert.InDelta(t, gomath.Cos(5*1.2345)*4000, float64(p.Y), 1e-3)
	assert.InDelta(t, gomath.Sin(4*1.2345)*3009, float64(p.X), 1e-3)
	assert.InDelta(t, gomath.Cos(4*1.2345)*3009, float64(p.Z), 1e-3)
}

func TestLightMarkerAtZero(t *testing.T) {
	assert.Equal(t, math.Vec3{X: 0, Y: 4000, Z: 3009}, LightMarkerPosition(0))
}

func TestLightPathScales(t *testing.T) {
	p := LightPath{ScaleXZ: 1, ScaleY: 2, TimeScale: 1}
	got := p.Position(0)
	assert.Equal(t, math.Vec3{X: 0, Y: 2, Z: 1}, got)
}

func TestGrid(t *testing.T) {
	center := Color{1, 0, 0}
	line := Color{0, 0, 1}
	g := Grid(20, 20, center, line)

	require.Len(t, g, 21*4)
	assert.Equal(t, [3]float32{-10, 0, -10}, g[0].Position)
	assert.Equal(t, [3]float32{10, 0, -10}, g[1].Position)
	assert.Equal(t, line.Array(), g[0].Color)

	mid := g[10*4:]
	for i := 0; i < 4; i++ {
		assert.Equal(t, center.Array(), mid[i].Color)
		assert.InDelta(t, 0, mid[i].Position[0]*mid[i].Position[2], 1e-4, "center lines cross the origin")
	}
	last := g[len(g)-1]
	assert.InDelta(t, 10, last.Position[0], 1e-4)
	assert.InDelta(t, 10, last.Position[2], 1e-4)
}

func TestGridClampsDivisions(t *testing.T) {
	assert.Len(t, Grid(4, 0, ColorWhite, ColorBlack), 8)
}

func TestSphere(t *testing.T) {
	s := Sphere(4, 8, 8)
	require.NotNil(t, s)

	assert.Equal(t, 8*8*2-2*8, s.TriangleCount())
	for _, v := range s.Vertices {
		p := math.Vec3{X: v.Position[0], Y: v.Position[1], Z: v.Position[2]}
		assert.InDelta(t, 4, p.Length(), 1e-4)
	}
	assert.InDelta(t, 4, s.Bounds.Max[1], 1e-4)
	assert.InDelta(t, -4, s.Bounds.Min[1], 1e-4)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff0000")
	require.NoError(t, err)
	assert.Equal(t, Color{1, 0, 0}, c)
	assert.Equal(t, "#ff0000", c.Hex())

	c, err = ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, ColorWhite, c)

	_, err = ParseColor("not-a-color")
	assert.Error(t, err)

	assert.Equal(t, Color{0.5, 0.5, 0}, Color{1, 1, 0}.Scaled(0.5))
}

func TestModelRestPose(t *testing.T) {
	m, err := NewModel(loadArm(t), 1, model.BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"box-geom", "plate-geom"}, m.MeshIDs())
	assert.Equal(t, []string{"joint1", "joint2", "joint3", "joint4"}, m.BoundJoints())
	assert.Empty(t, m.Unbound())

	items := m.Pose(values{})
	assert.Len(t, items, 5)

	it := findItem(t, items, "link3_geom")
	assert.Equal(t, "box-geom", it.Geometry)
	assertVec(t, math.Vec3{Y: 1.55}, translation(it.World))
}

func TestModelPoseFollowsJoint(t *testing.T) {
	m, err := NewModel(loadArm(t), 1, model.BuildOptions{})
	require.NoError(t, err)

	items := m.Pose(values{"joint2": 90})
	it := findItem(t, items, "link3_geom")
	assertVec(t, math.Vec3{X: -0.95, Y: 0.6}, translation(it.World))

	// Joints upstream of link2 are unaffected.
	base := findItem(t, items, "link1_geom")
	assertVec(t, math.Vec3{Y: 0.35}, translation(base.World))
}

func TestModelPoseAcceptsNilValues(t *testing.T) {
	m, err := NewModel(loadArm(t), 1, model.BuildOptions{})
	require.NoError(t, err)
	assert.Len(t, m.Pose(nil), 5)
}

func TestModelScaleAndUpAxis(t *testing.T) {
	doc := loadArm(t)
	m, err := NewModel(doc, 10, model.BuildOptions{})
	require.NoError(t, err)
	assertVec(t, math.Vec3{Y: 15.5}, translation(findItem(t, m.Pose(nil), "link3_geom").World))

	doc.UpAxis = collada.UpAxisZ
	m, err = NewModel(doc, 1, model.BuildOptions{})
	require.NoError(t, err)
	assertVec(t, math.Vec3{Z: -1.55}, translation(findItem(t, m.Pose(nil), "link3_geom").World))
}

func TestModelUnboundBindings(t *testing.T) {
	doc := loadArm(t)
	doc.Bindings = append(doc.Bindings,
		collada.Binding{Joint: "joint1", Node: "nowhere", TransformSID: "rotY"},
		collada.Binding{Joint: "ghost", Node: "link1", TransformSID: "rotY"},
		collada.Binding{Joint: "joint1", Node: "link1", TransformSID: "missing"},
	)

	m, err := NewModel(doc, 1, model.BuildOptions{})
	require.NoError(t, err)
	assert.Len(t, m.Unbound(), 3)
}

func TestModelDuplicateBinding(t *testing.T) {
	doc := loadArm(t)
	doc.Bindings = append(doc.Bindings, collada.Binding{Joint: "joint2", Node: "link1", TransformSID: "rotY"})

	_, err := NewModel(doc, 1, model.BuildOptions{})
	assert.Error(t, err)
}

func TestNewModelNoScene(t *testing.T) {
	_, err := NewModel(&collada.Document{}, 1, model.BuildOptions{})
	assert.ErrorIs(t, err, collada.ErrNoVisualScene)
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := OptionsFromConfig(config.Default())
	require.NoError(t, err)

	assert.Equal(t, float32(20), opts.GridSize)
	assert.Equal(t, DefaultLightPath(), opts.Path)
	assert.Equal(t, ColorWhite, opts.PointColor)
	assert.Equal(t, float32(0.3), opts.PointPower)

	cfg := config.Default()
	cfg.Light.SkyColor = "sky blue"
	_, err = OptionsFromConfig(cfg)
	assert.Error(t, err)
}

func TestSceneLifecycle(t *testing.T) {
	s, err := New(loadArm(t), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, s.Version)
	assert.Len(t, s.Grid, 21*4)
	assert.NotNil(t, s.Marker)

	s.Advance(12345)
	assert.Equal(t, LightMarkerPosition(12345), s.Point.Position)
	assert.Equal(t, s.Point.Position, translation(s.MarkerWorld()))

	require.NoError(t, s.SetModel(loadArm(t)))
	assert.Equal(t, 2, s.Version)
	assert.Len(t, s.Pose(nil), 5)

	assert.Error(t, s.SetModel(&collada.Document{}))
	assert.Equal(t, 2, s.Version, "failed swap keeps the old model")
}
