package kinematics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/armviewer/pkg/collada"
)

func testJoints() []Joint {
	return []Joint{
		{Name: "joint2", Min: -110, Max: 110},
		{Name: "joint1", Min: -165, Max: 165, ZeroPosition: 10},
		{Name: "flange", Min: 0, Max: 0, Static: true, ZeroPosition: 0},
	}
}

func TestNewTable(t *testing.T) {
	tbl, err := NewTable(testJoints())
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"flange", "joint1", "joint2"}, tbl.Names())
	assert.Equal(t, []string{"joint1", "joint2"}, tbl.Movable())

	v, ok := tbl.Value("joint1")
	require.True(t, ok)
	assert.Equal(t, 10.0, v, "joints start at their zero position")
}

func TestNewTableDuplicate(t *testing.T) {
	_, err := NewTable([]Joint{{Name: "a"}, {Name: "a"}})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSet(t *testing.T) {
	tests := []struct {
		name    string
		joint   string
		value   float64
		wantErr error
	}{
		{"within limits", "joint2", 45, nil},
		{"at min", "joint2", -110, nil},
		{"at max", "joint2", 110, nil},
		{"below min", "joint2", -110.5, ErrOutOfRange},
		{"above max", "joint1", 166, ErrOutOfRange},
		{"static", "flange", 0, ErrStaticJoint},
		{"unknown", "ghost", 1, ErrUnknownJoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := NewTable(testJoints())
			require.NoError(t, err)
			before := tbl.Snapshot()

			err = tbl.Set(tt.joint, tt.value)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Equal(t, before, tbl.Snapshot(), "rejected writes must not change state")
				assert.Equal(t, 0, tbl.Writes())
				return
			}
			require.NoError(t, err)
			v, _ := tbl.Value(tt.joint)
			assert.Equal(t, tt.value, v)
			assert.Equal(t, 1, tbl.Writes())
		})
	}
}

func TestReset(t *testing.T) {
	tbl, err := NewTable([]Joint{
		{Name: "a", Min: -10, Max: 10, ZeroPosition: 2},
		{Name: "b", Min: 5, Max: 10, ZeroPosition: 0},
		{Name: "s", Static: true, ZeroPosition: 3},
	})
	require.NoError(t, err)

	require.NoError(t, tbl.Set("a", 7))
	tbl.Reset()

	a, _ := tbl.Value("a")
	b, _ := tbl.Value("b")
	s, _ := tbl.Value("s")
	assert.Equal(t, 2.0, a)
	assert.Equal(t, 5.0, b, "zero position outside limits is clamped")
	assert.Equal(t, 3.0, s, "static joints keep their loaded value")
}

func TestJointCopy(t *testing.T) {
	tbl, err := NewTable(testJoints())
	require.NoError(t, err)

	j, ok := tbl.Joint("joint2")
	require.True(t, ok)
	j.Value = 99

	v, _ := tbl.Value("joint2")
	assert.Equal(t, 0.0, v, "Joint returns a copy")

	_, ok = tbl.Joint("ghost")
	assert.False(t, ok)
}

func TestFromDocument(t *testing.T) {
	doc, err := collada.ParseFile("../assets/models/sample_arm.dae")
	require.NoError(t, err)

	tbl, err := FromDocument(doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"joint1", "joint2", "joint3", "joint4"}, tbl.Names())
	assert.Equal(t, []string{"joint1", "joint2", "joint3"}, tbl.Movable())

	j3, ok := tbl.Joint("joint3")
	require.True(t, ok)
	assert.Equal(t, "elbow", j3.Label)
	assert.Equal(t, -110.0, j3.Min)
	assert.Equal(t, 70.0, j3.Max)
}
