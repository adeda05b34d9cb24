package collada

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/armviewer/pkg/math"
)

// collectJoints gathers the joints of every kinematics model. Documents with
// no kinematics model fall back to the plain joint library.
func collectJoints(raw *xmlDocument) ([]Joint, error) {
	library := make(map[string]xmlJoint, len(raw.Joints))
	for _, j := range raw.Joints {
		library[j.ID] = j
	}

	var joints []Joint
	seen := make(map[string]bool)
	add := func(x xmlJoint, sid string) error {
		j, ok, err := convertJoint(x)
		if err != nil {
			return fmt.Errorf("joint %q: %w", x.ID+x.SID, err)
		}
		if !ok {
			return nil
		}
		if sid != "" {
			j.SID = sid
		}
		if seen[j.Key()] {
			return nil
		}
		seen[j.Key()] = true
		joints = append(joints, j)
		return nil
	}

	for _, km := range raw.KinematicsModels {
		for _, x := range km.Joints {
			if err := add(x, ""); err != nil {
				return nil, err
			}
		}
		for _, inst := range km.InstanceJoints {
			x, ok := library[strings.TrimPrefix(inst.URL, "#")]
			if !ok {
				return nil, fmt.Errorf("instance_joint %s: %w", inst.URL, ErrUnresolvedSource)
			}
			if err := add(x, inst.SID); err != nil {
				return nil, err
			}
		}
	}

	if len(raw.KinematicsModels) == 0 {
		for _, x := range raw.Joints {
			if err := add(x, ""); err != nil {
				return nil, err
			}
		}
	}
	return joints, nil
}

// convertJoint reads the first degree of freedom of a joint. Joints without a
// revolute or prismatic child are reported as not ok.
func convertJoint(x xmlJoint) (Joint, bool, error) {
	j := Joint{SID: x.SID, ID: x.ID, Name: x.Name}
	if j.Name == "" {
		j.Name = j.Key()
	}

	var dof xmlJointDOF
	switch {
	case len(x.Revolute) > 0:
		dof = x.Revolute[0]
		j.Type = Revolute
	case len(x.Prismatic) > 0:
		dof = x.Prismatic[0]
		j.Type = Prismatic
	default:
		return Joint{}, false, nil
	}

	axis, err := parseFloats(dof.Axis)
	if err != nil {
		return Joint{}, false, fmt.Errorf("axis: %w", err)
	}
	if len(axis) >= 3 {
		j.Axis = math.Vec3{X: axis[0], Y: axis[1], Z: axis[2]}
	}

	if dof.Limits != nil {
		if j.Min, err = parseLimit(dof.Limits.Min); err != nil {
			return Joint{}, false, fmt.Errorf("min: %w", err)
		}
		if j.Max, err = parseLimit(dof.Limits.Max); err != nil {
			return Joint{}, false, fmt.Errorf("max: %w", err)
		}
	}

	// A joint that cannot move between its limits is static.
	j.Static = j.Max <= j.Min
	j.MiddlePosition = (j.Min + j.Max) / 2
	return j, true, nil
}

func parseLimit(v xmlLimitValue) (float64, error) {
	s := v.text()
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrBadNumber)
	}
	return f, nil
}

// collectBindings resolves bind_joint_axis elements. The target is
// "<node>/<transform sid>"; the axis param names the joint instance.
func collectBindings(raw *xmlDocument, doc *Document) []Binding {
	var out []Binding
	for _, iks := range raw.Scene.KinematicsScenes {
		for _, b := range iks.BindJointAxes {
			parts := strings.Split(strings.TrimSpace(b.Target), "/")
			if len(parts) < 2 {
				continue
			}
			ref := strings.TrimSpace(b.Param)
			if ref == "" {
				ref = strings.TrimSpace(b.SIDRef)
			}
			key, ok := jointKeyFromParam(ref, doc.Joints)
			if !ok {
				continue
			}
			out = append(out, Binding{
				Joint:        key,
				Node:         parts[len(parts)-2],
				TransformSID: parts[len(parts)-1],
			})
		}
	}
	return out
}

// jointKeyFromParam maps an axis parameter such as
// "kscene_kmodel0_inst_joint1_axis0" to a joint key. Exporters mangle the
// joint sid between the last "inst_" and the "_axisN" suffix; when that guess
// matches nothing, the longest joint key contained in the parameter wins.
func jointKeyFromParam(param string, joints []Joint) (string, bool) {
	if param == "" {
		return "", false
	}

	guess := param
	if i := strings.LastIndex(guess, "inst_"); i >= 0 {
		guess = guess[i+len("inst_"):]
	}
	if i := strings.LastIndex(guess, "axis"); i > 0 {
		guess = strings.TrimSuffix(guess[:i], "_")
	}
	for _, j := range joints {
		if j.Key() == guess {
			return guess, true
		}
	}

	best := ""
	for _, j := range joints {
		k := j.Key()
		if strings.Contains(param, k) && len(k) > len(best) {
			best = k
		}
	}
	return best, best != ""
}
