package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/armviewer/internal/assets"
	"github.com/Faultbox/armviewer/internal/engine/model"
	"github.com/Faultbox/armviewer/internal/kinematics"
	"github.com/Faultbox/armviewer/internal/scene"
	"github.com/Faultbox/armviewer/pkg/collada"
)

// sampleArg selects the built-in model instead of a file.
const sampleArg = "sample"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(12)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "daetool",
		Short: "Inspect COLLADA kinematics documents",
		Long: `daetool - COLLADA (.dae) document utility

Pass "sample" instead of a path to inspect the built-in arm.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newInfoCmd(), newJointsCmd(), newPoseCmd())
	return root
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.dae>...",
		Short: "Show document summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := loadAll(args)
			if err != nil {
				return err
			}
			for i, doc := range docs {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				printInfo(cmd.OutOrStdout(), args[i], doc)
			}
			return nil
		},
	}
}

func newJointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "joints <file.dae>",
		Short: "List kinematics joints, limits and bindings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load(args[0])
			if err != nil {
				return err
			}
			printJoints(cmd.OutOrStdout(), doc)
			return nil
		},
	}
}

func newPoseCmd() *cobra.Command {
	var scale float32
	cmd := &cobra.Command{
		Use:   "pose <file.dae> [joint=value...]",
		Short: "Print node world positions for a pose",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := load(args[0])
			if err != nil {
				return err
			}
			joints, err := kinematics.FromDocument(doc)
			if err != nil {
				return err
			}
			for _, kv := range args[1:] {
				name, value, err := parseAssignment(kv)
				if err != nil {
					return err
				}
				if err := joints.Set(name, value); err != nil {
					return fmt.Errorf("%s: %w", kv, err)
				}
			}
			m, err := scene.NewModel(doc, scale, model.BuildOptions{})
			if err != nil {
				return err
			}
			printPose(cmd.OutOrStdout(), m, joints)
			return nil
		},
	}
	cmd.Flags().Float32Var(&scale, "scale", 1, "uniform model scale")
	return cmd
}

func parseAssignment(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("expected joint=value, got %q", s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("joint %s: %w", name, err)
	}
	return name, v, nil
}

func load(arg string) (*collada.Document, error) {
	if arg == sampleArg {
		return collada.Parse(assets.Sample())
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, err
	}
	doc, err := collada.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", arg, err)
	}
	return doc, nil
}

// loadAll parses files in parallel, keeping argument order.
func loadAll(args []string) ([]*collada.Document, error) {
	docs := make([]*collada.Document, len(args))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, arg := range args {
		g.Go(func() error {
			doc, err := load(arg)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func printInfo(w io.Writer, name string, doc *collada.Document) {
	nodes := 0
	if doc.Scene != nil {
		for _, n := range doc.Scene.Nodes {
			n.Walk(func(*collada.Node) { nodes++ })
		}
	}
	static := 0
	for _, j := range doc.Joints {
		if j.Static {
			static++
		}
	}

	row := func(label, value string) {
		fmt.Fprintln(w, labelStyle.Render(label)+value)
	}
	fmt.Fprintln(w, titleStyle.Render(name))
	row("Up axis:", doc.UpAxis)
	row("Unit:", fmt.Sprintf("%g m", doc.UnitMeter))
	row("Geometry:", fmt.Sprintf("%d meshes, %d triangles", len(doc.Geometries), model.CountTriangles(doc)))
	row("Nodes:", strconv.Itoa(nodes))
	row("Joints:", fmt.Sprintf("%d (%d static)", len(doc.Joints), static))
	row("Bindings:", strconv.Itoa(len(doc.Bindings)))

	ids := make([]string, 0, len(doc.Geometries))
	for id := range doc.Geometries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  %-24s %6d triangles\n", id, doc.Geometries[id].TriangleCount())
	}
}

func printJoints(w io.Writer, doc *collada.Document) {
	bound := map[string]string{}
	for _, b := range doc.Bindings {
		bound[b.Joint] = b.Node + "/" + b.TransformSID
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("JOINT", "NAME", "TYPE", "MIN", "MAX", "MIDDLE", "STATIC", "TARGET")
	for _, j := range doc.Joints {
		target := bound[j.Key()]
		if target == "" {
			target = warnStyle.Render("unbound")
		}
		t.Row(
			j.Key(),
			j.Name,
			j.Type.String(),
			strconv.FormatFloat(j.Min, 'g', -1, 64),
			strconv.FormatFloat(j.Max, 'g', -1, 64),
			strconv.FormatFloat(j.MiddlePosition, 'g', -1, 64),
			strconv.FormatBool(j.Static),
			target,
		)
	}
	fmt.Fprintln(w, t.String())
}

func printPose(w io.Writer, m *scene.Model, values scene.JointValues) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NODE", "GEOMETRY", "X", "Y", "Z")
	for _, it := range m.Pose(values) {
		t.Row(
			it.Node,
			it.Geometry,
			fmt.Sprintf("%.4f", it.World[12]),
			fmt.Sprintf("%.4f", it.World[13]),
			fmt.Sprintf("%.4f", it.World[14]),
		)
	}
	fmt.Fprintln(w, t.String())
}
