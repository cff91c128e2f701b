package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hiernet/pkg/network"
)

// nodeCommand creates the "node" command group.
func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Add, change and remove nodes of the current level",
	}
	cmd.AddCommand(c.nodeAddCommand())
	cmd.AddCommand(c.nodeSetCommand())
	cmd.AddCommand(c.nodeRemoveCommand())
	return cmd
}

func (c *CLI) nodeAddCommand() *cobra.Command {
	var (
		spec  network.NodeSpec
		kind  string
		color int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := network.ParseKind(kind)
			if err != nil {
				return err
			}
			spec.Kind = k
			if cmd.Flags().Changed("color") {
				spec.Color = &color
			}

			var n *network.Node
			m, _, err := c.update(cmd.Context(), func(m *network.Model) error {
				n, err = m.AddNode(spec)
				return err
			})
			if err != nil {
				return err
			}
			printSuccess("Added %s %s", n.Kind, StyleHighlight.Render(n.Label))
			printDetail("id %s at %s", n.ID, strings.Join(m.Breadcrumbs(), " > "))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&spec.ID, "id", "", "node id (generated when empty)")
	f.StringVarP(&spec.Label, "label", "l", "", "label (numbered per level when empty)")
	f.StringVarP(&kind, "type", "t", "plain", "node type: plain, input, output or component")
	f.Float64Var(&spec.X, "x", 0, "x position")
	f.Float64Var(&spec.Y, "y", 0, "y position")
	f.IntVar(&color, "color", 0, "palette color of a component (0-8, random when unset)")
	return cmd
}

func (c *CLI) nodeSetCommand() *cobra.Command {
	var (
		label string
		x, y  float64
		color int
	)
	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Change the label, position or color of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch network.NodePatch
			f := cmd.Flags()
			if f.Changed("label") {
				patch.Label = &label
			}
			if f.Changed("x") {
				patch.X = &x
			}
			if f.Changed("y") {
				patch.Y = &y
			}
			if f.Changed("color") {
				patch.Color = &color
			}

			var n *network.Node
			_, _, err := c.update(cmd.Context(), func(m *network.Model) error {
				var err error
				n, err = m.UpdateNode(args[0], patch)
				return err
			})
			if err != nil {
				return err
			}
			printSuccess("Updated %s", StyleHighlight.Render(n.Label))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&label, "label", "l", "", "new label")
	f.Float64Var(&x, "x", 0, "new x position")
	f.Float64Var(&y, "y", 0, "new y position")
	f.IntVar(&color, "color", 0, "new palette color (components only)")
	return cmd
}

func (c *CLI) nodeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove nodes and every edge attached to them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := c.update(cmd.Context(), func(m *network.Model) error {
				return m.DeleteNodes(args...)
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %d node(s)", len(args))
			return nil
		},
	}
}
