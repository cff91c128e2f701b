package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/hiernet/pkg/network"
)

// edgeCommand creates the "edge" command group.
func (c *CLI) edgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Connect, reconnect and disconnect nodes",
	}
	cmd.AddCommand(c.edgeAddCommand())
	cmd.AddCommand(c.edgeSetCommand())
	cmd.AddCommand(c.edgeRemoveCommand())
	return cmd
}

func (c *CLI) edgeAddCommand() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "add <from> <to>",
		Short: "Connect two nodes",
		Long: `Connect two nodes by id. Either node may be nested inside components; a
nested source leaves its component through an output port and a nested
target enters through an input port.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var e *network.Edge
			_, _, err := c.update(cmd.Context(), func(m *network.Model) error {
				var err error
				e, err = m.AddEdge(network.EdgeSpec{ID: id, From: args[0], To: args[1]})
				return err
			})
			if err != nil {
				return err
			}
			printEdge("Connected", e)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "edge id (generated when empty)")
	return cmd
}

func (c *CLI) edgeSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <from> <to>",
		Short: "Reconnect an edge",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var e *network.Edge
			_, _, err := c.update(cmd.Context(), func(m *network.Model) error {
				var err error
				e, err = m.UpdateEdge(args[0], network.EdgeSpec{From: args[1], To: args[2]})
				return err
			})
			if err != nil {
				return err
			}
			printEdge("Reconnected", e)
			return nil
		},
	}
}

func (c *CLI) edgeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove edges",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := c.update(cmd.Context(), func(m *network.Model) error {
				return m.DeleteEdges(args...)
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %d edge(s)", len(args))
			return nil
		},
	}
}

func printEdge(verb string, e *network.Edge) {
	printSuccess("%s %s %s %s", verb, StyleHighlight.Render(e.ModelFrom), "→", StyleHighlight.Render(e.ModelTo))
	if e.IsDeep() {
		printDetail("stored as %s -> %s (id %s)", e.From, e.To, e.ID)
	} else {
		printDetail("id %s", e.ID)
	}
}
