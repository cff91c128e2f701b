package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/network"
)

// foldCommand creates the "fold" command.
func (c *CLI) foldCommand() *cobra.Command {
	var (
		opts  network.FoldOptions
		color int
		enter bool
	)
	cmd := &cobra.Command{
		Use:   "fold <id>...",
		Short: "Fold nodes of the current level into a new component",
		Long: `Fold replaces the selected nodes with one component holding them. Input and
output ports are created on the component unless the selection contains them
already, and edges crossing the selection are rewired through the ports.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("color") {
				opts.Color = &color
			}
			var comp *network.Node
			m, _, err := c.update(cmd.Context(), func(m *network.Model) error {
				n, err := m.Fold(args, opts)
				if err != nil {
					return err
				}
				comp = n
				if enter {
					return m.Enter(n.ID)
				}
				return nil
			})
			if err != nil {
				return err
			}
			inner := &comp.Component.Graph
			printSuccess("Folded %d node(s) into %s", len(args), StyleHighlight.Render(comp.Label))
			printStats(len(inner.Nodes), len(inner.Edges))
			if enter {
				fmt.Println(formatBreadcrumbs(m.Breadcrumbs()))
			} else {
				printNextStep("Open it", appName+" enter "+comp.ID)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.ID, "id", "", "component id (generated when empty)")
	f.StringVarP(&opts.Label, "label", "l", "", "component label")
	f.IntVar(&color, "color", 0, "palette color (0-8, random when unset)")
	f.BoolVar(&enter, "enter", false, "enter the new component")
	return cmd
}

// enterCommand creates the "enter" command.
func (c *CLI) enterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enter <id>...",
		Short: "Open a component of the current level",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.navigate(cmd, func(m *network.Model) error {
				for _, id := range args {
					if err := m.Enter(id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// exitCommand creates the "exit" command.
func (c *CLI) exitCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "exit [depth]",
		Short: "Close the innermost component, or return to a breadcrumb depth",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.navigate(cmd, func(m *network.Model) error {
				switch {
				case all:
					m.ExitToRoot()
				case len(args) == 1:
					depth, err := strconv.Atoi(args[0])
					if err != nil {
						return errors.New(errors.ErrCodeInvalidInput, "depth must be a number, got %q", args[0])
					}
					return m.ExitTo(depth)
				default:
					m.Exit()
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "return to the root level")
	return cmd
}

// navigate moves through the session's context stack.
func (c *CLI) navigate(cmd *cobra.Command, fn func(m *network.Model) error) error {
	m, t, err := c.open(cmd.Context())
	if err != nil {
		return err
	}
	if t.sess == nil {
		return errors.New(errors.ErrCodeInvalidInput, "navigation needs an open session; use --at with --doc instead")
	}
	if err := fn(m); err != nil {
		return err
	}
	if err := c.saveContext(cmd.Context(), t, m.ContextIDs()); err != nil {
		return err
	}
	fmt.Println(formatBreadcrumbs(m.Breadcrumbs()))
	printStats(len(m.Current().Nodes), len(m.Current().Edges))
	return nil
}

// portsCommand creates the "ports" command.
func (c *CLI) portsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List the ports of the open component and what reaches them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if m.Depth() == 0 {
				printInfo("The root level has no ports")
				return nil
			}
			inputs, outputs, err := m.Ports()
			if err != nil {
				return err
			}
			fmt.Println(formatBreadcrumbs(m.Breadcrumbs()))
			fmt.Println(renderTable([]string{"Input", "From"}, portRows(inputs)))
			fmt.Println(renderTable([]string{"Output", "To"}, portRows(outputs)))
			return nil
		},
	}
}

func portRows(ports []network.PortView) [][]string {
	var rows [][]string
	for _, p := range ports {
		if len(p.Peers) == 0 {
			rows = append(rows, []string{p.Label, StyleDim.Render("unconnected")})
			continue
		}
		for i, peer := range p.Peers {
			label := p.Label
			if i > 0 {
				label = ""
			}
			rows = append(rows, []string{label, peer.Tooltip()})
		}
	}
	return rows
}
