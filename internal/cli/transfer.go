package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hiernet/pkg/errors"
	hio "github.com/matzehuels/hiernet/pkg/io"
	"github.com/matzehuels/hiernet/pkg/network"
)

// exportCommand creates the "export" command.
func (c *CLI) exportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [id]...",
		Short: "Write the document, or selected nodes of the current level, as JSON",
		Long: `Without ids the whole document is written. With ids the selected nodes of the
current level and the edges among them are written as a standalone fragment
with renumbered ids.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			doc := m.Root()
			if len(args) > 0 {
				if doc, err = m.Export(args...); err != nil {
					return err
				}
			}

			if output == "" {
				return hio.WriteJSON(doc, os.Stdout)
			}
			if err := hio.ExportJSON(doc, output); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "export")
			}
			printSuccess("Exported %d node(s)", len(doc.Nodes))
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty)")
	return cmd
}

// importCommand creates the "import" command.
func (c *CLI) importCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace a document with the contents of a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			watch := startStopwatch(c.Logger)

			doc, err := hio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				t, err := c.resolveTarget(ctx)
				if err != nil {
					return errors.Wrap(errors.GetCode(err), err, "pass --as to name the document")
				}
				name = t.name
			}

			r, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			m, err := r.Import(ctx, name, doc)
			if err != nil {
				return err
			}
			if _, err := c.startSession(cmd, name); err != nil {
				return err
			}
			watch.done("Imported %s", filepath.Base(args[0]))
			printSuccess("Opened %s", StyleHighlight.Render(name))
			printStats(len(m.Root().Nodes), len(m.Root().Edges))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "as", "", "document name (the open document when empty)")
	return cmd
}

// =============================================================================
// Templates
// =============================================================================

// templateCommand creates the "template" command group.
func (c *CLI) templateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Save components as reusable templates and place copies of them",
	}
	cmd.AddCommand(c.templateAddCommand())
	cmd.AddCommand(c.templateListCommand())
	cmd.AddCommand(c.templateUseCommand())
	return cmd
}

func loadTemplates() ([]*network.Node, error) {
	f, err := os.Open(templatesPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open templates")
	}
	defer f.Close()
	return hio.ReadTemplates(f)
}

func saveTemplates(templates []*network.Node) error {
	path := templatesPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create templates dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create templates")
	}
	defer f.Close()
	return hio.WriteTemplates(templates, f)
}

// findTemplate looks a template up by list index or id.
func findTemplate(templates []*network.Node, ref string) (*network.Node, error) {
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 && i < len(templates) {
		return templates[i], nil
	}
	for _, t := range templates {
		if t.ID == ref || t.Label == ref {
			return t, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no template %q", ref)
}

func (c *CLI) templateAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <component-id>",
		Short: "Save a component of the current level as a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			n := m.Current().Node(args[0])
			if n == nil || !n.IsComponent() {
				return errors.New(errors.ErrCodeInvalidInput, "%s is not a component of this level", args[0])
			}

			templates, err := loadTemplates()
			if err != nil {
				return err
			}
			templates = append(templates, n.Clone())
			if err := saveTemplates(templates); err != nil {
				return err
			}
			printSuccess("Saved template %s", StyleHighlight.Render(n.Label))
			printFile(templatesPath())
			return nil
		},
	}
}

func (c *CLI) templateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := loadTemplates()
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				printInfo("No templates")
				return nil
			}
			rows := make([][]string, len(templates))
			for i, t := range templates {
				g := t.Component.Graph
				rows[i] = []string{strconv.Itoa(i), t.Label, t.ID, fmt.Sprintf("%d nodes, %d edges", len(g.Nodes), len(g.Edges))}
			}
			fmt.Println(renderTable([]string{"#", "Label", "ID", "Contents"}, rows))
			return nil
		},
	}
}

func (c *CLI) templateUseCommand() *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "use <index|id|label>",
		Short: "Place a copy of a template on the current level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := loadTemplates()
			if err != nil {
				return err
			}
			tpl, err := findTemplate(templates, args[0])
			if err != nil {
				return err
			}

			var inst *network.Node
			_, _, err = c.update(cmd.Context(), func(m *network.Model) error {
				n, err := m.Instantiate(tpl, x, y)
				inst = n
				return err
			})
			if err != nil {
				return err
			}
			printSuccess("Placed %s", StyleHighlight.Render(inst.Label))
			printDetail("id %s", inst.ID)
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "x position")
	cmd.Flags().Float64Var(&y, "y", 0, "y position")
	return cmd
}
