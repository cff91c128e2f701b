package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/session"
)

// startSession points the CLI session at document, at root.
func (c *CLI) startSession(cmd *cobra.Command, document string) (*session.Session, error) {
	sessions, err := c.sessions()
	if err != nil {
		return nil, err
	}
	return sessions.Start(cmd.Context(), document, c.Config.Store.Backend)
}

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty document and open it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			if _, err := r.Create(ctx, args[0], force); err != nil {
				return err
			}
			if _, err := c.startSession(cmd, args[0]); err != nil {
				return err
			}
			printSuccess("Created %s", StyleHighlight.Render(args[0]))
			printNextStep("Add a node", appName+" node add --label Source")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing document")
	return cmd
}

// openCommand creates the "open" command.
func (c *CLI) openCommand() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "open <name>",
		Short: "Open a document for editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			m, err := r.Open(ctx, args[0], splitPath(at))
			if err != nil {
				return err
			}
			sess, err := c.startSession(cmd, args[0])
			if err != nil {
				return err
			}
			if err := c.saveContext(ctx, &target{name: args[0], sess: sess}, m.ContextIDs()); err != nil {
				return err
			}

			printSuccess("Opened %s", StyleHighlight.Render(args[0]))
			fmt.Println(formatBreadcrumbs(m.Breadcrumbs()))
			printStats(len(m.Current().Nodes), len(m.Current().Edges))
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "enter", "", "context path to enter, e.g. stage/inner")
	return cmd
}

// closeCommand creates the "close" command.
func (c *CLI) closeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "End the editing session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := c.sessions()
			if err != nil {
				return err
			}
			if err := sessions.End(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Session closed")
			return nil
		},
	}
}

// listCommand creates the "ls" command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			infos, err := r.List(ctx)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No documents")
				return nil
			}
			rows := make([][]string, len(infos))
			for i, info := range infos {
				rows[i] = []string{info.Name, fmt.Sprintf("%d B", info.Size), info.UpdatedAt.Format("2006-01-02 15:04")}
			}
			fmt.Println(renderTable([]string{"Name", "Size", "Updated"}, rows))
			return nil
		},
	}
}

// removeCommand creates the "rm" command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
	}
}

// showCommand creates the "show" command.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the nodes and edges of the current level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, t, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			printKeyValue("Document", t.name)
			printLevel(m.Breadcrumbs(), m.Current())
			return nil
		},
	}
}

// checkCommand creates the "check" command.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the deep-edge bookkeeping of a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, t, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.Check(); err != nil {
				printError("%s is inconsistent", t.name)
				printDetail("%s", errors.UserMessage(err))
				return err
			}
			printSuccess("%s is consistent", t.name)
			return nil
		},
	}
}
