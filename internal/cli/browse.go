package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hiernet/pkg/network"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorFaint)
)

// browseCommand creates the interactive level browser.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Walk the component hierarchy interactively",
		Long:  `Browse shows the current level as a table. Enter opens the selected component, backspace returns to the parent and q quits. The level you quit on becomes the session context.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, t, err := c.open(ctx)
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(NewBrowseModel(m), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			bm := final.(BrowseModel)
			if err := c.saveContext(ctx, t, bm.Network.ContextIDs()); err != nil {
				return err
			}
			printLevel(bm.Network.Breadcrumbs(), bm.Network.Current())
			return nil
		},
	}
}

// =============================================================================
// BrowseModel - Interactive level navigation
// =============================================================================

// BrowseModel is the bubbletea model for walking a network's levels.
type BrowseModel struct {
	Network *network.Model
	Cursor  int
	Height  int
	Offset  int
	Status  string
}

// NewBrowseModel creates a browser positioned at the model's current level.
func NewBrowseModel(m *network.Model) BrowseModel {
	return BrowseModel{Network: m, Height: 15}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	nodes := m.Network.Current().Nodes
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.Status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "right", "l":
			if len(nodes) == 0 {
				return m, nil
			}
			n := nodes[m.Cursor]
			if err := m.Network.Enter(n.ID); err != nil {
				m.Status = fmt.Sprintf("%s is not a component", n.ID)
				return m, nil
			}
			m.Cursor, m.Offset = 0, 0
		case "backspace", "left", "h":
			if m.Network.Depth() == 0 {
				return m, nil
			}
			parent := m.Network.CurrentComponent().ID
			m.Network.Exit()
			m.Cursor, m.Offset = 0, 0
			for i, n := range m.Network.Current().Nodes {
				if n.ID == parent {
					m.Cursor = i
				}
			}
			if m.Cursor >= m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(formatBreadcrumbs(m.Network.Breadcrumbs()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ enter  ⌫ exit  q quit"))
	b.WriteString("\n\n")

	nodes := m.Network.Current().Nodes
	if len(nodes) == 0 {
		b.WriteString(listDimStyle.Render("  (empty level)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(nodes))
	all := nodeRows(m.Network.Current())
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, all[i]...))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("", "ID", "Label", "Type", "Position", "Contents").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(nodes) {
				return lipgloss.NewStyle()
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if !nodes[idx].IsComponent() {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(nodes))))
	if m.Status != "" {
		b.WriteString("  " + StyleWarning.Render(m.Status))
	}

	return b.String()
}
