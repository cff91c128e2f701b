package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/hiernet/pkg/network"
)

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorCmd    = lipgloss.Color("75")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

// Exported styles are shared with the browse view.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCached      = lipgloss.NewStyle().Foreground(colorOK)
	styleComputed    = lipgloss.NewStyle().Foreground(colorMuted)
	styleCommand     = lipgloss.NewStyle().Foreground(colorCmd)
	styleHeader      = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	styleKey         = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
)

// A status line is an icon in its own color followed by a message.
type status struct {
	icon  string
	style lipgloss.Style
}

var (
	statusOK   = status{"✓", lipgloss.NewStyle().Foreground(colorOK)}
	statusFail = status{"✗", lipgloss.NewStyle().Foreground(colorFail)}
	statusWarn = status{"!", lipgloss.NewStyle().Foreground(colorWarn)}
	statusInfo = status{"›", lipgloss.NewStyle().Foreground(colorMuted)}
)

func (s status) print(msg string) {
	fmt.Println(s.style.Render(s.icon) + " " + msg)
}

func printSuccess(format string, args ...any) { statusOK.print(fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { statusFail.print(fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { statusInfo.print(fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	statusWarn.print(StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented muted line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints the size of a level.
func printStats(nodeCount, edgeCount int) {
	printDetail("%d nodes · %d edges", nodeCount, edgeCount)
}

// printRenderStatus prints output size and whether it came from the cache.
func printRenderStatus(size int, cached bool) {
	label := styleComputed.Render("fresh")
	if cached {
		label = styleCached.Render("cached")
	}
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf("%d bytes · ", size)) + label)
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Network Output
// =============================================================================

// formatBreadcrumbs renders "Root > A > B" with the innermost level highlighted.
func formatBreadcrumbs(crumbs []string) string {
	if len(crumbs) == 0 {
		return ""
	}
	parts := make([]string, len(crumbs))
	for i, c := range crumbs {
		if i == len(crumbs)-1 {
			parts[i] = StyleTitle.Render(c)
		} else {
			parts[i] = StyleDim.Render(c)
		}
	}
	return strings.Join(parts, StyleDim.Render(" > "))
}

// nodeRows builds one table row per node of g.
func nodeRows(g *network.Subgraph) [][]string {
	rows := make([][]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		detail := ""
		if n.IsComponent() {
			detail = fmt.Sprintf("%d nodes, color %d", len(n.Component.Graph.Nodes), n.Component.Color)
		}
		rows = append(rows, []string{n.ID, n.Label, n.Kind.String(), fmt.Sprintf("%.0f,%.0f", n.X, n.Y), detail})
	}
	return rows
}

// edgeRows builds one table row per edge of g, showing logical endpoints
// behind their anchors.
func edgeRows(g *network.Subgraph) [][]string {
	rows := make([][]string, 0, len(g.Edges))
	for _, e := range g.Edges {
		from, to := e.From, e.To
		if len(e.FromPath) > 0 {
			from += "/" + e.ModelFrom
		}
		if len(e.ToPath) > 0 {
			to += "/" + e.ModelTo
		}
		rows = append(rows, []string{e.ID, from, to})
	}
	return rows
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 0 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// printLevel prints the nodes and edges of a level.
func printLevel(crumbs []string, g *network.Subgraph) {
	fmt.Println(formatBreadcrumbs(crumbs))
	if len(g.Nodes) == 0 {
		printDetail("empty")
		return
	}
	fmt.Println(renderTable([]string{"ID", "Label", "Type", "Pos", ""}, nodeRows(g)))
	if len(g.Edges) > 0 {
		fmt.Println(renderTable([]string{"ID", "From", "To"}, edgeRows(g)))
	}
}
