package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/sankey/pkg/flow"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// NodeBrowserModel - Interactive node exploration
// =============================================================================

// NodeBrowserModel is the bubbletea model behind "inspect --interactive".
// It lists the nodes of one stage at a time; enter toggles the incoming
// and outgoing flows of the node under the cursor.
type NodeBrowserModel struct {
	Graph  *flow.Graph
	Stage  int
	Cursor int
	Offset int
	Height int
	Detail bool
}

// NewNodeBrowserModel creates a browser positioned on the first node of
// the first stage.
func NewNodeBrowserModel(g *flow.Graph) NodeBrowserModel {
	return NodeBrowserModel{Graph: g, Height: 15}
}

func (m NodeBrowserModel) Init() tea.Cmd {
	return nil
}

func (m NodeBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
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
			if m.Cursor < len(m.nodes())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "left", "h":
			if m.Stage > 0 {
				m = m.moveStage(m.Stage - 1)
			}
		case "right", "l", "tab":
			if m.Stage < len(m.Graph.Stages)-1 {
				m = m.moveStage(m.Stage + 1)
			}
		case "enter", " ":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

// moveStage switches to stage s and clamps the cursor to its nodes.
func (m NodeBrowserModel) moveStage(s int) NodeBrowserModel {
	m.Stage = s
	m.Cursor = min(m.Cursor, max(len(m.nodes())-1, 0))
	m.Offset = min(m.Offset, m.Cursor)
	return m
}

func (m NodeBrowserModel) nodes() []flow.Node {
	if m.Stage < 0 || m.Stage >= len(m.Graph.Stages) {
		return nil
	}
	return m.Graph.Stages[m.Stage].Nodes
}

// Current returns the node under the cursor.
func (m NodeBrowserModel) Current() (flow.Node, bool) {
	nodes := m.nodes()
	if m.Cursor >= len(nodes) {
		return flow.Node{}, false
	}
	return nodes[m.Cursor], true
}

func (m NodeBrowserModel) View() string {
	var b strings.Builder
	st := m.Graph.Stages[m.Stage]

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Stage %d/%d: %s", m.Stage+1, len(m.Graph.Stages), st.Name)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ stage  ↑/↓ navigate  ⏎ flows  q quit"))
	b.WriteString("\n\n")

	nodes := st.Nodes
	end := min(m.Offset+m.Height, len(nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, n.Label, formatWeight(n.Weight), share(n.Weight, st.Total)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Label", "Weight", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(nodes)), len(nodes))))

	if n, ok := m.Current(); ok && m.Detail {
		b.WriteString("\n\n")
		b.WriteString(m.flowView(n))
	}
	return b.String()
}

// flowView lists the flows entering and leaving n.
func (m NodeBrowserModel) flowView(n flow.Node) string {
	var b strings.Builder
	in := m.Graph.Incoming(n.Stage, n.Label)
	out := m.Graph.Outgoing(n.Stage, n.Label)

	if len(in) == 0 && len(out) == 0 {
		return listDimStyle.Render("  no flows")
	}
	for _, f := range in {
		fmt.Fprintf(&b, "  %s %s %s\n", listNormalStyle.Render(f.Source), iconArrow, StyleNumber.Render(formatWeight(f.Weight)))
	}
	for _, f := range out {
		fmt.Fprintf(&b, "  %s %s %s\n", StyleNumber.Render(formatWeight(f.Weight)), iconArrow, listNormalStyle.Render(f.Target))
	}
	return strings.TrimRight(b.String(), "\n")
}
