package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nodemap/nodemap/pkg/graph"
	"github.com/nodemap/nodemap/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the "browse" command, an interactive terminal view
// of a document.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <document>",
		Short: "Browse a graph document interactively in the terminal",
		Long: `Browse a graph document interactively.

Moving the cursor selects nodes; selecting a node loads its markdown note
in the background, exactly as the canvas editor does.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, cleanup, err := c.newGateway(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			sess := session.New(gw, session.Options{
				Logger:        c.Logger,
				Layout:        c.Config.Layout,
				AutosaveDelay: c.Config.Autosave.Delay(),
			})
			if err := sess.Open(cmd.Context(), args[0]); err != nil {
				return err
			}

			model := newBrowseModel(sess)
			p := tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// browseModel - Interactive node browser
// =============================================================================

// noteTickMsg triggers a re-render so asynchronously loaded notes appear
// without further input.
type noteTickMsg struct{}

func noteTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return noteTickMsg{}
	})
}

// browseModel is the bubbletea model for browsing a document's nodes.
type browseModel struct {
	session *session.Session
	nodes   []graph.Node
	cursor  int
	height  int
	offset  int
	waiting bool // a note load is in flight for the cursor node
}

func newBrowseModel(s *session.Session) browseModel {
	return browseModel{
		session: s,
		nodes:   s.Document().Nodes,
		height:  15,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if len(m.nodes) == 0 {
				return m, nil
			}
			id := m.nodes[m.cursor].ID
			if err := m.session.SelectNode(id); err != nil {
				return m, nil
			}
			if _, loaded := m.session.Note(id); !loaded {
				m.waiting = true
				return m, noteTick()
			}
			m.waiting = false
		}
	case noteTickMsg:
		sel := m.session.Selected()
		if sel.Kind != session.SelectionNode {
			m.waiting = false
			return m, nil
		}
		if _, loaded := m.session.Note(sel.ID); !loaded {
			return m, noteTick()
		}
		m.waiting = false
	case tea.WindowSizeMsg:
		m.height = msg.Height - 10
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	name := m.session.Binding().Name
	b.WriteString(StyleTitle.Render("Browse " + name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.nodes) == 0 {
		b.WriteString(listDimStyle.Render("  (empty document)"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.offset + m.height
	if end > len(m.nodes) {
		end = len(m.nodes)
	}

	sel := m.session.Selected()
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		marker := " "
		if sel.Kind == session.SelectionNode && sel.ID == n.ID {
			marker = "●"
		}

		tag := ""
		if n.TagName != "" {
			tag = "  " + listDimStyle.Render("["+n.TagName+"]")
		}

		line := fmt.Sprintf("%s%s %s%s", cursor, marker, n.Label, tag)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.nodes))))
	b.WriteString("\n\n")
	b.WriteString(m.noteView(sel))

	return b.String()
}

// noteView renders the selected node's note panel.
func (m browseModel) noteView(sel session.Selection) string {
	if sel.Kind != session.SelectionNode {
		return listDimStyle.Render("  select a node to view its note")
	}

	content, loaded := m.session.Note(sel.ID)
	switch {
	case !loaded:
		return listDimStyle.Render("  loading note...")
	case content == "":
		return listDimStyle.Render("  (no note)")
	default:
		lines := strings.Split(content, "\n")
		if len(lines) > 8 {
			lines = append(lines[:8], listDimStyle.Render("  ..."))
		}
		return StyleValue.Render(strings.Join(lines, "\n"))
	}
}
