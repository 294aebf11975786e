package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/costgraph/pkg/controller"
	"github.com/matzehuels/costgraph/pkg/graph"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	statusErrStyle  = lipgloss.NewStyle().Foreground(colorRed)
	statusOKStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	totalPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1).
			MarginLeft(2)
)

// =============================================================================
// EditorModel - Interactive diagram editing
// =============================================================================

// EditorModel is the bubbletea model behind "costgraph edit".
//
// All controller access happens inside Update, which bubbletea runs on a
// single goroutine, so the controller's single-owner rule holds.
type EditorModel struct {
	ctx  context.Context
	ctrl *controller.Controller
	path string

	Cursor int
	Height int
	Offset int

	dirty      bool
	confirming bool // quit requested with unsaved changes
	status     string
	statusErr  bool
}

// NewEditorModel creates an editor for ctrl that saves to path.
func NewEditorModel(ctx context.Context, ctrl *controller.Controller, path string) EditorModel {
	m := EditorModel{ctx: ctx, ctrl: ctrl, path: path, Height: 15}
	m.selectCursor()
	return m
}

// Dirty reports whether there are unsaved edits.
func (m EditorModel) Dirty() bool { return m.dirty }

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key != "q" && key != "esc" {
			m.confirming = false
		}
		switch key {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "esc":
			if m.dirty && !m.confirming {
				m.confirming = true
				m.setStatus("Unsaved changes: press s to save or q again to discard", true)
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "a":
			n, err := m.ctrl.AddChild()
			if m.check(err) {
				m.dirty = true
				m.Cursor = len(m.nodes()) - 1
				m.selectCursor()
				m.setStatus("Added "+n.DisplayLabel(), false)
			}
		case "x", "delete":
			if n, ok := m.current(); ok {
				_, err := m.ctrl.DeleteNode(n.ID)
				if m.check(err) {
					m.dirty = true
					m.move(0)
					m.setStatus("Removed "+n.DisplayLabel(), false)
				}
			}
		case "d":
			m.edit(controller.FieldDesignDifficulty, func(d graph.NodeData) string { return string(nextDifficulty(d.Design.Difficulty)) })
		case "D":
			m.edit(controller.FieldDesignType, func(d graph.NodeData) string { return string(otherType(d.Design.Type)) })
		case "c":
			m.edit(controller.FieldCodingDifficulty, func(d graph.NodeData) string { return string(nextDifficulty(d.Coding.Difficulty)) })
		case "C":
			m.edit(controller.FieldCodingType, func(d graph.NodeData) string { return string(otherType(d.Coding.Type)) })
		case "u":
			m.edit(controller.FieldUploading, func(d graph.NodeData) string {
				if d.Uploading == graph.UploadingYes {
					return string(graph.UploadingNo)
				}
				return string(graph.UploadingYes)
			})
		case "s":
			if m.check(saveDocument(m.ctx, m.ctrl, m.path)) {
				m.dirty = false
				m.setStatus("Saved "+m.path, false)
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
		m.scroll()
	}
	return m, nil
}

// edit changes one field of the node under the cursor through a node
// dialog, so the edit is validated like any other.
func (m *EditorModel) edit(field string, value func(graph.NodeData) string) {
	n, ok := m.current()
	if !ok {
		return
	}
	d, err := m.ctrl.NodeDoubleClick(n.ID)
	if !m.check(err) {
		return
	}
	if err := m.ctrl.SetField(field, value(d.Node)); err != nil {
		m.ctrl.Cancel()
		m.check(err)
		return
	}
	if m.check(m.ctrl.Commit()) {
		m.dirty = true
		m.setStatus(fmt.Sprintf("%s: %s = %s", n.ID, field, value(d.Node)), false)
	}
}

func (m *EditorModel) check(err error) bool {
	if err != nil {
		m.setStatus(err.Error(), true)
		return false
	}
	return true
}

func (m *EditorModel) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m *EditorModel) move(delta int) {
	n := len(m.nodes())
	m.Cursor = min(max(m.Cursor+delta, 0), max(n-1, 0))
	m.selectCursor()
	m.scroll()
}

func (m *EditorModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// selectCursor makes the node under the cursor the selection, so "a" adds
// below it.
func (m *EditorModel) selectCursor() {
	if n, ok := m.current(); ok {
		_ = m.ctrl.NodeClick(n.ID)
	}
}

func (m EditorModel) nodes() []graph.Node { return m.ctrl.Snapshot().Nodes }

func (m EditorModel) current() (graph.Node, bool) {
	nodes := m.nodes()
	if m.Cursor < 0 || m.Cursor >= len(nodes) {
		return graph.Node{}, false
	}
	return nodes[m.Cursor], true
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := "Edit " + m.path
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  a add  x remove  d/D design  c/C coding  u upload  s save  q quit"))
	b.WriteString("\n\n")

	nodes := m.nodes()
	end := min(m.Offset+m.Height, len(nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, n.ID, n.DisplayLabel(), classLabel(n.Data.Design), classLabel(n.Data.Coding), string(n.Data.Uploading)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Label", "Design", "Coding", "Upload").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle()
		})

	sum := m.ctrl.Summary()
	totals := totalPanelStyle.Render(strings.Join([]string{
		StyleDim.Render("New       ") + StyleNumber.Render(formatAmount(sum.New.Total)),
		StyleDim.Render("Adapt     ") + StyleNumber.Render(formatAmount(sum.Adapt.Total)),
		StyleDim.Render("Uploading ") + StyleNumber.Render(formatAmount(sum.Uploading.Total)),
		StyleDim.Render("Total     ") + StyleNumber.Bold(true).Render(formatAmount(sum.New.Total+sum.Adapt.Total)),
	}, "\n"))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, t.Render(), totals))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(nodes)), len(nodes))))
	if m.status != "" {
		style := statusOKStyle
		if m.statusErr {
			style = statusErrStyle
		}
		b.WriteString("  " + style.Render(m.status))
	}
	b.WriteString("\n")

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func nextDifficulty(d graph.Difficulty) graph.Difficulty {
	i := slices.Index(graph.Difficulties, d)
	return graph.Difficulties[(i+1)%len(graph.Difficulties)]
}

func otherType(t graph.WorkType) graph.WorkType {
	if t == graph.WorkAdapt {
		return graph.WorkNew
	}
	return graph.WorkAdapt
}
