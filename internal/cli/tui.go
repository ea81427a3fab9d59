package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/motorrutas/pkg/editor"
	"github.com/matzehuels/motorrutas/pkg/flow"
	"github.com/matzehuels/motorrutas/pkg/partition"
	"github.com/matzehuels/motorrutas/pkg/render/nodelink"
	"github.com/matzehuels/motorrutas/pkg/scene"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMarkedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	listSourceStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)

	paneStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	paneActiveStyle = paneStyle.BorderForeground(colorCyan)
)

// pane identifies a focusable column of the editor view.
type pane int

const (
	paneAvailable pane = iota
	paneSelected
	paneNodes
	paneEdges
	paneCount
)

var paneTitles = [paneCount]string{"Disponibles", "Seleccionados", "Nodos", "Aristas"}

// =============================================================================
// EditorModel - Interactive route editing
// =============================================================================

type loadedMsg struct{ err error }

// EditorModel is the bubbletea model for the terminal route editor.
type EditorModel struct {
	Editor     *editor.Editor
	ExportPath string

	ctx     context.Context
	focus   pane
	cursor  [paneCount]int
	loading bool
	status  string
	snap    editor.Snapshot
}

// NewEditorModel creates a model over ed. When load is true the model loads
// items from the editor's source on start.
func NewEditorModel(ctx context.Context, ed *editor.Editor, exportPath string, load bool) EditorModel {
	return EditorModel{
		Editor:     ed,
		ExportPath: exportPath,
		ctx:        ctx,
		loading:    load,
		snap:       ed.Snapshot(),
	}
}

func (m EditorModel) Init() tea.Cmd {
	if !m.loading {
		return nil
	}
	return m.loadCmd(false)
}

func (m EditorModel) loadCmd(reload bool) tea.Cmd {
	ed, ctx := m.Editor, m.ctx
	return func() tea.Msg {
		if reload {
			return loadedMsg{err: ed.Reload(ctx)}
		}
		return loadedMsg{err: ed.Load(ctx)}
	}
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		switch {
		case msg.err != nil:
			m.status = "Error: " + msg.err.Error()
		default:
			m.refresh()
			if m.snap.LoadError != "" {
				m.status = m.snap.LoadError
			} else {
				m.status = fmt.Sprintf("Cargado %s", m.snap.RouteName)
			}
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m EditorModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.focus = (m.focus + 1) % paneCount
	case "shift+tab":
		m.focus = (m.focus + paneCount - 1) % paneCount
	case "up", "k":
		if m.cursor[m.focus] > 0 {
			m.cursor[m.focus]--
		}
	case "down", "j":
		if m.cursor[m.focus] < m.paneLen(m.focus)-1 {
			m.cursor[m.focus]++
		}
	case "x", " ", "space":
		m.toggleCurrent()
	case ">":
		m.move(editor.Right)
	case "<":
		m.move(editor.Left)
	case "]":
		m.move(editor.AllRight)
	case "[":
		m.move(editor.AllLeft)
	case "enter", "t":
		m.tapCurrent(false)
	case "c", "T":
		m.tapCurrent(true)
	case "esc":
		m.Editor.Tap(scene.Tap{})
		m.status = ""
	case "d", "delete":
		m.deleteCurrentEdge()
	case "D":
		n := m.Editor.ClearEdges()
		m.status = fmt.Sprintf("%d aristas eliminadas", n)
	case "r":
		m.loading = true
		m.status = "Recargando..."
		return m, m.loadCmd(true)
	case "e":
		m.export()
	}
	m.refresh()
	return m, nil
}

// refresh re-reads the snapshot and clamps cursors.
func (m *EditorModel) refresh() {
	m.snap = m.Editor.Snapshot()
	for p := range paneCount {
		if n := m.paneLen(p); m.cursor[p] >= n {
			m.cursor[p] = max(n-1, 0)
		}
	}
}

func (m EditorModel) paneLen(p pane) int {
	switch p {
	case paneAvailable:
		return len(m.snap.Available)
	case paneSelected:
		return len(m.snap.Selected)
	case paneNodes:
		return len(m.nodes())
	default:
		return len(m.snap.Edges)
	}
}

func (m EditorModel) nodes() []scene.Element {
	var out []scene.Element
	for _, el := range m.snap.Elements {
		if el.IsNode() {
			out = append(out, el)
		}
	}
	return out
}

// toggleCurrent marks the row under the cursor. Selected rows are
// addressed after the available ones.
func (m *EditorModel) toggleCurrent() {
	switch m.focus {
	case paneAvailable:
		if len(m.snap.Available) > 0 {
			m.Editor.Toggle(m.cursor[paneAvailable])
		}
	case paneSelected:
		if len(m.snap.Selected) > 0 {
			m.Editor.Toggle(len(m.snap.Available) + m.cursor[paneSelected])
		}
	}
}

func (m *EditorModel) move(d editor.Direction) {
	moved, err := m.Editor.Move(d)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("%d movidos (%s)", len(moved), d)
}

func (m *EditorModel) tapCurrent(modifier bool) {
	if m.focus != paneNodes {
		return
	}
	nodes := m.nodes()
	if len(nodes) == 0 {
		return
	}
	target := nodes[m.cursor[paneNodes]].ID
	before := len(m.snap.Edges)
	m.Editor.Tap(scene.Tap{Target: target, Modifier: modifier})

	snap := m.Editor.Snapshot()
	switch {
	case len(snap.Edges) > before:
		e := snap.Edges[len(snap.Edges)-1]
		m.status = "Arista creada " + e.ID()
	case snap.Connection.Active():
		m.status = fmt.Sprintf("Origen %s: elija destino y confirme con c", snap.Connection.Source)
	default:
		m.status = ""
	}
}

func (m *EditorModel) deleteCurrentEdge() {
	if m.focus != paneEdges || len(m.snap.Edges) == 0 {
		return
	}
	id := m.snap.Edges[m.cursor[paneEdges]].ID()
	if m.Editor.DeleteEdge(id) {
		m.status = "Arista eliminada " + id
	}
}

func (m *EditorModel) export() {
	if m.ExportPath == "" {
		m.status = "Sin ruta de exportación (use --output)"
		return
	}
	dot := nodelink.ToDOT(m.Editor.Elements(), nodelink.Options{Title: m.snap.RouteName})
	if err := os.WriteFile(m.ExportPath, []byte(dot), 0o644); err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.status = "Exportado a " + m.ExportPath
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := "Motor de Rutas"
	if m.snap.RouteName != "" {
		title += " · " + m.snap.RouteName
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab pane  ↑/↓ move  x mark  > < ] [ transfer  t tap  c confirm  esc cancel  d delete  D clear  r reload  e export  q quit"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(listDimStyle.Render("Cargando..."))
		b.WriteString("\n")
		return b.String()
	}

	marked := make(map[int]bool, len(m.snap.Marked))
	for _, i := range m.snap.Marked {
		marked[i] = true
	}
	offset := len(m.snap.Available)

	cols := []string{
		m.renderPane(paneAvailable, itemRows(m.snap.Available, marked, 0)),
		m.renderPane(paneSelected, itemRows(m.snap.Selected, marked, offset)),
		m.renderPane(paneNodes, m.nodeRows()),
		m.renderPane(paneEdges, edgeRows(m.snap.Edges)),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(listDimStyle.Render("  " + m.status))
		b.WriteString("\n")
	}
	return b.String()
}

type row struct {
	text  string
	style lipgloss.Style
}

func (m EditorModel) renderPane(p pane, rows []row) string {
	var b strings.Builder
	b.WriteString(listDimStyle.Render(paneTitles[p]))
	b.WriteString("\n")
	if len(rows) == 0 {
		b.WriteString(listDimStyle.Render("—"))
	}
	for i, r := range rows {
		cursor := "  "
		style := r.style
		if p == m.focus && i == m.cursor[p] {
			cursor = "▸ "
			style = listSelectedStyle
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(style.Render(cursor + r.text))
	}
	if p == m.focus {
		return paneActiveStyle.Render(b.String())
	}
	return paneStyle.Render(b.String())
}

func itemRows(items []partition.Item, marked map[int]bool, offset int) []row {
	rows := make([]row, len(items))
	for i, it := range items {
		box, style := "[ ]", listNormalStyle
		if marked[offset+i] {
			box, style = "[x]", listMarkedStyle
		}
		rows[i] = row{text: box + " " + it.DisplayLabel(), style: style}
	}
	return rows
}

func (m EditorModel) nodeRows() []row {
	nodes := m.nodes()
	rows := make([]row, len(nodes))
	for i, el := range nodes {
		label := el.Label
		if label == "" {
			label = el.ID
		}
		switch {
		case el.HasClass(flow.ClassSource):
			rows[i] = row{text: "● " + label, style: listSourceStyle}
		case el.HasClass(flow.ClassTarget):
			rows[i] = row{text: "○ " + label, style: listMarkedStyle}
		default:
			rows[i] = row{text: "  " + label, style: listNormalStyle}
		}
	}
	return rows
}

func edgeRows(edges []flow.Edge) []row {
	rows := make([]row, len(edges))
	for i, e := range edges {
		rows[i] = row{text: fmt.Sprintf("%s %s %s", e.Source, iconArrow, e.Target), style: listNormalStyle}
	}
	return rows
}
