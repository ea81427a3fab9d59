package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/motorrutas/pkg/editor"
	"github.com/matzehuels/motorrutas/pkg/flow"
	"github.com/matzehuels/motorrutas/pkg/partition"
)

func newTestModel(t *testing.T, ids ...string) EditorModel {
	t.Helper()
	items := make([]partition.Item, len(ids))
	for i, id := range ids {
		items[i] = partition.Item{ID: partition.ItemID(id), Label: "Ofi " + id}
	}
	ed := editor.New(nil, editor.WithItems(items))
	return NewEditorModel(context.Background(), ed, filepath.Join(t.TempDir(), "ruta.dot"), false)
}

func keys(t *testing.T, m EditorModel, ks ...string) EditorModel {
	t.Helper()
	for _, k := range ks {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(EditorModel)
	}
	return m
}

func TestEditorModelMarkAndMove(t *testing.T) {
	m := newTestModel(t, "1", "2", "3")

	m = keys(t, m, "x", "down", "down", "x", ">")
	snap := m.Editor.Snapshot()
	if len(snap.Selected) != 2 || snap.Selected[0].ID != "1" || snap.Selected[1].ID != "3" {
		t.Fatalf("selected = %v", snap.Selected)
	}
	if len(snap.Marked) != 0 {
		t.Errorf("marks should clear after a move: %v", snap.Marked)
	}
	if m.cursor[paneAvailable] != 0 {
		t.Errorf("cursor should clamp to the shorter list, got %d", m.cursor[paneAvailable])
	}

	// Selected rows are addressed after the available ones.
	m = keys(t, m, "tab", "down", "x", "<")
	snap = m.Editor.Snapshot()
	if len(snap.Available) != 2 || snap.Available[1].ID != "3" {
		t.Errorf("available = %v", snap.Available)
	}

	m = keys(t, m, "]")
	if got := len(m.Editor.Snapshot().Available); got != 0 {
		t.Errorf("all-right left %d available", got)
	}
	m = keys(t, m, "[")
	if got := len(m.Editor.Snapshot().Selected); got != 0 {
		t.Errorf("all-left left %d selected", got)
	}
}

func TestEditorModelConnectAndDelete(t *testing.T) {
	m := newTestModel(t, "1")
	m = keys(t, m, "]", "tab", "tab")
	if m.focus != paneNodes {
		t.Fatalf("focus = %d, want nodes pane", m.focus)
	}

	nodes := m.nodes()
	idx := func(id string) int {
		for i, n := range nodes {
			if n.ID == id {
				return i
			}
		}
		t.Fatalf("node %s missing", id)
		return 0
	}

	// Tap INICIO, move to 1 and confirm.
	m.cursor[paneNodes] = idx("INICIO")
	m = keys(t, m, "t")
	if !m.Editor.Snapshot().Connection.Active() {
		t.Fatal("tap should start a connection")
	}
	m.cursor[paneNodes] = idx("1")
	m = keys(t, m, "c")

	edges := m.Editor.Snapshot().Edges
	if len(edges) != 1 || edges[0] != (flow.Edge{Source: flow.Start, Target: "1"}) {
		t.Fatalf("edges = %v", edges)
	}
	if !strings.Contains(m.status, "INICIO-1") {
		t.Errorf("status = %q", m.status)
	}

	m = keys(t, m, "tab", "d")
	if got := m.Editor.Snapshot().Edges; len(got) != 0 {
		t.Errorf("edges after delete = %v", got)
	}
}

func TestEditorModelEscCancels(t *testing.T) {
	m := newTestModel(t, "1")
	m = keys(t, m, "]", "tab", "tab", "t")
	if !m.Editor.Snapshot().Connection.Active() {
		t.Fatal("tap should start a connection")
	}
	m = keys(t, m, "esc")
	if m.Editor.Snapshot().Connection.Active() {
		t.Error("esc should cancel the pending source")
	}
}

func TestEditorModelExport(t *testing.T) {
	m := newTestModel(t, "1")
	m = keys(t, m, "]", "e")

	data, err := os.ReadFile(m.ExportPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(data), `"1" [label="Ofi 1"`) {
		t.Errorf("export missing node:\n%s", data)
	}
}

func TestEditorModelLoad(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(loadedMsg{err: editor.ErrNoSource})
	m = next.(EditorModel)
	if !strings.Contains(m.status, "no item source") {
		t.Errorf("status = %q", m.status)
	}
	if view := m.View(); !strings.Contains(view, "Disponibles") {
		t.Errorf("view missing panes:\n%s", view)
	}
}
