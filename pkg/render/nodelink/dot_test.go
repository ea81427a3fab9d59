package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/motorrutas/pkg/flow"
	"github.com/matzehuels/motorrutas/pkg/partition"
	"github.com/matzehuels/motorrutas/pkg/scene"
)

func buildScene(t *testing.T) *scene.Memory {
	t.Helper()
	m := scene.NewMemory()
	e := flow.New(m)
	e.Reconcile([]partition.Item{{ID: "1", Label: "Mesa de Partes"}, {ID: "2", Label: "Decanato"}})
	e.Connect(flow.Start, "1")
	e.Connect("1", "2")
	e.Connect("2", flow.End)
	return m
}

func TestToDOTContainsEveryElement(t *testing.T) {
	m := buildScene(t)
	dot := ToDOT(m.Elements(), Options{Title: "Ruta X"})

	for _, want := range []string{
		`digraph G {`,
		`rankdir=LR;`,
		`label="Ruta X";`,
		`"INICIO" [label="INICIO", shape=ellipse`,
		`"FIN" [label="FIN", shape=ellipse`,
		`"1" [label="Mesa de Partes"]`,
		`"2" [label="Decanato"]`,
		`"INICIO" -> "1" [id="INICIO-1"];`,
		`"1" -> "2" [id="1-2"];`,
		`"2" -> "FIN" [id="2-FIN"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTMarksSession(t *testing.T) {
	m := buildScene(t)
	m.Tap("1", false)
	dot := ToDOT(m.Elements(), Options{})

	if !strings.Contains(dot, `"1" [label="Mesa de Partes", fillcolor="#fde68a", penwidth=2]`) {
		t.Errorf("source node not highlighted:\n%s", dot)
	}
	if !strings.Contains(dot, `"FIN" [label="FIN", shape=ellipse, fillcolor="#e8f0fe", style="rounded,filled,dashed"`) {
		t.Errorf("FIN should be a potential target:\n%s", dot)
	}
	if strings.Contains(dot, `"2" [label="Decanato", style=`) {
		t.Errorf("2 is already connected from 1 and must not be a target:\n%s", dot)
	}
	if strings.Contains(dot, "label=\"Ruta") {
		t.Error("no title expected")
	}
}

func TestFmtLabel(t *testing.T) {
	tests := []struct {
		name     string
		el       scene.Element
		detailed bool
		want     string
	}{
		{"Label", scene.Element{ID: "1", Label: "Caja"}, false, "Caja"},
		{"Detailed", scene.Element{ID: "1", Label: "Caja"}, true, "Caja\n1"},
		{"DetailedSame", scene.Element{ID: "FIN", Label: "FIN"}, true, "FIN"},
		{"NoLabel", scene.Element{ID: "7"}, false, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fmtLabel(tt.el, tt.detailed); got != tt.want {
				t.Errorf("fmtLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox() = %q, want %q", out, want)
	}
	if got := string(normalizeViewBox([]byte("<svg>"))); got != "<svg>" {
		t.Errorf("no viewBox should pass through, got %q", got)
	}
}
