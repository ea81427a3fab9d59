package editor

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/motorrutas/pkg/flow"
	"github.com/matzehuels/motorrutas/pkg/integrations/rutas"
	"github.com/matzehuels/motorrutas/pkg/observability"
	"github.com/matzehuels/motorrutas/pkg/partition"
	"github.com/matzehuels/motorrutas/pkg/scene"
)

type staticSource struct {
	fetch, reload rutas.Result
}

func (s staticSource) Fetch(context.Context) (rutas.Result, error)  { return s.fetch, nil }
func (s staticSource) Reload(context.Context) (rutas.Result, error) { return s.reload, nil }

// gatedSource blocks each call until the test releases it.
type gatedSource struct {
	calls chan gatedCall
}

type gatedCall struct {
	ctx   context.Context
	reply chan rutas.Result
}

func (g gatedSource) Fetch(ctx context.Context) (rutas.Result, error)  { return g.wait(ctx) }
func (g gatedSource) Reload(ctx context.Context) (rutas.Result, error) { return g.wait(ctx) }

func (g gatedSource) wait(ctx context.Context) (rutas.Result, error) {
	c := gatedCall{ctx: ctx, reply: make(chan rutas.Result)}
	g.calls <- c
	select {
	case res := <-c.reply:
		return res, nil
	case <-ctx.Done():
		return rutas.Result{}, ctx.Err()
	}
}

func items(labels ...string) []partition.Item {
	out := make([]partition.Item, len(labels))
	for i, l := range labels {
		out[i] = partition.Item{ID: partition.ItemID(l), Label: l}
	}
	return out
}

func labels(its []partition.Item) []string {
	out := make([]string, len(its))
	for i, it := range its {
		out[i] = it.Label
	}
	return out
}

func quiet() Option { return WithLogger(log.New(io.Discard)) }

func TestLoadScenario(t *testing.T) {
	src := staticSource{fetch: rutas.Result{RouteName: "Ruta X", Items: []partition.Item{{ID: "1", Label: "Mesa de Partes"}}}}
	e := New(src, quiet())
	require.NoError(t, e.Load(context.Background()))

	s := e.Snapshot()
	assert.Equal(t, []string{"Mesa de Partes"}, labels(s.Available))
	assert.Equal(t, []string{"Ruta X"}, s.ClassifierOptions)
	assert.Empty(t, s.LoadError)
}

func TestLoadFallbackScenario(t *testing.T) {
	src := staticSource{fetch: rutas.Result{Items: rutas.Placeholder(), Err: rutas.ErrorMessage}}
	e := New(src, quiet())
	require.NoError(t, e.Load(context.Background()))

	s := e.Snapshot()
	assert.Len(t, s.Available, 4)
	assert.Equal(t, rutas.ErrorMessage, s.LoadError)
	assert.Empty(t, s.ClassifierOptions)
}

func TestNoSource(t *testing.T) {
	e := New(nil, quiet())
	assert.ErrorIs(t, e.Load(context.Background()), ErrNoSource)
	assert.ErrorIs(t, e.Reload(context.Background()), ErrNoSource)
}

func TestMoveRightScenario(t *testing.T) {
	e := New(nil, quiet(), WithItems(items("A", "B", "C")))
	e.Toggle(0)
	e.Toggle(2)
	moved, err := e.Move(Right)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, labels(moved))

	s := e.Snapshot()
	assert.Equal(t, []string{"B"}, labels(s.Available))
	assert.Equal(t, []string{"A", "C"}, labels(s.Selected))
	assert.Empty(t, s.Marked)

	var nodes []string
	for _, el := range s.Elements {
		if el.IsNode() {
			nodes = append(nodes, el.ID)
		}
	}
	assert.ElementsMatch(t, []string{"INICIO", "FIN", "A", "C"}, nodes)
}

func TestMoveLeftPrunesEdges(t *testing.T) {
	e := New(nil, quiet(), WithItems(items("A", "B")))
	_, err := e.Move(AllRight)
	require.NoError(t, err)

	require.True(t, e.Connect(flow.Start, "A"))
	require.True(t, e.Connect("A", "B"))
	require.True(t, e.Connect("B", flow.End))

	e.Toggle(0) // A, first selected at index len(available)=0
	moved, err := e.Move(Left)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, labels(moved))

	s := e.Snapshot()
	assert.Equal(t, []flow.Edge{{Source: "B", Target: flow.End}}, s.Edges)
	for _, el := range s.Elements {
		assert.NotEqual(t, "A", el.ID)
		if el.IsEdge() {
			assert.NotEqual(t, "A", el.Source)
			assert.NotEqual(t, "A", el.Target)
		}
	}
}

func TestMoveAllLeftClearsItemEdges(t *testing.T) {
	e := New(nil, quiet(), WithItems(items("A", "B")))
	e.Move(AllRight)
	e.Connect("A", "B")
	e.Connect(flow.Start, flow.End)

	moved, err := e.Move(AllLeft)
	require.NoError(t, err)
	assert.Len(t, moved, 2)

	s := e.Snapshot()
	assert.Equal(t, []string{"A", "B"}, labels(s.Available))
	assert.Equal(t, []flow.Edge{{Source: flow.Start, Target: flow.End}}, s.Edges)
}

func TestMoveEmptySelectionIsNoop(t *testing.T) {
	e := New(nil, quiet(), WithItems(items("A")))
	before := e.Snapshot()
	moved, err := e.Move(Right)
	require.NoError(t, err)
	assert.Nil(t, moved)
	assert.Equal(t, before.Available, e.Snapshot().Available)
}

func TestMoveInvalidDirection(t *testing.T) {
	e := New(nil, quiet())
	_, err := e.Move("up")
	assert.ErrorIs(t, err, ErrInvalidDirection)

	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)
	d, err := ParseDirection("all-left")
	require.NoError(t, err)
	assert.Equal(t, AllLeft, d)
}

func TestTapConnectAndDelete(t *testing.T) {
	e := New(nil, quiet(), WithItems(items("A", "B")))
	e.Move(AllRight)

	e.Tap(scene.Tap{Target: "A"})
	s := e.Snapshot()
	assert.True(t, s.Connection.Active())
	assert.ElementsMatch(t, []partition.ItemID{flow.Start, flow.End, "B"}, s.PotentialTargets)

	e.Tap(scene.Tap{Target: "B", Modifier: true})
	s = e.Snapshot()
	assert.False(t, s.Connection.Active())
	assert.Equal(t, []flow.Edge{{Source: "A", Target: "B"}}, s.Edges)

	assert.True(t, e.DeleteEdge("A-B"))
	assert.False(t, e.DeleteEdge("A-B"))
	assert.Empty(t, e.Snapshot().Edges)
}

func TestClearEdgesAndCenter(t *testing.T) {
	e := New(nil, quiet(), WithItems(items("A")))
	e.Move(AllRight)
	e.Connect(flow.Start, "A")
	e.Connect("A", flow.End)

	assert.Equal(t, 2, e.ClearEdges())
	assert.Empty(t, e.Snapshot().Edges)

	e.Center()
	vp := e.Snapshot().Viewport
	assert.Equal(t, 0.6, vp.Zoom)
	assert.Equal(t, 80.0, vp.Padding)
}

func TestSetForm(t *testing.T) {
	e := New(nil, quiet())
	f := Form{Classifier: "Ruta X", Description: "Trámite", DeadlineDays: 5, Mandatory: true}
	e.SetForm(f)
	assert.Equal(t, f, e.Snapshot().Form)
}

func TestReloadKeepsSelectionAndEdges(t *testing.T) {
	src := staticSource{
		fetch:  rutas.Result{Items: items("A", "B", "C")},
		reload: rutas.Result{RouteName: "Ruta Y", Items: items("A", "B", "C", "D")},
	}
	e := New(src, quiet())
	require.NoError(t, e.Load(context.Background()))
	e.Toggle(0)
	e.Move(Right)
	e.Connect(flow.Start, "A")

	require.NoError(t, e.Reload(context.Background()))
	s := e.Snapshot()
	assert.Equal(t, []string{"B", "C", "D"}, labels(s.Available), "selected items must not reappear as available")
	assert.Equal(t, []string{"A"}, labels(s.Selected))
	assert.Len(t, s.Edges, 1)
	assert.Equal(t, []string{"Ruta Y"}, s.ClassifierOptions)
}

func TestReloadCancelsInFlightLoad(t *testing.T) {
	src := gatedSource{calls: make(chan gatedCall)}
	e := New(src, quiet())
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() { firstErr <- e.Load(ctx) }()
	first := <-src.calls

	secondErr := make(chan error, 1)
	go func() { secondErr <- e.Reload(ctx) }()
	second := <-src.calls

	select {
	case <-first.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("first load was not canceled")
	}
	assert.ErrorIs(t, <-firstErr, ErrSuperseded)

	second.reply <- rutas.Result{Items: items("Nuevo")}
	require.NoError(t, <-secondErr)
	assert.Equal(t, []string{"Nuevo"}, labels(e.Snapshot().Available))
}

func TestStaleResultDiscarded(t *testing.T) {
	// A source that ignores cancellation still cannot overwrite newer state.
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	var n int
	src := funcSource(func(ctx context.Context) (rutas.Result, error) {
		n++
		call := n
		started <- struct{}{}
		if call == 1 {
			<-release
			return rutas.Result{Items: items("Viejo")}, nil
		}
		return rutas.Result{Items: items("Nuevo")}, nil
	})
	e := New(src, quiet())
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() { firstErr <- e.Load(ctx) }()
	<-started

	require.NoError(t, e.Reload(ctx))
	<-started
	close(release)
	assert.True(t, errors.Is(<-firstErr, ErrSuperseded))
	assert.Equal(t, []string{"Nuevo"}, labels(e.Snapshot().Available))
}

type funcSource func(context.Context) (rutas.Result, error)

func (f funcSource) Fetch(ctx context.Context) (rutas.Result, error)  { return f(ctx) }
func (f funcSource) Reload(ctx context.Context) (rutas.Result, error) { return f(ctx) }

type recordingHooks struct {
	moves     []string
	reasons   []string
	reconcile int
}

func (h *recordingHooks) OnMove(d string, _ int)              { h.moves = append(h.moves, d) }
func (h *recordingHooks) OnEdgesChanged(r string, _, _ int)   { h.reasons = append(h.reasons, r) }
func (h *recordingHooks) OnReconcile(int, int, time.Duration) { h.reconcile++ }

func TestHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetEditorHooks(h)
	defer observability.Reset()

	e := New(nil, quiet(), WithItems(items("A")))
	e.Move(AllRight)
	e.Connect("A", flow.End)
	e.Move(AllLeft)

	assert.Equal(t, []string{"all-right", "all-left"}, h.moves)
	assert.Equal(t, []string{"connect", "prune"}, h.reasons)
	assert.Equal(t, 2, h.reconcile)
}
