package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/motorrutas/pkg/flow"
	"github.com/matzehuels/motorrutas/pkg/integrations/rutas"
	"github.com/matzehuels/motorrutas/pkg/observability"
	"github.com/matzehuels/motorrutas/pkg/partition"
	"github.com/matzehuels/motorrutas/pkg/scene"
)

var (
	// ErrSuperseded is returned by a load whose result was discarded
	// because a newer load started.
	ErrSuperseded = errors.New("load superseded by a newer request")

	// ErrNoSource is returned by Load and Reload when the editor has no
	// item source.
	ErrNoSource = errors.New("editor has no item source")

	// ErrInvalidDirection is returned by Move for an unknown direction.
	ErrInvalidDirection = errors.New("invalid move direction")
)

// Source supplies the available items.
type Source interface {
	Fetch(ctx context.Context) (rutas.Result, error)
	Reload(ctx context.Context) (rutas.Result, error)
}

// Direction names a move between the two lists.
type Direction string

// Move directions.
const (
	Right    Direction = "right"
	Left     Direction = "left"
	AllRight Direction = "all-right"
	AllLeft  Direction = "all-left"
)

// ParseDirection validates s as a [Direction].
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Right, Left, AllRight, AllLeft:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Form holds the route metadata fields. They are stored as entered.
type Form struct {
	Classifier   string `json:"classifier"`
	Description  string `json:"description"`
	ValidFrom    string `json:"validFrom"`
	ValidTo      string `json:"validTo"`
	DeadlineDays int    `json:"deadlineDays"`
	Mandatory    bool   `json:"mandatory"`
}

// Editor is a route editor. All methods are safe for concurrent use.
type Editor struct {
	mu     sync.Mutex
	items  *partition.Manager
	scene  *scene.Memory
	flow   *flow.Engine
	source Source
	logger *log.Logger

	routeName string
	loadErr   string
	form      Form

	gen        uint64
	cancelLoad context.CancelFunc
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithItems seeds the available list without a load.
func WithItems(items []partition.Item) Option {
	return func(e *Editor) { e.items.ReplaceAvailable(items) }
}

// New creates an editor over src. src may be nil for headless use with
// [WithItems].
func New(src Source, opts ...Option) *Editor {
	e := &Editor{
		items:  partition.New(nil, partition.WithReserved(flow.Start, flow.End)),
		scene:  scene.NewMemory(),
		source: src,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.flow = flow.New(e.scene,
		flow.WithLogger(e.logger),
		flow.WithEdgeListener(func(c flow.EdgeChange) {
			observability.Editor().OnEdgesChanged(c.Reason, len(c.Created), len(c.Deleted))
		}),
	)
	return e
}

// Load runs the full source chain and replaces the available list.
func (e *Editor) Load(ctx context.Context) error {
	if e.source == nil {
		return ErrNoSource
	}
	return e.load(ctx, "load", e.source.Fetch)
}

// Reload retries the primary source and replaces the available list.
func (e *Editor) Reload(ctx context.Context) error {
	if e.source == nil {
		return ErrNoSource
	}
	return e.load(ctx, "reload", e.source.Reload)
}

func (e *Editor) load(ctx context.Context, kind string, fetch func(context.Context) (rutas.Result, error)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	if e.cancelLoad != nil {
		e.cancelLoad()
	}
	e.gen++
	gen := e.gen
	e.cancelLoad = cancel
	e.mu.Unlock()

	res, err := fetch(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		e.logger.Debug("discarding stale result", "kind", kind)
		return ErrSuperseded
	}
	e.cancelLoad = nil
	if err != nil {
		return err
	}

	e.routeName = res.RouteName
	e.loadErr = res.Err
	e.items.ReplaceAvailable(res.Items)
	e.logger.Debug("items loaded", "kind", kind, "count", len(res.Items), "fallback", res.Fallback(), "url", res.URL)
	return nil
}

// Toggle flips index i in the selection index set. Indices address the
// concatenation of the available and selected lists.
func (e *Editor) Toggle(i int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items.ToggleIndex(i)
}

// Move applies a move in direction d and returns the moved items.
// Items leaving the selected list lose their edges.
func (e *Editor) Move(d Direction) ([]partition.Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var moved []partition.Item
	switch d {
	case Right:
		moved = e.items.MoveSelectedToRight()
	case AllRight:
		moved = e.items.MoveAllToRight()
	case Left:
		moved = e.items.MoveSelectedToLeft()
		e.prune(moved)
	case AllLeft:
		moved = e.items.MoveAllToLeft()
		e.prune(moved)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, d)
	}
	if len(moved) == 0 {
		return nil, nil
	}
	e.reconcile()
	observability.Editor().OnMove(string(d), len(moved))
	return moved, nil
}

func (e *Editor) prune(items []partition.Item) {
	if len(items) == 0 {
		return
	}
	ids := make([]partition.ItemID, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	e.flow.Prune(ids...)
}

func (e *Editor) reconcile() {
	start := time.Now()
	e.flow.Reconcile(e.items.Selected())
	var nodes, edges int
	for _, el := range e.scene.Elements() {
		if el.IsNode() {
			nodes++
		} else {
			edges++
		}
	}
	observability.Editor().OnReconcile(nodes, edges, time.Since(start))
}

// Tap delivers a tap to the scene as the renderer would. An empty target
// taps the background.
func (e *Editor) Tap(t scene.Tap) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene.Tap(t.Target, t.Modifier)
}

// Connect adds the edge source -> target. It reports false when the edge
// would break an edge invariant.
func (e *Editor) Connect(source, target partition.ItemID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flow.Connect(source, target)
}

// DeleteEdge removes the edge with scene id id. It reports whether the
// edge existed.
func (e *Editor) DeleteEdge(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flow.DeleteEdge(id)
}

// ClearEdges removes every edge and returns how many logical edges existed.
func (e *Editor) ClearEdges() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.flow.ClearEdges())
}

// Center fits the viewport to the scene.
func (e *Editor) Center() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flow.Center()
}

// SetForm replaces the form fields.
func (e *Editor) SetForm(f Form) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = f
}

// Snapshot is a point-in-time view of the editor.
type Snapshot struct {
	RouteName         string             `json:"routeName,omitempty"`
	ClassifierOptions []string           `json:"classifierOptions"`
	LoadError         string             `json:"loadError,omitempty"`
	Available         []partition.Item   `json:"available"`
	Selected          []partition.Item   `json:"selected"`
	Marked            []int              `json:"marked"`
	Edges             []flow.Edge        `json:"edges"`
	Connection        flow.Connection    `json:"connection"`
	PotentialTargets  []partition.ItemID `json:"potentialTargets,omitempty"`
	Elements          []scene.Element    `json:"elements"`
	Viewport          scene.Viewport     `json:"viewport"`
	Form              Form               `json:"form"`
}

// Snapshot returns the current state.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{
		RouteName:         e.routeName,
		ClassifierOptions: []string{},
		LoadError:         e.loadErr,
		Available:         e.items.Available(),
		Selected:          e.items.Selected(),
		Marked:            e.items.MarkedIndices(),
		Edges:             e.flow.Edges(),
		Connection:        e.flow.Connection(),
		PotentialTargets:  e.flow.PotentialTargets(),
		Elements:          e.scene.Elements(),
		Viewport:          e.scene.Viewport(),
		Form:              e.form,
	}
	if e.routeName != "" {
		s.ClassifierOptions = append(s.ClassifierOptions, e.routeName)
	}
	return s
}

// Elements returns the rendered scene elements.
func (e *Editor) Elements() []scene.Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Elements()
}
