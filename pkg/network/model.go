package network

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/observability"
)

// Op names a model operation in events and hooks.
type Op string

const (
	OpAddNodes    Op = "add-nodes"
	OpDeleteNodes Op = "delete-nodes"
	OpUpdateNodes Op = "update-nodes"
	OpAddEdges    Op = "add-edges"
	OpUpdateEdges Op = "update-edges"
	OpDeleteEdges Op = "delete-edges"
	OpFold        Op = "fold"
	OpInstantiate Op = "instantiate"
	OpImport      Op = "import"
	OpNavigate    Op = "navigate"
)

// Event describes an operation. Interceptors see it before the operation
// runs; listeners see it, completed with generated ids, after it succeeded.
type Event struct {
	Op      Op
	Context []string // context stack ids when the operation started
	NodeIDs []string
	EdgeIDs []string
}

// Interceptor runs before a mutation. A non-nil error vetoes it.
type Interceptor func(Event) error

// Listener runs after a successful operation.
type Listener func(Event)

// Options configures a [Model].
type Options struct {
	// Logger receives debug output for every operation. Nil discards.
	Logger *log.Logger
	// Hooks observe operations. Nil uses the globally registered hooks.
	Hooks observability.ModelHooks
	// NewID generates node and edge ids. Nil uses random UUIDs.
	NewID func() string
	// Color picks a palette index for components created without one.
	Color func() int
}

// Frame is one entry of the context stack.
type Frame struct {
	Component *Node     // the component drilled into
	Parent    *Subgraph // subgraph holding Component
}

// Graph returns the live subgraph of the frame's component.
func (f Frame) Graph() *Subgraph { return &f.Component.Component.Graph }

// Model owns a root document and the stack of components drilled into.
//
// Every mutation applies to the currently open level, runs to completion on
// a working copy of the document and is swapped in only when it succeeded,
// so a failed operation leaves the model untouched. Nodes and edges returned
// by operations belong to the live document; treat them as read-only and
// valid until the next mutation.
//
// A Model is not safe for concurrent use.
type Model struct {
	root   *Subgraph
	frames []Frame

	logger *log.Logger
	hooks  observability.ModelHooks
	newID  func() string
	color  func() int

	interceptors []Interceptor
	listeners    []Listener
}

// New creates a model with an empty root document.
func New(opts Options) *Model {
	m := &Model{
		root:   &Subgraph{},
		logger: opts.Logger,
		hooks:  opts.Hooks,
		newID:  opts.NewID,
		color:  opts.Color,
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}
	if m.hooks == nil {
		m.hooks = observability.Model()
	}
	if m.newID == nil {
		m.newID = newID
	}
	if m.color == nil {
		m.color = randomColor
	}
	return m
}

// NewFromDocument creates a model and imports doc into it.
func NewFromDocument(doc *Subgraph, opts Options) (*Model, error) {
	m := New(opts)
	if err := m.Import(doc); err != nil {
		return nil, err
	}
	return m, nil
}

// Intercept registers fn to run before every mutation.
func (m *Model) Intercept(fn Interceptor) { m.interceptors = append(m.interceptors, fn) }

// Subscribe registers fn to run after every successful operation.
func (m *Model) Subscribe(fn Listener) { m.listeners = append(m.listeners, fn) }

// Root returns the root document.
func (m *Model) Root() *Subgraph { return m.root }

// Current returns the subgraph of the innermost open component, or the root
// document when no component is open.
func (m *Model) Current() *Subgraph {
	if len(m.frames) == 0 {
		return m.root
	}
	return m.frames[len(m.frames)-1].Graph()
}

// CurrentComponent returns the innermost open component, or nil at root.
func (m *Model) CurrentComponent() *Node {
	if len(m.frames) == 0 {
		return nil
	}
	return m.frames[len(m.frames)-1].Component
}

// Depth returns the number of open components.
func (m *Model) Depth() int { return len(m.frames) }

// Frames returns a copy of the context stack, root first.
func (m *Model) Frames() []Frame { return slices.Clone(m.frames) }

// ContextIDs returns the ids of the open components, root first. This is
// also the absolute path of the current level.
func (m *Model) ContextIDs() []string { return frameIDs(m.frames) }

// Breadcrumbs returns "Root" followed by the labels of the open components.
func (m *Model) Breadcrumbs() []string {
	out := []string{"Root"}
	for _, f := range m.frames {
		out = append(out, f.Component.Label)
	}
	return out
}

func frameIDs(frames []Frame) []string {
	ids := make([]string, len(frames))
	for i, f := range frames {
		ids[i] = f.Component.ID
	}
	return ids
}

// bindFrames rebuilds a context stack for ids against root.
func bindFrames(root *Subgraph, ids []string) ([]Frame, error) {
	frames := make([]Frame, 0, len(ids))
	parent := root
	for _, id := range ids {
		n := parent.Node(id)
		if n == nil || !n.IsComponent() {
			return nil, errors.New(errors.ErrCodeInconsistent, "context component %s is missing from its parent", id)
		}
		frames = append(frames, Frame{Component: n, Parent: parent})
		parent = &n.Component.Graph
	}
	return frames, nil
}

// =============================================================================
// Transactions
// =============================================================================

// txn is one mutation running against a working copy of the document.
type txn struct {
	root   *Subgraph
	frames []Frame
	ev     *Event
	m      *Model
}

func (tx *txn) current() *Subgraph {
	if len(tx.frames) == 0 {
		return tx.root
	}
	return tx.frames[len(tx.frames)-1].Graph()
}

func (tx *txn) path() []string { return frameIDs(tx.frames) }

// propagate walks the context stack from the innermost frame outward and
// writes each frame's subgraph back into the component held by the next
// frame out (or the root document). It then rebinds the stack.
func (tx *txn) propagate() error {
	for i := len(tx.frames) - 1; i >= 0; i-- {
		parent := tx.root
		if i > 0 {
			parent = tx.frames[i-1].Graph()
		}
		f := tx.frames[i]
		n := parent.Node(f.Component.ID)
		if n == nil || !n.IsComponent() {
			return errors.New(errors.ErrCodeInconsistent,
				"component %s vanished from its parent at depth %d", f.Component.ID, i)
		}
		if n != f.Component {
			n.Component.Graph = f.Component.Component.Graph
		}
		tx.m.hooks.OnPropagate(i)
	}
	frames, err := bindFrames(tx.root, tx.path())
	if err != nil {
		return err
	}
	tx.frames = frames
	return nil
}

// mutate runs fn as one atomic operation: interceptors first, then fn on a
// working copy, then propagation, then the swap and the listeners.
func (m *Model) mutate(ev Event, fn func(tx *txn) error) error {
	ev.Context = m.ContextIDs()
	for _, ic := range m.interceptors {
		if err := ic(ev); err != nil {
			return errors.Wrap(errors.ErrCodeCancelled, err, "%s cancelled", ev.Op)
		}
	}

	start := time.Now()
	m.hooks.OnOperationStart(string(ev.Op), len(ev.Context))
	err := m.commit(&ev, fn)
	m.hooks.OnOperationComplete(string(ev.Op), len(ev.Context), time.Since(start), err)
	if err != nil {
		m.logger.Debug("operation failed", "op", ev.Op, "depth", len(ev.Context), "err", err)
		return err
	}

	m.logger.Debug("operation applied", "op", ev.Op, "depth", len(ev.Context),
		"nodes", len(ev.NodeIDs), "edges", len(ev.EdgeIDs), "took", time.Since(start))
	m.notify(ev)
	return nil
}

func (m *Model) commit(ev *Event, fn func(tx *txn) error) error {
	work := m.root.Clone()
	frames, err := bindFrames(work, ev.Context)
	if err != nil {
		return err
	}
	tx := &txn{root: work, frames: frames, ev: ev, m: m}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.propagate(); err != nil {
		return err
	}
	m.root, m.frames = tx.root, tx.frames
	return nil
}

func (m *Model) notify(ev Event) {
	for _, l := range m.listeners {
		l(ev)
	}
}

// =============================================================================
// Navigation
// =============================================================================

// Enter opens the component id of the current level.
func (m *Model) Enter(id string) error {
	n := m.Current().Node(id)
	if n == nil {
		return errors.New(errors.ErrCodeNodeNotFound, "node %s not found at %s", id, FormatPath(m.ContextIDs()))
	}
	if !n.IsComponent() {
		return errors.New(errors.ErrCodeInvalidInput, "node %s is a %s, not a component", id, n.Kind)
	}
	m.frames = append(m.frames, Frame{Component: n, Parent: m.Current()})
	m.navigated()
	return nil
}

// EnterPath opens each component of path in turn, starting at the root.
func (m *Model) EnterPath(path []string) error {
	frames, err := bindFrames(m.root, path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot open %s", FormatPath(path))
	}
	m.frames = frames
	m.navigated()
	return nil
}

// Exit closes the innermost component. At root it does nothing.
func (m *Model) Exit() {
	if len(m.frames) == 0 {
		return
	}
	m.frames = m.frames[:len(m.frames)-1]
	m.navigated()
}

// ExitToRoot closes every open component.
func (m *Model) ExitToRoot() {
	if len(m.frames) == 0 {
		return
	}
	m.frames = nil
	m.navigated()
}

// ExitTo truncates the context stack to depth, as a breadcrumb click does.
func (m *Model) ExitTo(depth int) error {
	if depth < 0 || depth > len(m.frames) {
		return errors.New(errors.ErrCodeInvalidInput, "depth %d out of range [0, %d]", depth, len(m.frames))
	}
	if depth == len(m.frames) {
		return nil
	}
	m.frames = m.frames[:depth]
	m.navigated()
	return nil
}

func (m *Model) navigated() {
	m.logger.Debug("navigated", "path", FormatPath(m.ContextIDs()))
	m.notify(Event{Op: OpNavigate, Context: m.ContextIDs()})
}
