package network

import (
	"math"
	"slices"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// FoldMargin is the horizontal gap between the selection's bounding box and
// synthesized ports.
const FoldMargin = 100.0

// FoldOptions configures [Model.Fold].
type FoldOptions struct {
	ID    string // id of the new component; generated when empty
	Label string // defaults to the next "Component <n>"
	Color *int   // palette index; random when nil
}

// Fold replaces the selected nodes of the current level with one component
// holding them.
//
// The component sits at the position of the first selected node. Unless the
// selection already holds an input (output) port, one is synthesized left
// (right) of the selection's bounding box. Edges among selected nodes move
// into the component. Edges crossing the selection boundary stay where they
// are with their logical endpoints unchanged; they become deep edges
// anchored at the component and entering (leaving) it through its first
// input (output) port unless they end at a port themselves. The component
// thus holds exactly the edges that were internal to the selection.
//
// Fold validates everything before it mutates; on error the model is
// unchanged.
func (m *Model) Fold(ids []string, opts FoldOptions) (*Node, error) {
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSelection, "nothing selected to fold")
	}
	g := m.Current()
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, errors.New(errors.ErrCodeInvalidSelection, "node %s selected twice", id)
		}
		if g.Node(id) == nil {
			return nil, errors.New(errors.ErrCodeInvalidSelection, "node %s is not at %s", id, FormatPath(m.ContextIDs()))
		}
		seen[id] = true
	}
	if err := errors.ValidateLabel(opts.Label); err != nil {
		return nil, err
	}
	if opts.Color != nil && !ValidColor(*opts.Color) {
		return nil, errors.New(errors.ErrCodeInvalidColor, "color %d out of range [0, %d)", *opts.Color, PaletteSize)
	}
	if opts.ID != "" && ContainsNode(m.root, opts.ID) {
		return nil, errors.New(errors.ErrCodeDuplicateID, "node %s already exists", opts.ID)
	}

	spec := NodeSpec{ID: opts.ID, Label: opts.Label, Kind: KindComponent, Color: opts.Color}
	if spec.ID == "" {
		spec.ID = m.newID()
	}
	if spec.Label == "" {
		spec.Label = AutoLabel(g, KindComponent)
	}

	var out *Node
	ev := Event{Op: OpFold, NodeIDs: append([]string{spec.ID}, ids...)}
	err := m.mutate(ev, func(tx *txn) error {
		c, err := tx.fold(spec, ids)
		out = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (tx *txn) fold(spec NodeSpec, ids []string) (*Node, error) {
	g := tx.current()
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	first := g.Node(ids[0])
	spec.X, spec.Y = first.X, first.Y

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	var members []*Node
	insertAt := -1
	for i, n := range g.Nodes {
		if !selected[n.ID] {
			continue
		}
		if insertAt < 0 {
			insertAt = i
		}
		members = append(members, n)
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}

	var internal []*Edge
	for _, e := range g.Edges {
		if selected[e.From] && selected[e.To] {
			internal = append(internal, e)
		}
	}

	comp := buildNode(spec, tx.m.newID, tx.m.color)
	sub := &comp.Component.Graph
	sub.Nodes = members
	midY := (minY + maxY) / 2
	tx.boundary(sub, KindInput, minX-FoldMargin, midY)
	tx.boundary(sub, KindOutput, maxX+FoldMargin, midY)
	sub.Edges = slices.Clone(internal)

	internalIDs := make(map[string]bool, len(internal))
	for _, e := range internal {
		internalIDs[e.ID] = true
	}
	g.removeEdges(internalIDs)
	g.removeNodes(selected)
	g.Nodes = slices.Insert(g.Nodes, insertAt, comp)

	if err := reindex(tx.root); err != nil {
		return nil, err
	}
	return comp, nil
}

// boundary synthesizes a port of kind at (x, y) unless sub already has one.
func (tx *txn) boundary(sub *Subgraph, kind Kind, x, y float64) {
	for _, n := range sub.Nodes {
		if n.Kind == kind {
			return
		}
	}
	n := buildNode(NodeSpec{Kind: kind, Label: AutoLabel(sub, kind), X: x, Y: y}, tx.m.newID, tx.m.color)
	sub.Nodes = append(sub.Nodes, n)
	tx.ev.NodeIDs = append(tx.ev.NodeIDs, n.ID)
}
