package network

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// NodePatch lists the fields [Model.UpdateNode] changes. Nil fields are kept.
type NodePatch struct {
	Label *string
	X, Y  *float64
	Color *int
}

// EdgeSpec describes an edge between two logical endpoints.
type EdgeSpec struct {
	ID   string
	From string
	To   string
}

// AddNode creates a node at the current level. Without a label the node is
// numbered per level and kind ("Node 3", "Input 1").
func (m *Model) AddNode(spec NodeSpec) (*Node, error) {
	if err := errors.ValidateLabel(spec.Label); err != nil {
		return nil, err
	}
	if !spec.Kind.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown node kind %d", int(spec.Kind))
	}
	if spec.Kind.IsPort() && m.Depth() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s ports belong inside a component", spec.Kind)
	}
	if spec.Color != nil {
		if spec.Kind != KindComponent {
			return nil, errors.New(errors.ErrCodeInvalidInput, "only components carry a color")
		}
		if !ValidColor(*spec.Color) {
			return nil, errors.New(errors.ErrCodeInvalidColor, "color %d out of range [0, %d)", *spec.Color, PaletteSize)
		}
	}
	if spec.ID != "" && ContainsNode(m.root, spec.ID) {
		return nil, errors.New(errors.ErrCodeDuplicateID, "node %s already exists", spec.ID)
	}
	if spec.Label == "" {
		spec.Label = AutoLabel(m.Current(), spec.Kind)
	}

	n := buildNode(spec, m.newID, m.color)
	err := m.mutate(Event{Op: OpAddNodes, NodeIDs: []string{n.ID}}, func(tx *txn) error {
		g := tx.current()
		g.Nodes = append(g.Nodes, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// AutoLabel returns the next numbered label for kind in g: one more than the
// highest number already used by a label of the form "<Kind> <n>".
func AutoLabel(g *Subgraph, kind Kind) string {
	prefix := kind.defaultLabel() + " "
	highest := 0
	for _, n := range g.Nodes {
		if n.Kind != kind || !strings.HasPrefix(n.Label, prefix) {
			continue
		}
		if v, err := strconv.Atoi(strings.TrimPrefix(n.Label, prefix)); err == nil && v > highest {
			highest = v
		}
	}
	return fmt.Sprintf("%s%d", prefix, highest+1)
}

// DeleteNodes removes nodes of the current level. Every edge of the
// document whose logical endpoint is a removed node, or lies inside a
// removed component, or that enters or leaves a component through a removed
// port, is removed first. Ids that are not present are ignored.
func (m *Model) DeleteNodes(ids ...string) error {
	return m.mutate(Event{Op: OpDeleteNodes, NodeIDs: ids}, func(tx *txn) error {
		g := tx.current()
		targets := make(map[string]bool)
		doomed := make(map[string]bool)
		for _, id := range ids {
			n := g.Node(id)
			if n == nil {
				continue
			}
			targets[id] = true
			collectIDs(n, doomed)
		}
		if len(targets) == 0 {
			return nil
		}

		removed, err := dropEdges(tx.root, func(at []string, e *Edge) bool {
			if slices.ContainsFunc(at, func(id string) bool { return doomed[id] }) {
				return false // goes away with its component
			}
			if doomed[e.ModelFrom] || doomed[e.ModelTo] {
				return true
			}
			from, to := gates(tx.root, at, e)
			return doomed[from] || doomed[to]
		})
		if err != nil {
			return err
		}
		g.removeNodes(targets)
		tx.ev.EdgeIDs = removed
		return nil
	})
}

// collectIDs adds n and everything nested in it to set.
func collectIDs(n *Node, set map[string]bool) {
	set[n.ID] = true
	if !n.IsComponent() {
		return
	}
	for _, c := range n.Component.Graph.Nodes {
		collectIDs(c, set)
	}
}

// dropEdges unregisters and removes every edge of the document matched by
// pick, returning the removed ids in visit order.
func dropEdges(root *Subgraph, pick func(at []string, e *Edge) bool) ([]string, error) {
	type hit struct {
		at []string
		g  *Subgraph
		e  *Edge
	}
	var hits []hit
	walkEdges(root, nil, func(at []string, g *Subgraph, e *Edge) error {
		if pick(at, e) {
			hits = append(hits, hit{at, g, e})
		}
		return nil
	})

	byGraph := make(map[*Subgraph]map[string]bool)
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if err := unregister(root, h.at, h.e); err != nil {
			return nil, err
		}
		if byGraph[h.g] == nil {
			byGraph[h.g] = make(map[string]bool)
		}
		byGraph[h.g][h.e.ID] = true
		ids = append(ids, h.e.ID)
	}
	for g, set := range byGraph {
		g.removeEdges(set)
	}
	return ids, nil
}

// UpdateNode patches a node of the current level.
func (m *Model) UpdateNode(id string, patch NodePatch) (*Node, error) {
	cur := m.Current().Node(id)
	if cur == nil {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %s not found at %s", id, FormatPath(m.ContextIDs()))
	}
	if patch.Label != nil {
		if err := errors.ValidateLabel(*patch.Label); err != nil {
			return nil, err
		}
	}
	if patch.Color != nil {
		if !cur.IsComponent() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %s is a %s and has no color", id, cur.Kind)
		}
		if !ValidColor(*patch.Color) {
			return nil, errors.New(errors.ErrCodeInvalidColor, "color %d out of range [0, %d)", *patch.Color, PaletteSize)
		}
	}

	var out *Node
	err := m.mutate(Event{Op: OpUpdateNodes, NodeIDs: []string{id}}, func(tx *txn) error {
		n := tx.current().Node(id)
		if n == nil {
			return errors.New(errors.ErrCodeInconsistent, "node %s lost in working copy", id)
		}
		if patch.Label != nil {
			n.Label = *patch.Label
		}
		if patch.X != nil {
			n.X = *patch.X
		}
		if patch.Y != nil {
			n.Y = *patch.Y
		}
		if patch.Color != nil {
			n.Component.Color = *patch.Color
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddEdge connects two logical endpoints. Either may be nested at any depth
// as long as one of them lies at or below the current level. The edge is
// stored in the lowest subgraph containing both endpoints and anchored at
// the components that hide nested endpoints there.
func (m *Model) AddEdge(spec EdgeSpec) (*Edge, error) {
	e, err := NewEdge(spec.ID, spec.From, spec.To)
	if err != nil {
		return nil, err
	}
	if spec.ID != "" {
		if _, _, dup := findEdge(m.root, spec.ID); dup != nil {
			return nil, errors.New(errors.ErrCodeDuplicateID, "edge %s already exists", spec.ID)
		}
	} else {
		e.ID = m.newID()
	}

	ev := Event{Op: OpAddEdges, NodeIDs: []string{e.ModelFrom, e.ModelTo}, EdgeIDs: []string{e.ID}}
	err = m.mutate(ev, func(tx *txn) error {
		_, err := place(tx.root, tx.path(), e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEdge reconnects edge id to new logical endpoints, keeping its id.
func (m *Model) UpdateEdge(id string, spec EdgeSpec) (*Edge, error) {
	if _, _, old := findEdge(m.root, id); old == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "edge %s not found", id)
	}
	e, err := NewEdge(id, spec.From, spec.To)
	if err != nil {
		return nil, err
	}

	ev := Event{Op: OpUpdateEdges, NodeIDs: []string{e.ModelFrom, e.ModelTo}, EdgeIDs: []string{id}}
	err = m.mutate(ev, func(tx *txn) error {
		if _, err := dropEdges(tx.root, func(_ []string, cand *Edge) bool { return cand.ID == id }); err != nil {
			return err
		}
		_, err := place(tx.root, tx.path(), e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEdges removes edges wherever they are stored, together with their
// port index entries. Ids that are not present are ignored.
func (m *Model) DeleteEdges(ids ...string) error {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return m.mutate(Event{Op: OpDeleteEdges, EdgeIDs: ids}, func(tx *txn) error {
		_, err := dropEdges(tx.root, func(_ []string, e *Edge) bool { return set[e.ID] })
		return err
	})
}
