package network

import (
	"strconv"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// Export copies the selected nodes of the current level, and the edges
// between them, into a standalone document. Ids are renumbered "0", "1", ...
// depth first. Edges carry their logical endpoints in From and To; paths and
// port indexes are dropped, [Model.Import] derives them again.
func (m *Model) Export(ids ...string) (*Subgraph, error) {
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSelection, "nothing selected to export")
	}
	g := m.Current()
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		if g.Node(id) == nil {
			return nil, errors.New(errors.ErrCodeInvalidSelection, "node %s is not at %s", id, FormatPath(m.ContextIDs()))
		}
		selected[id] = true
	}

	counter := 0
	next := func() string {
		s := strconv.Itoa(counter)
		counter++
		return s
	}

	mapping := make(map[string]string)
	out := &Subgraph{}
	for _, n := range g.Nodes {
		if selected[n.ID] {
			assignIDs(n, mapping, next)
		}
	}
	for _, n := range g.Nodes {
		if selected[n.ID] {
			c := remapNode(n, mapping)
			strip(c)
			out.Nodes = append(out.Nodes, c)
		}
	}
	for _, e := range g.Edges {
		if !selected[e.From] || !selected[e.To] {
			continue
		}
		mapping[e.ID] = next()
		from, to := lookup(mapping, e.ModelFrom), lookup(mapping, e.ModelTo)
		out.Edges = append(out.Edges, &Edge{ID: mapping[e.ID], From: from, To: to, ModelFrom: from, ModelTo: to})
	}
	return out, nil
}

// strip drops derived bookkeeping from n and everything nested in it.
func strip(n *Node) {
	if !n.IsComponent() {
		return
	}
	n.Component.Inputs = Ports{}
	n.Component.Outputs = Ports{}
	for _, e := range n.Component.Graph.Edges {
		e.From, e.To = e.ModelFrom, e.ModelTo
		e.FromPath, e.ToPath = nil, nil
	}
	for _, c := range n.Component.Graph.Nodes {
		strip(c)
	}
}

// Import replaces the root document with a copy of doc and closes every
// open component. Edges may name their logical endpoints in ModelFrom and
// ModelTo or, when those are empty, in From and To; anchors, paths and port
// indexes are always derived again.
func (m *Model) Import(doc *Subgraph) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidFormat, "no document to import")
	}
	work := doc.Clone()
	if err := validateDocument(work); err != nil {
		return err
	}
	if err := reindex(work); err != nil {
		return err
	}
	return m.mutate(Event{Op: OpImport}, func(tx *txn) error {
		*tx.root = *work
		tx.frames = nil
		return nil
	})
}

// validateDocument checks structure that reindex relies on and fills in
// missing logical endpoints.
func validateDocument(root *Subgraph) error {
	nodes := make(map[string]bool)
	edges := make(map[string]bool)

	var visit func(g *Subgraph) error
	visit = func(g *Subgraph) error {
		for _, n := range g.Nodes {
			if n == nil || n.ID == "" {
				return errors.New(errors.ErrCodeInvalidFormat, "node without id")
			}
			if nodes[n.ID] {
				return errors.New(errors.ErrCodeDuplicateID, "node %s appears twice", n.ID)
			}
			nodes[n.ID] = true

			switch n.Kind {
			case KindComponent:
				if n.Component == nil {
					return errors.New(errors.ErrCodeInvalidFormat, "component %s has no subgraph", n.ID)
				}
				if !ValidColor(n.Component.Color) {
					return errors.New(errors.ErrCodeInvalidColor, "component %s: color %d out of range", n.ID, n.Component.Color)
				}
				if err := visit(&n.Component.Graph); err != nil {
					return err
				}
			case KindPlain, KindInput, KindOutput:
				if n.Component != nil {
					return errors.New(errors.ErrCodeInvalidFormat, "%s node %s carries a subgraph", n.Kind, n.ID)
				}
			default:
				return errors.New(errors.ErrCodeInvalidFormat, "node %s has unknown kind %d", n.ID, n.Kind)
			}
		}
		for _, e := range g.Edges {
			if e == nil || e.ID == "" {
				return errors.New(errors.ErrCodeInvalidFormat, "edge without id")
			}
			if edges[e.ID] {
				return errors.New(errors.ErrCodeDuplicateID, "edge %s appears twice", e.ID)
			}
			edges[e.ID] = true
			if e.ModelFrom == "" {
				e.ModelFrom = e.From
			}
			if e.ModelTo == "" {
				e.ModelTo = e.To
			}
			if e.ModelFrom == "" || e.ModelTo == "" {
				return errors.New(errors.ErrCodeInvalidEdge, "edge %s is missing an endpoint", e.ID)
			}
			if e.ModelFrom == e.ModelTo {
				return errors.New(errors.ErrCodeInvalidEdge, "self-loop on node %s", e.ModelFrom)
			}
		}
		return nil
	}
	return visit(root)
}
