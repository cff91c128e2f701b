package network

import (
	"github.com/matzehuels/hiernet/pkg/errors"
)

// Remap deep-copies n and gives the copy, and every node and edge nested in
// it, a fresh id from newID. Anchors, logical endpoints, paths and port
// references are rewritten through the same mapping; ids that point outside
// n are kept as they are. It returns the copy and the old-to-new mapping.
func Remap(n *Node, newID func() string) (*Node, map[string]string) {
	ids := make(map[string]string)
	assignIDs(n, ids, newID)
	return remapNode(n, ids), ids
}

func assignIDs(n *Node, ids map[string]string, newID func() string) {
	ids[n.ID] = newID()
	if !n.IsComponent() {
		return
	}
	for _, c := range n.Component.Graph.Nodes {
		assignIDs(c, ids, newID)
	}
	for _, e := range n.Component.Graph.Edges {
		ids[e.ID] = newID()
	}
}

func remapNode(n *Node, ids map[string]string) *Node {
	out := &Node{
		ID:    lookup(ids, n.ID),
		Label: n.Label,
		X:     n.X,
		Y:     n.Y,
		Kind:  n.Kind,
	}
	if !n.IsComponent() {
		return out
	}
	src := n.Component
	c := &Component{
		Inputs:  remapPorts(src.Inputs, ids),
		Outputs: remapPorts(src.Outputs, ids),
		Color:   src.Color,
	}
	for _, child := range src.Graph.Nodes {
		c.Graph.Nodes = append(c.Graph.Nodes, remapNode(child, ids))
	}
	for _, e := range src.Graph.Edges {
		c.Graph.Edges = append(c.Graph.Edges, &Edge{
			ID:        lookup(ids, e.ID),
			From:      lookup(ids, e.From),
			To:        lookup(ids, e.To),
			FromPath:  remapPath(e.FromPath, ids),
			ToPath:    remapPath(e.ToPath, ids),
			ModelFrom: lookup(ids, e.ModelFrom),
			ModelTo:   lookup(ids, e.ModelTo),
		})
	}
	out.Component = c
	return out
}

func remapPorts(p Ports, ids map[string]string) Ports {
	out := make(Ports, len(p))
	for port, refs := range p {
		cp := make([]PortRef, len(refs))
		for i, r := range refs {
			cp[i] = PortRef{EdgeID: lookup(ids, r.EdgeID), Path: remapPath(r.Path, ids), Peer: lookup(ids, r.Peer)}
		}
		out[lookup(ids, port)] = cp
	}
	return out
}

func remapPath(path []string, ids map[string]string) []string {
	if path == nil {
		return nil
	}
	out := make([]string, len(path))
	for i, id := range path {
		out[i] = lookup(ids, id)
	}
	return out
}

func lookup(ids map[string]string, id string) string {
	if v, ok := ids[id]; ok {
		return v
	}
	return id
}

// Instantiate places a fresh copy of a component template at (x, y) on the
// current level. The copy never shares ids or objects with template.
func (m *Model) Instantiate(template *Node, x, y float64) (*Node, error) {
	if template == nil || !template.IsComponent() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "template must be a component")
	}
	c, _ := Remap(template, m.newID)
	c.X, c.Y = x, y

	err := m.mutate(Event{Op: OpInstantiate, NodeIDs: []string{c.ID}}, func(tx *txn) error {
		g := tx.current()
		g.Nodes = append(g.Nodes, c)
		return reindex(tx.root)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
