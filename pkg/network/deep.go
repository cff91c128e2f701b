package network

import (
	"github.com/matzehuels/hiernet/pkg/errors"
)

// anchor derives the visible anchors and relative paths of e, stored in the
// subgraph at absolute path at, from its logical endpoints.
//
// A nested endpoint is reached through a port of its owning component: a
// nested 'from' leaves through an output port, a nested 'to' enters through
// an input port (see [entry]). Two endpoints hidden behind the same
// component would render as a self-loop and are rejected.
func anchor(root *Subgraph, at []string, e *Edge) error {
	g, err := ResolvePath(root, at)
	if err != nil {
		return err
	}
	fromPath, ok := DeepPath(g, e.ModelFrom)
	if !ok {
		return errors.New(errors.ErrCodeInvalidEdge, "edge %s: node %s is not below %s", e.ID, e.ModelFrom, FormatPath(at))
	}
	toPath, ok := DeepPath(g, e.ModelTo)
	if !ok {
		return errors.New(errors.ErrCodeInvalidEdge, "edge %s: node %s is not below %s", e.ID, e.ModelTo, FormatPath(at))
	}

	from, to := e.ModelFrom, e.ModelTo
	if len(fromPath) > 0 {
		from = fromPath[0]
	}
	if len(toPath) > 0 {
		to = toPath[0]
	}
	if from == to {
		return errors.New(errors.ErrCodeInvalidEdge, "edge %s: both endpoints sit behind %s", e.ID, from)
	}
	if err := checkPort(g, fromPath, e.ModelFrom, KindOutput, e.ID); err != nil {
		return err
	}
	if err := checkPort(g, toPath, e.ModelTo, KindInput, e.ID); err != nil {
		return err
	}

	e.From, e.To = from, to
	e.FromPath, e.ToPath = nilIfEmpty(fromPath), nilIfEmpty(toPath)
	return nil
}

func checkPort(g *Subgraph, path []string, id string, want Kind, edgeID string) error {
	if len(path) == 0 {
		return nil
	}
	owner, err := ResolvePath(g, path)
	if err != nil {
		return err
	}
	if _, ok := entry(owner, id, want); !ok {
		return errors.New(errors.ErrCodeInvalidEdge,
			"edge %s: %s has no %s port to reach %s through", edgeID, path[len(path)-1], want, id)
	}
	return nil
}

// entry returns the port of owner through which its member id is reached
// from outside: id itself when it is a port of kind, otherwise the first
// port of that kind in owner.
func entry(owner *Subgraph, id string, kind Kind) (string, bool) {
	n := owner.Node(id)
	if n == nil {
		return "", false
	}
	if n.Kind == kind {
		return id, true
	}
	for _, p := range owner.Nodes {
		if p.Kind == kind {
			return p.ID, true
		}
	}
	return "", false
}

// gates returns the ports e passes through on each nested side, empty for
// a shallow side or a side whose port is missing.
func gates(root *Subgraph, at []string, e *Edge) (from, to string) {
	if len(e.FromPath) > 0 {
		if owner, err := ResolvePath(root, joinPath(at, e.FromPath)); err == nil {
			from, _ = entry(owner, e.ModelFrom, KindOutput)
		}
	}
	if len(e.ToPath) > 0 {
		if owner, err := ResolvePath(root, joinPath(at, e.ToPath)); err == nil {
			to, _ = entry(owner, e.ModelTo, KindInput)
		}
	}
	return from, to
}

func nilIfEmpty(p []string) []string {
	if len(p) == 0 {
		return nil
	}
	return p
}

// register records e in the port index of the component directly holding
// each nested endpoint, under the port the edge passes through.
func register(root *Subgraph, at []string, e *Edge) error {
	if len(e.FromPath) > 0 {
		owner, port, err := gate(root, joinPath(at, e.FromPath), e.ModelFrom, KindOutput)
		if err != nil {
			return err
		}
		owner.Component.Outputs.add(port, PortRef{
			EdgeID: e.ID,
			Path:   joinPath(at, e.ToPath),
			Peer:   e.ModelTo,
		})
	}
	if len(e.ToPath) > 0 {
		owner, port, err := gate(root, joinPath(at, e.ToPath), e.ModelTo, KindInput)
		if err != nil {
			return err
		}
		owner.Component.Inputs.add(port, PortRef{
			EdgeID: e.ID,
			Path:   joinPath(at, e.FromPath),
			Peer:   e.ModelFrom,
		})
	}
	return nil
}

func gate(root *Subgraph, path []string, id string, kind Kind) (*Node, string, error) {
	owner, err := resolveComponent(root, path)
	if err != nil {
		return nil, "", err
	}
	port, ok := entry(&owner.Component.Graph, id, kind)
	if !ok {
		return nil, "", errors.New(errors.ErrCodeInconsistent, "%s holds no %s port for %s", owner.ID, kind, id)
	}
	return owner, port, nil
}

// unregister removes e from the port indexes. A missing entry is tolerated;
// a path that no longer resolves is not.
func unregister(root *Subgraph, at []string, e *Edge) error {
	if len(e.FromPath) > 0 {
		owner, err := resolveComponent(root, joinPath(at, e.FromPath))
		if err != nil {
			return err
		}
		if port, ok := entry(&owner.Component.Graph, e.ModelFrom, KindOutput); ok {
			owner.Component.Outputs.remove(port, e.ID)
		}
	}
	if len(e.ToPath) > 0 {
		owner, err := resolveComponent(root, joinPath(at, e.ToPath))
		if err != nil {
			return err
		}
		if port, ok := entry(&owner.Component.Graph, e.ModelTo, KindInput); ok {
			owner.Component.Inputs.remove(port, e.ID)
		}
	}
	return nil
}

// place stores a new edge in the lowest subgraph that contains both logical
// endpoints. One endpoint must lie at or below the level at path current.
func place(root *Subgraph, current []string, e *Edge) ([]string, error) {
	from, ok := Locate(root, e.ModelFrom)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidEdge, "unknown node %s", e.ModelFrom)
	}
	to, ok := Locate(root, e.ModelTo)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidEdge, "unknown node %s", e.ModelTo)
	}
	if !hasPrefix(from.Path, current) && !hasPrefix(to.Path, current) {
		return nil, errors.New(errors.ErrCodeInvalidEdge,
			"edge %s -> %s does not touch %s", e.ModelFrom, e.ModelTo, FormatPath(current))
	}

	at := commonPrefix(from.Path, to.Path)
	g, err := ResolvePath(root, at)
	if err != nil {
		return nil, err
	}
	if err := anchor(root, at, e); err != nil {
		return nil, err
	}
	g.Edges = append(g.Edges, e)
	if err := register(root, at, e); err != nil {
		return nil, err
	}
	return at, nil
}

// edgeVisitor is called for every edge of a document with the absolute path
// of its containing subgraph.
type edgeVisitor func(at []string, g *Subgraph, e *Edge) error

// walkEdges visits edges parent first. The visitor must not add or remove
// edges of g.
func walkEdges(g *Subgraph, at []string, fn edgeVisitor) error {
	for _, e := range g.Edges {
		if err := fn(at, g, e); err != nil {
			return err
		}
	}
	for _, c := range g.Components() {
		if err := walkEdges(&c.Component.Graph, joinPath(at, []string{c.ID}), fn); err != nil {
			return err
		}
	}
	return nil
}

func walkComponents(g *Subgraph, fn func(c *Node)) {
	for _, c := range g.Components() {
		fn(c)
		walkComponents(&c.Component.Graph, fn)
	}
}

// findEdge locates an edge by id anywhere below root.
func findEdge(root *Subgraph, id string) (at []string, g *Subgraph, e *Edge) {
	walkEdges(root, nil, func(p []string, sg *Subgraph, cand *Edge) error {
		if e == nil && cand.ID == id {
			at, g, e = p, sg, cand
		}
		return nil
	})
	return at, g, e
}

// reindex re-derives every anchor and rebuilds every port index of the
// document from logical endpoints. Structural moves (fold, import,
// instantiate) call it so that no stale path survives.
func reindex(root *Subgraph) error {
	walkComponents(root, func(c *Node) {
		c.Component.Inputs = Ports{}
		c.Component.Outputs = Ports{}
	})
	return walkEdges(root, nil, func(at []string, _ *Subgraph, e *Edge) error {
		if err := anchor(root, at, e); err != nil {
			return err
		}
		return register(root, at, e)
	})
}
